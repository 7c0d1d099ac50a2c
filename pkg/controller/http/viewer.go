package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/carrel-app/carrel/pkg/domain/interfaces"
	"github.com/carrel-app/carrel/pkg/domain/types"
	"github.com/carrel-app/carrel/pkg/usecase"
)

// viewerPrefix is the reserved virtual path segment. Any request whose path
// contains it is answered from the content store instead of the UI shell;
// the first occurrence determines the split point, so package-internal
// relative links keep working regardless of how deep the page's own URL is.
const viewerPrefix = "/viewer/"

// markerHeader identifies responses synthesized from the content store,
// which makes "did this come from the package or from somewhere else"
// answerable in the browser's network panel.
const markerHeader = "X-Carrel-Content"

// ViewerHandler is the virtual file server: it answers requests under the
// viewer prefix from the installed ContentSet.
type ViewerHandler struct {
	content       interfaces.ContentStore
	mimeOverrides map[string]string
}

// NewViewerHandler creates a ViewerHandler.
func NewViewerHandler(content interfaces.ContentStore, mimeOverrides map[string]string) *ViewerHandler {
	return &ViewerHandler{
		content:       content,
		mimeOverrides: mimeOverrides,
	}
}

// Middleware intercepts every request whose path contains the viewer prefix
// and serves it from the content store; everything else passes through.
func (h *ViewerHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if idx := strings.Index(r.URL.EscapedPath(), viewerPrefix); idx >= 0 {
			h.serve(w, r, r.URL.EscapedPath()[idx+len(viewerPrefix):])
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *ViewerHandler) serve(w http.ResponseWriter, r *http.Request, rest string) {
	ctx := r.Context()

	if rest == "" {
		rest = "index.html"
	}
	rest = strings.TrimPrefix(rest, "/")
	if decoded, err := url.PathUnescape(rest); err == nil {
		rest = decoded
	}

	file, err := h.content.Lookup(ctx, rest)
	switch {
	case goerr.HasTag(err, types.ErrTagNotReady):
		writePlainText(w, http.StatusServiceUnavailable,
			"no package is loaded yet; open the viewer start page and load one")
		return
	case goerr.HasTag(err, types.ErrTagNotFound):
		writePlainText(w, http.StatusNotFound,
			fmt.Sprintf("%s is not part of the loaded package", rest))
		return
	case err != nil:
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	mimeType := typeByPath(file.Path, h.mimeOverrides)
	body := file.Data
	if isHTML(mimeType) && h.content.Options().OpenExternalLinksInNewWindow {
		body = usecase.TransformHTML(body)
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set(markerHeader, "package")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		// Client went away mid-response; nothing to recover.
		return
	}
}
