package http

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/carrel-app/carrel/pkg/domain/types"
)

//go:embed assets
var assetFS embed.FS

// AssetHandler serves the embedded UI shell for every request outside the
// viewer prefix and the API.
//
//   - navigation requests fall back to the shell root (no-cache)
//   - locale files are always revalidated so translations stay current
//   - everything else is cached immutably, keyed by app version via ETag,
//     so a version bump invalidates clients' copies
type AssetHandler struct {
	fs   fs.FS
	etag string
}

// NewAssetHandler creates an AssetHandler over the embedded shell files.
func NewAssetHandler() *AssetHandler {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		// The subtree is embedded at build time; absence is a build defect.
		panic(err)
	}
	return &AssetHandler{
		fs:   sub,
		etag: fmt.Sprintf("%q", "v"+types.Version),
	}
}

func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writePlainText(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" || name == "." {
		name = "index.html"
	}

	data, err := fs.ReadFile(h.fs, name)
	if err != nil {
		if isNavigation(r) {
			h.serveRoot(w)
			return
		}
		writePlainText(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case name == "index.html" || strings.HasPrefix(name, "locales/"):
		w.Header().Set("Cache-Control", "no-cache")
	default:
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("ETag", h.etag)
		if r.Header.Get("If-None-Match") == h.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", typeByPath(name, nil))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}

// serveRoot answers a navigation to an unknown path with the shell root, so
// client-side routes deep-link correctly.
func (h *AssetHandler) serveRoot(w http.ResponseWriter) {
	data, err := fs.ReadFile(h.fs, "index.html")
	if err != nil {
		writePlainText(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func isNavigation(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}
