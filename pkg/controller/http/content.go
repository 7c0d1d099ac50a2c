package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/carrel-app/carrel/pkg/domain/interfaces"
	"github.com/carrel-app/carrel/pkg/domain/model"
	"github.com/carrel-app/carrel/pkg/domain/types"
)

const defaultMaxUpload = 512 << 20 // 512 MiB

// ContentHandler exposes the control surface for loading, clearing and
// inspecting the served package.
type ContentHandler struct {
	content   interfaces.ContentStore
	loader    interfaces.PackageLoader
	fetcher   interfaces.Fetcher
	maxUpload int64
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(content interfaces.ContentStore, loader interfaces.PackageLoader, fetcher interfaces.Fetcher, maxUpload int64) *ContentHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &ContentHandler{
		content:   content,
		loader:    loader,
		fetcher:   fetcher,
		maxUpload: maxUpload,
	}
}

// installResponse acknowledges a load request. StorageError is set when the
// package is being served from memory but could not be persisted; the UI
// uses QuotaExceeded to tell the user content won't survive a reload.
type installResponse struct {
	FileCount     int    `json:"fileCount"`
	StorageError  string `json:"storageError,omitempty"`
	QuotaExceeded bool   `json:"quotaExceeded,omitempty"`
}

// HandleUpload accepts a package archive, either as the multipart form field
// "package" or as the raw request body, and installs it.
func (h *ContentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	data, err := h.readArchive(r)
	if err != nil {
		logger.Warn("failed to read uploaded package", "error", err)
		writeError(w, err, http.StatusBadRequest)
		return
	}

	opts := contentOptionsFromRequest(r)

	result, err := h.loader.Load(ctx, data, opts)
	if err != nil {
		logger.Warn("failed to load package", "error", err)
		writeError(w, err, loadErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, toInstallResponse(result))
}

// fetchRequest asks the server to download a remote archive and install it.
type fetchRequest struct {
	URL string `json:"url"`
}

// HandleFetch downloads a remote package archive and installs it.
func (h *ContentHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, goerr.Wrap(err, "invalid fetch request"), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		writeError(w, goerr.New("url is required"), http.StatusBadRequest)
		return
	}

	data, err := h.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		logger.Warn("failed to download package", "error", err, "url", req.URL)
		writeError(w, err, http.StatusBadGateway)
		return
	}

	result, err := h.loader.Load(ctx, data, contentOptionsFromRequest(r))
	if err != nil {
		logger.Warn("failed to load downloaded package", "error", err, "url", req.URL)
		writeError(w, err, loadErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, toInstallResponse(result))
}

// HandleClear drops the loaded package.
func (h *ContentHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.content.Clear(r.Context()); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// HandleStatus reports readiness, file count and app version.
func (h *ContentHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.content.Status(r.Context()))
}

func (h *ContentHandler) readArchive(r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("package")
		if err != nil {
			return nil, goerr.Wrap(err, `multipart upload needs a "package" file field`)
		}
		defer file.Close()
		return readCapped(file, h.maxUpload)
	}

	return readCapped(r.Body, h.maxUpload)
}

func readCapped(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read archive bytes")
	}
	if int64(len(data)) > max {
		return nil, goerr.New("archive is too large", goerr.V("max_bytes", max))
	}
	if len(data) == 0 {
		return nil, goerr.New("archive is empty", goerr.T(types.ErrTagEmptyArchive))
	}
	return data, nil
}

// contentOptionsFromRequest reads serving options from the request, falling
// back to defaults. Accepted as the form/query value "externalLinksNewWindow".
func contentOptionsFromRequest(r *http.Request) model.ContentOptions {
	opts := model.DefaultContentOptions()
	if v := r.FormValue("externalLinksNewWindow"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			opts.OpenExternalLinksInNewWindow = parsed
		}
	}
	return opts
}

func loadErrorStatus(err error) int {
	if goerr.HasTag(err, types.ErrTagBadArchive) || goerr.HasTag(err, types.ErrTagEmptyArchive) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func toInstallResponse(result *model.InstallResult) installResponse {
	resp := installResponse{FileCount: result.FileCount}
	if result.StorageError != nil {
		resp.StorageError = result.StorageError.Error()
		resp.QuotaExceeded = goerr.HasTag(result.StorageError, types.ErrTagQuotaExceeded)
	}
	return resp
}
