package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/viralforge/brandhub/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) serveUpload(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.uploads.Open(r.Context(), r.URL.Path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		writeMappedError(r.Context(), w, "serve_upload", err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, body); err != nil {
		httpLogger().WarnContext(r.Context(), "upload stream interrupted",
			"operation", "serve_upload",
			"outcome", "failure",
			"path", r.URL.Path,
			"error", err,
		)
	}
}
