package main

import (
	"net/http"
	"strconv"

	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/pkg/storage"
)

// uploadsHandler serves in-memory uploads when S3 is not configured.
type uploadsHandler struct {
	files *storage.Memory
}

func newUploadsHandler(files *storage.Memory) *uploadsHandler {
	return &uploadsHandler{files: files}
}

func (h *uploadsHandler) Routes(r web.Router) {
	r.GET("/uploads/*", h.serve)
}

func (h *uploadsHandler) serve(c web.Context) error {
	data, contentType, ok := h.files.Object(c.Param("*"))
	if !ok {
		return web.ErrNotFound("file not found")
	}
	w := c.Response()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(data)
	return err
}
