// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/entryd/entryd/internal/handler/dto"
)

// Version is the service version reported by GET /.
const Version = "1.0.0"

// Handler serves the routes outside the entry mount path.
type Handler struct {
	info dto.ServiceInfo
}

// New creates a new Handler instance.
func New(collection, mountPath string) *Handler {
	return &Handler{
		info: dto.ServiceInfo{
			Service:    "entryd",
			Version:    Version,
			Collection: collection,
			MountPath:  mountPath,
			Docs:       "/openapi.json",
		},
	}
}

// Info describes the running service.
// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "resource not found",
	}
	writeJSON(w, http.StatusNotFound, response)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "method not allowed",
	}
	writeJSON(w, http.StatusMethodNotAllowed, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("write_json_failed", "error", err)
	}
}
