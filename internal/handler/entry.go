package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/entryd/entryd/internal/handler/dto"
	"github.com/entryd/entryd/internal/metrics"
	"github.com/entryd/entryd/internal/middleware"
	"github.com/entryd/entryd/internal/repository"
	"github.com/entryd/entryd/internal/schema"
	"github.com/entryd/entryd/internal/service"
)

// EntryHandler handles HTTP requests for entry operations.
type EntryHandler struct {
	svc     *service.EntryService
	logger  *slog.Logger
	metrics metrics.Recorder

	listResponse   *openapi3.Schema
	createResponse *openapi3.Schema
	getResponse    *openapi3.Schema
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(svc *service.EntryService, logger *slog.Logger, recorder metrics.Recorder) *EntryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EntryHandler{
		svc:            svc,
		logger:         logger,
		metrics:        recorder,
		listResponse:   schema.DocumentList(),
		createResponse: schema.CreateResult(),
		getResponse:    schema.Document(),
	}
}

// Collection returns the name of the collection the handler serves.
func (h *EntryHandler) Collection() string {
	return h.svc.CollectionName()
}

// List handles GET {mount}/entries.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list_entries_failed", err)
		return
	}

	h.writeValidated(w, r, http.StatusOK, h.listResponse, docs)
}

// Create handles POST {mount}/entries.
// The body is either one entry or an array of entries; the response has the
// same shape.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, dto.CodePayloadTooLarge, "Request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, dto.CodeInvalidJSON, "Invalid request body")
		return
	}

	req, err := schema.DecodeCreateRequest(body)
	if err != nil {
		h.metrics.IncValidationFailure()

		var verr *schema.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   verr.Message,
				Code:    dto.CodeValidationFailed,
				Details: verr.Fields,
			})
		default:
			h.writeError(w, http.StatusBadRequest, dto.CodeInvalidJSON, "Invalid request body")
		}
		return
	}

	docs, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create_entries_failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"collection", h.Collection(),
			"persisted", len(docs),
			"submitted", len(req.Entries()),
			"error", err,
		)
		h.writeError(w, http.StatusInternalServerError, dto.CodeInternalError, "An internal error occurred")
		return
	}

	h.logger.Info("entries_created",
		"collection", h.Collection(),
		"count", len(docs),
		"batch", req.IsBatch(),
	)

	var payload any = docs
	if !req.IsBatch() {
		payload = docs[0]
	}
	h.writeValidated(w, r, http.StatusOK, h.createResponse, payload)
}

// Get handles GET {mount}/entries/{key}.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath != "" {
		// chi matched against the escaped path.
		unescaped, err := url.PathUnescape(key)
		if err != nil {
			key = ""
		} else {
			key = unescaped
		}
	}
	if key == "" {
		h.writeError(w, http.StatusBadRequest, dto.CodeMissingKey, "Entry key is required")
		return
	}

	res := h.svc.Get(r.Context(), key)
	switch res.Status {
	case repository.LookupFound:
		h.writeValidated(w, r, http.StatusOK, h.getResponse, res.Document)
	case repository.LookupNotFound:
		h.writeError(w, http.StatusNotFound, dto.CodeEntryNotFound, dto.MessageEntryNotFound)
	default:
		h.internalError(w, r, "get_entry_failed", res.Err)
	}
}

// writeValidated validates payload against the declared response schema
// before writing it. A mismatch is a server fault.
func (h *EntryHandler) writeValidated(w http.ResponseWriter, r *http.Request, status int, s *openapi3.Schema, payload any) {
	body, err := schema.ValidateResponse(s, payload)
	if err != nil {
		h.internalError(w, r, "response_validation_failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *EntryHandler) internalError(w http.ResponseWriter, r *http.Request, event string, err error) {
	h.logger.Error(event,
		"request_id", middleware.GetRequestID(r.Context()),
		"collection", h.Collection(),
		"error", err,
	)
	h.writeError(w, http.StatusInternalServerError, dto.CodeInternalError, "An internal error occurred")
}

// writeError writes an error response.
func (h *EntryHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
