package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/agentlist/internal/agent"
	"github.com/kiranshivaraju/agentlist/internal/api/response"
	"github.com/kiranshivaraju/agentlist/internal/apikey"
	"github.com/kiranshivaraju/agentlist/internal/distribution"
	"github.com/kiranshivaraju/agentlist/internal/ingest"
)

// writeError maps a service error onto the API error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *distribution.ValidationError
		ferr   agent.FieldErrors
		maxErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_FAILED",
			"Invalid file format or data", verr.Errors)
	case errors.As(err, &ferr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", ferr.Error(), []agent.FieldError(ferr))
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT",
			"Unsupported file format; upload .csv, .xlsx or .xls", nil)
	case errors.Is(err, ingest.ErrParse):
		response.Error(w, http.StatusBadRequest, "PARSE_ERROR", "Could not parse file", nil)
	case errors.Is(err, ingest.ErrFileTooLarge), errors.As(err, &maxErr):
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file is too large", nil)
	case errors.Is(err, distribution.ErrInsufficientAgents):
		response.Error(w, http.StatusUnprocessableEntity, "INSUFFICIENT_AGENTS", err.Error(), nil)
	case errors.Is(err, agent.ErrDuplicateAgent):
		response.Error(w, http.StatusConflict, "DUPLICATE_AGENT", "Agent already exists with this email", nil)
	case errors.Is(err, apikey.ErrInvalidName), errors.Is(err, apikey.ErrInvalidScope):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, distribution.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Distribution not found", nil)
	case errors.Is(err, agent.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Agent not found", nil)
	case errors.Is(err, apikey.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "API key not found", nil)
	case errors.Is(err, distribution.ErrStorage):
		slog.Error("storage failure", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to persist or read data", nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}
