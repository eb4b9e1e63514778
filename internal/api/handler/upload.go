package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/agentlist/internal/api/middleware"
	"github.com/kiranshivaraju/agentlist/internal/api/response"
	"github.com/kiranshivaraju/agentlist/internal/distribution"
)

// multipartOverhead is slack for multipart headers and boundaries on top of
// the file size limit.
const multipartOverhead = 64 << 10

// Uploader runs the upload pipeline.
type Uploader interface {
	Upload(ctx context.Context, filename string, src io.Reader) (*distribution.UploadResult, error)
}

// NewUploadHandler returns an http.HandlerFunc for POST /api/v1/uploads.
// The file is read from the multipart field "file" and streamed to the
// pipeline without buffering the whole body in memory.
func NewUploadHandler(svc Uploader, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

		mr, err := r.MultipartReader()
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Expected a multipart/form-data body", nil)
			return
		}

		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "No file uploaded", nil)
				return
			}
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					writeError(w, r, err)
					return
				}
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Malformed multipart body", nil)
				return
			}
			if part.FormName() != "file" {
				part.Close()
				continue
			}

			result, err := svc.Upload(r.Context(), part.FileName(), part)
			part.Close()
			if err != nil {
				writeError(w, r, err)
				return
			}
			keyID, _ := mw.GetKeyID(r)
			slog.Info("upload distributed",
				"key_id", keyID,
				"request_id", middleware.GetReqID(r.Context()),
				"batch_id", result.BatchID,
				"total_items", result.TotalItems,
			)
			response.Created(w, result)
			return
		}
	}
}
