package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/agentlist/internal/api/response"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// DistributionQuerier answers read-only distribution queries.
type DistributionQuerier interface {
	ListBatches(ctx context.Context) ([]*models.BatchSummary, error)
	GetBatch(ctx context.Context, batchID string) (*models.BatchDetail, error)
}

// NewListDistributionsHandler returns an http.HandlerFunc for GET /api/v1/distributions.
func NewListDistributionsHandler(q DistributionQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := q.ListBatches(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Collection(w, batches, len(batches))
	}
}

// NewGetDistributionHandler returns an http.HandlerFunc for GET /api/v1/distributions/{batchID}.
func NewGetDistributionHandler(q DistributionQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID := chi.URLParam(r, "batchID")
		if batchID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "batchID is required", nil)
			return
		}

		detail, err := q.GetBatch(r.Context(), batchID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, detail)
	}
}
