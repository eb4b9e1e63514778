package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/internal/api/response"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// KeyManager issues, lists and revokes API keys.
type KeyManager interface {
	Create(ctx context.Context, name string, scopes []string) (*models.APIKey, string, error)
	List(ctx context.Context) ([]*models.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

type createdKey struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/admin/keys.
func NewCreateKeyHandler(svc KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string   `json:"name"`
			Scopes []string `json:"scopes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		key, raw, err := svc.Create(r.Context(), req.Name, req.Scopes)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// The raw key is only ever returned here.
		response.Created(w, createdKey{
			ID:        key.ID,
			Name:      key.Name,
			Key:       raw,
			KeyPrefix: key.KeyPrefix,
			Scopes:    key.Scopes,
			CreatedAt: key.CreatedAt,
		})
	}
}

// NewListKeysHandler returns an http.HandlerFunc for GET /api/v1/admin/keys.
func NewListKeysHandler(svc KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Collection(w, keys, len(keys))
	}
}

// NewRevokeKeyHandler returns an http.HandlerFunc for DELETE /api/v1/admin/keys/{keyID}.
func NewRevokeKeyHandler(svc KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "keyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "keyID must be a valid UUID", nil)
			return
		}
		if err := svc.Revoke(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, map[string]any{"id": id, "revoked": true})
	}
}
