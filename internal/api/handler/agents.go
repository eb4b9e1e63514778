package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/internal/agent"
	"github.com/kiranshivaraju/agentlist/internal/api/response"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// AgentManager manages agents.
type AgentManager interface {
	Create(ctx context.Context, p agent.CreateParams) (*models.Agent, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	List(ctx context.Context) ([]*models.Agent, error)
	Pool(ctx context.Context) ([]*models.Agent, error)
	Update(ctx context.Context, id uuid.UUID, p agent.UpdateParams) (*models.Agent, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Assignments(ctx context.Context, id uuid.UUID) (*agent.Assignments, error)
}

// NewListAgentsHandler returns an http.HandlerFunc for GET /api/v1/agents.
// With ?active=true it returns the distribution pool, oldest first.
func NewListAgentsHandler(svc AgentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := svc.List
		if r.URL.Query().Get("active") == "true" {
			list = svc.Pool
		}
		agents, err := list(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Collection(w, agents, len(agents))
	}
}

// NewCreateAgentHandler returns an http.HandlerFunc for POST /api/v1/agents.
func NewCreateAgentHandler(svc AgentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req agent.CreateParams
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		a, err := svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Created(w, a)
	}
}

// NewGetAgentHandler returns an http.HandlerFunc for GET /api/v1/agents/{agentID}.
func NewGetAgentHandler(svc AgentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := agentID(w, r)
		if !ok {
			return
		}
		a, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, a)
	}
}

// NewUpdateAgentHandler returns an http.HandlerFunc for PUT /api/v1/agents/{agentID}.
func NewUpdateAgentHandler(svc AgentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := agentID(w, r)
		if !ok {
			return
		}
		var req agent.UpdateParams
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		a, err := svc.Update(r.Context(), id, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, a)
	}
}

// NewDeleteAgentHandler returns an http.HandlerFunc for DELETE /api/v1/agents/{agentID}.
func NewDeleteAgentHandler(svc AgentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := agentID(w, r)
		if !ok {
			return
		}
		removed, err := svc.Delete(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, map[string]any{
			"id":                  id,
			"assignments_removed": removed,
		})
	}
}

// NewAgentAssignmentsHandler returns an http.HandlerFunc for GET /api/v1/agents/{agentID}/assignments.
func NewAgentAssignmentsHandler(svc AgentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := agentID(w, r)
		if !ok {
			return
		}
		out, err := svc.Assignments(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, out)
	}
}

func agentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "agentID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "agentID must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
