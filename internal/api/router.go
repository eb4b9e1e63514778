package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/agentlist/internal/api/middleware"
	"github.com/kiranshivaraju/agentlist/internal/api/response"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	Health http.HandlerFunc

	Upload            http.HandlerFunc
	ListDistributions http.HandlerFunc
	GetDistribution   http.HandlerFunc

	ListAgents       http.HandlerFunc
	CreateAgent      http.HandlerFunc
	GetAgent         http.HandlerFunc
	UpdateAgent      http.HandlerFunc
	DeleteAgent      http.HandlerFunc
	AgentAssignments http.HandlerFunc

	CreateKey http.HandlerFunc
	ListKeys  http.HandlerFunc
	RevokeKey http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.Health))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeRead))

			r.Get("/api/v1/distributions", orNotImplemented(deps.ListDistributions))
			r.Get("/api/v1/distributions/{batchID}", orNotImplemented(deps.GetDistribution))

			r.Get("/api/v1/agents", orNotImplemented(deps.ListAgents))
			r.Get("/api/v1/agents/{agentID}", orNotImplemented(deps.GetAgent))
			r.Get("/api/v1/agents/{agentID}/assignments", orNotImplemented(deps.AgentAssignments))
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeWrite))

			r.Post("/api/v1/uploads", orNotImplemented(deps.Upload))

			r.Post("/api/v1/agents", orNotImplemented(deps.CreateAgent))
			r.Put("/api/v1/agents/{agentID}", orNotImplemented(deps.UpdateAgent))
			r.Delete("/api/v1/agents/{agentID}", orNotImplemented(deps.DeleteAgent))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAdmin))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKey))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeys))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKey))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
