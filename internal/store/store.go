package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// PlanFunc receives the active agent pool, oldest first, and returns the
// assignments to insert. Returning an error aborts the batch.
type PlanFunc func(pool []*models.Agent) ([]*models.Assignment, error)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	CreateAgent(ctx context.Context, agent *models.Agent) error
	GetAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	ListAgents(ctx context.Context) ([]*models.Agent, error)
	ListActiveAgents(ctx context.Context) ([]*models.Agent, error)
	UpdateAgent(ctx context.Context, agent *models.Agent) error
	DeleteAgent(ctx context.Context, id uuid.UUID) (int64, error)
	ListAssignmentsByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.Assignment, error)

	DistributeBatch(ctx context.Context, plan PlanFunc) (int64, error)
	ListBatchAgentCounts(ctx context.Context) ([]models.AgentCountRow, error)
	GetBatchAssignments(ctx context.Context, batchID string) ([]*models.AssignmentWithAgent, error)
}
