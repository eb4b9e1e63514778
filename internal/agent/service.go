package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/internal/cache"
	"github.com/kiranshivaraju/agentlist/internal/store"
	"github.com/kiranshivaraju/agentlist/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the storage surface agent management needs.
type Repository interface {
	CreateAgent(ctx context.Context, agent *models.Agent) error
	GetAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	ListAgents(ctx context.Context) ([]*models.Agent, error)
	ListActiveAgents(ctx context.Context) ([]*models.Agent, error)
	UpdateAgent(ctx context.Context, agent *models.Agent) error
	DeleteAgent(ctx context.Context, id uuid.UUID) (int64, error)
	ListAssignmentsByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.Assignment, error)
}

type CreateParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Mobile   *string `json:"mobile"`
	IsActive *bool   `json:"is_active"`
}

// Assignments is an agent's full work list.
type Assignments struct {
	Agent       models.AgentRef      `json:"agent"`
	Assignments []*models.Assignment `json:"assignments"`
	Total       int                  `json:"total_assignments"`
}

// Service manages agents.
type Service struct {
	repo     Repository
	cache    cache.Cache
	hashCost int
}

// NewService creates a new Service.
func NewService(repo Repository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Intended for tests.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Agent, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = normalizeEmail(p.Email)
	p.Mobile = strings.TrimSpace(p.Mobile)

	var errs FieldErrors
	checkName(&errs, p.Name)
	checkEmail(&errs, p.Email)
	checkMobile(&errs, p.Mobile)
	checkPassword(&errs, p.Password)
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	a := &models.Agent{
		ID:           uuid.New(),
		Name:         p.Name,
		Email:        p.Email,
		Mobile:       p.Mobile,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateAgent(ctx, a); err != nil {
		return nil, mapStoreErr(err)
	}

	slog.Info("agent created", "agent_id", a.ID)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	a, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return a, nil
}

// List returns every agent, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Agent, error) {
	agents, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if agents == nil {
		agents = []*models.Agent{}
	}
	return agents, nil
}

// Pool returns the active agents in the order uploads fill them, oldest
// first.
func (s *Service) Pool(ctx context.Context) ([]*models.Agent, error) {
	agents, err := s.repo.ListActiveAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active agents: %w", err)
	}
	if agents == nil {
		agents = []*models.Agent{}
	}
	return agents, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Agent, error) {
	a, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	var errs FieldErrors
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
		checkName(&errs, a.Name)
	}
	if p.Email != nil {
		a.Email = normalizeEmail(*p.Email)
		checkEmail(&errs, a.Email)
	}
	if p.Mobile != nil {
		a.Mobile = strings.TrimSpace(*p.Mobile)
		checkMobile(&errs, a.Mobile)
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateAgent(ctx, a); err != nil {
		return nil, mapStoreErr(err)
	}
	s.invalidateDistributions(ctx)
	return a, nil
}

// Delete removes the agent and its assignments and returns how many
// assignments went with it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	removed, err := s.repo.DeleteAgent(ctx, id)
	if err != nil {
		return 0, mapStoreErr(err)
	}
	s.invalidateDistributions(ctx)
	slog.Info("agent deleted", "agent_id", id, "assignments_removed", removed)
	return removed, nil
}

// Assignments returns the agent's items, newest first.
func (s *Service) Assignments(ctx context.Context, id uuid.UUID) (*Assignments, error) {
	a, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	items, err := s.repo.ListAssignmentsByAgent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if items == nil {
		items = []*models.Assignment{}
	}
	return &Assignments{Agent: a.Ref(), Assignments: items, Total: len(items)}, nil
}

func (s *Service) invalidateDistributions(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cache.DistributionPrefix); err != nil {
		slog.Warn("cache invalidate failed", "prefix", cache.DistributionPrefix, "error", err)
	}
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrDuplicateKey):
		return ErrDuplicateAgent
	default:
		return fmt.Errorf("agent storage: %w", err)
	}
}
