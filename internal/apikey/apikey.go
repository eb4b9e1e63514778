package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/internal/store"
	"github.com/kiranshivaraju/agentlist/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	// KeyPrefix starts every raw key.
	KeyPrefix = "al_"
	// LookupLen is how many leading characters of a raw key are stored in
	// clear for lookup.
	LookupLen   = 8
	randomBytes = 16
)

var (
	ErrNotFound     = errors.New("api key not found")
	ErrInvalidName  = errors.New("api key name is required")
	ErrInvalidScope = errors.New("invalid api key scope")
)

var validScopes = map[string]bool{
	models.ScopeRead:  true,
	models.ScopeWrite: true,
	models.ScopeAdmin: true,
}

// Repository is the storage surface key management needs.
type Repository interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// Generate returns a new raw key with its lookup prefix and bcrypt hash.
func Generate(cost int) (raw, prefix, hash string, err error) {
	b := make([]byte, randomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", fmt.Errorf("read random: %w", err)
	}
	raw = KeyPrefix + hex.EncodeToString(b)
	h, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", "", "", fmt.Errorf("hash key: %w", err)
	}
	return raw, raw[:LookupLen], string(h), nil
}

// Service issues and revokes API keys.
type Service struct {
	repo Repository
	cost int
}

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Intended for tests.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

// Create stores a new key and returns it with the raw secret, which is
// never retrievable again.
func (s *Service) Create(ctx context.Context, name string, scopes []string) (*models.APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", ErrInvalidName
	}
	if len(scopes) == 0 {
		scopes = []string{models.ScopeRead}
	}
	for _, sc := range scopes {
		if !validScopes[sc] {
			return nil, "", fmt.Errorf("%w: %q", ErrInvalidScope, sc)
		}
	}

	raw, prefix, hash, err := Generate(s.cost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   hash,
		KeyPrefix: prefix,
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return nil, "", fmt.Errorf("create api key: %w", err)
	}

	slog.Info("api key created", "key_id", key.ID, "key_prefix", prefix, "scopes", scopes)
	return key, raw, nil
}

func (s *Service) List(ctx context.Context) ([]*models.APIKey, error) {
	keys, err := s.repo.ListAPIKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}
	return keys, nil
}

func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.RevokeAPIKey(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("revoke api key: %w", err)
	}
	slog.Info("api key revoked", "key_id", id)
	return nil
}
