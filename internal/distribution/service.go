package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/agentlist/internal/cache"
	"github.com/kiranshivaraju/agentlist/internal/ingest"
	"github.com/kiranshivaraju/agentlist/internal/store"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// Repository is the storage surface the distribution pipeline needs.
type Repository interface {
	DistributeBatch(ctx context.Context, plan store.PlanFunc) (int64, error)
	ListBatchAgentCounts(ctx context.Context) ([]models.AgentCountRow, error)
	GetBatchAssignments(ctx context.Context, batchID string) ([]*models.AssignmentWithAgent, error)
}

// Config tunes the pipeline.
type Config struct {
	FanOut    int
	UploadDir string
	MaxBytes  int64
	CacheTTL  time.Duration
}

// Summary repeats the per-agent counts of an upload in compact form.
type Summary struct {
	TotalAgents   int   `json:"total_agents"`
	ItemsPerAgent []int `json:"items_per_agent"`
}

// UploadResult is returned after a batch has been committed.
type UploadResult struct {
	BatchID       string              `json:"batch_id"`
	TotalItems    int                 `json:"total_items"`
	Distributions []models.AgentCount `json:"distributions"`
	Summary       Summary             `json:"summary"`
}

// Service runs the upload pipeline and answers distribution queries.
type Service struct {
	repo  Repository
	cache cache.Cache
	cfg   Config
	now   func() time.Time
}

// NewService creates a new Service.
func NewService(repo Repository, c cache.Cache, cfg Config) *Service {
	return &Service{
		repo:  repo,
		cache: c,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upload reads an uploaded file, validates it, and distributes its records
// across the active agent pool as one atomic batch.
func (s *Service) Upload(ctx context.Context, filename string, src io.Reader) (*UploadResult, error) {
	started := s.now()

	format, err := ingest.DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	path, cleanup, err := ingest.Spool(s.cfg.UploadDir, "upload-*."+string(format), src, s.cfg.MaxBytes)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	records, err := ingest.ReadFile(path, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(records).Err(); err != nil {
		return nil, err
	}

	now := s.now()
	batchID := NewBatchID(now)

	var chunks []Chunk
	_, err = s.repo.DistributeBatch(ctx, func(pool []*models.Agent) ([]*models.Assignment, error) {
		var perr error
		chunks, perr = Partition(records, pool, s.cfg.FanOut)
		if perr != nil {
			return nil, perr
		}
		return BuildAssignments(batchID, chunks, now), nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientAgents) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.invalidate(ctx, cache.BatchListKey())

	result := &UploadResult{
		BatchID:       batchID,
		TotalItems:    len(records),
		Distributions: make([]models.AgentCount, len(chunks)),
		Summary:       Summary{TotalAgents: len(chunks), ItemsPerAgent: Sizes(chunks)},
	}
	for i, c := range chunks {
		result.Distributions[i] = models.AgentCount{Agent: c.Agent.Ref(), Count: len(c.Records)}
	}

	slog.Info("batch distributed",
		"batch_id", batchID,
		"filename", filename,
		"format", string(format),
		"items", len(records),
		"agents", len(chunks),
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)
	return result, nil
}

// ListBatches returns every batch with per-agent counts, newest first.
func (s *Service) ListBatches(ctx context.Context) ([]*models.BatchSummary, error) {
	key := cache.BatchListKey()
	var cached []*models.BatchSummary
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.repo.ListBatchAgentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	out := SummarizeBatches(rows)
	s.remember(ctx, key, out)
	return out, nil
}

// GetBatch returns one batch with its items grouped by agent.
func (s *Service) GetBatch(ctx context.Context, batchID string) (*models.BatchDetail, error) {
	key := cache.BatchKey(batchID)
	var cached models.BatchDetail
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	items, err := s.repo.GetBatchAssignments(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	detail := GroupBatch(batchID, items)
	if detail == nil {
		return nil, ErrNotFound
	}
	s.remember(ctx, key, detail)
	return detail, nil
}

// lookup decodes a cached value into dst. Cache failures count as a miss.
func (s *Service) lookup(ctx context.Context, key string, dst any) bool {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Service) remember(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.Warn("cache invalidate failed", "key", key, "error", err)
	}
}
