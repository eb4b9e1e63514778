package distribution_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/internal/store"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// --- fake repository ---

type fakeRepo struct {
	mu          sync.Mutex
	pool        []*models.Agent
	assignments []*models.Assignment

	distributeErr error
	queryErr      error

	distributeCalls int
	countCalls      int
	batchCalls      int
}

func newFakeRepo(agents int) *fakeRepo {
	r := &fakeRepo{}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < agents; i++ {
		r.pool = append(r.pool, &models.Agent{
			ID:        uuid.New(),
			Name:      fmt.Sprintf("Agent %d", i),
			Email:     fmt.Sprintf("agent%d@example.com", i),
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return r
}

func (r *fakeRepo) DistributeBatch(_ context.Context, plan store.PlanFunc) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.distributeCalls++
	if r.distributeErr != nil {
		return 0, r.distributeErr
	}
	out, err := plan(r.pool)
	if err != nil {
		return 0, err
	}
	r.assignments = append(r.assignments, out...)
	return int64(len(out)), nil
}

func (r *fakeRepo) ListBatchAgentCounts(_ context.Context) ([]models.AgentCountRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countCalls++
	if r.queryErr != nil {
		return nil, r.queryErr
	}

	type key struct {
		batch string
		agent uuid.UUID
	}
	idx := make(map[key]int)
	var rows []models.AgentCountRow
	for _, a := range r.assignments {
		k := key{a.BatchID, a.AgentID}
		i, ok := idx[k]
		if !ok {
			i = len(rows)
			idx[k] = i
			rows = append(rows, models.AgentCountRow{BatchID: a.BatchID, Agent: r.ref(a.AgentID), CreatedAt: a.CreatedAt})
		}
		rows[i].Count++
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].BatchID > rows[j].BatchID })
	return rows, nil
}

func (r *fakeRepo) GetBatchAssignments(_ context.Context, batchID string) ([]*models.AssignmentWithAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	var out []*models.AssignmentWithAgent
	for _, a := range r.assignments {
		if a.BatchID == batchID {
			out = append(out, &models.AssignmentWithAgent{Assignment: *a, Agent: r.ref(a.AgentID)})
		}
	}
	return out, nil
}

func (r *fakeRepo) ref(id uuid.UUID) models.AgentRef {
	for _, a := range r.pool {
		if a.ID == id {
			return a.Ref()
		}
	}
	return models.AgentRef{ID: id}
}

func (r *fakeRepo) stored() []*models.Assignment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Assignment(nil), r.assignments...)
}

// --- fake cache ---

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

func (c *fakeCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
