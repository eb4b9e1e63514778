package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

const assignmentColumns = `id, agent_id, batch_id, first_name, phone, notes, status, position, created_at, updated_at`

var assignmentCopyColumns = []string{
	"id", "agent_id", "batch_id", "first_name", "phone", "notes", "status", "position", "created_at", "updated_at",
}

// DistributeBatch reads the active pool and inserts the planned assignments
// in a single transaction. Pool rows are locked FOR SHARE so an agent cannot
// be deleted or deactivated between planning and insert. If plan fails
// nothing is written.
func (s *PostgresStore) DistributeBatch(ctx context.Context, plan PlanFunc) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin distribution: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE is_active ORDER BY created_at ASC, id ASC FOR SHARE`)
	if err != nil {
		return 0, fmt.Errorf("lock agent pool: %w", err)
	}
	pool, err := collectAgents(rows)
	if err != nil {
		return 0, fmt.Errorf("read agent pool: %w", err)
	}

	assignments, err := plan(pool)
	if err != nil {
		return 0, err
	}

	var n int64
	if len(assignments) > 0 {
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"assignments"}, assignmentCopyColumns,
			pgx.CopyFromSlice(len(assignments), func(i int) ([]any, error) {
				a := assignments[i]
				return []any{a.ID, a.AgentID, a.BatchID, a.FirstName, a.Phone, a.Notes,
					a.Status, a.Position, a.CreatedAt, a.UpdatedAt}, nil
			}))
		if err != nil {
			return 0, fmt.Errorf("insert assignments: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit distribution: %w", err)
	}
	return n, nil
}

// ListBatchAgentCounts returns one row per (batch, agent), newest batch first
// and agents in the order they received their first item.
func (s *PostgresStore) ListBatchAgentCounts(ctx context.Context) ([]models.AgentCountRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.batch_id, ag.id, ag.name, ag.email, COUNT(*), MIN(a.created_at)
		 FROM assignments a JOIN agents ag ON ag.id = a.agent_id
		 GROUP BY a.batch_id, ag.id, ag.name, ag.email
		 ORDER BY a.batch_id DESC, MIN(a.position) ASC`)
	if err != nil {
		return nil, fmt.Errorf("list batch counts: %w", err)
	}
	defer rows.Close()

	var out []models.AgentCountRow
	for rows.Next() {
		var r models.AgentCountRow
		if err := rows.Scan(&r.BatchID, &r.Agent.ID, &r.Agent.Name, &r.Agent.Email,
			&r.Count, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch count: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetBatchAssignments returns every item of a batch in creation order.
// An unknown batch yields an empty slice.
func (s *PostgresStore) GetBatchAssignments(ctx context.Context, batchID string) ([]*models.AssignmentWithAgent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.agent_id, a.batch_id, a.first_name, a.phone, a.notes, a.status, a.position,
		        a.created_at, a.updated_at, ag.name, ag.email
		 FROM assignments a JOIN agents ag ON ag.id = a.agent_id
		 WHERE a.batch_id = $1
		 ORDER BY a.created_at ASC, a.position ASC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("get batch assignments: %w", err)
	}
	defer rows.Close()

	var out []*models.AssignmentWithAgent
	for rows.Next() {
		var w models.AssignmentWithAgent
		a := &w.Assignment
		if err := rows.Scan(&a.ID, &a.AgentID, &a.BatchID, &a.FirstName, &a.Phone, &a.Notes,
			&a.Status, &a.Position, &a.CreatedAt, &a.UpdatedAt, &w.Agent.Name, &w.Agent.Email); err != nil {
			return nil, fmt.Errorf("scan batch assignment: %w", err)
		}
		w.Agent.ID = a.AgentID
		out = append(out, &w)
	}
	return out, rows.Err()
}

// ListAssignmentsByAgent returns the agent's items, newest first.
func (s *PostgresStore) ListAssignmentsByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.Assignment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE agent_id = $1
		 ORDER BY created_at DESC, batch_id DESC, position ASC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list agent assignments: %w", err)
	}
	defer rows.Close()

	var out []*models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.AgentID, &a.BatchID, &a.FirstName, &a.Phone, &a.Notes,
			&a.Status, &a.Position, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
