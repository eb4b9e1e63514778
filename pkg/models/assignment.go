package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AssignmentStatusPending    = "pending"
	AssignmentStatusInProgress = "in-progress"
	AssignmentStatusCompleted  = "completed"
)

// Assignment is one uploaded row handed to exactly one agent.
// AgentID never changes after creation; rows are removed with their agent.
type Assignment struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	AgentID   uuid.UUID `db:"agent_id"   json:"agent_id"`
	BatchID   string    `db:"batch_id"   json:"batch_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	Phone     string    `db:"phone"      json:"phone"`
	Notes     string    `db:"notes"      json:"notes"`
	Status    string    `db:"status"     json:"status"`
	Position  int       `db:"position"   json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentWithAgent is an assignment joined with its owning agent.
type AssignmentWithAgent struct {
	Assignment
	Agent AgentRef `json:"agent"`
}
