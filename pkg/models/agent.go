package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a sales agent that can receive distributed list items.
// Only active agents take part in a distribution.
type Agent struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Name         string    `db:"name"          json:"name"`
	Email        string    `db:"email"         json:"email"`
	Mobile       string    `db:"mobile"        json:"mobile"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active"     json:"is_active"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// AgentRef is the short agent form embedded in distribution responses.
type AgentRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Ref returns the short form of the agent.
func (a *Agent) Ref() AgentRef {
	return AgentRef{ID: a.ID, Name: a.Name, Email: a.Email}
}
