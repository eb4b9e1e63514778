package models

import "time"

// AgentCount is the number of items one agent received in a batch.
type AgentCount struct {
	Agent AgentRef `json:"agent"`
	Count int      `json:"count"`
}

// BatchSummary describes one upload batch without its items.
type BatchSummary struct {
	BatchID       string       `json:"batch_id"`
	TotalItems    int          `json:"total_items"`
	Distributions []AgentCount `json:"distributions"`
	CreatedAt     time.Time    `json:"created_at"`
}

// AgentItems is one agent's share of a batch.
type AgentItems struct {
	Agent AgentRef      `json:"agent"`
	Count int           `json:"count"`
	Items []*Assignment `json:"items"`
}

// BatchDetail is a batch with every item grouped by agent.
type BatchDetail struct {
	BatchID       string        `json:"batch_id"`
	TotalItems    int           `json:"total_items"`
	Distributions []*AgentItems `json:"distributions"`
}

// AgentCountRow is a per-(batch, agent) aggregate as read from storage.
type AgentCountRow struct {
	BatchID   string
	Agent     AgentRef
	Count     int
	CreatedAt time.Time
}
