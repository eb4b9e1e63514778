package distribution

import (
	"fmt"

	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// Chunk is the contiguous run of records handed to one agent.
type Chunk struct {
	Agent   *models.Agent
	Records []models.Record
}

// Partition splits records across the first fanOut agents of pool. Every
// agent gets N/fanOut records and the first N%fanOut agents get one extra.
// Chunks are contiguous and keep input order, so concatenating them yields
// records unchanged. Agents that receive nothing still get an empty chunk.
func Partition(records []models.Record, pool []*models.Agent, fanOut int) ([]Chunk, error) {
	if fanOut < 1 {
		return nil, fmt.Errorf("fan-out must be at least 1, got %d", fanOut)
	}
	if len(pool) < fanOut {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientAgents, fanOut, len(pool))
	}

	base := len(records) / fanOut
	rem := len(records) % fanOut

	chunks := make([]Chunk, fanOut)
	start := 0
	for i := 0; i < fanOut; i++ {
		size := base
		if i < rem {
			size++
		}
		chunks[i] = Chunk{Agent: pool[i], Records: records[start : start+size : start+size]}
		start += size
	}
	return chunks, nil
}

// Sizes returns the record count of each chunk in order.
func Sizes(chunks []Chunk) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = len(c.Records)
	}
	return out
}
