package distribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

const batchSuffixLen = 9

// NewBatchID returns "<unix millis>-<9 random hex chars>". IDs sort by
// creation time as plain strings until the millisecond clock gains a digit.
func NewBatchID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:batchSuffixLen]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// BuildAssignments turns partitioned chunks into pending assignments.
// Position is the record's index in the original upload.
func BuildAssignments(batchID string, chunks []Chunk, now time.Time) []*models.Assignment {
	total := 0
	for _, c := range chunks {
		total += len(c.Records)
	}

	out := make([]*models.Assignment, 0, total)
	for _, c := range chunks {
		for _, rec := range c.Records {
			out = append(out, &models.Assignment{
				ID:        uuid.New(),
				AgentID:   c.Agent.ID,
				BatchID:   batchID,
				FirstName: rec.FirstName(),
				Phone:     rec.Phone(),
				Notes:     rec.Notes(),
				Status:    models.AssignmentStatusPending,
				Position:  len(out),
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}
	return out
}
