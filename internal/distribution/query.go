package distribution

import (
	"sort"

	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// SummarizeBatches folds per-(batch, agent) counts into one summary per
// batch, newest batch first. Agents keep the order rows arrive in.
// Returns an empty slice (never nil) for no rows.
func SummarizeBatches(rows []models.AgentCountRow) []*models.BatchSummary {
	byID := make(map[string]*models.BatchSummary)
	out := []*models.BatchSummary{}

	for _, r := range rows {
		b, ok := byID[r.BatchID]
		if !ok {
			b = &models.BatchSummary{
				BatchID:       r.BatchID,
				Distributions: []models.AgentCount{},
				CreatedAt:     r.CreatedAt,
			}
			byID[r.BatchID] = b
			out = append(out, b)
		}
		b.TotalItems += r.Count
		b.Distributions = append(b.Distributions, models.AgentCount{Agent: r.Agent, Count: r.Count})
		if r.CreatedAt.Before(b.CreatedAt) {
			b.CreatedAt = r.CreatedAt
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BatchID > out[j].BatchID
	})
	return out
}

// GroupBatch groups a batch's items by agent in order of first appearance.
// Returns nil when there are no items.
func GroupBatch(batchID string, items []*models.AssignmentWithAgent) *models.BatchDetail {
	if len(items) == 0 {
		return nil
	}

	detail := &models.BatchDetail{BatchID: batchID, TotalItems: len(items)}
	groups := make(map[string]*models.AgentItems)
	for _, it := range items {
		key := it.AgentID.String()
		g, ok := groups[key]
		if !ok {
			g = &models.AgentItems{Agent: it.Agent, Items: []*models.Assignment{}}
			groups[key] = g
			detail.Distributions = append(detail.Distributions, g)
		}
		a := it.Assignment
		g.Items = append(g.Items, &a)
		g.Count++
	}
	return detail
}
