package distribution_test

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/internal/distribution"
	"github.com/kiranshivaraju/agentlist/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{
			models.FieldFirstName: fmt.Sprintf("Contact %d", i),
			models.FieldPhone:     fmt.Sprintf("555%04d", i),
			models.FieldNotes:     "",
		}
	}
	return out
}

func makePool(n int) []*models.Agent {
	return newFakeRepo(n).pool
}

// --- Validate ---

func TestValidate_Empty(t *testing.T) {
	res := distribution.Validate(nil)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"File is empty or invalid"}, res.Errors)

	var verr *distribution.ValidationError
	require.ErrorAs(t, res.Err(), &verr)
	assert.Equal(t, res.Errors, verr.Errors)
}

func TestValidate_AllPresent(t *testing.T) {
	res := distribution.Validate(makeRecords(3))
	assert.True(t, res.IsValid)
	assert.NotNil(t, res.Errors)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidate_ReportsRowsThenFields(t *testing.T) {
	records := []models.Record{
		{"firstname": "Ada", "phone": "1"},
		{"firstname": "", "phone": ""},
		{"firstname": "Bob"},
		{"phone": "3", "notes": "no name"},
	}

	res := distribution.Validate(records)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		"Row 2: Missing firstname",
		"Row 2: Missing phone",
		"Row 3: Missing phone",
		"Row 4: Missing firstname",
	}, res.Errors)
}

func TestValidate_WhitespaceOnlyIsMissing(t *testing.T) {
	res := distribution.Validate([]models.Record{
		{"firstname": "A", "phone": "   "},
		{"firstname": "\t", "phone": "2"},
	})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"Row 1: Missing phone", "Row 2: Missing firstname"}, res.Errors)
}

func TestValidate_NotesOptional(t *testing.T) {
	res := distribution.Validate([]models.Record{{"firstname": "Ada", "phone": "1"}})
	assert.True(t, res.IsValid)
}

// --- Partition ---

func TestPartition_SizingLaw(t *testing.T) {
	for _, fanOut := range []int{1, 2, 3, 5, 7} {
		pool := makePool(fanOut + 2)
		for n := 0; n <= 40; n++ {
			t.Run(fmt.Sprintf("fan%d/n%d", fanOut, n), func(t *testing.T) {
				records := makeRecords(n)
				chunks, err := distribution.Partition(records, pool, fanOut)
				require.NoError(t, err)
				require.Len(t, chunks, fanOut)

				base, rem := n/fanOut, n%fanOut
				var joined []models.Record
				for i, c := range chunks {
					want := base
					if i < rem {
						want++
					}
					assert.Len(t, c.Records, want, "chunk %d", i)
					assert.Same(t, pool[i], c.Agent)
					joined = append(joined, c.Records...)
				}
				if n > 0 {
					if diff := cmp.Diff(records, joined); diff != "" {
						t.Errorf("chunks do not reproduce input (-want +got):\n%s", diff)
					}
				}
			})
		}
	}
}

func TestPartition_TwentyThreeAcrossFive(t *testing.T) {
	chunks, err := distribution.Partition(makeRecords(23), makePool(5), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5, 5, 4, 4}, distribution.Sizes(chunks))
}

func TestPartition_FewerRecordsThanAgents(t *testing.T) {
	chunks, err := distribution.Partition(makeRecords(3), makePool(5), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 0, 0}, distribution.Sizes(chunks))
}

func TestPartition_UsesFirstAgentsOnly(t *testing.T) {
	pool := makePool(8)
	chunks, err := distribution.Partition(makeRecords(10), pool, 5)
	require.NoError(t, err)
	for i, c := range chunks {
		assert.Equal(t, pool[i].ID, c.Agent.ID)
	}
}

func TestPartition_InsufficientAgents(t *testing.T) {
	_, err := distribution.Partition(makeRecords(10), makePool(4), 5)
	assert.ErrorIs(t, err, distribution.ErrInsufficientAgents)
	assert.Contains(t, err.Error(), "need 5, have 4")
}

func TestPartition_InvalidFanOut(t *testing.T) {
	_, err := distribution.Partition(makeRecords(1), makePool(1), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, distribution.ErrInsufficientAgents)
}

func TestPartition_ChunksDoNotAlias(t *testing.T) {
	records := makeRecords(4)
	chunks, err := distribution.Partition(records, makePool(2), 2)
	require.NoError(t, err)

	chunks[0].Records = append(chunks[0].Records, models.Record{"firstname": "extra"})
	assert.Equal(t, "Contact 2", records[2].FirstName())
}

// --- Batch IDs and assignments ---

var batchIDPattern = regexp.MustCompile(`^\d+-[0-9a-f]{9}$`)

func TestNewBatchID(t *testing.T) {
	now := time.UnixMilli(1760000000123)
	a := distribution.NewBatchID(now)
	b := distribution.NewBatchID(now)

	assert.Regexp(t, batchIDPattern, a)
	assert.Equal(t, "1760000000123-", a[:14])
	assert.NotEqual(t, a, b)
}

func TestNewBatchID_SortsByTime(t *testing.T) {
	earlier := distribution.NewBatchID(time.UnixMilli(1760000000000))
	later := distribution.NewBatchID(time.UnixMilli(1760000000001))
	assert.Greater(t, later, earlier)
}

func TestBuildAssignments(t *testing.T) {
	pool := makePool(3)
	records := makeRecords(7)
	records[4][models.FieldNotes] = "call after 5"
	chunks, err := distribution.Partition(records, pool, 3)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := distribution.BuildAssignments("b-1", chunks, now)
	require.Len(t, out, 7)

	wantAgents := []int{0, 0, 0, 1, 1, 2, 2}
	for i, a := range out {
		assert.Equal(t, i, a.Position)
		assert.Equal(t, "b-1", a.BatchID)
		assert.Equal(t, models.AssignmentStatusPending, a.Status)
		assert.Equal(t, records[i].FirstName(), a.FirstName)
		assert.Equal(t, records[i].Phone(), a.Phone)
		assert.Equal(t, pool[wantAgents[i]].ID, a.AgentID)
		assert.Equal(t, now, a.CreatedAt)
		assert.NotEqual(t, uuid.Nil, a.ID)
	}
	assert.Equal(t, "call after 5", out[4].Notes)
	assert.Equal(t, "", out[0].Notes)
}

// --- Query grouping ---

func TestSummarizeBatches(t *testing.T) {
	a, b := makePool(2)[0].Ref(), makePool(2)[1].Ref()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []models.AgentCountRow{
		{BatchID: "100-aaaaaaaaa", Agent: a, Count: 2, CreatedAt: t0.Add(time.Second)},
		{BatchID: "100-aaaaaaaaa", Agent: b, Count: 1, CreatedAt: t0},
		{BatchID: "200-bbbbbbbbb", Agent: b, Count: 4, CreatedAt: t0.Add(time.Hour)},
	}

	got := distribution.SummarizeBatches(rows)
	require.Len(t, got, 2)

	assert.Equal(t, "200-bbbbbbbbb", got[0].BatchID)
	assert.Equal(t, 4, got[0].TotalItems)

	assert.Equal(t, "100-aaaaaaaaa", got[1].BatchID)
	assert.Equal(t, 3, got[1].TotalItems)
	assert.Equal(t, t0, got[1].CreatedAt)
	assert.Equal(t, []models.AgentCount{{Agent: a, Count: 2}, {Agent: b, Count: 1}}, got[1].Distributions)
}

func TestSummarizeBatches_EmptyIsNotNil(t *testing.T) {
	got := distribution.SummarizeBatches(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroupBatch_FirstAppearanceOrder(t *testing.T) {
	pool := makePool(2)
	item := func(agent *models.Agent, pos int) *models.AssignmentWithAgent {
		return &models.AssignmentWithAgent{
			Assignment: models.Assignment{ID: uuid.New(), AgentID: agent.ID, Position: pos},
			Agent:      agent.Ref(),
		}
	}
	items := []*models.AssignmentWithAgent{
		item(pool[1], 0), item(pool[0], 1), item(pool[1], 2),
	}

	got := distribution.GroupBatch("b", items)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.TotalItems)
	require.Len(t, got.Distributions, 2)
	assert.Equal(t, pool[1].ID, got.Distributions[0].Agent.ID)
	assert.Equal(t, 2, got.Distributions[0].Count)
	assert.Equal(t, 0, got.Distributions[0].Items[0].Position)
	assert.Equal(t, 2, got.Distributions[0].Items[1].Position)
	assert.Equal(t, pool[0].ID, got.Distributions[1].Agent.ID)
}

func TestGroupBatch_Empty(t *testing.T) {
	assert.Nil(t, distribution.GroupBatch("missing", nil))
}
