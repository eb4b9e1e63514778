package distribution_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/agentlist/internal/cache"
	"github.com/kiranshivaraju/agentlist/internal/distribution"
	"github.com/kiranshivaraju/agentlist/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvBody(n int) string {
	var b strings.Builder
	b.WriteString("FirstName,Phone,Notes\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Contact %d,555%04d,note %d\n", i, i, i)
	}
	return b.String()
}

func newService(t *testing.T, repo *fakeRepo, c *fakeCache) (*distribution.Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := distribution.NewService(repo, c, distribution.Config{
		FanOut:    5,
		UploadDir: dir,
		MaxBytes:  1 << 20,
		CacheTTL:  time.Minute,
	})
	return svc, dir
}

func assertNoSpoolFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload temp files left behind")
}

// --- Upload ---

func TestUpload_DistributesAcrossFirstFive(t *testing.T) {
	repo := newFakeRepo(6)
	c := newFakeCache()
	svc, dir := newService(t, repo, c)

	res, err := svc.Upload(context.Background(), "leads.csv", strings.NewReader(csvBody(23)))
	require.NoError(t, err)

	assert.Regexp(t, batchIDPattern, res.BatchID)
	assert.Equal(t, 23, res.TotalItems)
	assert.Equal(t, 5, res.Summary.TotalAgents)
	assert.Equal(t, []int{5, 5, 5, 4, 4}, res.Summary.ItemsPerAgent)
	require.Len(t, res.Distributions, 5)
	for i, d := range res.Distributions {
		assert.Equal(t, repo.pool[i].ID, d.Agent.ID)
		assert.Equal(t, repo.pool[i].Email, d.Agent.Email)
	}

	stored := repo.stored()
	require.Len(t, stored, 23)
	for i, a := range stored {
		assert.Equal(t, fmt.Sprintf("Contact %d", i), a.FirstName)
		assert.Equal(t, fmt.Sprintf("note %d", i), a.Notes)
		assert.Equal(t, res.BatchID, a.BatchID)
		assert.NotEqual(t, repo.pool[5].ID, a.AgentID, "sixth agent must not receive items")
	}

	assert.Contains(t, c.deleted, cache.BatchListKey())
	assertNoSpoolFiles(t, dir)
}

func TestUpload_RoundTripThroughGetBatch(t *testing.T) {
	repo := newFakeRepo(5)
	svc, _ := newService(t, repo, newFakeCache())
	ctx := context.Background()

	res, err := svc.Upload(ctx, "leads.CSV", strings.NewReader(csvBody(23)))
	require.NoError(t, err)

	detail, err := svc.GetBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, 23, detail.TotalItems)
	require.Len(t, detail.Distributions, 5)

	var counts []int
	var names []string
	for i, d := range detail.Distributions {
		assert.Equal(t, repo.pool[i].ID, d.Agent.ID)
		counts = append(counts, d.Count)
		for _, it := range d.Items {
			names = append(names, it.FirstName)
		}
	}
	assert.Equal(t, []int{5, 5, 5, 4, 4}, counts)
	for i, n := range names {
		assert.Equal(t, fmt.Sprintf("Contact %d", i), n)
	}
}

func TestUpload_InsufficientAgentsPersistsNothing(t *testing.T) {
	repo := newFakeRepo(4)
	svc, dir := newService(t, repo, newFakeCache())

	_, err := svc.Upload(context.Background(), "leads.csv", strings.NewReader(csvBody(10)))
	assert.ErrorIs(t, err, distribution.ErrInsufficientAgents)
	assert.NotErrorIs(t, err, distribution.ErrStorage)
	assert.Empty(t, repo.stored())
	assertNoSpoolFiles(t, dir)
}

func TestUpload_UnsupportedFormat(t *testing.T) {
	repo := newFakeRepo(5)
	svc, dir := newService(t, repo, newFakeCache())

	_, err := svc.Upload(context.Background(), "leads.txt", strings.NewReader(csvBody(3)))
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
	assert.Zero(t, repo.distributeCalls)
	assertNoSpoolFiles(t, dir)
}

func TestUpload_ValidationFailure(t *testing.T) {
	repo := newFakeRepo(5)
	svc, dir := newService(t, repo, newFakeCache())

	body := "firstname,phone\nAda,1\n,2\nBob,\n"
	_, err := svc.Upload(context.Background(), "leads.csv", strings.NewReader(body))

	var verr *distribution.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Row 2: Missing firstname", "Row 3: Missing phone"}, verr.Errors)
	assert.Zero(t, repo.distributeCalls)
	assertNoSpoolFiles(t, dir)
}

func TestUpload_EmptyFile(t *testing.T) {
	svc, _ := newService(t, newFakeRepo(5), newFakeCache())

	for _, body := range []string{"", "firstname,phone\n", "\n\n"} {
		_, err := svc.Upload(context.Background(), "leads.csv", strings.NewReader(body))
		var verr *distribution.ValidationError
		require.ErrorAs(t, err, &verr, "body %q", body)
		assert.Equal(t, []string{"File is empty or invalid"}, verr.Errors)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	repo := newFakeRepo(5)
	dir := t.TempDir()
	svc := distribution.NewService(repo, newFakeCache(), distribution.Config{
		FanOut: 5, UploadDir: dir, MaxBytes: 16, CacheTTL: time.Minute,
	})

	_, err := svc.Upload(context.Background(), "leads.csv", strings.NewReader(csvBody(10)))
	assert.ErrorIs(t, err, ingest.ErrFileTooLarge)
	assert.Zero(t, repo.distributeCalls)
	assertNoSpoolFiles(t, dir)
}

func TestUpload_ParseError(t *testing.T) {
	svc, dir := newService(t, newFakeRepo(5), newFakeCache())

	_, err := svc.Upload(context.Background(), "leads.xlsx", strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, ingest.ErrParse)
	assertNoSpoolFiles(t, dir)
}

func TestUpload_LegacyWorkbook(t *testing.T) {
	repo := newFakeRepo(5)
	svc, dir := newService(t, repo, newFakeCache())

	f, err := os.Open(filepath.Join("..", "ingest", "testdata", "agents.xls"))
	require.NoError(t, err)
	defer f.Close()

	res, err := svc.Upload(context.Background(), "legacy.xls", f)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalItems)
	assert.Equal(t, 1, repo.distributeCalls)
	assertNoSpoolFiles(t, dir)
}

func TestUpload_StorageFailure(t *testing.T) {
	repo := newFakeRepo(5)
	repo.distributeErr = errors.New("connection reset")
	c := newFakeCache()
	svc, dir := newService(t, repo, c)

	_, err := svc.Upload(context.Background(), "leads.csv", strings.NewReader(csvBody(5)))
	assert.ErrorIs(t, err, distribution.ErrStorage)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, c.deleted, "failed uploads must not invalidate")
	assertNoSpoolFiles(t, dir)
}

func TestUpload_CustomFanOut(t *testing.T) {
	repo := newFakeRepo(3)
	svc := distribution.NewService(repo, newFakeCache(), distribution.Config{
		FanOut: 3, UploadDir: t.TempDir(), MaxBytes: 1 << 20,
	})

	res, err := svc.Upload(context.Background(), "leads.csv", strings.NewReader(csvBody(10)))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 3}, res.Summary.ItemsPerAgent)
}

// --- Queries ---

func TestListBatches_NewestFirstAndCached(t *testing.T) {
	repo := newFakeRepo(5)
	c := newFakeCache()
	svc, _ := newService(t, repo, c)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "a.csv", strings.NewReader(csvBody(5)))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := svc.Upload(ctx, "b.csv", strings.NewReader(csvBody(7)))
	require.NoError(t, err)

	batches, err := svc.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, second.BatchID, batches[0].BatchID)
	assert.Equal(t, 7, batches[0].TotalItems)
	assert.Equal(t, first.BatchID, batches[1].BatchID)
	assert.True(t, c.has(cache.BatchListKey()))

	again, err := svc.ListBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countCalls, "second call served from cache")
	assert.Equal(t, batches[0].BatchID, again[0].BatchID)

	_, err = svc.Upload(ctx, "c.csv", strings.NewReader(csvBody(5)))
	require.NoError(t, err)
	assert.False(t, c.has(cache.BatchListKey()), "upload invalidates batch list")
}

func TestListBatches_Empty(t *testing.T) {
	svc, _ := newService(t, newFakeRepo(5), newFakeCache())
	batches, err := svc.ListBatches(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, batches)
	assert.Empty(t, batches)
}

func TestListBatches_CacheFailureFallsThrough(t *testing.T) {
	repo := newFakeRepo(5)
	c := newFakeCache()
	c.getErr = errors.New("redis down")
	c.setErr = errors.New("redis down")
	svc, _ := newService(t, repo, c)

	_, err := svc.ListBatches(context.Background())
	require.NoError(t, err)
	_, err = svc.ListBatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.countCalls)
}

func TestListBatches_StorageError(t *testing.T) {
	repo := newFakeRepo(5)
	repo.queryErr = errors.New("boom")
	svc, _ := newService(t, repo, newFakeCache())

	_, err := svc.ListBatches(context.Background())
	assert.ErrorIs(t, err, distribution.ErrStorage)
}

func TestGetBatch_NotFound(t *testing.T) {
	c := newFakeCache()
	svc, _ := newService(t, newFakeRepo(5), c)

	_, err := svc.GetBatch(context.Background(), "1-abcdefabc")
	assert.ErrorIs(t, err, distribution.ErrNotFound)
	assert.False(t, c.has(cache.BatchKey("1-abcdefabc")))
}

func TestGetBatch_Cached(t *testing.T) {
	repo := newFakeRepo(5)
	svc, _ := newService(t, repo, newFakeCache())
	ctx := context.Background()

	res, err := svc.Upload(ctx, "a.csv", strings.NewReader(csvBody(6)))
	require.NoError(t, err)

	first, err := svc.GetBatch(ctx, res.BatchID)
	require.NoError(t, err)
	second, err := svc.GetBatch(ctx, res.BatchID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.batchCalls)
	assert.Equal(t, first.TotalItems, second.TotalItems)
	assert.Equal(t, first.Distributions[0].Items[0].FirstName, second.Distributions[0].Items[0].FirstName)
}

func TestGetBatch_StorageError(t *testing.T) {
	repo := newFakeRepo(5)
	repo.queryErr = errors.New("boom")
	svc, _ := newService(t, repo, newFakeCache())

	_, err := svc.GetBatch(context.Background(), "x")
	assert.ErrorIs(t, err, distribution.ErrStorage)
}

var _ distribution.Repository = (*fakeRepo)(nil)
var _ cache.Cache = (*fakeCache)(nil)
