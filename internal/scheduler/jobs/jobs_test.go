package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/pipeline"
	"github.com/wonny/screener/internal/s0_data/collector"
	"github.com/wonny/screener/pkg/logger"
)

type fakeRunner struct {
	got pipeline.RunConfig
	err error
}

func (f *fakeRunner) Run(ctx context.Context, cfg pipeline.RunConfig) (*pipeline.RunResult, error) {
	f.got = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.RunResult{RunID: "r1", Run: &contracts.ScreenRun{RunID: "r1"}}, nil
}

func TestWeeklyScreenJob(t *testing.T) {
	runner := &fakeRunner{}
	template := pipeline.RunConfig{RunID: "stale", Workers: 4, Persist: true}
	job := NewWeeklyScreenJob(runner, template, logger.NewNop())

	assert.Equal(t, "weekly_screen", job.Name())
	assert.Equal(t, "0 0 18 * * 5", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, runner.got.RunID, "each run gets a fresh id")
	assert.False(t, runner.got.Date.IsZero())
	assert.Equal(t, 4, runner.got.Workers)
	assert.True(t, runner.got.Persist)

	runner.err = errors.New("S0 failed")
	assert.Error(t, job.Run(context.Background()))
}

type fakeSource struct {
	records []*contracts.CompanyRecord
	err     error
}

func (f *fakeSource) Load(ctx context.Context, asOf time.Time) ([]*contracts.CompanyRecord, error) {
	return f.records, f.err
}

type fakeEnricher struct {
	got collector.Config
}

func (f *fakeEnricher) EnrichAll(ctx context.Context, records []*contracts.CompanyRecord, cfg collector.Config) ([]*contracts.CompanyRecord, []collector.FetchResult, error) {
	f.got = cfg
	results := make([]collector.FetchResult, len(records))
	for i, r := range records {
		results[i] = collector.FetchResult{Ticker: r.Ticker, Filled: 2}
	}
	return records, results, nil
}

func TestDataCollectionJob(t *testing.T) {
	src := &fakeSource{records: []*contracts.CompanyRecord{{Ticker: "ACME"}, {Ticker: "BETA"}}}
	enricher := &fakeEnricher{}
	job := NewDataCollectionJob(src, enricher, collector.Config{Workers: 3, Persist: true}, logger.NewNop())

	assert.Equal(t, "data_collection", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 3, enricher.got.Workers)
	assert.True(t, enricher.got.Persist)

	src.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}

type fakePruner struct {
	cutoff time.Time
	count  int64
	err    error
}

func (f *fakePruner) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.count, f.err
}

func TestRunRetentionJob(t *testing.T) {
	pruner := &fakePruner{count: 3}
	job := NewRunRetentionJob(pruner, 90*24*time.Hour, logger.NewNop())
	now := time.Date(2026, 4, 10, 3, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-90*24*time.Hour), pruner.cutoff)

	pruner.err = errors.New("locked")
	assert.Error(t, job.Run(context.Background()))
}

type fakeCleaner struct{ removed int }

func (f *fakeCleaner) CleanStale() int { return f.removed }

func TestCacheCleanupJob(t *testing.T) {
	job := NewCacheCleanupJob(&fakeCleaner{removed: 2}, logger.NewNop())

	assert.Equal(t, "cache_cleanup", job.Name())
	assert.Equal(t, "0 */30 * * * *", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))
}
