package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/report"
	"github.com/wonny/screener/internal/s2_scores"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// ============================================================================
// Fakes
// ============================================================================

type memSource struct {
	records []*contracts.CompanyRecord
	err     error
}

func (m *memSource) Load(ctx context.Context, asOf time.Time) ([]*contracts.CompanyRecord, error) {
	return m.records, m.err
}

type fixedResolver struct {
	calls int
	live  bool
}

func (f *fixedResolver) Resolve(ctx context.Context, overrides contracts.MacroInputs, live bool) contracts.MacroInputs {
	f.calls++
	f.live = live
	return overrides
}

type memWriter struct {
	runs []*contracts.ScreenRun
	err  error
}

func (w *memWriter) Write(run *contracts.ScreenRun) (*report.Paths, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.runs = append(w.runs, run)
	return &report.Paths{ResultsCSV: "results.csv"}, nil
}

type memRunRepo struct {
	saved []*contracts.ScreenRun
}

func (m *memRunRepo) SaveRun(ctx context.Context, run *contracts.ScreenRun) error {
	m.saved = append(m.saved, run)
	return nil
}

func (m *memRunRepo) GetLatestRun(ctx context.Context) (*contracts.ScreenRun, error) {
	if len(m.saved) == 0 {
		return nil, errors.New("no runs")
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *memRunRepo) GetRun(ctx context.Context, runID string) (*contracts.ScreenRun, error) {
	for _, r := range m.saved {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

type memUniverseStore struct {
	runIDs []string
}

func (m *memUniverseStore) SaveUniverse(ctx context.Context, runID string, universe *contracts.Universe) error {
	m.runIDs = append(m.runIDs, runID)
	return nil
}

type memQualityStore struct {
	saved []*contracts.DataQualitySnapshot
}

func (m *memQualityStore) SaveSnapshot(ctx context.Context, snapshot *contracts.DataQualitySnapshot) error {
	m.saved = append(m.saved, snapshot)
	return nil
}

type countingObserver struct {
	mu        sync.Mutex
	scored    []string
	completed int
}

func (o *countingObserver) OnScore(runID string, card *contracts.ScoreCard) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scored = append(o.scored, card.Ticker)
}

func (o *countingObserver) OnComplete(run *contracts.ScreenRun) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed++
}

type runRecorder struct {
	started   int
	companies int
	err       error
}

func (r *runRecorder) ScreenStarted() { r.started++ }

func (r *runRecorder) ScreenFinished(d time.Duration, companies int, err error) {
	r.companies = companies
	r.err = err
}

// ============================================================================
// Helpers
// ============================================================================

func company(ticker, sector string, scale float64) *contracts.CompanyRecord {
	return &contracts.CompanyRecord{
		Ticker: ticker,
		Region: "US",
		Sector: sector,
		Metrics: map[contracts.Metric]float64{
			contracts.MetricRevenue:         1000 * scale,
			contracts.MetricEBIT:            200 * scale,
			contracts.MetricFCF:             150 * scale,
			contracts.MetricMarketCap:       3000,
			contracts.MetricPE:              18,
			contracts.MetricEarningsGrowth:  0.12,
			contracts.MetricDividendYield:   0.015,
			contracts.MetricInterestExpense: 10,
			contracts.MetricNetDebt:         200,
			contracts.MetricNetPPE:          600,
			contracts.MetricOperatingWC:     200,
			contracts.MetricCash:            300,
			contracts.MetricSharesChange3Y:  -0.02,
		},
		Series: map[contracts.Series][]float64{
			contracts.SeriesWeeklyReturns: {0.01, 0.02, -0.01, 0.015, 0.03, -0.02, 0.005, 0.01},
		},
	}
}

func records() []*contracts.CompanyRecord {
	return []*contracts.CompanyRecord{
		company("ACME", "Industrials", 1.0),
		company("BETA", "Utilities", 0.5),
		company("GAMMA", "Technology", 1.5),
		company("DELTA", "Healthcare", 0.8),
	}
}

func newTestScreener(t *testing.T, cfg *strategyconfig.Config, src contracts.RecordSource) (*Screener, *fixedResolver) {
	t.Helper()
	log := logger.NewNop()
	resolver := &fixedResolver{}

	s, err := NewScreener(
		cfg,
		src,
		s2_scores.NewEngine(cfg.Scores, log),
		selection.NewRanker(cfg.Selection, log),
		resolver,
		log,
	)
	require.NoError(t, err)
	return s, resolver
}

func tickersOf(cards []*contracts.ScoreCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Ticker
	}
	return out
}

// ============================================================================
// Tests
// ============================================================================

func TestScreener_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := strategyconfig.Default()
	cfg.Universe.ExcludeSectors = []string{"utilities"}

	s, resolver := newTestScreener(t, cfg, &memSource{records: records()})
	writer := &memWriter{}
	observer := &countingObserver{}
	recorder := &runRecorder{}
	s.WithReportWriter(writer).WithRecorder(recorder)
	s.AddObserver(observer)

	date := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	result, err := s.Run(context.Background(), RunConfig{Date: date, Workers: 4})
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err, "run id should be a uuid")

	assert.Len(t, result.CompletedStages, len(contracts.AllStages()))
	assert.Equal(t, []string{"ACME", "GAMMA", "DELTA"}, result.Universe.Tickers)
	assert.Equal(t, "제외 섹터 (utilities)", result.Universe.Excluded["BETA"])
	assert.Equal(t, []string{"ACME", "GAMMA", "DELTA"}, tickersOf(result.Cards))

	require.NotNil(t, result.Run)
	assert.Equal(t, date, result.Run.Date)
	assert.Equal(t, s.ConfigHash(), result.Run.ConfigHash)
	assert.Len(t, result.Run.Ranked, 3)
	assert.Equal(t, 1, result.Run.Ranked[0].Rank)

	require.Len(t, writer.runs, 1)
	assert.Equal(t, "results.csv", result.Paths.ResultsCSV)

	assert.ElementsMatch(t, []string{"ACME", "GAMMA", "DELTA"}, observer.scored)
	assert.Equal(t, 1, observer.completed)

	assert.Equal(t, 1, resolver.calls)
	assert.False(t, resolver.live)

	assert.Equal(t, 1, recorder.started)
	assert.Equal(t, 3, recorder.companies)
	assert.NoError(t, recorder.err)
}

func TestScreener_Run_DeterministicAcrossWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := strategyconfig.Default()
	date := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	var prev *RunResult
	for _, workers := range []int{1, 3, 16} {
		s, _ := newTestScreener(t, cfg, &memSource{records: records()})
		result, err := s.Run(context.Background(), RunConfig{Date: date, RunID: "fixed", Workers: workers})
		require.NoError(t, err)

		if prev != nil {
			assert.Equal(t, tickersOf(prev.Cards), tickersOf(result.Cards))
			assert.Equal(t, prev.Run.Ranked, result.Run.Ranked)
		}
		prev = result
	}
}

func TestScreener_Run_TickersFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tickers.csv")
	require.NoError(t, os.WriteFile(path, []byte("ticker,region,notes\ngamma,EU,core\nacme,,\nmissing,US,\n"), 0o644))

	s, _ := newTestScreener(t, strategyconfig.Default(), &memSource{records: records()})
	result, err := s.Run(context.Background(), RunConfig{TickersPath: path, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"GAMMA", "ACME"}, result.Universe.Tickers)
	assert.Equal(t, "레코드 없음", result.Universe.Excluded["MISSING"])
	assert.Equal(t, 3, result.Universe.TotalCount)

	// 티커 파일의 지역/메모가 비어 있는 레코드 필드를 채움
	assert.Equal(t, "US", result.Cards[0].Region)
	assert.Equal(t, "core", result.Cards[0].Notes)
}

func TestScreener_Run_MacroOverridesAndLive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "macro_overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ten_year_yield": 0.042, "wti": 75}`), 0o644))

	s, resolver := newTestScreener(t, strategyconfig.Default(), &memSource{records: records()})
	result, err := s.Run(context.Background(), RunConfig{
		MacroOverridesPath: path,
		LiveMacro:          true,
		PatentsPath:        filepath.Join(dir, "absent.csv"),
	})
	require.NoError(t, err)

	assert.True(t, resolver.live)
	require.NotNil(t, result.Run.Macro.TenYearYield)
	assert.InDelta(t, 0.042, *result.Run.Macro.TenYearYield, 1e-12)
	assert.Equal(t, contracts.MacroSourceOverride, result.Run.Macro.Sources[contracts.MacroWTI])
}

func TestScreener_Run_Persist(t *testing.T) {
	s, _ := newTestScreener(t, strategyconfig.Default(), &memSource{records: records()})
	runs := &memRunRepo{}
	universes := &memUniverseStore{}
	qualities := &memQualityStore{}
	s.WithRepositories(runs, universes).WithQualityRepository(qualities)

	result, err := s.Run(context.Background(), RunConfig{RunID: "run-1", Persist: true})
	require.NoError(t, err)

	require.Len(t, runs.saved, 1)
	assert.Equal(t, "run-1", runs.saved[0].RunID)
	assert.Equal(t, []string{"run-1"}, universes.runIDs)
	assert.Same(t, result.Run, runs.saved[0])
	require.Len(t, qualities.saved, 1)
	assert.Same(t, result.QualitySnapshot, qualities.saved[0])

	// Persist=false면 저장하지 않음
	_, err = s.Run(context.Background(), RunConfig{RunID: "run-2"})
	require.NoError(t, err)
	assert.Len(t, runs.saved, 1)
}

func TestScreener_Run_Errors(t *testing.T) {
	t.Run("source error", func(t *testing.T) {
		s, _ := newTestScreener(t, strategyconfig.Default(), &memSource{err: errors.New("disk gone")})
		recorder := &runRecorder{}
		s.WithRecorder(recorder)

		result, err := s.Run(context.Background(), RunConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "S0 failed")
		assert.Empty(t, result.CompletedStages)
		assert.Error(t, recorder.err)
	})

	t.Run("quality gate enforced", func(t *testing.T) {
		cfg := strategyconfig.Default()
		cfg.Quality.Enforce = true
		cfg.Quality.MinScore = 0.99
		cfg.Quality.Metrics = []string{"nopat"}

		s, _ := newTestScreener(t, cfg, &memSource{records: records()})
		_, err := s.Run(context.Background(), RunConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quality gate")
	})

	t.Run("missing tickers file", func(t *testing.T) {
		s, _ := newTestScreener(t, strategyconfig.Default(), &memSource{records: records()})
		_, err := s.Run(context.Background(), RunConfig{TickersPath: filepath.Join(t.TempDir(), "nope.csv")})
		require.Error(t, err)
	})

	t.Run("report writer error", func(t *testing.T) {
		s, _ := newTestScreener(t, strategyconfig.Default(), &memSource{records: records()})
		s.WithReportWriter(&memWriter{err: errors.New("read-only")})

		result, err := s.Run(context.Background(), RunConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "S4 failed")
		assert.NotNil(t, result.Run)
	})

	t.Run("canceled context", func(t *testing.T) {
		s, _ := newTestScreener(t, strategyconfig.Default(), &memSource{records: records()})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Run(ctx, RunConfig{Workers: 2})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
