package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/report"
	"github.com/wonny/screener/internal/s0_data"
	"github.com/wonny/screener/internal/s0_data/quality"
	"github.com/wonny/screener/internal/s1_universe"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// MacroResolver resolves the Soros macro inputs of a run
type MacroResolver interface {
	Resolve(ctx context.Context, overrides contracts.MacroInputs, live bool) contracts.MacroInputs
}

// ReportWriter writes the report files of a run
type ReportWriter interface {
	Write(run *contracts.ScreenRun) (*report.Paths, error)
}

// UniverseStore persists the universe of a run
type UniverseStore interface {
	SaveUniverse(ctx context.Context, runID string, universe *contracts.Universe) error
}

// QualityStore persists the S0 quality snapshot
type QualityStore interface {
	SaveSnapshot(ctx context.Context, snapshot *contracts.DataQualitySnapshot) error
}

// RunRecorder receives run level metrics
type RunRecorder interface {
	ScreenStarted()
	ScreenFinished(duration time.Duration, companies int, err error)
}

// Observer is notified as companies are scored (websocket stream)
type Observer interface {
	OnScore(runID string, card *contracts.ScoreCard)
	OnComplete(run *contracts.ScreenRun)
}

// Screener coordinates the S0 → S4 screening pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Screener struct {
	cfg        *strategyconfig.Config
	configHash string

	source   contracts.RecordSource
	engine   contracts.ScoreEngine
	ranker   contracts.Ranker
	resolver MacroResolver

	// optional
	writer       ReportWriter
	runRepo      contracts.ScoreRepository
	universeRepo UniverseStore
	qualityRepo  QualityStore
	recorder     RunRecorder
	observers    []Observer

	logger *logger.Logger
}

// RunConfig holds the inputs of one pipeline run
type RunConfig struct {
	Date               time.Time
	RunID              string // 비어 있으면 UUID 생성
	TickersPath        string // 비어 있으면 레코드 순서
	PatentsPath        string // 없으면 IP 부스트 미적용
	MacroOverridesPath string
	LiveMacro          bool
	Workers            int
	Persist            bool // 실행 결과 DB 저장
	SkipReports        bool
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Date            time.Time
	CompletedStages []string
	QualitySnapshot *contracts.DataQualitySnapshot
	Universe        *contracts.Universe
	Cards           []*contracts.ScoreCard
	Run             *contracts.ScreenRun
	Paths           *report.Paths
	Duration        time.Duration
}

// NewScreener creates a pipeline over a record source
func NewScreener(
	cfg *strategyconfig.Config,
	source contracts.RecordSource,
	engine contracts.ScoreEngine,
	ranker contracts.Ranker,
	resolver MacroResolver,
	log *logger.Logger,
) (*Screener, error) {
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	return &Screener{
		cfg:        cfg,
		configHash: hash,
		source:     source,
		engine:     engine,
		ranker:     ranker,
		resolver:   resolver,
		logger:     log.WithField("module", "pipeline"),
	}, nil
}

// WithReportWriter enables report files
func (s *Screener) WithReportWriter(w ReportWriter) *Screener {
	s.writer = w
	return s
}

// WithRepositories enables persistence of runs and universes
func (s *Screener) WithRepositories(runs contracts.ScoreRepository, universes UniverseStore) *Screener {
	s.runRepo = runs
	s.universeRepo = universes
	return s
}

// WithQualityRepository enables persistence of quality snapshots
func (s *Screener) WithQualityRepository(q QualityStore) *Screener {
	s.qualityRepo = q
	return s
}

// WithRecorder sets the run metrics recorder
func (s *Screener) WithRecorder(r RunRecorder) *Screener {
	s.recorder = r
	return s
}

// AddObserver registers a score observer
func (s *Screener) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// ConfigHash returns the hash of the strategy config
func (s *Screener) ConfigHash() string {
	return s.configHash
}

// Run executes the complete pipeline
// S0 → S1 → S2 → S3 → S4
func (s *Screener) Run(ctx context.Context, config RunConfig) (result *RunResult, err error) {
	startTime := time.Now()

	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.Date.IsZero() {
		config.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	result = &RunResult{
		RunID:           config.RunID,
		Date:            config.Date,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
	}

	if s.recorder != nil {
		s.recorder.ScreenStarted()
		defer func() {
			s.recorder.ScreenFinished(time.Since(startTime), len(result.Cards), err)
		}()
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"date":        config.Date.Format("2006-01-02"),
		"config_hash": s.configHash,
		"live_macro":  config.LiveMacro,
		"workers":     config.Workers,
	}).Info("Starting screening run")

	var tickers []s1_universe.TickerEntry
	if config.TickersPath != "" {
		tickers, err = s1_universe.LoadTickers(config.TickersPath)
		if err != nil {
			return result, err
		}
	}

	// S0: Data
	records, snapshot, err := s.runS0(ctx, config, tickers)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageData.ShortName(), err)
	}
	result.QualitySnapshot = snapshot
	result.CompletedStages = append(result.CompletedStages, contracts.StageData.String())

	// S1: Universe
	universe, err := s.runS1(ctx, tickers, snapshot, records)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageUniverse.ShortName(), err)
	}
	result.Universe = universe
	result.CompletedStages = append(result.CompletedStages, contracts.StageUniverse.String())

	// S2: Scores
	macroInputs, cards, err := s.runS2(ctx, config, universe, records)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageScores.ShortName(), err)
	}
	result.Cards = cards
	result.CompletedStages = append(result.CompletedStages, contracts.StageScores.String())

	// S3: Selection
	ranked, err := s.ranker.Rank(ctx, cards)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageSelection.ShortName(), err)
	}
	result.Run = &contracts.ScreenRun{
		RunID:      config.RunID,
		Date:       config.Date,
		ConfigHash: s.configHash,
		Macro:      macroInputs,
		Ranked:     ranked,
		CreatedAt:  time.Now().UTC(),
	}
	result.CompletedStages = append(result.CompletedStages, contracts.StageSelection.String())

	// S4: Report
	if err := s.runS4(ctx, config, result); err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageReport.ShortName(), err)
	}
	result.CompletedStages = append(result.CompletedStages, contracts.StageReport.String())

	for _, o := range s.observers {
		o.OnComplete(result.Run)
	}

	result.Duration = time.Since(startTime)

	s.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.Seconds(),
		"ranked":   len(ranked),
		"stages":   len(result.CompletedStages),
	}).Info("Screening run completed")

	return result, nil
}

// runS0 loads records, applies the tickers file and checks coverage
func (s *Screener) runS0(ctx context.Context, config RunConfig, tickers []s1_universe.TickerEntry) ([]*contracts.CompanyRecord, *contracts.DataQualitySnapshot, error) {
	records, err := s.source.Load(ctx, config.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("load records: %w", err)
	}

	if len(tickers) > 0 {
		records = s1_universe.ApplyTickerInfo(records, tickers)
	}

	gate := quality.NewQualityGate(quality.ConfigFromStrategy(s.cfg.Quality))
	snapshot, err := gate.Check(ctx, config.Date, records)
	if err != nil {
		return nil, snapshot, fmt.Errorf("quality gate: %w", err)
	}
	if !snapshot.Passed {
		s.logger.WithFields(map[string]interface{}{
			"quality_score": snapshot.QualityScore,
			"min_score":     snapshot.MinScore,
		}).Warn("Data quality below threshold, continuing")
	}

	s.logger.WithFields(map[string]interface{}{
		"records":       len(records),
		"quality_score": snapshot.QualityScore,
	}).Info("S0 completed")

	return records, snapshot, nil
}

// runS1 builds the universe
func (s *Screener) runS1(ctx context.Context, tickers []s1_universe.TickerEntry, snapshot *contracts.DataQualitySnapshot, records []*contracts.CompanyRecord) (*contracts.Universe, error) {
	builder := s1_universe.NewBuilder(s1_universe.ConfigFromStrategy(s.cfg.Universe), tickers)
	universe, err := builder.Build(ctx, snapshot, records)
	if err != nil {
		return nil, fmt.Errorf("build universe: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"total_count":    universe.TotalCount,
		"included_count": universe.Count(),
		"excluded_count": len(universe.Excluded),
	}).Info("S1 completed")

	return universe, nil
}

// runS2 resolves macro inputs and scores the universe concurrently.
// Cards keep universe order.
func (s *Screener) runS2(ctx context.Context, config RunConfig, universe *contracts.Universe, records []*contracts.CompanyRecord) (contracts.MacroInputs, []*contracts.ScoreCard, error) {
	patents, err := s0_data.LoadPatents(config.PatentsPath, s.cfg.Scores.IPBoost)
	if err != nil {
		return contracts.MacroInputs{}, nil, err
	}

	overrides, err := s0_data.LoadMacroOverrides(config.MacroOverridesPath)
	if err != nil {
		return contracts.MacroInputs{}, nil, err
	}
	macroInputs := s.resolver.Resolve(ctx, overrides, config.LiveMacro)

	byTicker := make(map[string]*contracts.CompanyRecord, len(records))
	for _, rec := range records {
		byTicker[rec.Ticker] = rec
	}

	cards := make([]*contracts.ScoreCard, len(universe.Tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for i, ticker := range universe.Tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rec, ok := byTicker[ticker]
			if !ok {
				return fmt.Errorf("no record for universe ticker %s", ticker)
			}

			// patents map이 nil이면 조회 결과도 nil (부재)
			card := s.engine.Score(gctx, rec, patents[ticker], macroInputs)
			cards[i] = card

			for _, o := range s.observers {
				o.OnScore(config.RunID, card)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return macroInputs, nil, fmt.Errorf("scoring interrupted: %w", err)
		}
		return macroInputs, nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"scored":  len(cards),
		"patents": len(patents),
		"macro":   len(macroInputs.Sources),
	}).Info("S2 completed")

	return macroInputs, cards, nil
}

// runS4 writes reports and persists the run
func (s *Screener) runS4(ctx context.Context, config RunConfig, result *RunResult) error {
	if s.writer != nil && !config.SkipReports {
		paths, err := s.writer.Write(result.Run)
		if err != nil {
			return fmt.Errorf("write reports: %w", err)
		}
		result.Paths = paths
	}

	if !config.Persist {
		return nil
	}

	if s.runRepo != nil {
		if err := s.runRepo.SaveRun(ctx, result.Run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}
	if s.universeRepo != nil {
		if err := s.universeRepo.SaveUniverse(ctx, config.RunID, result.Universe); err != nil {
			return fmt.Errorf("save universe: %w", err)
		}
	}
	if s.qualityRepo != nil && result.QualitySnapshot != nil {
		if err := s.qualityRepo.SaveSnapshot(ctx, result.QualitySnapshot); err != nil {
			return fmt.Errorf("save quality snapshot: %w", err)
		}
	}

	s.logger.WithField("run_id", config.RunID).Info("Run persisted")
	return nil
}
