package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/external/yahoo"
	"github.com/wonny/screener/internal/macro"
	"github.com/wonny/screener/internal/metrics"
	"github.com/wonny/screener/internal/pipeline"
	"github.com/wonny/screener/internal/report"
	"github.com/wonny/screener/internal/s0_data"
	"github.com/wonny/screener/internal/s0_data/collector"
	"github.com/wonny/screener/internal/s0_data/quality"
	"github.com/wonny/screener/internal/s1_universe"
	"github.com/wonny/screener/internal/s2_scores"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/database"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

const userAgent = "Mozilla/5.0 (compatible; legends-screener/2.0)"

// runtime holds the shared dependencies of a command
type runtime struct {
	cfg          *config.Config
	log          *logger.Logger
	strategy     *strategyconfig.Config
	strategyYAML []byte

	db      *database.DB // nil without DATABASE_URL
	redis   *redis.Client
	yahoo   *yahoo.Client
	metrics *metrics.Registry
	macro   *macro.Resolver // 프로세스 캐시 공유
}

// runtimeOptions selects optional dependencies
type runtimeOptions struct {
	database bool // DATABASE_URL이 있으면 연결
}

func newRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy
	path := strategyPath
	if path == "" {
		path = cfg.Paths.Strategy
	}
	strategy, yamlData, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	// 4. Redis (disabled client when REDIS_ENABLED=false)
	redisClient, err := redis.NewWithContext(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	rt := &runtime{
		cfg:          cfg,
		log:          log,
		strategy:     strategy,
		strategyYAML: yamlData,
		redis:        redisClient,
		metrics:      metrics.NewRegistry(),
	}

	// 5. Yahoo client
	httpClient := httputil.New(cfg, log).
		WithUserAgent(userAgent).
		WithLocalLimiter(cfg.Yahoo.RequestsPerSecond, 1).
		WithRateLimiter(redis.NewRateLimiter(redisClient, "screener"), redis.YahooChartRateLimit)
	rt.yahoo = yahoo.NewClient(httpClient, log).WithBaseURLs(cfg.Yahoo.ChartURL, cfg.Yahoo.PageURL)

	// 6. Database
	if opts.database && cfg.HasDatabase() {
		db, err := database.New(cfg)
		if err != nil {
			rt.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			rt.close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		rt.db = db
		log.Info("Connected to database")
	}

	return rt, nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redis != nil {
		rt.redis.Close()
	}
}

// recordSource returns the database source when requested, else the JSON file
func (rt *runtime) recordSource(fromDB bool, path string) (contracts.RecordSource, error) {
	if fromDB {
		if rt.db == nil {
			return nil, fmt.Errorf("--from-db requires DATABASE_URL")
		}
		return s0_data.NewRepositorySource(s0_data.NewRecordRepository(rt.db.Pool)), nil
	}
	if path == "" {
		path = rt.cfg.Paths.Records
	}
	return s0_data.NewFileRecordSource(path, rt.log), nil
}

// enrich wraps source with Yahoo key statistics enrichment
func (rt *runtime) enrich(source contracts.RecordSource, workers int, persist bool) contracts.RecordSource {
	var repo contracts.RecordRepository
	if rt.db != nil {
		repo = s0_data.NewRecordRepository(rt.db.Pool)
	}
	col := collector.NewCollector(s0_data.NewEnricher(rt.yahoo, rt.log), repo, rt.log)
	return collector.NewEnrichingSource(source, col, collector.Config{Workers: workers, Persist: persist})
}

func (rt *runtime) engine() *s2_scores.Engine {
	return s2_scores.NewEngine(rt.strategy.Scores, rt.log).WithRecorder(rt.metrics)
}

func (rt *runtime) resolver() *macro.Resolver {
	if rt.macro == nil {
		rt.macro = macro.NewResolver(rt.yahoo, redis.NewCache(rt.redis, "screener"), rt.cfg.Yahoo.CacheTTL, rt.log)
	}
	return rt.macro
}

// newScreener wires the full pipeline
func (rt *runtime) newScreener(source contracts.RecordSource, outputDir string) (*pipeline.Screener, error) {
	if outputDir == "" {
		outputDir = rt.cfg.Paths.OutputDir
	}

	screener, err := pipeline.NewScreener(
		rt.strategy,
		source,
		rt.engine(),
		selection.NewRanker(rt.strategy.Selection, rt.log),
		rt.resolver(),
		rt.log,
	)
	if err != nil {
		return nil, err
	}

	screener.
		WithReportWriter(report.NewWriter(outputDir, rt.strategy, rt.log)).
		WithRecorder(rt.metrics)

	if rt.db != nil {
		screener.
			WithRepositories(selection.NewRepository(rt.db.Pool), s1_universe.NewRepository(rt.db.Pool)).
			WithQualityRepository(quality.NewRepository(rt.db.Pool))
	}

	return screener, nil
}

// defaultRunConfig builds the run template from config paths
func (rt *runtime) defaultRunConfig() pipeline.RunConfig {
	return pipeline.RunConfig{
		TickersPath:        optionalPath(rt.cfg.Paths.Tickers),
		PatentsPath:        rt.cfg.Paths.Patents,
		MacroOverridesPath: rt.cfg.Paths.MacroOverrides,
		LiveMacro:          rt.cfg.Yahoo.Enabled,
		Workers:            rt.cfg.Workers,
		Persist:            rt.db != nil,
	}
}

// parseDate parses YYYY-MM-DD, or returns today (UTC) for empty input
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// optionalPath returns path when the file exists, else ""
func optionalPath(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
