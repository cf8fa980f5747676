package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/screener/internal/pipeline"
	"github.com/wonny/screener/pkg/logger"
)

// ScreenRunner runs the screening pipeline (pipeline.Screener)
type ScreenRunner interface {
	Run(ctx context.Context, config pipeline.RunConfig) (*pipeline.RunResult, error)
}

// WeeklyScreenJob runs the full screen every Friday evening
// ⭐ SSOT: 주간 스크리닝 스케줄은 이 Job에서만
type WeeklyScreenJob struct {
	screener ScreenRunner
	config   pipeline.RunConfig
	logger   *logger.Logger
}

// NewWeeklyScreenJob creates a new weekly screen job.
// config is the template of every run; RunID and Date are set per run.
func NewWeeklyScreenJob(screener ScreenRunner, config pipeline.RunConfig, log *logger.Logger) *WeeklyScreenJob {
	return &WeeklyScreenJob{
		screener: screener,
		config:   config,
		logger:   log,
	}
}

// Name returns the job name
func (j *WeeklyScreenJob) Name() string {
	return "weekly_screen"
}

// Schedule returns the cron schedule (Friday 6 PM)
func (j *WeeklyScreenJob) Schedule() string {
	return "0 0 18 * * 5" // with seconds
}

// Run executes the screen
func (j *WeeklyScreenJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled weekly screen")

	cfg := j.config
	cfg.RunID = ""
	cfg.Date = time.Now().UTC().Truncate(24 * time.Hour)

	result, err := j.screener.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("weekly screen: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"ranked":   len(result.Run.Ranked),
		"duration": result.Duration.Seconds(),
	}).Info("Weekly screen completed")

	return nil
}
