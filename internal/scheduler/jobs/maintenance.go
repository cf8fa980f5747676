package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/screener/pkg/logger"
)

// RunPruner deletes stored runs (selection.Repository)
type RunPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunRetentionJob removes screening runs older than the retention window
type RunRetentionJob struct {
	repo      RunPruner
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewRunRetentionJob creates a new retention job
func NewRunRetentionJob(repo RunPruner, retention time.Duration, log *logger.Logger) *RunRetentionJob {
	return &RunRetentionJob{
		repo:      repo,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *RunRetentionJob) Name() string {
	return "run_retention"
}

// Schedule returns the cron schedule (Sunday 3 AM)
func (j *RunRetentionJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run executes the cleanup
func (j *RunRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	count, err := j.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete old runs: %w", err)
	}

	if count > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": count,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Run retention completed")
	}

	return nil
}
