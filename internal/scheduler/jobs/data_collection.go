package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/s0_data/collector"
	"github.com/wonny/screener/pkg/logger"
)

// RecordEnricher fills missing metrics of records (collector.Collector)
type RecordEnricher interface {
	EnrichAll(ctx context.Context, records []*contracts.CompanyRecord, cfg collector.Config) ([]*contracts.CompanyRecord, []collector.FetchResult, error)
}

// DataCollectionJob refreshes company statistics before the weekly screen
// ⭐ SSOT: 데이터 수집 스케줄은 이 Job에서만
type DataCollectionJob struct {
	source    contracts.RecordSource
	collector RecordEnricher
	config    collector.Config
	logger    *logger.Logger
}

// NewDataCollectionJob creates a new data collection job
func NewDataCollectionJob(source contracts.RecordSource, col RecordEnricher, cfg collector.Config, log *logger.Logger) *DataCollectionJob {
	return &DataCollectionJob{
		source:    source,
		collector: col,
		config:    cfg,
		logger:    log,
	}
}

// Name returns the job name
func (j *DataCollectionJob) Name() string {
	return "data_collection"
}

// Schedule returns the cron schedule (Friday 5 PM, one hour before the screen)
func (j *DataCollectionJob) Schedule() string {
	return "0 0 17 * * 5" // with seconds
}

// Run executes the data collection
func (j *DataCollectionJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled data collection")

	records, err := j.source.Load(ctx, time.Now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	_, results, err := j.collector.EnrichAll(ctx, records, j.config)
	if err != nil {
		return fmt.Errorf("enrich records: %w", err)
	}

	filled, failed := 0, 0
	for _, r := range results {
		filled += r.Filled
		if r.Error != nil {
			failed++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"records": len(records),
		"filled":  filled,
		"failed":  failed,
	}).Info("Data collection completed")

	return nil
}
