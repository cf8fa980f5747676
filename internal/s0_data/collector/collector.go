package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/s0_data"
	"github.com/wonny/screener/pkg/logger"
)

// Collector enriches records with live statistics using a worker pool
// ⭐ SSOT: 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	enricher *s0_data.Enricher
	repo     contracts.RecordRepository // optional
	logger   *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int  // Number of concurrent workers
	Persist bool // 보강 결과를 저장소에 저장
}

// NewCollector creates a new Collector instance. repo may be nil.
func NewCollector(enricher *s0_data.Enricher, repo contracts.RecordRepository, log *logger.Logger) *Collector {
	return &Collector{
		enricher: enricher,
		repo:     repo,
		logger:   log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of one enrichment
type FetchResult struct {
	Ticker string
	Filled int
	Error  error
}

type job struct {
	index  int
	record *contracts.CompanyRecord
}

// EnrichAll enriches every record. The returned slice keeps input order;
// a record whose fetch failed is returned as the partially filled copy.
func (c *Collector) EnrichAll(ctx context.Context, records []*contracts.CompanyRecord, cfg Config) ([]*contracts.CompanyRecord, []FetchResult, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"record_count": len(records),
		"workers":      workers,
	}).Info("Starting statistics collection")

	enriched := make([]*contracts.CompanyRecord, len(records))
	results := make([]FetchResult, len(records))

	var wg sync.WaitGroup
	jobCh := make(chan job, len(records))

	// Start workers
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, jobCh, enriched, results)
		}(i)
	}

	// Send records to workers
	for i, rec := range records {
		jobCh <- job{index: i, record: rec}
	}
	close(jobCh)

	// Wait for all workers to complete
	wg.Wait()

	successCount := 0
	failCount := 0
	for _, result := range results {
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Statistics collection completed")

	if cfg.Persist && c.repo != nil {
		if err := c.repo.SaveBatch(ctx, enriched); err != nil {
			return enriched, results, fmt.Errorf("save enriched records: %w", err)
		}
	}

	return enriched, results, nil
}

// worker processes enrichment jobs; each index is written by exactly one worker
func (c *Collector) worker(ctx context.Context, workerID int, jobCh <-chan job, enriched []*contracts.CompanyRecord, results []FetchResult) {
	for j := range jobCh {
		select {
		case <-ctx.Done():
			enriched[j.index] = j.record
			results[j.index] = FetchResult{Ticker: j.record.Ticker, Error: ctx.Err()}
			continue
		default:
		}

		out, filled, err := c.enricher.Enrich(ctx, j.record)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": j.record.Ticker,
			}).Warn("Failed to enrich record")
		}

		enriched[j.index] = out
		results[j.index] = FetchResult{Ticker: j.record.Ticker, Filled: filled, Error: err}
	}
}
