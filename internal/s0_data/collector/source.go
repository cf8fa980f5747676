package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/screener/internal/contracts"
)

// EnrichingSource loads records from another source and fills
// missing metrics before they reach the pipeline
type EnrichingSource struct {
	inner     contracts.RecordSource
	collector *Collector
	config    Config
}

// NewEnrichingSource wraps inner with live enrichment
func NewEnrichingSource(inner contracts.RecordSource, c *Collector, cfg Config) *EnrichingSource {
	return &EnrichingSource{inner: inner, collector: c, config: cfg}
}

// Load loads and enriches. Per-ticker fetch failures keep the original record.
func (s *EnrichingSource) Load(ctx context.Context, asOf time.Time) ([]*contracts.CompanyRecord, error) {
	records, err := s.inner.Load(ctx, asOf)
	if err != nil {
		return nil, err
	}

	enriched, _, err := s.collector.EnrichAll(ctx, records, s.config)
	if err != nil {
		return nil, fmt.Errorf("enrich records: %w", err)
	}
	return enriched, nil
}
