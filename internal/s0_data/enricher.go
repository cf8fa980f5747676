package s0_data

import (
	"context"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// StatsProvider supplies live statistics for a ticker (Yahoo client)
type StatsProvider interface {
	KeyStatistics(ctx context.Context, ticker string) (map[contracts.Metric]float64, error)
	WeeklyCloses(ctx context.Context, symbol string, rng string) ([]float64, error)
}

// Enricher fills metrics missing from a record with live statistics.
// Present values are never overwritten.
type Enricher struct {
	provider    StatsProvider
	logger      *logger.Logger
	weeklyRange string
}

// NewEnricher creates a new enricher
func NewEnricher(provider StatsProvider, log *logger.Logger) *Enricher {
	return &Enricher{
		provider:    provider,
		logger:      log.WithField("module", "enricher"),
		weeklyRange: "1y",
	}
}

// Enrich returns a copy of rec with absent metrics filled, and the number filled.
// On error the copy holds whatever was filled before the failure.
func (e *Enricher) Enrich(ctx context.Context, rec *contracts.CompanyRecord) (*contracts.CompanyRecord, int, error) {
	out := rec.Clone()
	filled := 0

	stats, err := e.provider.KeyStatistics(ctx, rec.Ticker)
	if err != nil {
		return out, filled, fmt.Errorf("key statistics %s: %w", rec.Ticker, err)
	}
	for m, v := range stats {
		if out.Has(m) {
			continue
		}
		out.Metrics[m] = v
		filled++
	}

	// Simons 입력: 주간 수익률/종가 둘 다 없을 때만
	if len(out.SeriesValues(contracts.SeriesWeeklyReturns)) == 0 && len(out.SeriesValues(contracts.SeriesWeeklyClose)) == 0 {
		closes, err := e.provider.WeeklyCloses(ctx, rec.Ticker, e.weeklyRange)
		if err != nil {
			return out, filled, fmt.Errorf("weekly closes %s: %w", rec.Ticker, err)
		}
		if len(closes) > 0 {
			if out.Series == nil {
				out.Series = make(map[contracts.Series][]float64)
			}
			out.Series[contracts.SeriesWeeklyClose] = closes
			filled++
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"ticker": rec.Ticker,
		"filled": filled,
	}).Debug("Enriched record")

	return out, filled, nil
}
