package s1_universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
)

// Builder constructs the screening universe
type Builder struct {
	config  Config
	tickers []TickerEntry
}

// Config holds universe filter criteria
type Config struct {
	MinMarketCap   float64  `yaml:"min_market_cap"`  // 최소 시가총액 (통화 단위)
	ExcludeSectors []string `yaml:"exclude_sectors"` // 제외 섹터
	ExcludeRegions []string `yaml:"exclude_regions"` // 제외 지역
}

// ConfigFromStrategy builds the filter config from the strategy universe section
func ConfigFromStrategy(u strategyconfig.Universe) Config {
	return Config{
		MinMarketCap:   u.MinMarketCap,
		ExcludeSectors: u.ExcludeSectors,
		ExcludeRegions: u.ExcludeRegions,
	}
}

// NewBuilder creates a new Universe Builder.
// With tickers, the universe follows the tickers file; without, the records.
func NewBuilder(config Config, tickers []TickerEntry) *Builder {
	return &Builder{
		config:  config,
		tickers: tickers,
	}
}

// Build constructs the universe from the loaded records
// ⭐ SSOT: S1 → S2 유니버스 생성
func (b *Builder) Build(ctx context.Context, snapshot *contracts.DataQualitySnapshot, records []*contracts.CompanyRecord) (*contracts.Universe, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("quality snapshot is required")
	}

	universe := &contracts.Universe{
		Date:     snapshot.Date,
		Tickers:  make([]string, 0),
		Excluded: make(map[string]string),
	}

	byTicker := make(map[string]*contracts.CompanyRecord, len(records))
	for _, rec := range records {
		byTicker[rec.Ticker] = rec
	}

	candidates := b.candidates(records)
	universe.TotalCount = len(candidates)

	// 필터링
	for _, ticker := range candidates {
		rec, ok := byTicker[ticker]
		if !ok {
			universe.Excluded[ticker] = "레코드 없음"
			continue
		}
		if reason := b.checkExclusion(rec); reason != "" {
			universe.Excluded[ticker] = reason
			continue
		}
		universe.Tickers = append(universe.Tickers, ticker)
	}

	return universe, nil
}

// candidates returns tickers in tickers-file order, else record order
func (b *Builder) candidates(records []*contracts.CompanyRecord) []string {
	if len(b.tickers) > 0 {
		out := make([]string, len(b.tickers))
		for i, e := range b.tickers {
			out[i] = e.Ticker
		}
		return out
	}

	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Ticker
	}
	return out
}

// checkExclusion checks if a company should be excluded and returns the reason
func (b *Builder) checkExclusion(rec *contracts.CompanyRecord) string {
	// 우선순위 순서로 체크

	// 1. 제외 지역
	for _, region := range b.config.ExcludeRegions {
		if rec.Region != "" && strings.EqualFold(rec.Region, region) {
			return fmt.Sprintf("제외 지역 (%s)", region)
		}
	}

	// 2. 제외 섹터
	for _, sector := range b.config.ExcludeSectors {
		if rec.Sector != "" && strings.EqualFold(rec.Sector, sector) {
			return fmt.Sprintf("제외 섹터 (%s)", sector)
		}
	}

	// 3. 시가총액 미달 (값이 없으면 통과, 점수 단계에서 누락 처리)
	if b.config.MinMarketCap > 0 {
		if mcap, ok := rec.Value(contracts.MetricMarketCap); ok && mcap < b.config.MinMarketCap {
			return fmt.Sprintf("시가총액 미달 (%.0f)", mcap)
		}
	}

	return "" // 통과
}
