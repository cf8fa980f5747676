package s1_universe

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
)

func rec(ticker, region, sector string, mcap float64) *contracts.CompanyRecord {
	r := &contracts.CompanyRecord{
		Ticker:  ticker,
		Region:  region,
		Sector:  sector,
		Metrics: map[contracts.Metric]float64{},
	}
	if mcap > 0 {
		r.Metrics[contracts.MetricMarketCap] = mcap
	}
	return r
}

func snapshot() *contracts.DataQualitySnapshot {
	return &contracts.DataQualitySnapshot{
		Date:         time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
		TotalRecords: 4,
		ValidRecords: 4,
		QualityScore: 0.9,
		Passed:       true,
	}
}

func TestBuilder_Build(t *testing.T) {
	config := Config{
		MinMarketCap:   1e9,
		ExcludeSectors: []string{"Energy"},
		ExcludeRegions: []string{"CN"},
	}

	records := []*contracts.CompanyRecord{
		rec("AAA", "US", "Technology", 5e9),
		rec("BBB", "US", "energy", 5e9),
		rec("CCC", "cn", "Technology", 5e9),
		rec("DDD", "EU", "Industrials", 5e8),
		rec("EEE", "EU", "Industrials", 0), // 시가총액 없음 → 통과
	}

	builder := NewBuilder(config, nil)
	universe, err := builder.Build(context.Background(), snapshot(), records)
	require.NoError(t, err)

	assert.Equal(t, snapshot().Date, universe.Date)
	assert.Equal(t, []string{"AAA", "EEE"}, universe.Tickers)
	assert.Equal(t, 5, universe.TotalCount)
	assert.Len(t, universe.Excluded, 3)

	excluded, reason := universe.IsExcluded("BBB")
	assert.True(t, excluded)
	assert.Contains(t, reason, "Energy")

	_, reason = universe.IsExcluded("CCC")
	assert.Contains(t, reason, "CN")

	_, reason = universe.IsExcluded("DDD")
	assert.Contains(t, reason, "시가총액")
}

func TestBuilder_FollowsTickersFile(t *testing.T) {
	tickers := []TickerEntry{{Ticker: "CCC"}, {Ticker: "AAA"}, {Ticker: "ZZZ"}}
	records := []*contracts.CompanyRecord{
		rec("AAA", "US", "Technology", 5e9),
		rec("BBB", "US", "Technology", 5e9),
		rec("CCC", "US", "Technology", 5e9),
	}

	universe, err := NewBuilder(Config{}, tickers).Build(context.Background(), snapshot(), records)
	require.NoError(t, err)

	// 티커 파일 순서, 레코드 없는 티커는 제외 사유 기록
	assert.Equal(t, []string{"CCC", "AAA"}, universe.Tickers)
	assert.False(t, universe.Contains("BBB"))
	excluded, reason := universe.IsExcluded("ZZZ")
	assert.True(t, excluded)
	assert.Equal(t, "레코드 없음", reason)
	assert.Equal(t, 3, universe.TotalCount)
}

func TestBuilder_RequiresSnapshot(t *testing.T) {
	_, err := NewBuilder(Config{}, nil).Build(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestParseTickers(t *testing.T) {
	csv := strings.Join([]string{
		"ticker,region,notes",
		"aapl,US,Apple",
		" msft ,US,",
		"AAPL,EU,duplicate",
		",US,empty",
		"asml,EU",
	}, "\n")

	entries, err := ParseTickers(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, TickerEntry{Ticker: "AAPL", Region: "US", Notes: "Apple"}, entries[0])
	assert.Equal(t, "MSFT", entries[1].Ticker)
	assert.Equal(t, TickerEntry{Ticker: "ASML", Region: "EU"}, entries[2])
}

func TestParseTickers_Errors(t *testing.T) {
	_, err := ParseTickers(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseTickers(strings.NewReader("symbol,region\nAAPL,US"))
	assert.Error(t, err)
}

func TestApplyTickerInfo(t *testing.T) {
	records := []*contracts.CompanyRecord{
		rec("AAA", "", "Technology", 1),
		rec("BBB", "EU", "Technology", 1),
		rec("CCC", "", "Technology", 1),
	}
	entries := []TickerEntry{
		{Ticker: "AAA", Region: "US", Notes: "core"},
		{Ticker: "BBB", Region: "US"},
	}

	out := ApplyTickerInfo(records, entries)
	require.Len(t, out, 3)

	assert.Equal(t, "US", out[0].Region)
	assert.Equal(t, "core", out[0].Notes)
	assert.Equal(t, "", records[0].Region) // 원본 불변

	assert.Same(t, records[1], out[1]) // 기존 region 유지
	assert.Same(t, records[2], out[2]) // 티커 정보 없음
}
