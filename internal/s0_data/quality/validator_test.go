package quality

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
)

func record(ticker string, metrics ...contracts.Metric) *contracts.CompanyRecord {
	rec := &contracts.CompanyRecord{Ticker: ticker, Metrics: map[contracts.Metric]float64{}}
	for _, m := range metrics {
		rec.Metrics[m] = 1
	}
	return rec
}

func TestQualityGate_Check(t *testing.T) {
	config := Config{
		Metrics:  []string{"market_cap", "revenue", "fcf", "pe"},
		MinScore: 0.5,
	}
	gate := NewQualityGate(config)

	records := []*contracts.CompanyRecord{
		record("AAA", contracts.MetricMarketCap, contracts.MetricRevenue, contracts.MetricFCF, contracts.MetricPE),
		record("BBB", contracts.MetricMarketCap, contracts.MetricRevenue),
		record("CCC", contracts.MetricMarketCap),
		record("DDD", contracts.MetricMarketCap, contracts.MetricRevenue, contracts.MetricFCF),
	}

	ctx := context.Background()
	date := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	snapshot, err := gate.Check(ctx, date, records)
	require.NoError(t, err, "quality check failed")

	assert.Equal(t, date, snapshot.Date)
	assert.Equal(t, 4, snapshot.TotalRecords)
	// CCC: 1/4 지표 → 무효
	assert.Equal(t, 3, snapshot.ValidRecords)

	assert.InDelta(t, 1.0, snapshot.Coverage["market_cap"], 1e-12)
	assert.InDelta(t, 0.75, snapshot.Coverage["revenue"], 1e-12)
	assert.InDelta(t, 0.5, snapshot.Coverage["fcf"], 1e-12)
	assert.InDelta(t, 0.25, snapshot.Coverage["pe"], 1e-12)

	assert.InDelta(t, 0.625, snapshot.QualityScore, 1e-12)
	assert.True(t, snapshot.Passed)
}

func TestQualityGate_NaNCountsAsMissing(t *testing.T) {
	gate := NewQualityGate(Config{Metrics: []string{"pe"}, MinScore: 0.5})

	rec := record("AAA")
	rec.Metrics[contracts.MetricPE] = math.NaN()

	snapshot, err := gate.Check(context.Background(), time.Now(), []*contracts.CompanyRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, 0.0, snapshot.Coverage["pe"])
	assert.False(t, snapshot.Passed)
}

func TestQualityGate_Enforce(t *testing.T) {
	gate := NewQualityGate(Config{Metrics: []string{"fcf"}, MinScore: 0.9, Enforce: true})

	records := []*contracts.CompanyRecord{
		record("AAA", contracts.MetricFCF),
		record("BBB"),
	}

	snapshot, err := gate.Check(context.Background(), time.Now(), records)
	require.Error(t, err)

	var gateErr *ErrQualityGateFailed
	require.True(t, errors.As(err, &gateErr))
	assert.InDelta(t, 0.5, gateErr.Score, 1e-12)
	assert.NotNil(t, snapshot)
	assert.False(t, snapshot.Passed)
}

func TestQualityGate_Empty(t *testing.T) {
	gate := NewQualityGate(Config{Metrics: []string{"fcf"}, MinScore: 0.5})

	snapshot, err := gate.Check(context.Background(), time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.TotalRecords)
	assert.False(t, snapshot.Passed)
}

func TestQualityGate_calculateScore(t *testing.T) {
	gate := &QualityGate{config: Config{Metrics: []string{"a", "b"}}}

	tests := []struct {
		name     string
		coverage map[string]float64
		want     float64
	}{
		{"perfect", map[string]float64{"a": 1, "b": 1}, 1.0},
		{"half", map[string]float64{"a": 1, "b": 0}, 0.5},
		{"unconfigured metric ignored", map[string]float64{"a": 1, "b": 1, "z": 0}, 1.0},
		{"no metrics", map[string]float64{}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, gate.calculateScore(tt.coverage), 1e-12)
		})
	}
}

func TestQualityGate_calculateScoreDeterministic(t *testing.T) {
	metrics := []string{"m0", "m1", "m2", "m3", "m4", "m5", "m6", "m7"}
	values := []float64{0.1, 0.7, 1e-17, 0.3, 0.9, 1e16, 0.2, 0.6}

	gate := &QualityGate{config: Config{Metrics: metrics}}
	coverage := make(map[string]float64, len(metrics))
	want := 0.0
	for i, m := range metrics {
		coverage[m] = values[i]
		want += values[i]
	}
	want /= float64(len(metrics))

	// 맵 순회 순서와 무관하게 설정 순서 합계와 비트 단위로 같음
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, gate.calculateScore(coverage))
	}
}
