package s2_scores

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

func newTestEngine() *Engine {
	return NewEngine(strategyconfig.Default().Scores, logger.NewNop())
}

// fullRecord has every input of every score
func fullRecord() *contracts.CompanyRecord {
	return &contracts.CompanyRecord{
		Ticker: "ACME",
		Region: "US",
		Sector: "Industrials",
		Metrics: map[contracts.Metric]float64{
			contracts.MetricRevenue:         1000,
			contracts.MetricEBIT:            200,
			contracts.MetricFCF:             150,
			contracts.MetricMarketCap:       3000,
			contracts.MetricPE:              18,
			contracts.MetricEarningsGrowth:  0.12,
			contracts.MetricDividendYield:   0.015,
			contracts.MetricInterestExpense: 10,
			contracts.MetricNetDebt:         200,
			contracts.MetricCash:            300,
			contracts.MetricGoodwill:        100,
			contracts.MetricIntangibles:     50,
			contracts.MetricNetPPE:          600,
			contracts.MetricOperatingWC:     200,
			contracts.MetricNetPPEPrev:      550,
			contracts.MetricOperatingWCPrev: 180,
			contracts.MetricSharesChange3Y:  -0.04,
		},
		Series: map[contracts.Series][]float64{
			contracts.SeriesRevenueHistory: {700, 800, 900, 1000},
			contracts.SeriesWeeklyReturns:  {0.01, 0.02, -0.01, 0.015, 0.03, -0.02, 0.005, 0.01, -0.005, 0.02, 0.012, -0.008},
		},
	}
}

func TestEngine_AllScoresFinite(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	tests := []struct {
		name string
		rec  *contracts.CompanyRecord
	}{
		{"full record", fullRecord()},
		{"losses", fullRecord().With(contracts.MetricEBIT, -150).With(contracts.MetricFCF, -80)},
		{"zero invested capital", fullRecord().With(contracts.MetricNetPPE, 0).With(contracts.MetricOperatingWC, 0).
			Without(contracts.MetricNetPPEPrev).Without(contracts.MetricOperatingWCPrev)},
		{"no interest expense", fullRecord().With(contracts.MetricInterestExpense, 0)},
		{"negative growth", fullRecord().With(contracts.MetricEarningsGrowth, -0.3)},
		{"negative pe", fullRecord().With(contracts.MetricPE, -12)},
		{"growth in percent", fullRecord().With(contracts.MetricEarningsGrowth, 25)},
		{"extreme values", fullRecord().With(contracts.MetricMarketCap, 1e15).With(contracts.MetricNetDebt, -1e14)},
		{"net cash", fullRecord().With(contracts.MetricNetDebt, -500)},
		{"extreme returns", withSeries(fullRecord(), contracts.SeriesWeeklyReturns,
			[]float64{1e160, -1e160, 2e160, 1e159, -3e160, 5e159})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := engine.Score(ctx, tt.rec, nil, contracts.MacroInputs{})

			require.Empty(t, card.Errors)
			require.Len(t, card.Scores, len(contracts.AllScores))
			for name, v := range card.Scores {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s is not finite", name)
				assert.GreaterOrEqual(t, v, 0.0, name)
				assert.LessOrEqual(t, v, 100.0, name)
			}
		})
	}
}

func withSeries(rec *contracts.CompanyRecord, s contracts.Series, values []float64) *contracts.CompanyRecord {
	cp := rec.Clone()
	cp.Series[s] = values
	return cp
}

func TestEngine_MissingInputFailsOnlyAffectedScore(t *testing.T) {
	engine := newTestEngine()
	rec := fullRecord()
	delete(rec.Series, contracts.SeriesWeeklyReturns)

	card := engine.Score(context.Background(), rec, nil, contracts.MacroInputs{})

	assert.True(t, card.Failed(contracts.ScoreSimons))
	assert.Equal(t, "simons score: missing input weekly_returns|weekly_close", card.Errors[contracts.ScoreSimons])
	for _, name := range []contracts.ScoreName{contracts.ScoreBuffett, contracts.ScoreLynch, contracts.ScoreIcahn, contracts.ScoreSoros} {
		_, ok := card.Get(name)
		assert.True(t, ok, "%s should be computed", name)
	}
}

func TestEngine_MissingInputs(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	tests := []struct {
		name   string
		score  contracts.ScoreName
		rec    *contracts.CompanyRecord
		metric string
	}{
		{"buffett no ebit", contracts.ScoreBuffett, fullRecord().Without(contracts.MetricEBIT), "ebit|nopat"},
		{"buffett no capital", contracts.ScoreBuffett, fullRecord().Without(contracts.MetricNetPPE).Without(contracts.MetricOperatingWC), "net_ppe|operating_working_capital"},
		{"buffett no revenue", contracts.ScoreBuffett, fullRecord().Without(contracts.MetricRevenue), "revenue"},
		{"buffett no coverage", contracts.ScoreBuffett, fullRecord().Without(contracts.MetricInterestExpense), "interest_coverage|interest_expense"},
		{"lynch no pe", contracts.ScoreLynch, fullRecord().Without(contracts.MetricPE), "pe|price"},
		{"icahn no cash", contracts.ScoreIcahn, fullRecord().Without(contracts.MetricCash), "cash"},
		{"icahn no shares", contracts.ScoreIcahn, fullRecord().Without(contracts.MetricSharesChange3Y), "shares_change_3y|shares_outstanding"},
		{"soros no fcf", contracts.ScoreSoros, fullRecord().Without(contracts.MetricFCF), "fcf|operating_cash_flow"},
		{"soros no market cap", contracts.ScoreSoros, fullRecord().With(contracts.MetricMarketCap, 0), "market_cap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ScoreOne(ctx, tt.score, tt.rec, nil, contracts.MacroInputs{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrMissingInput))

			var missing *contracts.MissingInputError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.score, missing.Score)
			assert.Equal(t, tt.metric, missing.Metric)
		})
	}
}

func TestEngine_Fallbacks(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	// FCF = OCF - |capex|
	withFCF := fullRecord()
	viaOCF := fullRecord().Without(contracts.MetricFCF).
		With(contracts.MetricOperatingCashFlow, 230).
		With(contracts.MetricCapex, -80)
	a, err := engine.ScoreOne(ctx, contracts.ScoreBuffett, withFCF, nil, contracts.MacroInputs{})
	require.NoError(t, err)
	b, err := engine.ScoreOne(ctx, contracts.ScoreBuffett, viaOCF, nil, contracts.MacroInputs{})
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-9)

	// P/E = price / eps
	viaEPS := fullRecord().Without(contracts.MetricPE).
		With(contracts.MetricPrice, 36).
		With(contracts.MetricEPS, 2)
	c, err := engine.ScoreOne(ctx, contracts.ScoreLynch, fullRecord(), nil, contracts.MacroInputs{})
	require.NoError(t, err)
	d, err := engine.ScoreOne(ctx, contracts.ScoreLynch, viaEPS, nil, contracts.MacroInputs{})
	require.NoError(t, err)
	assert.InDelta(t, c, d, 1e-9)

	// 주식수 변화 = shares_outstanding 처음 → 끝
	viaShares := fullRecord().Without(contracts.MetricSharesChange3Y)
	viaShares.Series[contracts.SeriesSharesOutstanding] = []float64{100, 98, 96}
	e, err := engine.ScoreOne(ctx, contracts.ScoreIcahn, fullRecord(), nil, contracts.MacroInputs{})
	require.NoError(t, err)
	f, err := engine.ScoreOne(ctx, contracts.ScoreIcahn, viaShares, nil, contracts.MacroInputs{})
	require.NoError(t, err)
	assert.InDelta(t, e, f, 1e-9)
}

func TestLynch_GrowthProxySelection(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	t.Run("analyst estimate preferred", func(t *testing.T) {
		rec := fullRecord()
		card := engine.Score(ctx, rec, nil, contracts.MacroInputs{})
		require.NotNil(t, card.Details.GrowthProxy)
		assert.Equal(t, GrowthSourceAnalyst, card.Details.GrowthSource)
		assert.InDelta(t, 0.12, *card.Details.GrowthProxy, 1e-12)

		// 매출 이력이 달라도 애널리스트 추정치가 있으면 점수 동일
		other := rec.Clone()
		other.Series[contracts.SeriesRevenueHistory] = []float64{100, 500, 900, 1000}
		a, _ := engine.ScoreOne(ctx, contracts.ScoreLynch, rec, nil, contracts.MacroInputs{})
		b, _ := engine.ScoreOne(ctx, contracts.ScoreLynch, other, nil, contracts.MacroInputs{})
		assert.Equal(t, a, b)
	})

	t.Run("revenue cagr fallback", func(t *testing.T) {
		rec := fullRecord().Without(contracts.MetricEarningsGrowth)
		card := engine.Score(ctx, rec, nil, contracts.MacroInputs{})
		require.NotNil(t, card.Details.GrowthProxy)
		assert.Equal(t, GrowthSourceRevenueCAGR, card.Details.GrowthSource)

		want := math.Pow(1000.0/700.0, 1.0/3) - 1
		assert.InDelta(t, want, *card.Details.GrowthProxy, 1e-9)
	})

	t.Run("cagr uses last four points", func(t *testing.T) {
		rec := fullRecord().Without(contracts.MetricEarningsGrowth)
		rec.Series[contracts.SeriesRevenueHistory] = []float64{10, 700, 800, 900, 1000}
		card := engine.Score(ctx, rec, nil, contracts.MacroInputs{})
		require.NotNil(t, card.Details.GrowthProxy)

		want := math.Pow(1000.0/700.0, 1.0/3) - 1
		assert.InDelta(t, want, *card.Details.GrowthProxy, 1e-9)
	})

	t.Run("both absent", func(t *testing.T) {
		rec := fullRecord().Without(contracts.MetricEarningsGrowth)
		delete(rec.Series, contracts.SeriesRevenueHistory)

		_, err := engine.ScoreOne(ctx, contracts.ScoreLynch, rec, nil, contracts.MacroInputs{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, contracts.ErrMissingInput))

		var missing *contracts.MissingInputError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, contracts.ScoreLynch, missing.Score)
		assert.Equal(t, "earnings_growth|revenue_history", missing.Metric)
	})
}

func TestBuffett_ROICExcludesCashGoodwillIntangibles(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	base := fullRecord()
	changed := base.
		With(contracts.MetricCash, 5000).
		With(contracts.MetricGoodwill, 0).
		With(contracts.MetricIntangibles, 9999).
		With(contracts.MetricShortTermInvest, 700)

	a := engine.Score(ctx, base, nil, contracts.MacroInputs{})
	b := engine.Score(ctx, changed, nil, contracts.MacroInputs{})

	assert.Equal(t, a.Scores[contracts.ScoreBuffett], b.Scores[contracts.ScoreBuffett])
	require.NotNil(t, a.Details.ROIC)
	assert.Equal(t, *a.Details.ROIC, *b.Details.ROIC)

	// ROIC = 200·(1-0.21) / avg(800, 730)
	assert.InDelta(t, 158.0/765.0, *a.Details.ROIC, 1e-12)

	// net_debt 없음 → total_debt 경로도 현금과 무관
	gross := base.Without(contracts.MetricNetDebt).With(contracts.MetricTotalDebt, 500)
	tests := []struct {
		name string
		rec  *contracts.CompanyRecord
	}{
		{"more cash", gross.With(contracts.MetricCash, 5000)},
		{"short-term investments", gross.With(contracts.MetricShortTermInvest, 700)},
		{"goodwill and intangibles", gross.With(contracts.MetricGoodwill, 0).With(contracts.MetricIntangibles, 9999)},
	}

	want, err := engine.ScoreOne(ctx, contracts.ScoreBuffett, gross, nil, contracts.MacroInputs{})
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ScoreOne(ctx, contracts.ScoreBuffett, tt.rec, nil, contracts.MacroInputs{})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestIPBoost_Idempotence(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	rec := fullRecord()

	baseline := engine.Score(ctx, rec, nil, contracts.MacroInputs{})

	tests := []struct {
		name   string
		patent *contracts.PatentRecord
	}{
		{"absent flag", &contracts.PatentRecord{Ticker: "ACME", Present: false, Tilt: 0.8}},
		{"zero tilt", &contracts.PatentRecord{Ticker: "ACME", Present: true, Tilt: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := engine.Score(ctx, rec, tt.patent, contracts.MacroInputs{})
			assert.Equal(t, baseline.Scores[contracts.ScoreBuffett], card.Scores[contracts.ScoreBuffett])
			assert.Equal(t, baseline.Scores[contracts.ScoreSimons], card.Scores[contracts.ScoreSimons])
			assert.Equal(t, 0.0, card.Scores[contracts.ScoreIPBoost])
		})
	}
}

func TestIPBoost_AppliesOnlyToBuffettAndSimons(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	rec := fullRecord()

	baseline := engine.Score(ctx, rec, nil, contracts.MacroInputs{})
	boosted := engine.Score(ctx, rec, &contracts.PatentRecord{Ticker: "ACME", Present: true, Tilt: 0.5}, contracts.MacroInputs{})

	assert.InDelta(t, math.Min(baseline.Scores[contracts.ScoreBuffett]+5, 100), boosted.Scores[contracts.ScoreBuffett], 1e-9)
	assert.InDelta(t, math.Min(baseline.Scores[contracts.ScoreSimons]+5, 100), boosted.Scores[contracts.ScoreSimons], 1e-9)
	assert.InDelta(t, 5.0, boosted.Scores[contracts.ScoreIPBoost], 1e-9)

	for _, name := range []contracts.ScoreName{contracts.ScoreLynch, contracts.ScoreIcahn, contracts.ScoreSoros} {
		assert.Equal(t, baseline.Scores[name], boosted.Scores[name], name)
	}
	require.NotNil(t, boosted.Details.IPTilt)
	assert.Equal(t, 0.5, *boosted.Details.IPTilt)
}

func TestIPBoost_Apply(t *testing.T) {
	additive := strategyconfig.Default().Scores.IPBoost
	multiplicative := additive
	multiplicative.Mode = strategyconfig.BoostMultiplicative

	tests := []struct {
		name string
		cfg  strategyconfig.IPBoost
		base float64
		tilt float64
		want float64
	}{
		{"additive", additive, 60, 0.5, 65},
		{"additive negative", additive, 60, -1, 50},
		{"additive clamp high", additive, 95, 1, 100},
		{"additive clamp low", additive, 3, -1, 0},
		{"multiplicative", multiplicative, 60, 1, 66},
		{"zero tilt", additive, 42, 0, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewIPBoostCalculator(tt.cfg, logger.NewNop())
			got := c.Apply(tt.base, tt.tilt)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			assert.InDelta(t, tt.want-tt.base, got.Points, 1e-9)
		})
	}
}

func TestDeriveTilt(t *testing.T) {
	cfg := strategyconfig.Default().Scores.IPBoost

	assert.Equal(t, 0.0, DeriveTilt(cfg, 0, 0, 0))
	// 반포화점: 각 항목 0.5
	assert.InDelta(t, 0.5, DeriveTilt(cfg, 50, 500, 0.10), 1e-12)
	assert.Less(t, DeriveTilt(cfg, 1e9, 1e9, 1e9), 1.0)
	assert.Equal(t, 0.0, DeriveTilt(cfg, math.NaN(), -5, 0))
}

func TestSoros_MacroOverrideSubstitution(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	// 순부채 > 0 → 금리 민감 플래그만
	rec := fullRecord()
	rec.Sector = "Healthcare"

	live := contracts.MacroInputs{
		TenYearYield: contracts.Float(0.045),
		USDIndex:     contracts.Float(104.2),
		WTI:          contracts.Float(82),
		Gold:         contracts.Float(2350),
		Sources: map[string]contracts.MacroSource{
			"ten_year_yield": contracts.MacroSourceLive,
			"usd_dxy":        contracts.MacroSourceLive,
			"wti":            contracts.MacroSourceLive,
			"gold":           contracts.MacroSourceLive,
		},
	}
	override := contracts.MacroInputs{
		TenYearYield: contracts.Float(0.045),
		USDIndex:     contracts.Float(104.2),
		WTI:          contracts.Float(82),
		Gold:         contracts.Float(2350),
		Sources: map[string]contracts.MacroSource{
			"ten_year_yield": contracts.MacroSourceOverride,
			"usd_dxy":        contracts.MacroSourceOverride,
			"wti":            contracts.MacroSourceOverride,
			"gold":           contracts.MacroSourceOverride,
		},
	}

	a, err := engine.ScoreOne(ctx, contracts.ScoreSoros, rec, nil, live)
	require.NoError(t, err)
	b, err := engine.ScoreOne(ctx, contracts.ScoreSoros, rec, nil, override)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// 다른 매크로 값은 민감 업종의 점수를 바꿈
	stressed := override
	stressed.TenYearYield = contracts.Float(0.08)
	c, err := engine.ScoreOne(ctx, contracts.ScoreSoros, rec, nil, stressed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSoros_MacroSensitivity(t *testing.T) {
	cfg := strategyconfig.Default().Scores
	c := NewSorosCalculator(cfg.Soros, cfg.Smoothing, logger.NewNop())

	all := Exposure{Cyclical: true, RateSensitive: true, FXSensitive: true}

	// 매크로 없음 → 플래그당 1.0
	assert.InDelta(t, 3.0, c.MacroSensitivity(all, contracts.MacroInputs{}), 1e-12)
	assert.InDelta(t, 0.0, c.MacroSensitivity(Exposure{}, contracts.MacroInputs{}), 1e-12)

	// 중립 수준 = stress 0.5 → 1.0
	neutral := contracts.MacroInputs{
		TenYearYield: contracts.Float(0.04),
		USDIndex:     contracts.Float(100),
		WTI:          contracts.Float(75),
		Gold:         contracts.Float(2000),
	}
	assert.InDelta(t, 3.0, c.MacroSensitivity(all, neutral), 1e-12)

	// 금리 2배 → stress 1.0 → 1.25
	high := neutral
	high.TenYearYield = contracts.Float(0.08)
	assert.InDelta(t, 1.25, c.MacroSensitivity(Exposure{RateSensitive: true}, high), 1e-12)
}

func TestSoros_Exposure(t *testing.T) {
	cfg := strategyconfig.Default().Scores
	c := NewSorosCalculator(cfg.Soros, cfg.Smoothing, logger.NewNop())

	tests := []struct {
		sector  string
		netDebt float64
		want    Exposure
	}{
		{"Financial Services", -10, Exposure{Cyclical: true, RateSensitive: true}},
		{"Basic Materials", -10, Exposure{Cyclical: true, FXSensitive: true}},
		{"Technology", -10, Exposure{FXSensitive: true}},
		{"Technology", 10, Exposure{FXSensitive: true, RateSensitive: true}},
		{"Healthcare", -10, Exposure{}},
		{"", 0, Exposure{}},
	}

	for _, tt := range tests {
		t.Run(tt.sector, func(t *testing.T) {
			rec := fullRecord().With(contracts.MetricNetDebt, tt.netDebt)
			rec.Sector = tt.sector
			assert.Equal(t, tt.want, c.exposure(rec))
		})
	}
}

func TestSimons_DerivedFromWeeklyClose(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	closes := []float64{100, 101, 103.02, 101.9898}
	rec := fullRecord()
	delete(rec.Series, contracts.SeriesWeeklyReturns)
	rec.Series[contracts.SeriesWeeklyClose] = closes

	viaReturns := fullRecord()
	viaReturns.Series[contracts.SeriesWeeklyReturns] = returnsFromCloses(closes)

	a, err := engine.ScoreOne(ctx, contracts.ScoreSimons, rec, nil, contracts.MacroInputs{})
	require.NoError(t, err)
	b, err := engine.ScoreOne(ctx, contracts.ScoreSimons, viaReturns, nil, contracts.MacroInputs{})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// 수익률 2개 → 부족
	short := fullRecord()
	short.Series[contracts.SeriesWeeklyReturns] = []float64{0.01, 0.02}
	_, err = engine.ScoreOne(ctx, contracts.ScoreSimons, short, nil, contracts.MacroInputs{})
	assert.True(t, errors.Is(err, contracts.ErrMissingInput))
}

func TestSimons_ConstantReturns(t *testing.T) {
	engine := newTestEngine()
	rec := fullRecord()
	rec.Series[contracts.SeriesWeeklyReturns] = []float64{0.01, 0.01, 0.01, 0.01, 0.01}

	card := engine.Score(context.Background(), rec, nil, contracts.MacroInputs{})
	require.False(t, card.Failed(contracts.ScoreSimons))
	assert.Equal(t, 0.0, *card.Details.WeeklyAC)
	assert.Equal(t, 0.0, *card.Details.VolClust)
	score := card.Scores[contracts.ScoreSimons]
	assert.False(t, math.IsNaN(score) || math.IsInf(score, 0))
}

func TestEngine_Deterministic(t *testing.T) {
	ctx := context.Background()
	macro := contracts.MacroInputs{TenYearYield: contracts.Float(0.043), WTI: contracts.Float(70)}
	patent := &contracts.PatentRecord{Ticker: "ACME", Present: true, Tilt: 0.3}

	first, err := json.Marshal(newTestEngine().Score(ctx, fullRecord(), patent, macro))
	require.NoError(t, err)

	engine := newTestEngine()
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(engine.Score(ctx, fullRecord(), patent, macro))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestEngine_DoesNotMutateRecord(t *testing.T) {
	engine := newTestEngine()
	rec := fullRecord()
	before, _ := json.Marshal(rec)

	engine.Score(context.Background(), rec, &contracts.PatentRecord{Present: true, Tilt: 1}, contracts.MacroInputs{})

	after, _ := json.Marshal(rec)
	assert.Equal(t, string(before), string(after))
}

type countingRecorder struct {
	computed map[contracts.ScoreName]int
	missing  map[string]int
}

func (r *countingRecorder) ScoreComputed(score contracts.ScoreName) {
	r.computed[score]++
}

func (r *countingRecorder) MissingInput(score contracts.ScoreName, metric string) {
	r.missing[string(score)+":"+metric]++
}

func TestEngine_Recorder(t *testing.T) {
	rec := &countingRecorder{computed: map[contracts.ScoreName]int{}, missing: map[string]int{}}
	engine := newTestEngine().WithRecorder(rec)

	record := fullRecord().Without(contracts.MetricCash)
	engine.Score(context.Background(), record, nil, contracts.MacroInputs{})

	assert.Equal(t, 1, rec.computed[contracts.ScoreBuffett])
	assert.Equal(t, 0, rec.computed[contracts.ScoreIcahn])
	assert.Equal(t, 1, rec.missing["icahn:cash"])
}

func TestEngine_ScoreOneUnknown(t *testing.T) {
	_, err := newTestEngine().ScoreOne(context.Background(), "graham", fullRecord(), nil, contracts.MacroInputs{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, contracts.ErrMissingInput))
}
