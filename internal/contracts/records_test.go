package contracts

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestCompanyRecord_Value(t *testing.T) {
	rec := &CompanyRecord{
		Ticker: "AAPL",
		Metrics: map[Metric]float64{
			MetricRevenue:   100,
			MetricEBIT:      math.NaN(),
			MetricMarketCap: math.Inf(1),
		},
	}

	if v, ok := rec.Value(MetricRevenue); !ok || v != 100 {
		t.Errorf("Value(revenue) = %v, %v; want 100, true", v, ok)
	}
	if _, ok := rec.Value(MetricEBIT); ok {
		t.Error("NaN metric should be absent")
	}
	if _, ok := rec.Value(MetricMarketCap); ok {
		t.Error("Inf metric should be absent")
	}
	if _, ok := rec.Value(MetricFCF); ok {
		t.Error("missing metric should be absent")
	}

	var nilRec *CompanyRecord
	if _, ok := nilRec.Value(MetricRevenue); ok {
		t.Error("nil record should have no metrics")
	}
}

func TestCompanyRecord_WithDoesNotMutate(t *testing.T) {
	rec := &CompanyRecord{
		Ticker:  "MSFT",
		Metrics: map[Metric]float64{MetricCash: 10},
		Series:  map[Series][]float64{SeriesWeeklyReturns: {0.01, 0.02}},
	}

	cp := rec.With(MetricCash, 20)
	if rec.Metrics[MetricCash] != 10 {
		t.Errorf("original mutated: cash = %v", rec.Metrics[MetricCash])
	}
	if cp.Metrics[MetricCash] != 20 {
		t.Errorf("copy cash = %v, want 20", cp.Metrics[MetricCash])
	}

	cp.Series[SeriesWeeklyReturns][0] = 9
	if rec.Series[SeriesWeeklyReturns][0] != 0.01 {
		t.Error("series shared between original and copy")
	}

	removed := rec.Without(MetricCash)
	if removed.Has(MetricCash) || !rec.Has(MetricCash) {
		t.Error("Without() should only affect the copy")
	}
}

func TestCompanyRecord_SeriesValuesSkipsNaN(t *testing.T) {
	rec := &CompanyRecord{
		Series: map[Series][]float64{
			SeriesRevenueHistory: {100, math.NaN(), 120},
		},
	}

	got := rec.SeriesValues(SeriesRevenueHistory)
	if len(got) != 2 || got[0] != 100 || got[1] != 120 {
		t.Errorf("SeriesValues() = %v, want [100 120]", got)
	}
}

func TestPatentRecord_HasTilt(t *testing.T) {
	tests := []struct {
		name   string
		patent *PatentRecord
		want   bool
	}{
		{"nil record", nil, false},
		{"not present", &PatentRecord{Present: false, Tilt: 0.5}, false},
		{"zero tilt", &PatentRecord{Present: true, Tilt: 0}, false},
		{"positive tilt", &PatentRecord{Present: true, Tilt: 0.3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patent.HasTilt(); got != tt.want {
				t.Errorf("HasTilt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMissingInputError(t *testing.T) {
	err := NewMissingInput(ScoreLynch, "earnings_growth|revenue_history")
	wrapped := fmt.Errorf("score AAPL: %w", err)

	if !errors.Is(wrapped, ErrMissingInput) {
		t.Error("errors.Is(wrapped, ErrMissingInput) = false")
	}

	var mi *MissingInputError
	if !errors.As(wrapped, &mi) {
		t.Fatal("errors.As failed")
	}
	if mi.Score != ScoreLynch {
		t.Errorf("Score = %s, want lynch", mi.Score)
	}
	if mi.Error() != "lynch score: missing input earnings_growth|revenue_history" {
		t.Errorf("Error() = %q", mi.Error())
	}
}

func TestMacroInputs_Equal(t *testing.T) {
	a := MacroInputs{TenYearYield: Float(0.042), WTI: Float(80), Sources: map[string]MacroSource{"wti": MacroSourceLive}}
	b := MacroInputs{TenYearYield: Float(0.042), WTI: Float(80), Sources: map[string]MacroSource{"wti": MacroSourceOverride}}
	c := MacroInputs{TenYearYield: Float(0.042)}

	if !a.Equal(b) {
		t.Error("inputs with same values should be equal regardless of source")
	}
	if a.Equal(c) {
		t.Error("inputs with different presence should differ")
	}
}

func TestMacroInputs_SetGet(t *testing.T) {
	var m MacroInputs
	m.Set(MacroWTI, 78.5, MacroSourceLive)
	m.Set(MacroGold, math.NaN(), MacroSourceLive)
	m.Set("unknown", 1, MacroSourceOverride)

	if got := m.Get(MacroWTI); got == nil || *got != 78.5 {
		t.Errorf("Get(wti) = %v, want 78.5", got)
	}
	if m.Get(MacroGold) != nil {
		t.Error("NaN should not be stored")
	}
	if m.Sources[MacroWTI] != MacroSourceLive {
		t.Errorf("Sources[wti] = %q", m.Sources[MacroWTI])
	}
	if len(m.Sources) != 1 {
		t.Errorf("Sources = %v, want only wti", m.Sources)
	}
}
