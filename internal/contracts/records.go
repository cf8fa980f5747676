package contracts

import (
	"math"
	"time"
)

// Metric names a scalar financial field of a company record
type Metric string

// Financial metrics understood by the scoring engine
const (
	MetricRevenue           Metric = "revenue"
	MetricEBIT              Metric = "ebit"
	MetricNOPAT             Metric = "nopat"
	MetricTaxRate           Metric = "tax_rate"
	MetricFCF               Metric = "fcf"
	MetricOperatingCashFlow Metric = "operating_cash_flow"
	MetricCapex             Metric = "capex"
	MetricMarketCap         Metric = "market_cap"
	MetricPrice             Metric = "price"
	MetricPE                Metric = "pe"
	MetricEPS               Metric = "eps"
	MetricDividendYield     Metric = "dividend_yield"
	MetricEarningsGrowth    Metric = "earnings_growth"
	MetricInterestExpense   Metric = "interest_expense"
	MetricInterestCoverage  Metric = "interest_coverage"
	MetricNetDebt           Metric = "net_debt"
	MetricTotalDebt         Metric = "total_debt"
	MetricCash              Metric = "cash"
	MetricShortTermInvest   Metric = "short_term_investments"
	MetricGoodwill          Metric = "goodwill"
	MetricIntangibles       Metric = "intangibles"
	MetricNetPPE            Metric = "net_ppe"
	MetricNetPPEPrev        Metric = "net_ppe_prev"
	MetricOperatingWC       Metric = "operating_working_capital"
	MetricOperatingWCPrev   Metric = "operating_working_capital_prev"
	MetricSharesChange3Y    Metric = "shares_change_3y"
	MetricSharesOutstanding Metric = "shares_outstanding"
)

// Series names an ordered (oldest → newest) history of a company
type Series string

// Histories understood by the scoring engine
const (
	SeriesRevenueHistory    Series = "revenue_history"
	SeriesSharesOutstanding Series = "shares_outstanding"
	SeriesWeeklyReturns     Series = "weekly_returns"
	SeriesWeeklyClose       Series = "weekly_close"
)

// CompanyRecord is the per-company input of the scoring engine
// ⭐ SSOT: S0 → S2 재무 레코드 전달 (호출자 소유, 불변)
type CompanyRecord struct {
	Ticker  string               `json:"ticker"`
	Region  string               `json:"region,omitempty"`
	Sector  string               `json:"sector,omitempty"`
	Notes   string               `json:"notes,omitempty"`
	AsOf    time.Time            `json:"as_of"`
	Metrics map[Metric]float64   `json:"metrics"`
	Series  map[Series][]float64 `json:"series,omitempty"`
}

// Value returns a metric and whether it is present.
// NaN and ±Inf count as absent.
func (r *CompanyRecord) Value(m Metric) (float64, bool) {
	if r == nil || r.Metrics == nil {
		return 0, false
	}
	v, ok := r.Metrics[m]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// SeriesValues returns the finite values of a series in order
func (r *CompanyRecord) SeriesValues(s Series) []float64 {
	if r == nil || r.Series == nil {
		return nil
	}
	raw := r.Series[s]
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Has reports whether a metric is present
func (r *CompanyRecord) Has(m Metric) bool {
	_, ok := r.Value(m)
	return ok
}

// With returns a copy of the record with one metric set.
// The receiver is never modified.
func (r *CompanyRecord) With(m Metric, v float64) *CompanyRecord {
	cp := r.Clone()
	cp.Metrics[m] = v
	return cp
}

// Without returns a copy of the record with one metric removed
func (r *CompanyRecord) Without(m Metric) *CompanyRecord {
	cp := r.Clone()
	delete(cp.Metrics, m)
	return cp
}

// Clone returns a deep copy of the record
func (r *CompanyRecord) Clone() *CompanyRecord {
	cp := *r
	cp.Metrics = make(map[Metric]float64, len(r.Metrics))
	for k, v := range r.Metrics {
		cp.Metrics[k] = v
	}
	if r.Series != nil {
		cp.Series = make(map[Series][]float64, len(r.Series))
		for k, v := range r.Series {
			cp.Series[k] = append([]float64(nil), v...)
		}
	}
	return &cp
}

// PatentRecord carries optional IP/innovation data for one company.
// A nil *PatentRecord means no patents data was supplied.
type PatentRecord struct {
	Ticker           string  `json:"ticker"`
	Present          bool    `json:"present"`
	PatentCount      float64 `json:"patent_count"`
	ForwardCitations float64 `json:"forward_citations"`
	RDToSales        float64 `json:"rd_to_sales"`
	Tilt             float64 `json:"tilt"` // moat/innovation tilt (-1.0 ~ 1.0)
}

// HasTilt reports whether the record should adjust scores at all
func (p *PatentRecord) HasTilt() bool {
	return p != nil && p.Present && p.Tilt != 0 && !math.IsNaN(p.Tilt)
}

// MacroSource tells where a macro input came from
type MacroSource string

const (
	MacroSourceOverride MacroSource = "override"
	MacroSourceLive     MacroSource = "live"
)

// MacroInputs holds the macro sensitivity inputs of the Soros score.
// nil fields are absent.
type MacroInputs struct {
	TenYearYield *float64               `json:"ten_year_yield,omitempty"` // decimal, 0.042 = 4.2%
	USDIndex     *float64               `json:"usd_dxy,omitempty"`
	WTI          *float64               `json:"wti,omitempty"`
	Gold         *float64               `json:"gold,omitempty"`
	Sources      map[string]MacroSource `json:"sources,omitempty"`
}

// Float returns a pointer to v, for building MacroInputs literals
func Float(v float64) *float64 {
	return &v
}

// Equal compares values only; sources are ignored
func (m MacroInputs) Equal(o MacroInputs) bool {
	return floatPtrEqual(m.TenYearYield, o.TenYearYield) &&
		floatPtrEqual(m.USDIndex, o.USDIndex) &&
		floatPtrEqual(m.WTI, o.WTI) &&
		floatPtrEqual(m.Gold, o.Gold)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Macro input field names, as used in macro_overrides.json and Sources
const (
	MacroTenYearYield = "ten_year_yield"
	MacroUSDIndex     = "usd_dxy"
	MacroWTI          = "wti"
	MacroGold         = "gold"
)

// MacroFields lists the macro inputs in display order
var MacroFields = []string{MacroTenYearYield, MacroUSDIndex, MacroWTI, MacroGold}

// Get returns a macro field by name (nil when absent or unknown)
func (m MacroInputs) Get(field string) *float64 {
	switch field {
	case MacroTenYearYield:
		return m.TenYearYield
	case MacroUSDIndex:
		return m.USDIndex
	case MacroWTI:
		return m.WTI
	case MacroGold:
		return m.Gold
	}
	return nil
}

// Set stores a macro field and its source. Non-finite values are ignored.
func (m *MacroInputs) Set(field string, v float64, src MacroSource) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	p := Float(v)
	switch field {
	case MacroTenYearYield:
		m.TenYearYield = p
	case MacroUSDIndex:
		m.USDIndex = p
	case MacroWTI:
		m.WTI = p
	case MacroGold:
		m.Gold = p
	default:
		return
	}
	if m.Sources == nil {
		m.Sources = make(map[string]MacroSource)
	}
	m.Sources[field] = src
}
