package s2_scores

import (
	"math"

	"github.com/wonny/screener/internal/contracts"
)

// Derived fundamentals shared by several scores.
// Each helper returns ok=false when neither the metric nor its fallback is available;
// the caller turns that into a MissingInputError for its own score.

// Alternative metric names reported in MissingInputError
const (
	missNOPAT       = "ebit|nopat"
	missInvestedCap = "net_ppe|operating_working_capital"
	missFCF         = "fcf|operating_cash_flow"
	missNetDebt     = "net_debt|total_debt"
	missCoverage    = "interest_coverage|interest_expense"
	missPE          = "pe|price"
	missGrowth      = "earnings_growth|revenue_history"
	missShares      = "shares_change_3y|shares_outstanding"
	missReturns     = "weekly_returns|weekly_close"
)

// nopat returns NOPAT, or EBIT·(1 - tax) with the record's tax_rate or defaultTax
func nopat(rec *contracts.CompanyRecord, defaultTax float64) (float64, bool) {
	if v, ok := rec.Value(contracts.MetricNOPAT); ok {
		return v, true
	}
	ebit, ok := rec.Value(contracts.MetricEBIT)
	if !ok {
		return 0, false
	}
	tax := defaultTax
	if t, ok := rec.Value(contracts.MetricTaxRate); ok && t >= 0 && t < 1 {
		tax = t
	}
	return ebit * (1 - tax), true
}

// investedCapital returns operating invested capital: net PP&E + operating working capital.
// Current and prior period are averaged when the prior period is present.
// Cash, goodwill and intangibles are never part of it.
func investedCapital(rec *contracts.CompanyRecord) (float64, bool) {
	ppe, hasPPE := rec.Value(contracts.MetricNetPPE)
	owc, hasOWC := rec.Value(contracts.MetricOperatingWC)
	if !hasPPE && !hasOWC {
		return 0, false
	}
	now := ppe + owc

	ppePrev, hasPPEPrev := rec.Value(contracts.MetricNetPPEPrev)
	owcPrev, hasOWCPrev := rec.Value(contracts.MetricOperatingWCPrev)
	if !hasPPEPrev && !hasOWCPrev {
		return now, true
	}
	return (now + ppePrev + owcPrev) / 2, true
}

// freeCashFlow returns fcf, or operating cash flow minus |capex|
func freeCashFlow(rec *contracts.CompanyRecord) (float64, bool) {
	if v, ok := rec.Value(contracts.MetricFCF); ok {
		return v, true
	}
	ocf, hasOCF := rec.Value(contracts.MetricOperatingCashFlow)
	capex, hasCapex := rec.Value(contracts.MetricCapex)
	if !hasOCF || !hasCapex {
		return 0, false
	}
	return ocf - math.Abs(capex), true
}

// cashLike returns cash plus short-term investments
func cashLike(rec *contracts.CompanyRecord) (float64, bool) {
	cash, ok := rec.Value(contracts.MetricCash)
	if !ok {
		return 0, false
	}
	if sti, ok := rec.Value(contracts.MetricShortTermInvest); ok {
		cash += sti
	}
	return cash, true
}

// netDebt returns net_debt, or total debt minus cash-like assets
func netDebt(rec *contracts.CompanyRecord) (float64, bool) {
	if v, ok := rec.Value(contracts.MetricNetDebt); ok {
		return v, true
	}
	debt, ok := rec.Value(contracts.MetricTotalDebt)
	if !ok {
		return 0, false
	}
	cash, _ := cashLike(rec)
	return debt - cash, true
}

// leverageDebt returns net_debt, or gross total_debt.
// Buffett leverage never reads cash, so cash cannot move the Buffett score.
func leverageDebt(rec *contracts.CompanyRecord) (float64, bool) {
	if v, ok := rec.Value(contracts.MetricNetDebt); ok {
		return v, true
	}
	return rec.Value(contracts.MetricTotalDebt)
}

// marketCap returns a positive market cap
func marketCap(rec *contracts.CompanyRecord) (float64, bool) {
	v, ok := rec.Value(contracts.MetricMarketCap)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// revenue returns a positive revenue
func revenue(rec *contracts.CompanyRecord) (float64, bool) {
	v, ok := rec.Value(contracts.MetricRevenue)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// coverage is the interest coverage ratio.
// unlimited is true when the company pays no interest.
type coverage struct {
	ratio     float64
	unlimited bool
}

// interestCoverage returns interest_coverage, or EBIT / |interest expense|
func interestCoverage(rec *contracts.CompanyRecord) (coverage, bool) {
	if v, ok := rec.Value(contracts.MetricInterestCoverage); ok {
		return coverage{ratio: v}, true
	}
	interest, hasInterest := rec.Value(contracts.MetricInterestExpense)
	if !hasInterest {
		return coverage{}, false
	}
	if interest == 0 {
		return coverage{unlimited: true}, true
	}
	ebit, ok := rec.Value(contracts.MetricEBIT)
	if !ok {
		return coverage{}, false
	}
	return coverage{ratio: ebit / math.Abs(interest)}, true
}

// priceToEarnings returns pe, or price / eps
func priceToEarnings(rec *contracts.CompanyRecord) (float64, bool) {
	if v, ok := rec.Value(contracts.MetricPE); ok {
		return v, true
	}
	price, hasPrice := rec.Value(contracts.MetricPrice)
	eps, hasEPS := rec.Value(contracts.MetricEPS)
	if !hasPrice || !hasEPS || eps == 0 {
		return 0, false
	}
	return price / eps, true
}

// Growth proxy sources
const (
	GrowthSourceAnalyst     = "analyst"
	GrowthSourceRevenueCAGR = "revenue_cagr"
)

// growthProxy returns the analyst earnings growth estimate if present,
// else the revenue CAGR over the last maxPoints annual revenues.
func growthProxy(rec *contracts.CompanyRecord, maxPoints int) (float64, string, bool) {
	if g, ok := rec.Value(contracts.MetricEarningsGrowth); ok {
		return g, GrowthSourceAnalyst, true
	}

	hist := rec.SeriesValues(contracts.SeriesRevenueHistory)
	if len(hist) > maxPoints {
		hist = hist[len(hist)-maxPoints:]
	}
	if len(hist) < 2 {
		return 0, "", false
	}
	g, ok := cagr(hist[0], hist[len(hist)-1], len(hist)-1)
	if !ok {
		return 0, "", false
	}
	return g, GrowthSourceRevenueCAGR, true
}

// asPercent treats values below 1 as decimals (0.12 → 12) and the rest as percents
func asPercent(v float64) float64 {
	if v < 1 {
		return v * 100
	}
	return v
}

// sharesChange returns shares_change_3y, or the first → last change of shares_outstanding
func sharesChange(rec *contracts.CompanyRecord) (float64, bool) {
	if v, ok := rec.Value(contracts.MetricSharesChange3Y); ok {
		return v, true
	}
	hist := rec.SeriesValues(contracts.SeriesSharesOutstanding)
	if len(hist) < 2 {
		return 0, false
	}
	return pctChange(hist[0], hist[len(hist)-1])
}

// weeklyReturns returns weekly_returns, or returns derived from weekly_close
func weeklyReturns(rec *contracts.CompanyRecord) []float64 {
	if r := rec.SeriesValues(contracts.SeriesWeeklyReturns); len(r) > 0 {
		return r
	}
	return returnsFromCloses(rec.SeriesValues(contracts.SeriesWeeklyClose))
}
