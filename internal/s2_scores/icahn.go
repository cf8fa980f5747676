package s2_scores

import (
	"context"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// IcahnCalculator scores activist unlock potential: idle cash, cheap FCF, buybacks
// ⭐ SSOT: Icahn 점수 계산은 여기서만
type IcahnCalculator struct {
	cfg       strategyconfig.Icahn
	smoothing float64
	logger    *logger.Logger
}

// NewIcahnCalculator creates a new Icahn calculator
func NewIcahnCalculator(cfg strategyconfig.Icahn, smoothing float64, log *logger.Logger) *IcahnCalculator {
	return &IcahnCalculator{
		cfg:       cfg,
		smoothing: smoothing,
		logger:    log,
	}
}

// IcahnMetrics are the derived inputs of the Icahn score
type IcahnMetrics struct {
	Cash         float64
	MarketCap    float64
	FCF          float64
	SharesChange float64 // 3년 주식수 변화율 (음수 = 자사주 소각)
	NetDebt      float64
}

// IcahnDetails are the raw components behind the score
type IcahnDetails struct {
	CashToMcap   float64
	PToFCF       *float64 // nil when FCF <= 0
	SharesChange float64
	Leverage     float64
}

// Calculate calculates the Icahn score for a company
func (c *IcahnCalculator) Calculate(ctx context.Context, rec *contracts.CompanyRecord) (float64, IcahnDetails, error) {
	m, err := c.metrics(rec)
	if err != nil {
		return 0, IcahnDetails{}, err
	}

	score, details := c.calculateScore(m)

	c.logger.WithFields(map[string]interface{}{
		"ticker":        rec.Ticker,
		"cash_to_mcap":  details.CashToMcap,
		"shares_change": details.SharesChange,
		"score":         score,
	}).Debug("Calculated icahn score")

	return score, details, nil
}

func (c *IcahnCalculator) metrics(rec *contracts.CompanyRecord) (IcahnMetrics, error) {
	var m IcahnMetrics
	var ok bool

	if m.Cash, ok = cashLike(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreIcahn, string(contracts.MetricCash))
	}
	if m.MarketCap, ok = marketCap(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreIcahn, string(contracts.MetricMarketCap))
	}
	if m.FCF, ok = freeCashFlow(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreIcahn, missFCF)
	}
	if m.SharesChange, ok = sharesChange(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreIcahn, missShares)
	}
	if m.NetDebt, ok = netDebt(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreIcahn, missNetDebt)
	}
	return m, nil
}

// calculateScore calculates Icahn score (0 ~ 100)
func (c *IcahnCalculator) calculateScore(m IcahnMetrics) (float64, IcahnDetails) {
	details := IcahnDetails{
		CashToMcap:   m.Cash / m.MarketCap,
		SharesChange: m.SharesChange,
		Leverage:     m.NetDebt / m.MarketCap,
	}

	pfcfScore := -1.0
	if m.FCF > 0 {
		pfcf := m.MarketCap / m.FCF
		details.PToFCF = ptr(pfcf)
		pfcfScore = scaleInverse(pfcf, c.cfg.PToFCF)
	}

	raw := c.cfg.CashToMcap.Weight*scale(details.CashToMcap, c.cfg.CashToMcap) +
		c.cfg.PToFCF.Weight*pfcfScore +
		c.cfg.SharesChange.Weight*scaleInverse(details.SharesChange, c.cfg.SharesChange) +
		c.cfg.Leverage.Weight*scaleInverse(details.Leverage, c.cfg.Leverage)

	return toScore(raw, c.smoothing), details
}
