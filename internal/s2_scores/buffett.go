package s2_scores

import (
	"context"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// BuffettCalculator scores durable quality: returns on capital, cash generation, low debt
// ⭐ SSOT: Buffett 점수 계산은 여기서만
type BuffettCalculator struct {
	cfg       strategyconfig.Buffett
	smoothing float64
	logger    *logger.Logger
}

// NewBuffettCalculator creates a new Buffett calculator
func NewBuffettCalculator(cfg strategyconfig.Buffett, smoothing float64, log *logger.Logger) *BuffettCalculator {
	return &BuffettCalculator{
		cfg:       cfg,
		smoothing: smoothing,
		logger:    log,
	}
}

// BuffettMetrics are the derived inputs of the Buffett score
type BuffettMetrics struct {
	NOPAT           float64
	InvestedCapital float64
	Revenue         float64
	EBIT            float64
	FCF             float64
	MarketCap       float64
	NetDebt         float64
	Coverage        coverage
}

// BuffettDetails are the raw components behind the score
type BuffettDetails struct {
	ROIC             *float64 // nil when invested capital <= 0
	FCFMargin        float64
	FCFYield         float64
	EBITMargin       float64
	Leverage         float64
	InterestCoverage *float64 // nil when no interest is paid
}

// Calculate calculates the Buffett score for a company
func (c *BuffettCalculator) Calculate(ctx context.Context, rec *contracts.CompanyRecord) (float64, BuffettDetails, error) {
	m, err := c.metrics(rec)
	if err != nil {
		return 0, BuffettDetails{}, err
	}

	score, details := c.calculateScore(m)

	c.logger.WithFields(map[string]interface{}{
		"ticker":      rec.Ticker,
		"fcf_margin":  details.FCFMargin,
		"ebit_margin": details.EBITMargin,
		"leverage":    details.Leverage,
		"score":       score,
	}).Debug("Calculated buffett score")

	return score, details, nil
}

func (c *BuffettCalculator) metrics(rec *contracts.CompanyRecord) (BuffettMetrics, error) {
	var m BuffettMetrics
	var ok bool

	if m.NOPAT, ok = nopat(rec, c.cfg.DefaultTaxRate); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, missNOPAT)
	}
	if m.InvestedCapital, ok = investedCapital(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, missInvestedCap)
	}
	if m.Revenue, ok = revenue(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, string(contracts.MetricRevenue))
	}
	if m.EBIT, ok = rec.Value(contracts.MetricEBIT); !ok {
		// NOPAT가 직접 주어진 경우에도 EBIT 마진은 EBIT 필요
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, string(contracts.MetricEBIT))
	}
	if m.FCF, ok = freeCashFlow(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, missFCF)
	}
	if m.MarketCap, ok = marketCap(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, string(contracts.MetricMarketCap))
	}
	if m.NetDebt, ok = leverageDebt(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, missNetDebt)
	}
	if m.Coverage, ok = interestCoverage(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreBuffett, missCoverage)
	}
	return m, nil
}

// calculateScore calculates Buffett score (0 ~ 100)
func (c *BuffettCalculator) calculateScore(m BuffettMetrics) (float64, BuffettDetails) {
	details := BuffettDetails{
		FCFMargin:  m.FCF / m.Revenue,
		FCFYield:   m.FCF / m.MarketCap,
		EBITMargin: m.EBIT / m.Revenue,
		Leverage:   m.NetDebt / m.MarketCap,
	}

	// ROIC: 투하자본이 0 이하이면 NOPAT 부호만 반영
	var roicScore float64
	if m.InvestedCapital > 0 {
		roic := m.NOPAT / m.InvestedCapital
		details.ROIC = ptr(roic)
		roicScore = scale(roic, c.cfg.ROIC)
	} else {
		switch {
		case m.NOPAT > 0:
			roicScore = 1
		case m.NOPAT < 0:
			roicScore = -1
		}
	}

	coverageScore := 1.0
	if !m.Coverage.unlimited {
		details.InterestCoverage = ptr(m.Coverage.ratio)
		coverageScore = scale(m.Coverage.ratio, c.cfg.Coverage)
	}

	raw := c.cfg.ROIC.Weight*roicScore +
		c.cfg.FCFMargin.Weight*scale(details.FCFMargin, c.cfg.FCFMargin) +
		c.cfg.FCFYield.Weight*scale(details.FCFYield, c.cfg.FCFYield) +
		c.cfg.EBITMargin.Weight*scale(details.EBITMargin, c.cfg.EBITMargin) +
		c.cfg.Leverage.Weight*scaleInverse(details.Leverage, c.cfg.Leverage) +
		c.cfg.Coverage.Weight*coverageScore

	return toScore(raw, c.smoothing), details
}
