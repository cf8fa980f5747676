package s2_scores

import (
	"context"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// LynchCalculator scores growth at a reasonable price (PEG, PEGY)
// ⭐ SSOT: Lynch 점수 계산은 여기서만
type LynchCalculator struct {
	cfg       strategyconfig.Lynch
	smoothing float64
	logger    *logger.Logger
}

// NewLynchCalculator creates a new Lynch calculator
func NewLynchCalculator(cfg strategyconfig.Lynch, smoothing float64, log *logger.Logger) *LynchCalculator {
	return &LynchCalculator{
		cfg:       cfg,
		smoothing: smoothing,
		logger:    log,
	}
}

// LynchMetrics are the derived inputs of the Lynch score
type LynchMetrics struct {
	PE            float64
	Growth        float64 // decimal or percent, see asPercent
	GrowthSource  string
	DividendYield float64 // decimal or percent, 0 when absent
	NetDebt       float64
	MarketCap     float64
}

// LynchDetails are the raw components behind the score
type LynchDetails struct {
	PE           float64
	PEG          *float64 // nil when growth or P/E is non-positive
	PEGY         *float64
	GrowthProxy  float64 // decimal
	GrowthSource string
	Leverage     float64
}

// Calculate calculates the Lynch score for a company
func (c *LynchCalculator) Calculate(ctx context.Context, rec *contracts.CompanyRecord) (float64, LynchDetails, error) {
	m, err := c.metrics(rec)
	if err != nil {
		return 0, LynchDetails{}, err
	}

	score, details := c.calculateScore(m)

	c.logger.WithFields(map[string]interface{}{
		"ticker":        rec.Ticker,
		"pe":            details.PE,
		"growth":        details.GrowthProxy,
		"growth_source": details.GrowthSource,
		"score":         score,
	}).Debug("Calculated lynch score")

	return score, details, nil
}

func (c *LynchCalculator) metrics(rec *contracts.CompanyRecord) (LynchMetrics, error) {
	var m LynchMetrics
	var ok bool

	if m.Growth, m.GrowthSource, ok = growthProxy(rec, c.cfg.CAGRMaxPoints); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreLynch, missGrowth)
	}
	if m.PE, ok = priceToEarnings(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreLynch, missPE)
	}
	if m.MarketCap, ok = marketCap(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreLynch, string(contracts.MetricMarketCap))
	}
	if m.NetDebt, ok = netDebt(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreLynch, missNetDebt)
	}
	// 배당 없음 = 0 (PEGY = PEG)
	if dy, ok := rec.Value(contracts.MetricDividendYield); ok && dy > 0 {
		m.DividendYield = dy
	}
	return m, nil
}

// calculateScore calculates Lynch score (0 ~ 100)
func (c *LynchCalculator) calculateScore(m LynchMetrics) (float64, LynchDetails) {
	growthPct := asPercent(m.Growth)
	details := LynchDetails{
		PE:           m.PE,
		GrowthProxy:  growthPct / 100,
		GrowthSource: m.GrowthSource,
		Leverage:     m.NetDebt / m.MarketCap,
	}

	// 성장률 또는 P/E가 0 이하이면 PEG/PEGY는 최악값
	pegScore, pegyScore := -1.0, -1.0
	if growthPct > 0 && m.PE > 0 {
		peg := m.PE / growthPct
		pegy := m.PE / (growthPct + asPercent(m.DividendYield))
		details.PEG = ptr(peg)
		details.PEGY = ptr(pegy)
		pegScore = scaleInverse(peg, c.cfg.PEG)
		pegyScore = scaleInverse(pegy, c.cfg.PEGY)
	}

	raw := c.cfg.PEG.Weight*pegScore +
		c.cfg.PEGY.Weight*pegyScore +
		c.cfg.Growth.Weight*scale(details.GrowthProxy, c.cfg.Growth) +
		c.cfg.Leverage.Weight*scaleInverse(details.Leverage, c.cfg.Leverage)

	return toScore(raw, c.smoothing), details
}
