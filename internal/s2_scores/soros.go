package s2_scores

import (
	"context"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// SorosCalculator scores reflexivity optionality: cheap on FCF, macro-sensitive, able to survive rates
// ⭐ SSOT: Soros 점수 계산은 여기서만
type SorosCalculator struct {
	cfg       strategyconfig.Soros
	smoothing float64
	logger    *logger.Logger
}

// NewSorosCalculator creates a new Soros calculator
func NewSorosCalculator(cfg strategyconfig.Soros, smoothing float64, log *logger.Logger) *SorosCalculator {
	return &SorosCalculator{
		cfg:       cfg,
		smoothing: smoothing,
		logger:    log,
	}
}

// Exposure flags derived from sector and balance sheet
type Exposure struct {
	Cyclical      bool
	RateSensitive bool
	FXSensitive   bool
}

// SorosMetrics are the derived inputs of the Soros score
type SorosMetrics struct {
	MarketCap float64
	FCF       float64
	Coverage  coverage
	Exposure  Exposure
}

// SorosDetails are the raw components behind the score
type SorosDetails struct {
	PToFCF           *float64
	MacroSensitivity float64
	InterestCoverage *float64
	Exposure         Exposure
}

// Calculate calculates the Soros score for a company.
// macro is passed explicitly; fields that are nil count as neutral stress.
func (c *SorosCalculator) Calculate(ctx context.Context, rec *contracts.CompanyRecord, macro contracts.MacroInputs) (float64, SorosDetails, error) {
	m, err := c.metrics(rec)
	if err != nil {
		return 0, SorosDetails{}, err
	}

	score, details := c.calculateScore(m, macro)

	c.logger.WithFields(map[string]interface{}{
		"ticker":            rec.Ticker,
		"sector":            rec.Sector,
		"macro_sensitivity": details.MacroSensitivity,
		"score":             score,
	}).Debug("Calculated soros score")

	return score, details, nil
}

func (c *SorosCalculator) metrics(rec *contracts.CompanyRecord) (SorosMetrics, error) {
	var m SorosMetrics
	var ok bool

	if m.MarketCap, ok = marketCap(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreSoros, string(contracts.MetricMarketCap))
	}
	if m.FCF, ok = freeCashFlow(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreSoros, missFCF)
	}
	if m.Coverage, ok = interestCoverage(rec); !ok {
		return m, contracts.NewMissingInput(contracts.ScoreSoros, missCoverage)
	}
	m.Exposure = c.exposure(rec)
	return m, nil
}

// exposure derives the sector flags. Net debt > 0 also marks a company rate-sensitive.
func (c *SorosCalculator) exposure(rec *contracts.CompanyRecord) Exposure {
	sector := strings.ToLower(rec.Sector)
	e := Exposure{
		Cyclical:      containsAny(sector, c.cfg.Exposure.Cyclical),
		RateSensitive: containsAny(sector, c.cfg.Exposure.RateSensitive),
		FXSensitive:   containsAny(sector, c.cfg.Exposure.FXSensitive),
	}
	if nd, ok := netDebt(rec); ok && nd > 0 {
		e.RateSensitive = true
	}
	return e
}

// MacroSensitivity sums the exposure flags, each weighted by the stress of its macro driver.
// Cyclical follows oil and gold, rate-sensitive the 10y yield, FX-sensitive the dollar index.
// With no macro inputs every flag counts 1.
func (c *SorosCalculator) MacroSensitivity(e Exposure, macro contracts.MacroInputs) float64 {
	n := c.cfg.Neutral
	total := 0.0
	if e.Cyclical {
		s := (stress(macro.WTI, n.WTI) + stress(macro.Gold, n.Gold)) / 2
		total += 0.75 + 0.5*s
	}
	if e.RateSensitive {
		total += 0.75 + 0.5*stress(macro.TenYearYield, n.TenYearYield)
	}
	if e.FXSensitive {
		total += 0.75 + 0.5*stress(macro.USDIndex, n.USDIndex)
	}
	return total
}

// stress maps a macro level to [0, 1]; the neutral level and an absent value map to 0.5
func stress(level *float64, neutral float64) float64 {
	if level == nil || !finite(*level) || neutral <= 0 {
		return 0.5
	}
	return clamp(0.5*(*level)/neutral, 0, 1)
}

// calculateScore calculates Soros score (0 ~ 100)
func (c *SorosCalculator) calculateScore(m SorosMetrics, macro contracts.MacroInputs) (float64, SorosDetails) {
	details := SorosDetails{
		MacroSensitivity: c.MacroSensitivity(m.Exposure, macro),
		Exposure:         m.Exposure,
	}

	pfcfScore := -1.0
	if m.FCF > 0 {
		pfcf := m.MarketCap / m.FCF
		details.PToFCF = ptr(pfcf)
		pfcfScore = scaleInverse(pfcf, c.cfg.PToFCF)
	}

	coverageScore := 1.0
	if !m.Coverage.unlimited {
		details.InterestCoverage = ptr(m.Coverage.ratio)
		coverageScore = scale(m.Coverage.ratio, c.cfg.Coverage)
	}

	raw := c.cfg.PToFCF.Weight*pfcfScore +
		c.cfg.MacroSensitivity.Weight*scale(details.MacroSensitivity, c.cfg.MacroSensitivity) +
		c.cfg.Coverage.Weight*coverageScore

	return toScore(raw, c.smoothing), details
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
