package s2_scores

import (
	"context"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// IPBoostCalculator applies the patent moat/innovation tilt to Buffett and Simons
// ⭐ SSOT: IP 가산점 계산은 여기서만
type IPBoostCalculator struct {
	cfg    strategyconfig.IPBoost
	logger *logger.Logger
}

// NewIPBoostCalculator creates a new IP boost calculator
func NewIPBoostCalculator(cfg strategyconfig.IPBoost, log *logger.Logger) *IPBoostCalculator {
	return &IPBoostCalculator{
		cfg:    cfg,
		logger: log,
	}
}

// Boosted is the result of applying the tilt to one base score
type Boosted struct {
	Score  float64
	Points float64 // Score - base
}

// Tilt returns the clamped tilt of a patent record, 0 when absent
func (c *IPBoostCalculator) Tilt(patent *contracts.PatentRecord) float64 {
	if !patent.HasTilt() || !finite(patent.Tilt) {
		return 0
	}
	return clamp(patent.Tilt, -1, 1)
}

// Apply adjusts a base score by the tilt. A zero tilt returns base unchanged.
func (c *IPBoostCalculator) Apply(base, tilt float64) Boosted {
	if tilt == 0 {
		return Boosted{Score: base}
	}

	var boosted float64
	switch c.cfg.Mode {
	case strategyconfig.BoostMultiplicative:
		boosted = base * (1 + c.cfg.MaxPct*tilt)
	default:
		boosted = base + c.cfg.MaxPoints*tilt
	}
	boosted = clamp(boosted, 0, 100)

	return Boosted{Score: boosted, Points: boosted - base}
}

// Calculate returns the IP boost score, the points the tilt adds to a neutral (50) score,
// and the tilt itself. An absent patent record has a neutral (zero) tilt.
func (c *IPBoostCalculator) Calculate(ctx context.Context, ticker string, patent *contracts.PatentRecord) (float64, float64, error) {
	tilt := c.Tilt(patent)
	b := c.Apply(50, tilt)

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"tilt":   tilt,
		"points": b.Points,
	}).Debug("Calculated ip boost")

	return b.Points, tilt, nil
}

// DeriveTilt builds a tilt (0.0 ~ 1.0) from raw patent data when the source has no tilt column.
// Each input saturates as x / (x + half).
func DeriveTilt(cfg strategyconfig.IPBoost, patentCount, citations, rdToSales float64) float64 {
	return cfg.PatentWeight*saturate(patentCount, cfg.PatentHalf) +
		cfg.CitationWeight*saturate(citations, cfg.CitationHalf) +
		cfg.RDWeight*saturate(rdToSales, cfg.RDHalf)
}

func saturate(x, half float64) float64 {
	if !finite(x) || x <= 0 || half <= 0 {
		return 0
	}
	return x / (x + half)
}
