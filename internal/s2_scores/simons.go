package s2_scores

import (
	"context"
	"math"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// SimonsCalculator scores statistical edge in weekly returns. No fundamentals.
// ⭐ SSOT: Simons 점수 계산은 여기서만
type SimonsCalculator struct {
	cfg       strategyconfig.Simons
	smoothing float64
	logger    *logger.Logger
}

// NewSimonsCalculator creates a new Simons calculator
func NewSimonsCalculator(cfg strategyconfig.Simons, smoothing float64, log *logger.Logger) *SimonsCalculator {
	return &SimonsCalculator{
		cfg:       cfg,
		smoothing: smoothing,
		logger:    log,
	}
}

// SimonsDetails are the raw components behind the score
type SimonsDetails struct {
	Returns  int
	WeeklyAC float64 // lag-1 autocorrelation of returns
	VolClust float64 // lag-1 autocorrelation of squared returns
	RetPred  float64 // |mean| / stdev
}

// Calculate calculates the Simons score for a company
func (c *SimonsCalculator) Calculate(ctx context.Context, rec *contracts.CompanyRecord) (float64, SimonsDetails, error) {
	returns := weeklyReturns(rec)
	minReturns := c.cfg.MinReturns
	if minReturns < 3 {
		minReturns = 3
	}
	if len(returns) < minReturns {
		return 0, SimonsDetails{}, contracts.NewMissingInput(contracts.ScoreSimons, missReturns)
	}

	score, details := c.calculateScore(returns)

	c.logger.WithFields(map[string]interface{}{
		"ticker":    rec.Ticker,
		"returns":   details.Returns,
		"weekly_ac": details.WeeklyAC,
		"vol_clust": details.VolClust,
		"ret_pred":  details.RetPred,
		"score":     score,
	}).Debug("Calculated simons score")

	return score, details, nil
}

// calculateScore calculates Simons score (0 ~ 100)
func (c *SimonsCalculator) calculateScore(returns []float64) (float64, SimonsDetails) {
	details := SimonsDetails{
		Returns:  len(returns),
		WeeklyAC: autocorr(returns, 1),
		VolClust: autocorr(squares(unitScaled(returns, maxAbs(returns))), 1),
		RetPred:  math.Abs(mean(returns)) / (stdDev(returns) + 1e-12),
	}

	raw := c.cfg.Autocorr.Weight*scale(details.WeeklyAC, c.cfg.Autocorr) +
		c.cfg.VolClust.Weight*scale(details.VolClust, c.cfg.VolClust) +
		c.cfg.RetPred.Weight*scale(details.RetPred, c.cfg.RetPred)

	return toScore(raw, c.smoothing), details
}
