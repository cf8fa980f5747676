package selection

import (
	"context"
	"sort"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// Ranker implements S3: meta-score ranking
// ⭐ SSOT: S3 랭킹 로직은 여기서만
type Ranker struct {
	config strategyconfig.Selection
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(config strategyconfig.Selection, logger *logger.Logger) *Ranker {
	return &Ranker{
		config: config,
		logger: logger,
	}
}

// metaScores are the scores that enter the meta-score; ip_boost is already inside Buffett/Simons
var metaScores = []contracts.ScoreName{
	contracts.ScoreBuffett,
	contracts.ScoreLynch,
	contracts.ScoreIcahn,
	contracts.ScoreSoros,
	contracts.ScoreSimons,
}

// hasMetaScore reports whether any meta score was computed for the card
func hasMetaScore(card *contracts.ScoreCard) bool {
	for _, name := range metaScores {
		if _, ok := card.Get(name); ok {
			return true
		}
	}
	return false
}

// Rank calculates meta-scores and ranks companies.
// Cards without any meta score are kept at the bottom with meta 0 (ticker order),
// so every company appears in the results. Ties are broken by ticker.
func (r *Ranker) Rank(ctx context.Context, cards []*contracts.ScoreCard) ([]contracts.RankedCompany, error) {
	scores := r.scoreTable(cards)

	ranked := make([]contracts.RankedCompany, 0, len(cards))
	var unscored []contracts.RankedCompany
	for i, card := range cards {
		entry := contracts.RankedCompany{
			QualityFlag: r.qualityFlag(card),
			CashFlag:    r.cashFlag(card),
			Card:        card,
		}

		meta, ok := r.calculateMetaScore(scores[i])
		if !ok {
			r.logger.WithFields(map[string]interface{}{
				"ticker": card.Ticker,
				"errors": len(card.Errors),
			}).Warn("No scores available for ticker")
			entry.Unscored = true
			unscored = append(unscored, entry)
			continue
		}

		entry.MetaScore = meta
		ranked = append(ranked, entry)
	}

	// Sort by meta score (descending), then ticker
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MetaScore != ranked[j].MetaScore {
			return ranked[i].MetaScore > ranked[j].MetaScore
		}
		return ranked[i].Card.Ticker < ranked[j].Card.Ticker
	})
	sort.SliceStable(unscored, func(i, j int) bool {
		return unscored[i].Card.Ticker < unscored[j].Card.Ticker
	})
	ranked = append(ranked, unscored...)

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"total_companies": len(ranked),
			"unscored":        len(unscored),
			"normalization":   r.config.Normalization,
			"top_score":       ranked[0].MetaScore,
			"top_ticker":      ranked[0].Card.Ticker,
		}).Info("Ranking completed")
	}

	return ranked, nil
}

// scoreTable returns the per-card scores used for the meta-score,
// rescaled across companies when cross-sectional normalization is on.
func (r *Ranker) scoreTable(cards []*contracts.ScoreCard) []map[contracts.ScoreName]float64 {
	table := make([]map[contracts.ScoreName]float64, len(cards))
	for i, card := range cards {
		table[i] = make(map[contracts.ScoreName]float64, len(metaScores))
		for _, name := range metaScores {
			if v, ok := card.Get(name); ok {
				table[i][name] = v
			}
		}
	}

	if r.config.Normalization != strategyconfig.NormalizationCrossSectional {
		return table
	}

	for _, name := range metaScores {
		lo, hi, n := 0.0, 0.0, 0
		for _, row := range table {
			v, ok := row[name]
			if !ok {
				continue
			}
			if n == 0 || v < lo {
				lo = v
			}
			if n == 0 || v > hi {
				hi = v
			}
			n++
		}
		for _, row := range table {
			v, ok := row[name]
			if !ok {
				continue
			}
			// 모두 같은 값이면 중립
			if hi == lo {
				row[name] = 50
			} else {
				row[name] = 100 * (v - lo) / (hi - lo)
			}
		}
	}
	return table
}

// calculateMetaScore calculates the weighted mean over the scores present
func (r *Ranker) calculateMetaScore(scores map[contracts.ScoreName]float64) (float64, bool) {
	total, weightSum := 0.0, 0.0
	for _, name := range metaScores {
		v, ok := scores[name]
		if !ok {
			continue
		}
		w := r.weight(name)
		total += v * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0, false
	}
	return total / weightSum, true
}

func (r *Ranker) weight(name contracts.ScoreName) float64 {
	w := r.config.MetaWeights
	switch name {
	case contracts.ScoreBuffett:
		return w.Buffett
	case contracts.ScoreLynch:
		return w.Lynch
	case contracts.ScoreIcahn:
		return w.Icahn
	case contracts.ScoreSoros:
		return w.Soros
	case contracts.ScoreSimons:
		return w.Simons
	default:
		return 0
	}
}

// qualityFlag: ROIC and EBIT margin both above threshold
func (r *Ranker) qualityFlag(card *contracts.ScoreCard) bool {
	d := card.Details
	if d.ROIC == nil || d.EBITMargin == nil {
		return false
	}
	return *d.ROIC >= r.config.QualityFlag.MinROIC && *d.EBITMargin >= r.config.QualityFlag.MinEBITMargin
}

// cashFlag: FCF margin or FCF yield above threshold
func (r *Ranker) cashFlag(card *contracts.ScoreCard) bool {
	d := card.Details
	if d.FCFMargin != nil && *d.FCFMargin >= r.config.CashFlag.MinFCFMargin {
		return true
	}
	return d.FCFYield != nil && *d.FCFYield >= r.config.CashFlag.MinFCFYield
}
