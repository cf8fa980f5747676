package s2_scores

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// Recorder receives per-score outcomes (metrics)
type Recorder interface {
	ScoreComputed(score contracts.ScoreName)
	MissingInput(score contracts.ScoreName, metric string)
}

type nopRecorder struct{}

func (nopRecorder) ScoreComputed(contracts.ScoreName)        {}
func (nopRecorder) MissingInput(contracts.ScoreName, string) {}

// Engine orchestrates the six score calculators for one company
// ⭐ SSOT: 점수 계산 오케스트레이션은 여기서만
type Engine struct {
	buffett *BuffettCalculator
	lynch   *LynchCalculator
	icahn   *IcahnCalculator
	soros   *SorosCalculator
	simons  *SimonsCalculator
	ipBoost *IPBoostCalculator

	recorder Recorder
	logger   *logger.Logger
}

// NewEngine creates a scoring engine from the strategy scores section
func NewEngine(cfg strategyconfig.Scores, log *logger.Logger) *Engine {
	return &Engine{
		buffett:  NewBuffettCalculator(cfg.Buffett, cfg.Smoothing, log),
		lynch:    NewLynchCalculator(cfg.Lynch, cfg.Smoothing, log),
		icahn:    NewIcahnCalculator(cfg.Icahn, cfg.Smoothing, log),
		soros:    NewSorosCalculator(cfg.Soros, cfg.Smoothing, log),
		simons:   NewSimonsCalculator(cfg.Simons, cfg.Smoothing, log),
		ipBoost:  NewIPBoostCalculator(cfg.IPBoost, log),
		recorder: nopRecorder{},
		logger:   log,
	}
}

// WithRecorder sets the metrics recorder
func (e *Engine) WithRecorder(r Recorder) *Engine {
	if r != nil {
		e.recorder = r
	}
	return e
}

// Score computes all six scores for one company.
// A missing input fails only the affected score; it is recorded in ScoreCard.Errors.
func (e *Engine) Score(ctx context.Context, rec *contracts.CompanyRecord, patent *contracts.PatentRecord, macro contracts.MacroInputs) *contracts.ScoreCard {
	card := contracts.NewScoreCard(rec)
	e.fillInputs(card, rec, patent)

	if score, d, err := e.buffett.Calculate(ctx, rec); e.record(card, contracts.ScoreBuffett, score, err) {
		card.Details.ROIC = d.ROIC
		card.Details.FCFMargin = ptr(d.FCFMargin)
		card.Details.FCFYield = ptr(d.FCFYield)
		card.Details.EBITMargin = ptr(d.EBITMargin)
		card.Details.Leverage = ptr(d.Leverage)
		card.Details.InterestCoverage = d.InterestCoverage
	}

	if score, d, err := e.lynch.Calculate(ctx, rec); e.record(card, contracts.ScoreLynch, score, err) {
		card.Details.PE = ptr(d.PE)
		card.Details.PEG = d.PEG
		card.Details.PEGY = d.PEGY
		card.Details.GrowthProxy = ptr(d.GrowthProxy)
		card.Details.GrowthSource = d.GrowthSource
		card.Details.Leverage = ptr(d.Leverage)
	}

	if score, d, err := e.icahn.Calculate(ctx, rec); e.record(card, contracts.ScoreIcahn, score, err) {
		card.Details.CashToMcap = ptr(d.CashToMcap)
		card.Details.PToFCF = d.PToFCF
		card.Details.SharesChange = ptr(d.SharesChange)
		card.Details.Leverage = ptr(d.Leverage)
	}

	if score, d, err := e.soros.Calculate(ctx, rec, macro); e.record(card, contracts.ScoreSoros, score, err) {
		card.Details.MacroSensitivity = ptr(d.MacroSensitivity)
		if d.PToFCF != nil {
			card.Details.PToFCF = d.PToFCF
		}
		if d.InterestCoverage != nil {
			card.Details.InterestCoverage = d.InterestCoverage
		}
	}

	if score, d, err := e.simons.Calculate(ctx, rec); e.record(card, contracts.ScoreSimons, score, err) {
		card.Details.WeeklyAC = ptr(d.WeeklyAC)
		card.Details.VolClust = ptr(d.VolClust)
		card.Details.RetPred = ptr(d.RetPred)
	}

	// IP tilt는 Buffett, Simons 에만 적용
	if points, tilt, err := e.ipBoost.Calculate(ctx, rec.Ticker, patent); e.record(card, contracts.ScoreIPBoost, points, err) {
		if patent != nil && patent.Present {
			card.Details.IPTilt = ptr(tilt)
		}
		for _, name := range []contracts.ScoreName{contracts.ScoreBuffett, contracts.ScoreSimons} {
			if base, ok := card.Scores[name]; ok {
				card.Scores[name] = e.ipBoost.Apply(base, tilt).Score
			}
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"ticker": rec.Ticker,
		"scored": len(card.Scores),
		"failed": len(card.Errors),
	}).Debug("Scored company")

	return card
}

// fillInputs copies the raw inputs reported next to the scores
func (e *Engine) fillInputs(card *contracts.ScoreCard, rec *contracts.CompanyRecord, patent *contracts.PatentRecord) {
	if v, ok := rec.Value(contracts.MetricPrice); ok {
		card.Details.Price = ptr(v)
	}
	if v, ok := rec.Value(contracts.MetricMarketCap); ok {
		card.Details.MarketCap = ptr(v)
	}
	if v, ok := netDebt(rec); ok {
		card.Details.NetDebt = ptr(v)
	}
	if patent != nil && patent.Present {
		card.Details.PatentCount = ptr(patent.PatentCount)
		card.Details.ForwardCitations = ptr(patent.ForwardCitations)
		card.Details.RDToSales = ptr(patent.RDToSales)
	}
}

// ScoreOne computes a single score and returns its error directly.
// Buffett and Simons include the IP tilt when a patent record is given.
func (e *Engine) ScoreOne(ctx context.Context, name contracts.ScoreName, rec *contracts.CompanyRecord, patent *contracts.PatentRecord, macro contracts.MacroInputs) (float64, error) {
	var (
		score float64
		err   error
	)

	switch name {
	case contracts.ScoreBuffett:
		score, _, err = e.buffett.Calculate(ctx, rec)
	case contracts.ScoreLynch:
		score, _, err = e.lynch.Calculate(ctx, rec)
	case contracts.ScoreIcahn:
		score, _, err = e.icahn.Calculate(ctx, rec)
	case contracts.ScoreSoros:
		score, _, err = e.soros.Calculate(ctx, rec, macro)
	case contracts.ScoreSimons:
		score, _, err = e.simons.Calculate(ctx, rec)
	case contracts.ScoreIPBoost:
		score, _, err = e.ipBoost.Calculate(ctx, rec.Ticker, patent)
		return score, err
	default:
		return 0, fmt.Errorf("unknown score: %s", name)
	}
	if err != nil {
		return 0, err
	}

	if name == contracts.ScoreBuffett || name == contracts.ScoreSimons {
		score = e.ipBoost.Apply(score, e.ipBoost.Tilt(patent)).Score
	}
	return score, nil
}

// record stores a score or its failure on the card and reports whether it succeeded
func (e *Engine) record(card *contracts.ScoreCard, name contracts.ScoreName, score float64, err error) bool {
	if err != nil {
		card.Errors[name] = err.Error()

		var missing *contracts.MissingInputError
		if errors.As(err, &missing) {
			e.recorder.MissingInput(name, missing.Metric)
		}
		return false
	}

	card.Scores[name] = score
	e.recorder.ScoreComputed(name)
	return true
}
