package contracts

import (
	"errors"
	"fmt"
	"time"
)

// ScoreName identifies one of the six investor heuristics
type ScoreName string

const (
	ScoreBuffett ScoreName = "buffett"
	ScoreLynch   ScoreName = "lynch"
	ScoreIcahn   ScoreName = "icahn"
	ScoreSoros   ScoreName = "soros"
	ScoreSimons  ScoreName = "simons"
	ScoreIPBoost ScoreName = "ip_boost"
)

// AllScores lists the scores in report order
var AllScores = []ScoreName{ScoreBuffett, ScoreLynch, ScoreIcahn, ScoreSoros, ScoreSimons, ScoreIPBoost}

// ErrMissingInput is matched by every MissingInputError via errors.Is
var ErrMissingInput = errors.New("missing input")

// MissingInputError reports a required metric that has neither a value nor a fallback
type MissingInputError struct {
	Score  ScoreName
	Metric string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s score: missing input %s", e.Score, e.Metric)
}

// Is makes errors.Is(err, ErrMissingInput) true
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// NewMissingInput creates a MissingInputError
func NewMissingInput(score ScoreName, metric string) error {
	return &MissingInputError{Score: score, Metric: metric}
}

// ScoreCard is the output of the scoring engine for one company
// ⭐ SSOT: S2 → S3 점수 전달
type ScoreCard struct {
	Ticker  string                `json:"ticker"`
	Region  string                `json:"region,omitempty"`
	Sector  string                `json:"sector,omitempty"`
	Notes   string                `json:"notes,omitempty"`
	Scores  map[ScoreName]float64 `json:"scores"`           // 0 ~ 100
	Errors  map[ScoreName]string  `json:"errors,omitempty"` // 실패한 점수: 사유
	Details ScoreDetails          `json:"details"`
}

// NewScoreCard creates an empty score card for a record
func NewScoreCard(rec *CompanyRecord) *ScoreCard {
	return &ScoreCard{
		Ticker: rec.Ticker,
		Region: rec.Region,
		Sector: rec.Sector,
		Notes:  rec.Notes,
		Scores: make(map[ScoreName]float64),
		Errors: make(map[ScoreName]string),
	}
}

// Get returns a score and whether it was computed
func (c *ScoreCard) Get(name ScoreName) (float64, bool) {
	v, ok := c.Scores[name]
	return v, ok
}

// Failed reports whether a score failed
func (c *ScoreCard) Failed(name ScoreName) bool {
	_, ok := c.Errors[name]
	return ok
}

// ScoreDetails contains the raw components behind the scores.
// Pointer fields are nil when the component could not be computed.
type ScoreDetails struct {
	// Inputs (결과 파일용)
	Price            *float64 `json:"price,omitempty"`
	MarketCap        *float64 `json:"market_cap,omitempty"`
	NetDebt          *float64 `json:"net_debt,omitempty"`
	PatentCount      *float64 `json:"patent_count,omitempty"`
	ForwardCitations *float64 `json:"forward_citations,omitempty"`
	RDToSales        *float64 `json:"rd_to_sales,omitempty"`

	// Buffett
	ROIC             *float64 `json:"roic_est,omitempty"`
	FCFMargin        *float64 `json:"fcf_margin,omitempty"`
	FCFYield         *float64 `json:"fcf_yield,omitempty"`
	EBITMargin       *float64 `json:"ebit_margin,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"`
	Leverage         *float64 `json:"leverage,omitempty"` // net debt / market cap

	// Lynch
	PE           *float64 `json:"pe,omitempty"`
	PEG          *float64 `json:"peg,omitempty"`
	PEGY         *float64 `json:"pegy,omitempty"`
	GrowthProxy  *float64 `json:"growth_proxy,omitempty"`
	GrowthSource string   `json:"growth_source,omitempty"` // "analyst" | "revenue_cagr"

	// Icahn
	CashToMcap   *float64 `json:"cash_to_mcap,omitempty"`
	PToFCF       *float64 `json:"p_to_fcf,omitempty"`
	SharesChange *float64 `json:"shares_chg_3y,omitempty"`

	// Soros
	MacroSensitivity *float64 `json:"macro_sensitivity,omitempty"`

	// Simons
	WeeklyAC *float64 `json:"weekly_ac,omitempty"`
	VolClust *float64 `json:"vol_clust,omitempty"`
	RetPred  *float64 `json:"ret_pred,omitempty"`

	// IP
	IPTilt *float64 `json:"ip_tilt,omitempty"`
}

// RankedCompany is a scored company with its combined rank
// ⭐ SSOT: S3 → S4 랭킹 결과 전달
type RankedCompany struct {
	Rank        int        `json:"rank"` // 1-based
	MetaScore   float64    `json:"meta_score"`
	QualityFlag bool       `json:"quality_flag"`
	CashFlag    bool       `json:"cash_flag"`
	Unscored    bool       `json:"unscored,omitempty"` // 메타 점수 없음, 하위 순위 고정
	Card        *ScoreCard `json:"card"`
}

// IsTopRanked checks if the company is in the top N
func (r *RankedCompany) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// ScreenRun is one complete screening run
type ScreenRun struct {
	RunID      string          `json:"run_id"`
	Date       time.Time       `json:"date"`
	ConfigHash string          `json:"config_hash"`
	Macro      MacroInputs     `json:"macro"`
	Ranked     []RankedCompany `json:"ranked"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Top returns the first n ranked companies
func (s *ScreenRun) Top(n int) []RankedCompany {
	if n > len(s.Ranked) || n < 0 {
		n = len(s.Ranked)
	}
	return s.Ranked[:n]
}
