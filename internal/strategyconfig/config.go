package strategyconfig

import "time"

// Config는 스크리닝 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Universe  Universe  `yaml:"universe" json:"universe"`
	Quality   Quality   `yaml:"quality" json:"quality"`
	Scores    Scores    `yaml:"scores" json:"scores"`
	Selection Selection `yaml:"selection" json:"selection"`
	Report    Report    `yaml:"report" json:"report"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe S1: 스크리닝 대상 필터
type Universe struct {
	MinMarketCap   float64  `yaml:"min_market_cap" json:"min_market_cap"`
	ExcludeSectors []string `yaml:"exclude_sectors" json:"exclude_sectors"`
	ExcludeRegions []string `yaml:"exclude_regions" json:"exclude_regions"`
}

// Quality S0: 커버리지 게이트
type Quality struct {
	MinScore float64  `yaml:"min_score" json:"min_score"`
	Metrics  []string `yaml:"metrics" json:"metrics"` // 커버리지 측정 대상
	Enforce  bool     `yaml:"enforce" json:"enforce"` // false면 경고만
}

// Component maps a raw metric to [-1, 1] with clamp((x-mid)/span) and weights it
type Component struct {
	Weight float64 `yaml:"weight" json:"weight"`
	Mid    float64 `yaml:"mid" json:"mid"`
	Span   float64 `yaml:"span" json:"span"`
}

// Scores S2: 6개 투자자 점수
type Scores struct {
	Smoothing float64 `yaml:"smoothing" json:"smoothing"` // tanh 기울기
	Buffett   Buffett `yaml:"buffett" json:"buffett"`
	Lynch     Lynch   `yaml:"lynch" json:"lynch"`
	Icahn     Icahn   `yaml:"icahn" json:"icahn"`
	Soros     Soros   `yaml:"soros" json:"soros"`
	Simons    Simons  `yaml:"simons" json:"simons"`
	IPBoost   IPBoost `yaml:"ip_boost" json:"ip_boost"`
}

type Buffett struct {
	ROIC           Component `yaml:"roic" json:"roic"`
	FCFMargin      Component `yaml:"fcf_margin" json:"fcf_margin"`
	FCFYield       Component `yaml:"fcf_yield" json:"fcf_yield"`
	EBITMargin     Component `yaml:"ebit_margin" json:"ebit_margin"`
	Leverage       Component `yaml:"leverage" json:"leverage"` // lower is better
	Coverage       Component `yaml:"coverage" json:"coverage"`
	DefaultTaxRate float64   `yaml:"default_tax_rate" json:"default_tax_rate"`
}

type Lynch struct {
	PEG           Component `yaml:"peg" json:"peg"`   // lower is better
	PEGY          Component `yaml:"pegy" json:"pegy"` // lower is better
	Growth        Component `yaml:"growth" json:"growth"`
	Leverage      Component `yaml:"leverage" json:"leverage"` // lower is better
	CAGRMaxPoints int       `yaml:"cagr_max_points" json:"cagr_max_points"`
}

type Icahn struct {
	CashToMcap   Component `yaml:"cash_to_mcap" json:"cash_to_mcap"`
	PToFCF       Component `yaml:"p_to_fcf" json:"p_to_fcf"`           // lower is better
	SharesChange Component `yaml:"shares_change" json:"shares_change"` // lower is better
	Leverage     Component `yaml:"leverage" json:"leverage"`           // lower is better
}

type Soros struct {
	PToFCF           Component    `yaml:"p_to_fcf" json:"p_to_fcf"` // lower is better
	MacroSensitivity Component    `yaml:"macro_sensitivity" json:"macro_sensitivity"`
	Coverage         Component    `yaml:"coverage" json:"coverage"`
	Neutral          MacroNeutral `yaml:"neutral" json:"neutral"`
	Exposure         Exposure     `yaml:"exposure" json:"exposure"`
}

// MacroNeutral levels map to stress 0.5
type MacroNeutral struct {
	TenYearYield float64 `yaml:"ten_year_yield" json:"ten_year_yield"`
	USDIndex     float64 `yaml:"usd_dxy" json:"usd_dxy"`
	WTI          float64 `yaml:"wti" json:"wti"`
	Gold         float64 `yaml:"gold" json:"gold"`
}

// Exposure sector keywords (소문자 부분 일치)
type Exposure struct {
	Cyclical      []string `yaml:"cyclical" json:"cyclical"`
	RateSensitive []string `yaml:"rate_sensitive" json:"rate_sensitive"`
	FXSensitive   []string `yaml:"fx_sensitive" json:"fx_sensitive"`
}

type Simons struct {
	Autocorr   Component `yaml:"autocorr" json:"autocorr"`
	VolClust   Component `yaml:"vol_clust" json:"vol_clust"`
	RetPred    Component `yaml:"ret_pred" json:"ret_pred"`
	MinReturns int       `yaml:"min_returns" json:"min_returns"`
}

type IPBoost struct {
	Mode      string  `yaml:"mode" json:"mode"` // ADDITIVE | MULTIPLICATIVE
	MaxPoints float64 `yaml:"max_points" json:"max_points"`
	MaxPct    float64 `yaml:"max_pct" json:"max_pct"`

	// tilt 산출 (patents.csv에 tilt 컬럼이 없을 때)
	PatentWeight   float64 `yaml:"patent_weight" json:"patent_weight"`
	CitationWeight float64 `yaml:"citation_weight" json:"citation_weight"`
	RDWeight       float64 `yaml:"rd_weight" json:"rd_weight"`
	PatentHalf     float64 `yaml:"patent_half" json:"patent_half"`
	CitationHalf   float64 `yaml:"citation_half" json:"citation_half"`
	RDHalf         float64 `yaml:"rd_half" json:"rd_half"`
}

// Selection S3: 메타 점수
type Selection struct {
	Normalization string      `yaml:"normalization" json:"normalization"` // ABSOLUTE | CROSS_SECTIONAL
	MetaWeights   MetaWeights `yaml:"meta_weights" json:"meta_weights"`
	QualityFlag   QualityFlag `yaml:"quality_flag" json:"quality_flag"`
	CashFlag      CashFlag    `yaml:"cash_flag" json:"cash_flag"`
}

type MetaWeights struct {
	Buffett float64 `yaml:"buffett" json:"buffett"`
	Lynch   float64 `yaml:"lynch" json:"lynch"`
	Icahn   float64 `yaml:"icahn" json:"icahn"`
	Soros   float64 `yaml:"soros" json:"soros"`
	Simons  float64 `yaml:"simons" json:"simons"`
}

// Sum returns the total weight
func (w MetaWeights) Sum() float64 {
	return w.Buffett + w.Lynch + w.Icahn + w.Soros + w.Simons
}

type QualityFlag struct {
	MinROIC       float64 `yaml:"min_roic" json:"min_roic"`
	MinEBITMargin float64 `yaml:"min_ebit_margin" json:"min_ebit_margin"`
}

type CashFlag struct {
	MinFCFMargin float64 `yaml:"min_fcf_margin" json:"min_fcf_margin"`
	MinFCFYield  float64 `yaml:"min_fcf_yield" json:"min_fcf_yield"`
}

// Report S4: 출력
type Report struct {
	TopN       int    `yaml:"top_n" json:"top_n"`
	ResultsCSV string `yaml:"results_csv" json:"results_csv"`
	ReportMD   string `yaml:"report_md" json:"report_md"`
	ExplainMD  string `yaml:"explain_md" json:"explain_md"`
}

// Normalization modes
const (
	NormalizationAbsolute       = "ABSOLUTE"
	NormalizationCrossSectional = "CROSS_SECTIONAL"
)

// IP boost modes
const (
	BoostAdditive       = "ADDITIVE"
	BoostMultiplicative = "MULTIPLICATIVE"
)

// DecisionSnapshot 스크리닝 스냅샷 (재현성용)
type DecisionSnapshot struct {
	ConfigHash     string    `json:"config_hash"`
	ConfigYAML     string    `json:"config_yaml"`
	StrategyID     string    `json:"strategy_id"`
	RunID          string    `json:"run_id"`
	DataSnapshotID string    `json:"data_snapshot_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Default returns the built-in legends_v2 strategy.
// config/strategy/legends_v2.yaml carries the same values.
func Default() *Config {
	return &Config{
		Meta: Meta{StrategyID: "legends_v2", Version: "2.0.0"},
		Universe: Universe{
			MinMarketCap:   0,
			ExcludeSectors: []string{},
			ExcludeRegions: []string{},
		},
		Quality: Quality{
			MinScore: 0.5,
			Metrics:  []string{"market_cap", "revenue", "ebit", "fcf", "net_debt", "pe"},
			Enforce:  false,
		},
		Scores: Scores{
			Smoothing: 1.5,
			Buffett: Buffett{
				ROIC:           Component{Weight: 0.35, Mid: 0.10, Span: 0.10},
				FCFMargin:      Component{Weight: 0.20, Mid: 0.05, Span: 0.10},
				FCFYield:       Component{Weight: 0.15, Mid: 0.04, Span: 0.04},
				EBITMargin:     Component{Weight: 0.15, Mid: 0.10, Span: 0.10},
				Leverage:       Component{Weight: 0.10, Mid: 0.10, Span: 0.40},
				Coverage:       Component{Weight: 0.05, Mid: 5, Span: 5},
				DefaultTaxRate: 0.21,
			},
			Lynch: Lynch{
				PEG:           Component{Weight: 0.35, Mid: 1.0, Span: 1.0},
				PEGY:          Component{Weight: 0.25, Mid: 1.0, Span: 1.0},
				Growth:        Component{Weight: 0.25, Mid: 0.10, Span: 0.15},
				Leverage:      Component{Weight: 0.15, Mid: 0.10, Span: 0.40},
				CAGRMaxPoints: 4,
			},
			Icahn: Icahn{
				CashToMcap:   Component{Weight: 0.35, Mid: 0.10, Span: 0.10},
				PToFCF:       Component{Weight: 0.35, Mid: 15, Span: 10},
				SharesChange: Component{Weight: 0.20, Mid: 0, Span: 0.05},
				Leverage:     Component{Weight: 0.10, Mid: 0.10, Span: 0.40},
			},
			Soros: Soros{
				PToFCF:           Component{Weight: 0.50, Mid: 15, Span: 10},
				MacroSensitivity: Component{Weight: 0.30, Mid: 1.5, Span: 1.5},
				Coverage:         Component{Weight: 0.20, Mid: 5, Span: 5},
				Neutral: MacroNeutral{
					TenYearYield: 0.04,
					USDIndex:     100,
					WTI:          75,
					Gold:         2000,
				},
				Exposure: Exposure{
					Cyclical:      []string{"financial", "materials", "industr", "energy", "discretionary", "cyclical"},
					RateSensitive: []string{"financial", "real estate"},
					FXSensitive:   []string{"materials", "industr", "technology"},
				},
			},
			Simons: Simons{
				Autocorr:   Component{Weight: 0.34, Mid: 0, Span: 0.2},
				VolClust:   Component{Weight: 0.33, Mid: 0, Span: 0.2},
				RetPred:    Component{Weight: 0.33, Mid: 0.1, Span: 0.1},
				MinReturns: 3,
			},
			IPBoost: IPBoost{
				Mode:           BoostAdditive,
				MaxPoints:      10,
				MaxPct:         0.10,
				PatentWeight:   0.50,
				CitationWeight: 0.30,
				RDWeight:       0.20,
				PatentHalf:     50,
				CitationHalf:   500,
				RDHalf:         0.10,
			},
		},
		Selection: Selection{
			Normalization: NormalizationAbsolute,
			MetaWeights: MetaWeights{
				Buffett: 0.25,
				Lynch:   0.20,
				Icahn:   0.20,
				Soros:   0.15,
				Simons:  0.20,
			},
			QualityFlag: QualityFlag{MinROIC: 0.15, MinEBITMargin: 0.15},
			CashFlag:    CashFlag{MinFCFMargin: 0.10, MinFCFYield: 0.05},
		},
		Report: Report{
			TopN:       20,
			ResultsCSV: "screen_results_v2.csv",
			ReportMD:   "screen_report_v2.md",
			ExplainMD:  "factor_explain_v2.md",
		},
	}
}
