package strategyconfig

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Universe ===
	if cfg.Universe.MinMarketCap < 0 {
		return ValidationError{"universe.min_market_cap", "must be >= 0"}
	}

	// === Quality ===
	if err := validatePctRange(cfg.Quality.MinScore, "quality.min_score"); err != nil {
		return err
	}

	// === Scores ===
	s := cfg.Scores
	if s.Smoothing <= 0 {
		return ValidationError{"scores.smoothing", "must be > 0"}
	}

	groups := []struct {
		field      string
		components map[string]Component
	}{
		{"scores.buffett", map[string]Component{
			"roic": s.Buffett.ROIC, "fcf_margin": s.Buffett.FCFMargin, "fcf_yield": s.Buffett.FCFYield,
			"ebit_margin": s.Buffett.EBITMargin, "leverage": s.Buffett.Leverage, "coverage": s.Buffett.Coverage,
		}},
		{"scores.lynch", map[string]Component{
			"peg": s.Lynch.PEG, "pegy": s.Lynch.PEGY, "growth": s.Lynch.Growth, "leverage": s.Lynch.Leverage,
		}},
		{"scores.icahn", map[string]Component{
			"cash_to_mcap": s.Icahn.CashToMcap, "p_to_fcf": s.Icahn.PToFCF,
			"shares_change": s.Icahn.SharesChange, "leverage": s.Icahn.Leverage,
		}},
		{"scores.soros", map[string]Component{
			"p_to_fcf": s.Soros.PToFCF, "macro_sensitivity": s.Soros.MacroSensitivity, "coverage": s.Soros.Coverage,
		}},
		{"scores.simons", map[string]Component{
			"autocorr": s.Simons.Autocorr, "vol_clust": s.Simons.VolClust, "ret_pred": s.Simons.RetPred,
		}},
	}
	for _, g := range groups {
		if err := validateComponents(g.field, g.components); err != nil {
			return err
		}
	}

	if err := validatePctRange(s.Buffett.DefaultTaxRate, "scores.buffett.default_tax_rate"); err != nil {
		return err
	}
	if s.Lynch.CAGRMaxPoints < 2 {
		return ValidationError{"scores.lynch.cagr_max_points", "must be >= 2"}
	}
	if s.Simons.MinReturns < 3 {
		return ValidationError{"scores.simons.min_returns", "must be >= 3"}
	}

	n := s.Soros.Neutral
	if n.TenYearYield <= 0 || n.USDIndex <= 0 || n.WTI <= 0 || n.Gold <= 0 {
		return ValidationError{"scores.soros.neutral", "all neutral levels must be > 0"}
	}

	ip := s.IPBoost
	if ip.Mode != BoostAdditive && ip.Mode != BoostMultiplicative {
		return ValidationError{"scores.ip_boost.mode", "must be ADDITIVE or MULTIPLICATIVE"}
	}
	if ip.MaxPoints < 0 || ip.MaxPoints > 100 {
		return ValidationError{"scores.ip_boost.max_points", "must be in range [0, 100]"}
	}
	if err := validatePctRange(ip.MaxPct, "scores.ip_boost.max_pct"); err != nil {
		return err
	}
	if err := validateWeightsSum([]float64{ip.PatentWeight, ip.CitationWeight, ip.RDWeight}, 1.0, 1e-6); err != nil {
		return ValidationError{"scores.ip_boost", err.Error()}
	}
	if ip.PatentHalf <= 0 || ip.CitationHalf <= 0 || ip.RDHalf <= 0 {
		return ValidationError{"scores.ip_boost", "half-saturation levels must be > 0"}
	}

	// === Selection ===
	sel := cfg.Selection
	if sel.Normalization != NormalizationAbsolute && sel.Normalization != NormalizationCrossSectional {
		return ValidationError{"selection.normalization", "must be ABSOLUTE or CROSS_SECTIONAL"}
	}
	w := sel.MetaWeights
	if err := validateWeightsSum([]float64{w.Buffett, w.Lynch, w.Icahn, w.Soros, w.Simons}, 1.0, 1e-6); err != nil {
		return ValidationError{"selection.meta_weights", err.Error()}
	}
	for name, v := range map[string]float64{"buffett": w.Buffett, "lynch": w.Lynch, "icahn": w.Icahn, "soros": w.Soros, "simons": w.Simons} {
		if v < 0 {
			return ValidationError{"selection.meta_weights." + name, "must be >= 0"}
		}
	}

	// === Report ===
	if cfg.Report.TopN < 1 {
		return ValidationError{"report.top_n", "must be >= 1"}
	}
	if cfg.Report.ResultsCSV == "" || cfg.Report.ReportMD == "" || cfg.Report.ExplainMD == "" {
		return ValidationError{"report", "results_csv, report_md and explain_md are required"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Scores.IPBoost.MaxPoints > 20 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_IP_BOOST",
			Message: "ip_boost.max_points > 20: IP 가산점이 펀더멘털 점수를 압도할 수 있음",
		})
	}

	if cfg.Selection.MetaWeights.Simons > 0.30 {
		warnings = append(warnings, Warning{
			Code:    "HEAVY_SIMONS",
			Message: "simons 가중치 > 30%: 주간 수익률 통계는 노이즈가 큼",
		})
	}

	if !cfg.Quality.Enforce && cfg.Quality.MinScore > 0 {
		warnings = append(warnings, Warning{
			Code:    "QUALITY_NOT_ENFORCED",
			Message: "quality.enforce=false: 커버리지 미달 시에도 스크리닝 진행",
		})
	}

	for _, sec := range cfg.Universe.ExcludeSectors {
		if strings.TrimSpace(sec) == "" {
			warnings = append(warnings, Warning{
				Code:    "EMPTY_SECTOR_FILTER",
				Message: "universe.exclude_sectors에 빈 값 포함",
			})
			break
		}
	}

	return warnings
}

// === Helper Functions ===

// validateComponents는 가중치 합 = 1, span > 0 을 검증
func validateComponents(field string, comps map[string]Component) error {
	weights := make([]float64, 0, len(comps))
	for name, c := range comps {
		if c.Span <= 0 {
			return ValidationError{fmt.Sprintf("%s.%s.span", field, name), "must be > 0"}
		}
		if c.Weight < 0 {
			return ValidationError{fmt.Sprintf("%s.%s.weight", field, name), "must be >= 0"}
		}
		weights = append(weights, c.Weight)
	}
	if err := validateWeightsSum(weights, 1.0, 1e-6); err != nil {
		return ValidationError{field, "weights " + err.Error()}
	}
	return nil
}

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}

// validatePctRange는 퍼센트 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
