package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
)

var markdownColumns = []string{
	"Rank", "Ticker", "Region", "Sector", "Meta",
	"Buffett", "Lynch", "Icahn", "Soros", "Simons",
	"ROIC", "FCF Yield", "PEGY", "Cash/MCap", "P/FCF", "Flags",
}

// WriteMarkdown writes the top-N summary (screen_report_v2.md)
func WriteMarkdown(w io.Writer, run *contracts.ScreenRun, topN int) error {
	var b strings.Builder

	top := run.Top(topN)
	fmt.Fprintf(&b, "# Weekly Screen v2 (%s)\n\n", run.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Top %d by **Meta-Score** (combined Buffett/Lynch/Icahn/Soros/Simons):\n\n", len(top))

	b.WriteString("| " + strings.Join(markdownColumns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(markdownColumns)) + "\n")

	for _, rc := range top {
		c := rc.Card
		d := c.Details
		cells := []string{
			fmt.Sprintf("%d", rc.Rank),
			c.Ticker,
			c.Region,
			c.Sector,
			metaCell(rc),
			mdScore(c, contracts.ScoreBuffett),
			mdScore(c, contracts.ScoreLynch),
			mdScore(c, contracts.ScoreIcahn),
			mdScore(c, contracts.ScoreSoros),
			mdScore(c, contracts.ScoreSimons),
			percent(d.ROIC),
			percent(d.FCFYield),
			ratio(d.PEGY),
			percent(d.CashToMcap),
			ratio(d.PToFCF),
			flags(rc),
		}
		for i := range cells {
			cells[i] = escapeCell(cells[i])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	b.WriteString("\n")
	writeMacro(&b, run.Macro)
	fmt.Fprintf(&b, "\nRun `%s`, config `%s`.\n", run.RunID, shortHash(run.ConfigHash))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMacro(b *strings.Builder, m contracts.MacroInputs) {
	b.WriteString("Macro inputs: ")
	parts := make([]string, 0, len(contracts.MacroFields))
	for _, field := range contracts.MacroFields {
		v := m.Get(field)
		if v == nil {
			parts = append(parts, fmt.Sprintf("%s n/a", field))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s (%s)", field, formatFloat(*v, 4), m.Sources[field]))
	}
	b.WriteString(strings.Join(parts, ", ") + ".\n")
}

// WriteExplain writes the factor explanations (factor_explain_v2.md)
func WriteExplain(w io.Writer, cfg *strategyconfig.Config) error {
	s := cfg.Scores
	sel := cfg.Selection.MetaWeights
	var b strings.Builder

	b.WriteString("# Factor Explanations (v2)\n\n")
	fmt.Fprintf(&b, "**Buffett Score** (meta weight %.2f): High ROIC, FCF margin/yield, EBIT margin, low net debt, strong interest coverage.\n", sel.Buffett)
	fmt.Fprintf(&b, "**Lynch Score** (meta weight %.2f): Low PEG/PEGY (cheaper vs growth), solid growth proxy, low leverage.\n", sel.Lynch)
	fmt.Fprintf(&b, "**Icahn Score** (meta weight %.2f): Cash-rich, low P/FCF, shrinking shares, manageable leverage (activist unlock potential).\n", sel.Icahn)
	fmt.Fprintf(&b, "**Soros Score** (meta weight %.2f): Cheap on FCF plus high macro sensitivity (reflexivity optionality) with enough coverage.\n", sel.Soros)
	fmt.Fprintf(&b, "**Simons Score** (meta weight %.2f): Predictability via return autocorrelation, volatility clustering and a Sharpe-like return/stdev proxy.\n", sel.Simons)
	switch s.IPBoost.Mode {
	case strategyconfig.BoostMultiplicative:
		fmt.Fprintf(&b, "**IP Boost**: Optional patents.csv scales Buffett/Simons by up to ±%.0f%% (moat/innovation tilt).\n", s.IPBoost.MaxPct*100)
	default:
		fmt.Fprintf(&b, "**IP Boost**: Optional patents.csv adds up to ±%.1f points to Buffett/Simons (moat/innovation tilt).\n", s.IPBoost.MaxPoints)
	}

	b.WriteString("\nNotes:\n")
	b.WriteString("- Growth proxy uses the analyst earnings growth estimate when available, else the 3-year revenue CAGR.\n")
	b.WriteString("- ROIC is an operating proxy (NOPAT / average invested capital) excluding cash, goodwill and intangibles.\n")
	fmt.Fprintf(&b, "- NOPAT falls back to EBIT x (1 - %.0f%%) when no tax rate is reported.\n", s.Buffett.DefaultTaxRate*100)
	b.WriteString("- Use macro_overrides.json to fix macro inputs for backtesting consistency.\n")
	b.WriteString("- A score whose inputs are missing is left blank; the meta-score re-weights over the scores present.\n")
	if cfg.Selection.Normalization == strategyconfig.NormalizationCrossSectional {
		b.WriteString("- Scores are rescaled cross-sectionally (min-max over the run) before combining.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func mdScore(c *contracts.ScoreCard, name contracts.ScoreName) string {
	v, ok := c.Get(name)
	if !ok {
		return "-"
	}
	return formatFloat(v, 1)
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v*100, 1) + "%"
}

func ratio(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v, 2)
}

func flags(rc contracts.RankedCompany) string {
	var f []string
	if rc.QualityFlag {
		f = append(f, "Q")
	}
	if rc.CashFlag {
		f = append(f, "C")
	}
	return strings.Join(f, "")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func metaCell(rc contracts.RankedCompany) string {
	if rc.Unscored {
		return "-"
	}
	return formatFloat(rc.MetaScore, 1)
}
