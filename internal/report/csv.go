package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

// csvHeader lists the results columns in output order
var csvHeader = []string{
	"date", "rank", "ticker", "region", "sector", "notes", "price", "market_cap",
	"roic_est", "ebit_margin", "fcf_margin", "fcf_yield", "interest_coverage", "net_debt", "leverage",
	"pe", "peg", "pegy", "growth_proxy", "growth_source",
	"cash_to_mcap", "p_to_fcf", "shares_chg_3y",
	"macro_sensitivity",
	"weekly_ac", "vol_clust", "ret_pred",
	"patent_count", "forward_citations", "rd_to_sales", "ip_tilt",
	"buffett_score", "lynch_score", "icahn_score", "soros_score", "simons_score", "ip_boost",
	"meta_score", "quality_flag", "cash_flag", "errors",
}

// WriteCSV writes every ranked company of a run (screen_results_v2.csv)
func WriteCSV(w io.Writer, run *contracts.ScreenRun) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	date := run.Date.Format("2006-01-02")
	for _, rc := range run.Ranked {
		if err := cw.Write(csvRow(date, rc)); err != nil {
			return fmt.Errorf("write row %s: %w", rc.Card.Ticker, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(date string, rc contracts.RankedCompany) []string {
	c := rc.Card
	d := c.Details

	return []string{
		date,
		strconv.Itoa(rc.Rank),
		c.Ticker,
		c.Region,
		c.Sector,
		c.Notes,
		optional(d.Price),
		optional(d.MarketCap),
		optional(d.ROIC),
		optional(d.EBITMargin),
		optional(d.FCFMargin),
		optional(d.FCFYield),
		optional(d.InterestCoverage),
		optional(d.NetDebt),
		optional(d.Leverage),
		optional(d.PE),
		optional(d.PEG),
		optional(d.PEGY),
		optional(d.GrowthProxy),
		d.GrowthSource,
		optional(d.CashToMcap),
		optional(d.PToFCF),
		optional(d.SharesChange),
		optional(d.MacroSensitivity),
		optional(d.WeeklyAC),
		optional(d.VolClust),
		optional(d.RetPred),
		optional(d.PatentCount),
		optional(d.ForwardCitations),
		optional(d.RDToSales),
		optional(d.IPTilt),
		score(c, contracts.ScoreBuffett),
		score(c, contracts.ScoreLynch),
		score(c, contracts.ScoreIcahn),
		score(c, contracts.ScoreSoros),
		score(c, contracts.ScoreSimons),
		score(c, contracts.ScoreIPBoost),
		formatFloat(rc.MetaScore, 2),
		strconv.FormatBool(rc.QualityFlag),
		strconv.FormatBool(rc.CashFlag),
		errorSummary(c),
	}
}

// errorSummary joins failed scores in report order: "lynch: ...; soros: ..."
func errorSummary(c *contracts.ScoreCard) string {
	var parts []string
	for _, name := range contracts.AllScores {
		if msg, ok := c.Errors[name]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", name, msg))
		}
	}
	return strings.Join(parts, "; ")
}

func score(c *contracts.ScoreCard, name contracts.ScoreName) string {
	v, ok := c.Get(name)
	if !ok {
		return ""
	}
	return formatFloat(v, 2)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v, 4)
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
