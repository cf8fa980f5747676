package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunMetadata holds screening run metadata
type RunMetadata struct {
	Title      string
	Date       string
	Strategy   string
	ConfigHash string
	LiveMacro  bool
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(meta RunMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.Title)
	PrintSeparator()
	fmt.Printf("  Date      : %s\n", meta.Date)
	fmt.Printf("  Strategy  : %s\n", meta.Strategy)
	if meta.ConfigHash != "" {
		fmt.Printf("  Config    : %s\n", shortHash(meta.ConfigHash))
	}
	fmt.Printf("  Macro     : %s\n", map[bool]string{true: "overrides + live", false: "overrides only"}[meta.LiveMacro])
	PrintSeparator()
}

// PrintRunCompletion prints run completion message
func PrintRunCompletion(runID string, duration float64) {
	fmt.Println()
	fmt.Printf("✅ Run %s completed in %.2fs\n", runID, duration)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

var rankedColumns = []string{"#", "Ticker", "Sector", "Meta", "BUF", "LYN", "ICA", "SOR", "SIM", "IP", "Flags"}
var rankedWidths = []int{4, 8, 16, 6, 5, 5, 5, 5, 5, 5, 8}

// printRanked prints the ranked table
func printRanked(ranked []contracts.RankedCompany) {
	fmt.Println()
	PrintTableHeader(rankedColumns, rankedWidths)
	for _, rc := range ranked {
		row := []string{
			fmt.Sprintf("%d", rc.Rank),
			rc.Card.Ticker,
			truncate(rc.Card.Sector, 16),
			metaCell(rc),
		}
		for _, name := range contracts.AllScores {
			row = append(row, scoreCell(rc.Card, name))
		}
		row = append(row, flagCell(rc))
		PrintTableRow(row, rankedWidths)
	}
}

// metaCell shows "-" for companies without any meta score
func metaCell(rc contracts.RankedCompany) string {
	if rc.Unscored {
		return "-"
	}
	return fmt.Sprintf("%.1f", rc.MetaScore)
}

// printScoreCard prints one card with its components
func printScoreCard(card *contracts.ScoreCard) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s", card.Ticker)
	if card.Sector != "" {
		fmt.Printf("  (%s)", card.Sector)
	}
	fmt.Println()
	PrintSeparator()

	for _, name := range contracts.AllScores {
		if reason, failed := card.Errors[name]; failed {
			PrintKeyValue(string(name), "n/a  "+reason, 9)
			continue
		}
		PrintKeyValue(string(name), scoreCell(card, name), 9)
	}

	PrintSeparator()
	d := card.Details
	PrintKeyValue("ROIC", pct(d.ROIC), 12)
	PrintKeyValue("FCF margin", pct(d.FCFMargin), 12)
	PrintKeyValue("FCF yield", pct(d.FCFYield), 12)
	PrintKeyValue("EBIT margin", pct(d.EBITMargin), 12)
	PrintKeyValue("Int. cover", num(d.InterestCoverage), 12)
	PrintKeyValue("PEG", num(d.PEG), 12)
	PrintKeyValue("PEGY", num(d.PEGY), 12)
	if d.GrowthSource != "" {
		PrintKeyValue("Growth", pct(d.GrowthProxy)+" ("+d.GrowthSource+")", 12)
	}
	PrintKeyValue("Cash/Mcap", pct(d.CashToMcap), 12)
	PrintKeyValue("P/FCF", num(d.PToFCF), 12)
	PrintKeyValue("Shares 3Y", pct(d.SharesChange), 12)
	PrintKeyValue("Macro sens.", num(d.MacroSensitivity), 12)
	PrintKeyValue("Weekly AC", num(d.WeeklyAC), 12)
	PrintKeyValue("Vol clust", num(d.VolClust), 12)
	PrintKeyValue("IP tilt", num(d.IPTilt), 12)
	PrintDoubleSeparator()
}

func scoreCell(card *contracts.ScoreCard, name contracts.ScoreName) string {
	if v, ok := card.Get(name); ok {
		return fmt.Sprintf("%.1f", v)
	}
	return "-"
}

func flagCell(rc contracts.RankedCompany) string {
	var f []string
	if rc.QualityFlag {
		f = append(f, "Q")
	}
	if rc.CashFlag {
		f = append(f, "C")
	}
	return strings.Join(f, ",")
}

// formatMacro renders macro inputs with their sources
func formatMacro(m contracts.MacroInputs) string {
	parts := make([]string, 0, len(contracts.MacroFields))
	for _, field := range contracts.MacroFields {
		v := m.Get(field)
		if v == nil {
			parts = append(parts, field+"=-")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.4g (%s)", field, *v, m.Sources[field]))
	}
	return strings.Join(parts, ", ")
}

func pct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
