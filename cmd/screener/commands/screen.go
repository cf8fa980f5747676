package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/pipeline"
	"github.com/wonny/screener/internal/s0_data"
	"github.com/wonny/screener/internal/strategyconfig"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "스크리닝 실행",
	Long: `재무 레코드를 점수화하고 순위를 매깁니다.

Subcommands:
  run     - 전체 스크리닝 (S0 → S4) 및 리포트 작성
  score   - 단일 종목 점수 계산

Example:
  go run ./cmd/screener screen run
  go run ./cmd/screener screen run --records records.json --tickers tickers.csv --live-macro
  go run ./cmd/screener screen score AAPL`,
}

var (
	screenRunCmd = &cobra.Command{
		Use:   "run",
		Short: "전체 스크리닝 실행",
		Long: `레코드 로딩 → 유니버스 → 점수 계산 → 메타 점수 순위 → 리포트.

출력 파일 (--out):
  screen_results_v2.csv   - 전체 결과
  screen_report_v2.md     - 상위 N 종목
  factor_explain_v2.md    - 팩터 설명
  decision_snapshot.json  - 전략 해시/YAML (재현성)`,
		RunE: runScreen,
	}

	screenScoreCmd = &cobra.Command{
		Use:   "score [ticker]",
		Short: "단일 종목 점수 계산",
		Args:  cobra.ExactArgs(1),
		RunE:  runScore,
	}
)

var (
	screenRecords        string
	screenTickers        string
	screenPatents        string
	screenMacroOverrides string
	screenLiveMacro      bool
	screenDate           string
	screenWorkers        int
	screenOut            string
	screenFromDB         bool
	screenEnrich         bool
	screenNoPersist      bool
	screenTop            int
	screenJSON           bool
)

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.AddCommand(screenRunCmd)
	screenCmd.AddCommand(screenScoreCmd)

	for _, c := range []*cobra.Command{screenRunCmd, screenScoreCmd} {
		c.Flags().StringVar(&screenRecords, "records", "", "records JSON (default: RECORDS_PATH)")
		c.Flags().StringVar(&screenPatents, "patents", "", "patents CSV (default: PATENTS_PATH)")
		c.Flags().StringVar(&screenMacroOverrides, "macro-overrides", "", "macro overrides JSON (default: MACRO_OVERRIDES_PATH)")
		c.Flags().BoolVar(&screenLiveMacro, "live-macro", false, "resolve missing macro inputs from Yahoo (default: YAHOO_ENABLED)")
		c.Flags().StringVar(&screenDate, "date", "", "as-of date YYYY-MM-DD (default: today)")
		c.Flags().BoolVar(&screenFromDB, "from-db", false, "load records from PostgreSQL")
		c.Flags().BoolVar(&screenEnrich, "enrich", false, "fill missing metrics from Yahoo key statistics")
	}

	screenRunCmd.Flags().StringVar(&screenTickers, "tickers", "", "tickers CSV (default: TICKERS_PATH if present)")
	screenRunCmd.Flags().IntVar(&screenWorkers, "workers", 0, "scoring workers (default: SCORE_WORKERS)")
	screenRunCmd.Flags().StringVar(&screenOut, "out", "", "output directory (default: OUTPUT_DIR)")
	screenRunCmd.Flags().BoolVar(&screenNoPersist, "no-persist", false, "do not save the run to PostgreSQL")
	screenRunCmd.Flags().IntVar(&screenTop, "top", 0, "rows to print (default: strategy report.top_n)")

	screenScoreCmd.Flags().BoolVar(&screenJSON, "json", false, "print the score card as JSON")
}

// signalContext cancels on Ctrl+C
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rt, err := newRuntime(ctx, runtimeOptions{database: true})
	if err != nil {
		return err
	}
	defer rt.close()

	date, err := parseDate(screenDate)
	if err != nil {
		return err
	}

	runCfg := rt.defaultRunConfig()
	runCfg.Date = date
	applyScreenFlags(cmd, &runCfg)
	if screenTickers != "" {
		runCfg.TickersPath = screenTickers
	}
	if screenWorkers > 0 {
		runCfg.Workers = screenWorkers
	}
	if screenNoPersist {
		runCfg.Persist = false
	}

	source, err := rt.recordSource(screenFromDB, screenRecords)
	if err != nil {
		return err
	}
	if screenEnrich {
		source = rt.enrich(source, runCfg.Workers, runCfg.Persist)
	}

	screener, err := rt.newScreener(source, screenOut)
	if err != nil {
		return err
	}

	PrintRunHeader(RunMetadata{
		Title:      "Weekly Screen v2",
		Date:       date.Format("2006-01-02"),
		Strategy:   rt.strategy.Meta.StrategyID + " " + rt.strategy.Meta.Version,
		ConfigHash: screener.ConfigHash(),
		LiveMacro:  runCfg.LiveMacro,
	})

	start := time.Now()
	result, err := screener.Run(ctx, runCfg)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	outDir := screenOut
	if outDir == "" {
		outDir = rt.cfg.Paths.OutputDir
	}
	if err := writeDecisionSnapshot(outDir, rt.strategy, rt.strategyYAML, result); err != nil {
		PrintWarning(fmt.Sprintf("decision snapshot not written: %v", err))
	}

	top := screenTop
	if top <= 0 {
		top = rt.strategy.Report.TopN
	}
	printRanked(result.Run.Top(top))

	PrintSeparator()
	PrintKeyValue("Run ID", result.RunID, 10)
	PrintKeyValue("Universe", fmt.Sprintf("%d (excluded %d)", result.Universe.Count(), len(result.Universe.Excluded)), 10)
	PrintKeyValue("Ranked", fmt.Sprintf("%d", len(result.Run.Ranked)), 10)
	PrintKeyValue("Macro", formatMacro(result.Run.Macro), 10)
	if result.Paths != nil {
		PrintKeyValue("Results", result.Paths.ResultsCSV, 10)
		PrintKeyValue("Report", result.Paths.ReportMD, 10)
		PrintKeyValue("Explain", result.Paths.ExplainMD, 10)
	}
	PrintRunCompletion(result.RunID, time.Since(start).Seconds())

	return nil
}

// applyScreenFlags overrides the run template with flags shared by run and score
func applyScreenFlags(cmd *cobra.Command, runCfg *pipeline.RunConfig) {
	if screenPatents != "" {
		runCfg.PatentsPath = screenPatents
	}
	if screenMacroOverrides != "" {
		runCfg.MacroOverridesPath = screenMacroOverrides
	}
	if cmd.Flags().Changed("live-macro") {
		runCfg.LiveMacro = screenLiveMacro
	}
}

func runScore(cmd *cobra.Command, args []string) error {
	ticker := strings.ToUpper(strings.TrimSpace(args[0]))

	ctx, cancel := signalContext()
	defer cancel()

	rt, err := newRuntime(ctx, runtimeOptions{database: screenFromDB})
	if err != nil {
		return err
	}
	defer rt.close()

	date, err := parseDate(screenDate)
	if err != nil {
		return err
	}

	runCfg := rt.defaultRunConfig()
	applyScreenFlags(cmd, &runCfg)

	source, err := rt.recordSource(screenFromDB, screenRecords)
	if err != nil {
		return err
	}
	if screenEnrich {
		source = rt.enrich(source, 1, false)
	}

	records, err := source.Load(ctx, date)
	if err != nil {
		return err
	}
	var rec *contracts.CompanyRecord
	for _, r := range records {
		if r.Ticker == ticker {
			rec = r
			break
		}
	}
	if rec == nil {
		return fmt.Errorf("no record for %s", ticker)
	}

	patents, err := s0_data.LoadPatents(runCfg.PatentsPath, rt.strategy.Scores.IPBoost)
	if err != nil {
		return err
	}
	overrides, err := s0_data.LoadMacroOverrides(runCfg.MacroOverridesPath)
	if err != nil {
		return err
	}
	macroInputs := rt.resolver().Resolve(ctx, overrides, runCfg.LiveMacro)

	card := rt.engine().Score(ctx, rec, patents[ticker], macroInputs)

	if screenJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(card)
	}

	printScoreCard(card)
	return nil
}

func writeDecisionSnapshot(dir string, cfg *strategyconfig.Config, yamlData []byte, result *pipeline.RunResult) error {
	snap, err := strategyconfig.NewDecisionSnapshot(cfg, yamlData, result.RunID, result.Date.Format("2006-01-02"))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "decision_snapshot.json"), data, 0o644)
}
