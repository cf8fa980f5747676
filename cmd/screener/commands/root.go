package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Legends v2 - 전설적 투자자 팩터 스크리너",
	Long: `Legends v2 Screener CLI

재무 레코드를 6개 투자자 점수(Buffett, Lynch, Icahn, Soros, Simons, IP Boost)로
평가하고 메타 점수로 순위를 매깁니다.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen run
  go run ./cmd/screener screen score AAPL
  go run ./cmd/screener macro show --live
  go run ./cmd/screener explain
  go run ./cmd/screener api
  go run ./cmd/screener test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "strategy YAML (default: STRATEGY_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
