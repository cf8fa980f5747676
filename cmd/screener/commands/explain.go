package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/report"
	"github.com/wonny/screener/internal/strategyconfig"
)

// explainCmd prints the factor explanation of the loaded strategy
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "팩터 설명 출력",
	Long: `전략 설정으로부터 factor_explain_v2.md 내용을 표준 출력에 씁니다.

Example:
  go run ./cmd/screener explain
  go run ./cmd/screener explain --strategy config/strategy/legends_v2.yaml`,
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, _, err := strategyconfig.LoadOrDefault(strategyPath)
	if err != nil {
		return err
	}
	return report.WriteExplain(os.Stdout, cfg)
}
