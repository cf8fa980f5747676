package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/s0_data"
)

// macroCmd represents the macro command
var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "매크로 입력 조회",
	Long: `Soros 점수에 쓰이는 매크로 입력을 확인합니다.

우선순위: macro_overrides.json → (--live) Yahoo 프록시
  ten_year_yield  ^TNX
  usd_dxy         DX-Y.NYB
  wti             CL=F
  gold            GC=F

Example:
  go run ./cmd/screener macro show
  go run ./cmd/screener macro show --live`,
}

var macroShowCmd = &cobra.Command{
	Use:   "show",
	Short: "해석된 매크로 입력 출력",
	RunE:  runMacroShow,
}

var (
	macroLive      bool
	macroOverrides string
)

func init() {
	rootCmd.AddCommand(macroCmd)
	macroCmd.AddCommand(macroShowCmd)

	macroShowCmd.Flags().BoolVar(&macroLive, "live", false, "fill missing inputs from Yahoo")
	macroShowCmd.Flags().StringVar(&macroOverrides, "overrides", "", "macro overrides JSON (default: MACRO_OVERRIDES_PATH)")
}

func runMacroShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rt, err := newRuntime(ctx, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	path := macroOverrides
	if path == "" {
		path = rt.cfg.Paths.MacroOverrides
	}
	overrides, err := s0_data.LoadMacroOverrides(path)
	if err != nil {
		return err
	}

	resolved := rt.resolver().Resolve(ctx, overrides, macroLive)

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  Macro Inputs")
	PrintSeparator()
	for _, field := range contracts.MacroFields {
		v := resolved.Get(field)
		if v == nil {
			PrintKeyValue(field, "-", 15)
			continue
		}
		PrintKeyValue(field, fmt.Sprintf("%.4f  (%s)", *v, resolved.Sources[field]), 15)
	}
	PrintDoubleSeparator()

	if resolved.TenYearYield == nil && resolved.USDIndex == nil && resolved.WTI == nil && resolved.Gold == nil {
		PrintWarning("매크로 입력이 없습니다: Soros 점수는 누락 처리됩니다")
	}
	return nil
}
