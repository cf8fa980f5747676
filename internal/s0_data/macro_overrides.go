package s0_data

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/wonny/screener/internal/contracts"
)

// macroOverridesFile is the macro_overrides.json layout
type macroOverridesFile struct {
	TenYearYield *float64 `json:"ten_year_yield"` // 0.042 = 4.2%
	USDIndex     *float64 `json:"usd_dxy"`
	WTI          *float64 `json:"wti"`
	Gold         *float64 `json:"gold"`
}

// LoadMacroOverrides reads the optional macro overrides file.
// A missing file yields empty inputs, not an error.
func LoadMacroOverrides(path string) (contracts.MacroInputs, error) {
	if path == "" {
		return contracts.MacroInputs{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return contracts.MacroInputs{}, nil
	}
	if err != nil {
		return contracts.MacroInputs{}, fmt.Errorf("read macro overrides %s: %w", path, err)
	}

	overrides, err := ParseMacroOverrides(data)
	if err != nil {
		return contracts.MacroInputs{}, fmt.Errorf("parse macro overrides %s: %w", path, err)
	}
	return overrides, nil
}

// ParseMacroOverrides decodes overrides JSON; every present field is tagged override
func ParseMacroOverrides(data []byte) (contracts.MacroInputs, error) {
	var file macroOverridesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return contracts.MacroInputs{}, err
	}

	var m contracts.MacroInputs
	if file.TenYearYield != nil {
		m.Set(contracts.MacroTenYearYield, *file.TenYearYield, contracts.MacroSourceOverride)
	}
	if file.USDIndex != nil {
		m.Set(contracts.MacroUSDIndex, *file.USDIndex, contracts.MacroSourceOverride)
	}
	if file.WTI != nil {
		m.Set(contracts.MacroWTI, *file.WTI, contracts.MacroSourceOverride)
	}
	if file.Gold != nil {
		m.Set(contracts.MacroGold, *file.Gold, contracts.MacroSourceOverride)
	}
	return m, nil
}
