package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	// 테스트용 YAML 경로
	path := "../../config/strategy/legends_v2.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.StrategyID != "legends_v2" {
		t.Errorf("expected strategy_id=legends_v2, got %s", cfg.Meta.StrategyID)
	}
	if cfg.Report.TopN != 20 {
		t.Errorf("expected top_n=20, got %d", cfg.Report.TopN)
	}

	// 파일과 내장 기본값은 동일해야 함
	fileHash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	defaultHash, _ := Hash(Default())
	if fileHash != defaultHash {
		t.Errorf("legends_v2.yaml and Default() differ: %s vs %s", fileHash, defaultHash)
	}

	t.Logf("config hash: %s", fileHash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
}

func TestHashDeterministic(t *testing.T) {
	h1, err := Hash(Default())
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(h1))
	}

	h2, _ := Hash(Default())
	if h1 != h2 {
		t.Error("hash not deterministic")
	}

	cfg := Default()
	cfg.Report.TopN = 10
	h3, _ := Hash(cfg)
	if h1 == h3 {
		t.Error("hash should change when config changes")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"buffett weights", func(c *Config) { c.Scores.Buffett.ROIC.Weight = 0.5 }, "scores.buffett"},
		{"zero span", func(c *Config) { c.Scores.Lynch.PEG.Span = 0 }, "scores.lynch.peg.span"},
		{"tax rate", func(c *Config) { c.Scores.Buffett.DefaultTaxRate = 1.5 }, "scores.buffett.default_tax_rate"},
		{"boost mode", func(c *Config) { c.Scores.IPBoost.Mode = "BLEND" }, "scores.ip_boost.mode"},
		{"neutral", func(c *Config) { c.Scores.Soros.Neutral.Gold = 0 }, "scores.soros.neutral"},
		{"normalization", func(c *Config) { c.Selection.Normalization = "rank" }, "selection.normalization"},
		{"meta weights", func(c *Config) { c.Selection.MetaWeights.Lynch = 0.5 }, "selection.meta_weights"},
		{"top n", func(c *Config) { c.Report.TopN = 0 }, "report.top_n"},
		{"min returns", func(c *Config) { c.Scores.Simons.MinReturns = 2 }, "scores.simons.min_returns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field=%s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	data, err := yaml.Marshal(Default())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	data = append(data, []byte("unknown_section:\n  foo: 1\n")...)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, data, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Meta.StrategyID != "legends_v2" {
		t.Errorf("expected legends_v2, got %s", cfg.Meta.StrategyID)
	}
	if len(data) == 0 {
		t.Error("expected marshalled yaml")
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Scores.IPBoost.MaxPoints = 30
	cfg.Selection.MetaWeights.Simons = 0.35

	warnings := Warn(cfg)
	if len(warnings) < 2 {
		t.Errorf("expected at least 2 warnings, got %d", len(warnings))
	}
}

func TestDecisionSnapshot(t *testing.T) {
	cfg := &Config{
		Meta: Meta{
			StrategyID: "test_strategy",
			Version:    "1.0.0",
		},
	}
	yamlData := []byte("test yaml content")

	snapshot, err := NewDecisionSnapshot(cfg, yamlData, "run-1", "data_20240115")
	if err != nil {
		t.Fatalf("NewDecisionSnapshot failed: %v", err)
	}

	if snapshot.StrategyID != "test_strategy" {
		t.Errorf("expected strategy_id=test_strategy, got %s", snapshot.StrategyID)
	}
	if snapshot.RunID != "run-1" {
		t.Errorf("expected run_id=run-1, got %s", snapshot.RunID)
	}
	if snapshot.ConfigHash == "" {
		t.Error("expected config hash")
	}
}
