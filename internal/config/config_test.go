package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Dataset.Subject != "S001" {
		t.Errorf("Expected default subject S001, got %s", cfg.Dataset.Subject)
	}
	if len(cfg.Dataset.Runs) != 3 || cfg.Dataset.Runs[0] != 3 {
		t.Errorf("Expected default runs [3 7 11], got %v", cfg.Dataset.Runs)
	}
	if cfg.Filter.LowHz != 1.0 || cfg.Filter.HighHz != 40.0 {
		t.Errorf("Expected default 1-40 Hz band, got %v-%v", cfg.Filter.LowHz, cfg.Filter.HighHz)
	}
	if cfg.Epoch.TminSec != -0.2 || cfg.Epoch.TmaxSec != 0.8 {
		t.Errorf("Expected default epoch -0.2..0.8 s, got %v..%v", cfg.Epoch.TminSec, cfg.Epoch.TmaxSec)
	}
	if cfg.Epoch.MaxTrials != 80 {
		t.Errorf("Expected default trial cap 80, got %d", cfg.Epoch.MaxTrials)
	}
	if cfg.TFR.NumFreqs != 50 || cfg.TFR.FminHz != 4.0 || cfg.TFR.FmaxHz != 40.0 {
		t.Errorf("Unexpected default frequency grid: %d in %v-%v",
			cfg.TFR.NumFreqs, cfg.TFR.FminHz, cfg.TFR.FmaxHz)
	}
	if cfg.TFR.BaselineMode != "logratio" {
		t.Errorf("Expected default logratio baseline, got %s", cfg.TFR.BaselineMode)
	}
	if cfg.Stats.Permutations != 512 || cfg.Stats.Seed != 42 || cfg.Stats.Alpha != 0.05 {
		t.Errorf("Unexpected default stats config: %+v", cfg.Stats)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TFR_SEED", "7")
	t.Setenv("TFR_PERMUTATIONS", "128")
	t.Setenv("TFR_RUNS", "4, 8")
	t.Setenv("TFR_CHANNEL", "C4..")
	t.Setenv("TFR_WRITE_EXCEL", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Stats.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", cfg.Stats.Seed)
	}
	if cfg.Stats.Permutations != 128 {
		t.Errorf("Expected 128 permutations, got %d", cfg.Stats.Permutations)
	}
	if len(cfg.Dataset.Runs) != 2 || cfg.Dataset.Runs[0] != 4 || cfg.Dataset.Runs[1] != 8 {
		t.Errorf("Expected runs [4 8], got %v", cfg.Dataset.Runs)
	}
	if cfg.Dataset.Channel != "C4.." {
		t.Errorf("Expected channel C4.., got %s", cfg.Dataset.Channel)
	}
	if cfg.Output.WriteExcel {
		t.Error("Expected workbook output disabled")
	}
}

func TestLoad_InvalidIntsFallBack(t *testing.T) {
	t.Setenv("TFR_RUNS", "4,banana")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Dataset.Runs) != 3 {
		t.Errorf("Malformed run list should fall back to the default, got %v", cfg.Dataset.Runs)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"TFR_FILTER_LOW_HZ": "0",
		"TFR_EPOCH_TMAX":    "-0.5",
		"TFR_NUM_FREQS":     "1",
		"TFR_BASELINE_MODE": "db",
		"TFR_PERMUTATIONS":  "0",
		"TFR_ALPHA":         "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected validation error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_BaselineMustStartInsideEpoch(t *testing.T) {
	t.Setenv("TFR_BASELINE_FROM", "-0.5")
	if _, err := Load(); err == nil {
		t.Error("Expected error for baseline starting before the epoch window")
	}
}
