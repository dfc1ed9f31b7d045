package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eegtfr/internal/errors"
)

// Config represents the complete pipeline configuration
type Config struct {
	Dataset DatasetConfig
	Filter  FilterConfig
	Epoch   EpochConfig
	TFR     TFRConfig
	Stats   StatsConfig
	Output  OutputConfig
}

// DatasetConfig holds sample dataset location and cache settings
type DatasetConfig struct {
	BaseURL  string
	Subject  string
	Runs     []int
	CacheDir string
	Channel  string
}

// FilterConfig holds band-pass filter settings
type FilterConfig struct {
	LowHz  float64
	HighHz float64
}

// EpochConfig holds epoch extraction settings
type EpochConfig struct {
	TminSec   float64
	TmaxSec   float64
	MaxTrials int // per condition; 0 disables the cap
	Decimate  int // keep every n-th sample after anti-alias low-pass; <=1 disables
}

// TFRConfig holds Morlet time-frequency settings
type TFRConfig struct {
	FminHz       float64
	FmaxHz       float64
	NumFreqs     int
	CycleDivisor float64 // cycles = freq / CycleDivisor
	BaselineFrom float64
	BaselineTo   float64
	BaselineMode string // logratio, percent, zscore
}

// StatsConfig holds cluster permutation test settings
type StatsConfig struct {
	Permutations int
	Alpha        float64
	Seed         int64
	Workers      int // 0 = GOMAXPROCS
}

// OutputConfig holds result rendering settings
type OutputConfig struct {
	Dir          string
	WriteHTML    bool
	WriteExcel   bool
	FigureWidth  float64 // inches
	FigureHeight float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Dataset: loadDatasetConfig(),
		Filter: FilterConfig{
			LowHz:  getEnvFloatOrDefault("TFR_FILTER_LOW_HZ", 1.0),
			HighHz: getEnvFloatOrDefault("TFR_FILTER_HIGH_HZ", 40.0),
		},
		Epoch: EpochConfig{
			TminSec:   getEnvFloatOrDefault("TFR_EPOCH_TMIN", -0.2),
			TmaxSec:   getEnvFloatOrDefault("TFR_EPOCH_TMAX", 0.8),
			MaxTrials: getEnvIntOrDefault("TFR_MAX_TRIALS", 80),
			Decimate:  getEnvIntOrDefault("TFR_DECIMATE", 1),
		},
		TFR: TFRConfig{
			FminHz:       getEnvFloatOrDefault("TFR_FMIN_HZ", 4.0),
			FmaxHz:       getEnvFloatOrDefault("TFR_FMAX_HZ", 40.0),
			NumFreqs:     getEnvIntOrDefault("TFR_NUM_FREQS", 50),
			CycleDivisor: getEnvFloatOrDefault("TFR_CYCLE_DIVISOR", 2.0),
			BaselineFrom: getEnvFloatOrDefault("TFR_BASELINE_FROM", -0.2),
			BaselineTo:   getEnvFloatOrDefault("TFR_BASELINE_TO", 0.0),
			BaselineMode: getEnvOrDefault("TFR_BASELINE_MODE", "logratio"),
		},
		Stats: StatsConfig{
			Permutations: getEnvIntOrDefault("TFR_PERMUTATIONS", 512),
			Alpha:        getEnvFloatOrDefault("TFR_ALPHA", 0.05),
			Seed:         int64(getEnvIntOrDefault("TFR_SEED", 42)),
			Workers:      getEnvIntOrDefault("TFR_WORKERS", 0),
		},
		Output: OutputConfig{
			Dir:          getEnvOrDefault("TFR_RESULTS_DIR", "results"),
			WriteHTML:    getEnvBoolOrDefault("TFR_WRITE_HTML", true),
			WriteExcel:   getEnvBoolOrDefault("TFR_WRITE_EXCEL", true),
			FigureWidth:  getEnvFloatOrDefault("TFR_FIGURE_WIDTH", 9.0),
			FigureHeight: getEnvFloatOrDefault("TFR_FIGURE_HEIGHT", 5.0),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatasetConfig() DatasetConfig {
	return DatasetConfig{
		BaseURL:  getEnvOrDefault("TFR_DATASET_URL", "https://physionet.org/files/eegmmidb/1.0.0"),
		Subject:  getEnvOrDefault("TFR_SUBJECT", "S001"),
		Runs:     getEnvIntsOrDefault("TFR_RUNS", []int{3, 7, 11}),
		CacheDir: getEnvOrDefault("TFR_CACHE_DIR", defaultCacheDir()),
		Channel:  getEnvOrDefault("TFR_CHANNEL", "C3.."),
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", ".cache", "eegtfr")
	}
	return filepath.Join(base, "eegtfr")
}

func validateConfig(config *Config) error {
	if config.Filter.LowHz <= 0 || config.Filter.HighHz <= config.Filter.LowHz {
		return errors.ConfigInvalid("filter band must satisfy 0 < low < high")
	}
	if config.Epoch.TmaxSec <= config.Epoch.TminSec {
		return errors.ConfigInvalid("epoch window must satisfy tmin < tmax")
	}
	if config.TFR.NumFreqs < 2 {
		return errors.ConfigInvalid("at least two analysis frequencies are required")
	}
	if config.TFR.FmaxHz <= config.TFR.FminHz {
		return errors.ConfigInvalid("frequency grid must satisfy fmin < fmax")
	}
	if config.TFR.BaselineTo <= config.TFR.BaselineFrom {
		return errors.ConfigInvalid("baseline window must satisfy from < to")
	}
	if config.TFR.BaselineFrom < config.Epoch.TminSec {
		return errors.ConfigInvalid("baseline window starts before the epoch window")
	}
	switch config.TFR.BaselineMode {
	case "logratio", "percent", "zscore":
	default:
		return errors.ConfigInvalid("baseline mode must be logratio, percent or zscore")
	}
	if config.Stats.Permutations < 1 {
		return errors.ConfigInvalid("at least one permutation is required")
	}
	if config.Stats.Alpha <= 0 || config.Stats.Alpha >= 1 {
		return errors.ConfigInvalid("alpha must be in (0, 1)")
	}
	if len(config.Dataset.Runs) == 0 {
		return errors.ConfigInvalid("at least one dataset run is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvIntsOrDefault(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	return out
}
