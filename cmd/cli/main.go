package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"eegtfr/adapters/dataset"
	figures "eegtfr/adapters/plot"
	"eegtfr/adapters/report"
	"eegtfr/adapters/rng"
	"eegtfr/adapters/stats/cluster"
	"eegtfr/app"
	"eegtfr/internal/config"
	"eegtfr/internal/testkit"
	"eegtfr/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "eegtfr-cli",
		Short: "EEG time-frequency pipeline with cluster permutation statistics",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newFetchCmd(),
		newInfoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		seed         int64
		permutations int
		channel      string
		outDir       string
		subject      string
		runs         string
		workers      int
		synthetic    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis pipeline",
		Long: `Run the complete pipeline: load recordings, band-pass filter, epoch,
Morlet time-frequency transform, baseline correction, condition contrast
and cluster permutation statistics. Results land in the output directory.

Example: eegtfr-cli run --seed 42 --permutations 512 --channel "C3.."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyOverride(cmd, "seed", func() { cfg.Stats.Seed = seed })
			applyOverride(cmd, "permutations", func() { cfg.Stats.Permutations = permutations })
			applyOverride(cmd, "channel", func() { cfg.Dataset.Channel = channel })
			applyOverride(cmd, "out", func() { cfg.Output.Dir = outDir })
			applyOverride(cmd, "subject", func() { cfg.Dataset.Subject = subject })
			applyOverride(cmd, "workers", func() { cfg.Stats.Workers = workers })
			if cmd.Flags().Changed("runs") {
				parsed, err := parseRuns(runs)
				if err != nil {
					return err
				}
				cfg.Dataset.Runs = parsed
			}

			var source ports.DatasetPort
			if synthetic {
				source = testkit.NewFakeDatasetAdapter(testkit.DefaultSyntheticSpec())
			} else {
				source = newDatasetAdapter(cfg)
			}

			service := app.NewPipelineService(
				cfg,
				source,
				figures.NewRenderer(cfg.Output.FigureWidth, cfg.Output.FigureHeight),
				report.NewWriter(cfg.Output.Dir, cfg.Output.WriteHTML, cfg.Output.WriteExcel),
				cluster.NewEngine(rng.NewDeterministicRNG()),
			)
			result, err := service.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("\n=== RUN RESULTS ===\n")
			fmt.Printf("Run ID: %s\n", result.RunID)
			fmt.Printf("Fingerprint: %s\n", result.Fingerprint)
			fmt.Printf("Channel: %s\n", result.Channel)
			fmt.Printf("Matched Trials: %d\n", result.MatchedTrials)
			fmt.Printf("Clusters: %d (%d significant at alpha=%.3g)\n",
				len(result.Stats.Clusters), result.Stats.NumSignificant(cfg.Stats.Alpha), cfg.Stats.Alpha)

			fmt.Printf("\n=== STAGES ===\n")
			for i, stage := range result.Stages {
				fmt.Printf("%d. %s: %d ms", i+1, stage.Name, stage.DurationMs)
				if len(stage.Metrics) > 0 {
					parts := make([]string, 0, len(stage.Metrics))
					for k, v := range stage.Metrics {
						parts = append(parts, fmt.Sprintf("%s=%v", k, v))
					}
					fmt.Printf(" (%s)", strings.Join(parts, ", "))
				}
				fmt.Println()
			}

			fmt.Printf("\nDone. Saved: %s\n", strings.Join(result.Outputs, ", "))
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the permutation test")
	cmd.Flags().IntVar(&permutations, "permutations", 512, "Number of sign-flip permutations")
	cmd.Flags().StringVar(&channel, "channel", "C3..", "EEG channel label to analyze")
	cmd.Flags().StringVar(&outDir, "out", "results", "Output directory for figures and reports")
	cmd.Flags().StringVar(&subject, "subject", "S001", "Dataset subject identifier")
	cmd.Flags().StringVar(&runs, "runs", "3,7,11", "Comma-separated dataset run numbers")
	cmd.Flags().IntVar(&workers, "workers", 0, "Permutation workers (0 = all CPUs)")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "Use a synthetic recording instead of downloading data")

	return cmd
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the dataset into the local cache",
		Long: `Download and decode the configured EDF+ records, priming the on-disk
cache so later runs work offline.

Example: eegtfr-cli fetch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			adapter := newDatasetAdapter(cfg)
			recordings, err := adapter.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Fetched %s: %d recordings cached under %s\n",
				adapter.Describe(), len(recordings), cfg.Dataset.CacheDir)
			for _, rec := range recordings {
				fmt.Printf("  %s: %d channels, %.1f Hz, %.1f s, %d events\n",
					rec.Name, rec.NumChannels(), rec.SFreq, rec.DurationSec(), len(rec.Events))
			}
			return nil
		},
	}
	return cmd
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the effective configuration and cache state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			subjectDir := filepath.Join(cfg.Dataset.CacheDir, cfg.Dataset.Subject)
			entries, err := os.ReadDir(subjectDir)
			if err != nil {
				fmt.Printf("\nCache: empty (%s)\n", subjectDir)
				return nil
			}
			fmt.Printf("\nCache (%s):\n", subjectDir)
			for _, entry := range entries {
				info, err := entry.Info()
				if err != nil {
					continue
				}
				fmt.Printf("  %s (%d bytes)\n", entry.Name(), info.Size())
			}
			return nil
		},
	}
	return cmd
}

func newDatasetAdapter(cfg *config.Config) *dataset.PhysioNetAdapter {
	return dataset.NewPhysioNetAdapter(dataset.PhysioNetConfig{
		BaseURL:  cfg.Dataset.BaseURL,
		Subject:  cfg.Dataset.Subject,
		Runs:     cfg.Dataset.Runs,
		CacheDir: cfg.Dataset.CacheDir,
	})
}

// applyOverride applies a flag override only when the flag was set explicitly
func applyOverride(cmd *cobra.Command, name string, apply func()) {
	if cmd.Flags().Changed(name) {
		apply()
	}
}

func parseRuns(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid run number %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
