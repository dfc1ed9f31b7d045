package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"eegtfr/adapters/dataset"
	figures "eegtfr/adapters/plot"
	"eegtfr/adapters/report"
	"eegtfr/adapters/rng"
	"eegtfr/adapters/stats/cluster"
	"eegtfr/app"
	"eegtfr/internal"
	"eegtfr/internal/config"
)

func main() {
	// Optional .env next to the binary; real env always wins
	_ = godotenv.Load()

	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error: %v", err)
		os.Exit(1)
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := buildPipeline(cfg)
	result, err := service.Run(ctx)
	if err != nil {
		logger.Error("pipeline failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("Done. Saved:", strings.Join(result.Outputs, ", "))
}

// buildPipeline wires the production adapters into the pipeline service
func buildPipeline(cfg *config.Config) *app.PipelineService {
	datasetAdapter := dataset.NewPhysioNetAdapter(dataset.PhysioNetConfig{
		BaseURL:  cfg.Dataset.BaseURL,
		Subject:  cfg.Dataset.Subject,
		Runs:     cfg.Dataset.Runs,
		CacheDir: cfg.Dataset.CacheDir,
	})
	renderer := figures.NewRenderer(cfg.Output.FigureWidth, cfg.Output.FigureHeight)
	reports := report.NewWriter(cfg.Output.Dir, cfg.Output.WriteHTML, cfg.Output.WriteExcel)
	engine := cluster.NewEngine(rng.NewDeterministicRNG())
	return app.NewPipelineService(cfg, datasetAdapter, renderer, reports, engine)
}
