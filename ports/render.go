package ports

import (
	"context"

	"eegtfr/domain/core"
	"eegtfr/domain/stats"
	"eegtfr/domain/tfr"
)

// DifferenceFigure bundles everything needed to draw the contrast map
type DifferenceFigure struct {
	Map      *tfr.Map
	SigMask  [][]bool
	Title    string
	ColorMin float64
	ColorMax float64
}

// FigurePort renders time-frequency figures to image files
type FigurePort interface {
	// RenderDifference draws the contrast heat map with the significance
	// contour and a stimulus-onset marker
	RenderDifference(ctx context.Context, fig DifferenceFigure, path string) error

	// RenderMap draws a single freq x time surface
	RenderMap(ctx context.Context, m *tfr.Map, title, path string) error
}

// ReportData carries everything the report writers need
type ReportData struct {
	RunID        core.RunID      `json:"run_id"`
	GeneratedAt  core.Timestamp  `json:"generated_at"`
	Dataset      string          `json:"dataset"`
	Channel      string          `json:"channel"`
	Conditions   [2]string       `json:"conditions"`
	TrialCounts  [2]int          `json:"trial_counts"`
	MatchedN     int             `json:"matched_n"`
	BaselineFrom float64         `json:"baseline_from"`
	BaselineTo   float64         `json:"baseline_to"`
	BaselineMode string          `json:"baseline_mode"`
	FreqLoHz     float64         `json:"freq_lo_hz"`
	FreqHiHz     float64         `json:"freq_hi_hz"`
	NumFreqs     int             `json:"num_freqs"`
	Permutations int             `json:"permutations"`
	Alpha        float64         `json:"alpha"`
	Seed         int64           `json:"seed"`
	Fingerprint  core.Hash       `json:"fingerprint"`
	Summary      tfr.Summary     `json:"summary"`
	Clusters     []stats.Cluster `json:"clusters"`
	FigurePaths  []string        `json:"figure_paths"`
}

// ReportPort writes run reports (text, markdown/HTML, workbook)
type ReportPort interface {
	// Write emits the configured report artifacts and returns their paths
	Write(ctx context.Context, data ReportData) ([]string, error)
}
