package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"eegtfr/adapters/stats/cluster"
	"eegtfr/domain/core"
	"eegtfr/domain/signal"
	"eegtfr/domain/stats"
	"eegtfr/domain/tfr"
	"eegtfr/internal"
	"eegtfr/internal/config"
	"eegtfr/internal/dsp"
	apperrors "eegtfr/internal/errors"
	"eegtfr/ports"
)

// PipelineService runs the complete analysis: load, filter, epoch,
// time-frequency transform, baseline, contrast, cluster statistics and
// result rendering.
type PipelineService struct {
	cfg     *config.Config
	dataset ports.DatasetPort
	figures ports.FigurePort
	reports ports.ReportPort
	engine  *cluster.Engine
	logger  *internal.Logger
}

// NewPipelineService wires the pipeline from its ports
func NewPipelineService(cfg *config.Config, dataset ports.DatasetPort, figures ports.FigurePort, reports ports.ReportPort, engine *cluster.Engine) *PipelineService {
	return &PipelineService{
		cfg:     cfg,
		dataset: dataset,
		figures: figures,
		reports: reports,
		engine:  engine,
		logger:  internal.DefaultLogger,
	}
}

// StageResult records per-stage timing and metrics
type StageResult struct {
	Name       string                 `json:"name"`
	DurationMs int64                  `json:"duration_ms"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
}

// RunResult is the complete output of one pipeline run
type RunResult struct {
	RunID         core.RunID           `json:"run_id"`
	Fingerprint   core.Hash            `json:"fingerprint"`
	Channel       string               `json:"channel"`
	MatchedTrials int                  `json:"matched_trials"`
	Stats         *stats.ClusterResult `json:"stats"`
	Stages        []StageResult        `json:"stages"`
	Outputs       []string             `json:"outputs"`
}

// Run executes the full pipeline once
func (s *PipelineService) Run(ctx context.Context) (*RunResult, error) {
	runID := core.RunID(core.NewID())
	result := &RunResult{
		RunID:       runID,
		Fingerprint: s.fingerprint(),
	}
	// Permutation streams are scoped by the parameter fingerprint, not
	// the run ID, so identical parameters reproduce identical statistics.
	s.engine.SetRunID(result.Fingerprint.String())
	s.logger.Info("starting run %s (fingerprint %.12s)", runID, result.Fingerprint)

	// Load
	var recordings []*signal.Recording
	err := s.stage(result, "load", func() (map[string]interface{}, error) {
		var err error
		recordings, err = s.dataset.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if len(recordings) == 0 {
			return nil, apperrors.DatasetError("dataset returned no recordings", nil)
		}
		return map[string]interface{}{"recordings": len(recordings)}, nil
	})
	if err != nil {
		return nil, err
	}

	// Resolve the analysis channel on the first recording and filter it
	// in every recording.
	channelIdx, channelName := recordings[0].PickChannel(s.cfg.Dataset.Channel)
	if channelIdx < 0 {
		return nil, apperrors.SignalError("recordings carry no channels")
	}
	result.Channel = channelName

	err = s.stage(result, "filter", func() (map[string]interface{}, error) {
		for _, rec := range recordings {
			idx, err := rec.ChannelIndex(channelName)
			if err != nil {
				return nil, apperrors.Wrapf(err, "channel %q missing in %s", channelName, rec.Name)
			}
			filtered, err := dsp.Bandpass(rec.Data[idx], s.cfg.Filter.LowHz, s.cfg.Filter.HighHz, rec.SFreq)
			if err != nil {
				return nil, apperrors.Wrapf(err, "band-pass of %s failed", rec.Name)
			}
			rec.Data[idx] = filtered
		}
		return map[string]interface{}{
			"low_hz":  s.cfg.Filter.LowHz,
			"high_hz": s.cfg.Filter.HighHz,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	// Epoch both conditions across all recordings
	var left, right *signal.Epochs
	var leftUsed, rightUsed int
	err = s.stage(result, "epoch", func() (map[string]interface{}, error) {
		var err error
		left, err = s.collectEpochs(recordings, channelName, signal.CondLeft)
		if err != nil {
			return nil, err
		}
		right, err = s.collectEpochs(recordings, channelName, signal.CondRight)
		if err != nil {
			return nil, err
		}
		left.Truncate(s.cfg.Epoch.MaxTrials)
		right.Truncate(s.cfg.Epoch.MaxTrials)
		if factor := s.cfg.Epoch.Decimate; factor > 1 {
			if err := decimateEpochs(left, factor); err != nil {
				return nil, err
			}
			if err := decimateEpochs(right, factor); err != nil {
				return nil, err
			}
		}
		leftUsed, rightUsed = left.NumTrials(), right.NumTrials()
		matched := signal.MatchTrials(left, right)
		if matched < 2 {
			return nil, core.ErrInsufficientTrials
		}
		result.MatchedTrials = matched
		return map[string]interface{}{
			"left":    leftUsed,
			"right":   rightUsed,
			"matched": matched,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	// Morlet transform per condition, in parallel
	freqs := tfr.LinspaceFreqs(s.cfg.TFR.FminHz, s.cfg.TFR.FmaxHz, s.cfg.TFR.NumFreqs)
	cycles := tfr.CyclesFor(freqs, s.cfg.TFR.CycleDivisor)
	var leftCube, rightCube *tfr.Cube
	err = s.stage(result, "tfr", func() (map[string]interface{}, error) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			leftCube, err = s.transform(gctx, left, freqs, cycles)
			return err
		})
		g.Go(func() error {
			var err error
			rightCube, err = s.transform(gctx, right, freqs, cycles)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"freqs": len(freqs),
			"times": leftCube.NumTimes(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	// Baseline normalization
	baselineMode, err := tfr.ParseBaselineMode(s.cfg.TFR.BaselineMode)
	if err != nil {
		return nil, apperrors.ConfigInvalid(err.Error())
	}
	baseline := tfr.Baseline{
		FromSec: s.cfg.TFR.BaselineFrom,
		ToSec:   s.cfg.TFR.BaselineTo,
		Mode:    baselineMode,
	}
	err = s.stage(result, "baseline", func() (map[string]interface{}, error) {
		if err := tfr.ApplyBaseline(leftCube, baseline); err != nil {
			return nil, err
		}
		if err := tfr.ApplyBaseline(rightCube, baseline); err != nil {
			return nil, err
		}
		return map[string]interface{}{"mode": string(baseline.Mode)}, nil
	})
	if err != nil {
		return nil, err
	}

	// Per-trial condition contrast (right - left)
	var diff *tfr.Cube
	err = s.stage(result, "contrast", func() (map[string]interface{}, error) {
		var err error
		diff, err = tfr.Contrast(leftCube, rightCube)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"trials": diff.NumTrials()}, nil
	})
	if err != nil {
		return nil, err
	}

	// Cluster permutation statistics
	err = s.stage(result, "cluster", func() (map[string]interface{}, error) {
		testResult, err := s.engine.Test(ctx, diff, stats.ClusterParams{
			Permutations: s.cfg.Stats.Permutations,
			Alpha:        s.cfg.Stats.Alpha,
			Tail:         stats.TailBoth,
			Seed:         s.cfg.Stats.Seed,
			Workers:      s.cfg.Stats.Workers,
		})
		if err != nil {
			return nil, err
		}
		result.Stats = testResult
		return map[string]interface{}{
			"clusters":    len(testResult.Clusters),
			"significant": testResult.NumSignificant(s.cfg.Stats.Alpha),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	// Figures
	mean := diff.TrialMean()
	var figurePaths []string
	err = s.stage(result, "render", func() (map[string]interface{}, error) {
		if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
			return nil, apperrors.RenderError("failed to create results directory", err)
		}
		lo, hi := tfr.RobustRange(mean, 98)
		diffPath := filepath.Join(s.cfg.Output.Dir, "tfr_diff_with_stats.png")
		title := fmt.Sprintf("TFR difference (right - left), %s baseline - %s", baseline.Mode, channelName)
		if err := s.figures.RenderDifference(ctx, ports.DifferenceFigure{
			Map:      mean,
			SigMask:  result.Stats.SigMask,
			Title:    title,
			ColorMin: lo,
			ColorMax: hi,
		}, diffPath); err != nil {
			return nil, err
		}
		figurePaths = append(figurePaths, diffPath)

		for _, side := range []struct {
			cube *tfr.Cube
			name string
		}{
			{leftCube, "tfr_left_power.png"},
			{rightCube, "tfr_right_power.png"},
		} {
			path := filepath.Join(s.cfg.Output.Dir, side.name)
			title := fmt.Sprintf("TFR power (%s), %s baseline - %s", side.cube.Condition, baseline.Mode, channelName)
			if err := s.figures.RenderMap(ctx, side.cube.TrialMean(), title, path); err != nil {
				return nil, err
			}
			figurePaths = append(figurePaths, path)
		}
		result.Outputs = append(result.Outputs, figurePaths...)
		return map[string]interface{}{"figures": len(figurePaths)}, nil
	})
	if err != nil {
		return nil, err
	}

	// Reports
	err = s.stage(result, "report", func() (map[string]interface{}, error) {
		paths, err := s.reports.Write(ctx, ports.ReportData{
			RunID:        runID,
			GeneratedAt:  core.Now(),
			Dataset:      s.dataset.Describe(),
			Channel:      channelName,
			Conditions:   [2]string{string(signal.CondLeft), string(signal.CondRight)},
			TrialCounts:  [2]int{leftUsed, rightUsed},
			MatchedN:     result.MatchedTrials,
			BaselineFrom: baseline.FromSec,
			BaselineTo:   baseline.ToSec,
			BaselineMode: string(baseline.Mode),
			FreqLoHz:     freqs[0],
			FreqHiHz:     freqs[len(freqs)-1],
			NumFreqs:     len(freqs),
			Permutations: s.cfg.Stats.Permutations,
			Alpha:        s.cfg.Stats.Alpha,
			Seed:         s.cfg.Stats.Seed,
			Fingerprint:  result.Fingerprint,
			Summary:      tfr.Summarize(mean),
			Clusters:     result.Stats.Clusters,
			FigurePaths:  figurePaths,
		})
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, paths...)
		return map[string]interface{}{"reports": len(paths)}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("run %s complete: %d clusters (%d significant), %d outputs",
		runID, len(result.Stats.Clusters), result.Stats.NumSignificant(s.cfg.Stats.Alpha), len(result.Outputs))
	return result, nil
}

// collectEpochs extracts and merges one condition across all recordings.
// Recordings without events for the condition are skipped; only an
// empty total is an error.
func (s *PipelineService) collectEpochs(recordings []*signal.Recording, channel string, cond core.ConditionKey) (*signal.Epochs, error) {
	win := signal.Window{TminSec: s.cfg.Epoch.TminSec, TmaxSec: s.cfg.Epoch.TmaxSec}
	var merged *signal.Epochs
	for _, rec := range recordings {
		idx, err := rec.ChannelIndex(channel)
		if err != nil {
			return nil, err
		}
		epochs, err := signal.Extract(rec, idx, cond, win)
		if err != nil {
			if stderrors.Is(err, core.ErrNoEvents) {
				continue
			}
			return nil, err
		}
		if merged == nil {
			merged = epochs
			continue
		}
		if err := merged.Append(epochs); err != nil {
			return nil, err
		}
	}
	if merged == nil || merged.NumTrials() == 0 {
		return nil, core.NewNoEventsError(string(cond))
	}
	return merged, nil
}

// transform runs the Morlet bank over one condition's epochs
func (s *PipelineService) transform(ctx context.Context, epochs *signal.Epochs, freqs, cycles []float64) (*tfr.Cube, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	power, err := dsp.MorletPower(epochs.Trials, epochs.SFreq, freqs, cycles)
	if err != nil {
		return nil, apperrors.Wrapf(err, "morlet transform of %s failed", epochs.Condition)
	}
	cube := &tfr.Cube{
		Condition: epochs.Condition,
		Channel:   epochs.Channel,
		Freqs:     freqs,
		Times:     epochs.Times(),
		Power:     power,
	}
	return cube, cube.Validate()
}

// decimateEpochs decimates every trial in place and rescales the rate
func decimateEpochs(e *signal.Epochs, factor int) error {
	for i, trial := range e.Trials {
		out, err := dsp.Decimate(trial, factor, e.SFreq)
		if err != nil {
			return err
		}
		e.Trials[i] = out
	}
	e.SFreq /= float64(factor)
	return nil
}

// stage times a pipeline step and records its metrics
func (s *PipelineService) stage(result *RunResult, name string, fn func() (map[string]interface{}, error)) error {
	start := time.Now()
	metrics, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error("stage %s failed after %s: %v", name, elapsed.Round(time.Millisecond), err)
		return apperrors.Wrapf(err, "stage %s failed", name)
	}
	result.Stages = append(result.Stages, StageResult{
		Name:       name,
		DurationMs: elapsed.Milliseconds(),
		Metrics:    metrics,
	})
	s.logger.Debug("stage %s done in %s", name, elapsed.Round(time.Millisecond))
	return nil
}

// fingerprint hashes every analysis-relevant parameter
func (s *PipelineService) fingerprint() core.Hash {
	return core.ComputeParamsHash(map[string]interface{}{
		"dataset":       s.dataset.Describe(),
		"channel":       s.cfg.Dataset.Channel,
		"filter_low":    s.cfg.Filter.LowHz,
		"filter_high":   s.cfg.Filter.HighHz,
		"tmin":          s.cfg.Epoch.TminSec,
		"tmax":          s.cfg.Epoch.TmaxSec,
		"max_trials":    s.cfg.Epoch.MaxTrials,
		"decimate":      s.cfg.Epoch.Decimate,
		"fmin":          s.cfg.TFR.FminHz,
		"fmax":          s.cfg.TFR.FmaxHz,
		"num_freqs":     s.cfg.TFR.NumFreqs,
		"cycle_divisor": s.cfg.TFR.CycleDivisor,
		"baseline_from": s.cfg.TFR.BaselineFrom,
		"baseline_to":   s.cfg.TFR.BaselineTo,
		"baseline_mode": s.cfg.TFR.BaselineMode,
		"permutations":  s.cfg.Stats.Permutations,
		"alpha":         s.cfg.Stats.Alpha,
		"seed":          s.cfg.Stats.Seed,
	})
}
