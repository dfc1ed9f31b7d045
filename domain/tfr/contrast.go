package tfr

import (
	"math"

	"github.com/montanaflynn/stats"

	"eegtfr/domain/core"
)

// Contrast subtracts the first cube from the second, trial by trial
// (second - first), truncating both to the common minimum trial count.
// Axes must match exactly.
func Contrast(first, second *Cube) (*Cube, error) {
	if len(first.Freqs) != len(second.Freqs) || len(first.Times) != len(second.Times) {
		return nil, core.NewShapeMismatchError("matching freq/time axes", "differing axes")
	}

	n := first.NumTrials()
	if second.NumTrials() < n {
		n = second.NumTrials()
	}
	if n == 0 {
		return nil, core.ErrInsufficientTrials
	}

	diff := &Cube{
		Condition: core.ConditionKey(string(second.Condition) + "-" + string(first.Condition)),
		Channel:   first.Channel,
		Freqs:     first.Freqs,
		Times:     first.Times,
		Power:     make([][][]float64, n),
	}
	for ti := 0; ti < n; ti++ {
		diff.Power[ti] = make([][]float64, len(first.Freqs))
		for fi := range first.Freqs {
			row := make([]float64, len(first.Times))
			for si := range first.Times {
				row[si] = second.Power[ti][fi][si] - first.Power[ti][fi][si]
			}
			diff.Power[ti][fi] = row
		}
	}
	return diff, nil
}

// RobustRange returns a symmetric color range (-v, +v) where v is the
// given percentile of the map's absolute values. Keeps a lone extreme
// pixel from washing out the rest of the figure.
func RobustRange(m *Map, percentile float64) (float64, float64) {
	abs := make([]float64, 0, len(m.Values)*len(m.Times))
	for _, row := range m.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				abs = append(abs, math.Abs(v))
			}
		}
	}
	if len(abs) == 0 {
		return -1, 1
	}
	vmax, err := stats.Percentile(abs, percentile)
	if err != nil || vmax <= 0 {
		vmax, _ = stats.Max(abs)
	}
	if vmax <= 0 {
		vmax = 1
	}
	return -vmax, vmax
}

// Summary holds descriptive statistics of a difference map for reporting
type Summary struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Summarize computes descriptive statistics over a map's values
func Summarize(m *Map) Summary {
	flat := make([]float64, 0, len(m.Values)*len(m.Times))
	for _, row := range m.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				flat = append(flat, v)
			}
		}
	}
	if len(flat) == 0 {
		return Summary{}
	}
	min, _ := stats.Min(flat)
	max, _ := stats.Max(flat)
	mean, _ := stats.Mean(flat)
	median, _ := stats.Median(flat)
	sd, _ := stats.StandardDeviationSample(flat)
	return Summary{Min: min, Max: max, Mean: mean, Median: median, StdDev: sd}
}
