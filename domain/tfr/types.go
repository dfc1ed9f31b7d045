package tfr

import (
	"fmt"

	"eegtfr/domain/core"
)

// Cube holds per-trial time-frequency power for one condition and
// channel, laid out [trial][freq][time].
type Cube struct {
	Condition core.ConditionKey
	Channel   string
	Freqs     []float64
	Times     []float64
	Power     [][][]float64
}

// Map is a single freq x time surface, laid out [freq][time]
type Map struct {
	Freqs  []float64
	Times  []float64
	Values [][]float64
}

// NumTrials returns the trial count
func (c *Cube) NumTrials() int { return len(c.Power) }

// NumFreqs returns the frequency bin count
func (c *Cube) NumFreqs() int { return len(c.Freqs) }

// NumTimes returns the time bin count
func (c *Cube) NumTimes() int { return len(c.Times) }

// Validate checks internal shape consistency
func (c *Cube) Validate() error {
	for ti, trial := range c.Power {
		if len(trial) != len(c.Freqs) {
			return core.NewShapeMismatchError(
				fmt.Sprintf("%d freqs", len(c.Freqs)),
				fmt.Sprintf("%d rows in trial %d", len(trial), ti))
		}
		for fi, row := range trial {
			if len(row) != len(c.Times) {
				return core.NewShapeMismatchError(
					fmt.Sprintf("%d times", len(c.Times)),
					fmt.Sprintf("%d cols in trial %d freq %d", len(row), ti, fi))
			}
		}
	}
	return nil
}

// TrialMean averages power across trials into a freq x time map
func (c *Cube) TrialMean() *Map {
	mean := &Map{
		Freqs:  c.Freqs,
		Times:  c.Times,
		Values: make([][]float64, len(c.Freqs)),
	}
	n := float64(c.NumTrials())
	for fi := range c.Freqs {
		mean.Values[fi] = make([]float64, len(c.Times))
		if n == 0 {
			continue
		}
		for ti := range c.Times {
			sum := 0.0
			for _, trial := range c.Power {
				sum += trial[fi][ti]
			}
			mean.Values[fi][ti] = sum / n
		}
	}
	return mean
}

// LinspaceFreqs builds a linear frequency grid, inclusive of both ends
func LinspaceFreqs(fmin, fmax float64, n int) []float64 {
	freqs := make([]float64, n)
	if n == 1 {
		freqs[0] = fmin
		return freqs
	}
	step := (fmax - fmin) / float64(n-1)
	for i := range freqs {
		freqs[i] = fmin + float64(i)*step
	}
	return freqs
}

// CyclesFor derives per-frequency wavelet cycle counts as freq/divisor
func CyclesFor(freqs []float64, divisor float64) []float64 {
	cycles := make([]float64, len(freqs))
	for i, f := range freqs {
		cycles[i] = f / divisor
	}
	return cycles
}
