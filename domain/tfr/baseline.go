package tfr

import (
	"fmt"
	"math"

	"eegtfr/domain/core"
)

// BaselineMode selects how power is normalized against the baseline window
type BaselineMode string

const (
	// BaselineLogRatio is log10(power / baseline mean), the ERSP-style default
	BaselineLogRatio BaselineMode = "logratio"
	// BaselinePercent is (power - baseline mean) / baseline mean
	BaselinePercent BaselineMode = "percent"
	// BaselineZScore is (power - baseline mean) / baseline stddev
	BaselineZScore BaselineMode = "zscore"
)

// ParseBaselineMode validates a mode string
func ParseBaselineMode(s string) (BaselineMode, error) {
	switch BaselineMode(s) {
	case BaselineLogRatio, BaselinePercent, BaselineZScore:
		return BaselineMode(s), nil
	}
	return "", fmt.Errorf("unknown baseline mode %q", s)
}

// Baseline defines the normalization window in epoch time
type Baseline struct {
	FromSec float64
	ToSec   float64
	Mode    BaselineMode
}

// ApplyBaseline normalizes each trial and frequency row in place against
// the mean (and for zscore the stddev) of the row's baseline samples.
func ApplyBaseline(c *Cube, b Baseline) error {
	lo, hi := -1, -1
	for i, t := range c.Times {
		if lo == -1 && t >= b.FromSec-1e-9 {
			lo = i
		}
		if t <= b.ToSec+1e-9 {
			hi = i
		}
	}
	if lo == -1 || hi < lo {
		return core.ErrBadBaseline
	}

	for _, trial := range c.Power {
		for fi := range trial {
			row := trial[fi]
			mean, sd := baselineMoments(row[lo : hi+1])
			switch b.Mode {
			case BaselineLogRatio:
				for ti := range row {
					if mean > 0 && row[ti] > 0 {
						row[ti] = math.Log10(row[ti] / mean)
					} else {
						row[ti] = 0
					}
				}
			case BaselinePercent:
				for ti := range row {
					if mean != 0 {
						row[ti] = (row[ti] - mean) / mean
					} else {
						row[ti] = 0
					}
				}
			case BaselineZScore:
				for ti := range row {
					if sd > 0 {
						row[ti] = (row[ti] - mean) / sd
					} else {
						row[ti] = 0
					}
				}
			default:
				return fmt.Errorf("unknown baseline mode %q", b.Mode)
			}
		}
	}
	return nil
}

func baselineMoments(window []float64) (mean, sd float64) {
	n := float64(len(window))
	if n == 0 {
		return 0, 0
	}
	for _, v := range window {
		mean += v
	}
	mean /= n
	if n < 2 {
		return mean, 0
	}
	for _, v := range window {
		d := v - mean
		sd += d * d
	}
	sd = math.Sqrt(sd / (n - 1))
	return mean, sd
}
