package tfr

import (
	"errors"
	"math"
	"testing"

	"eegtfr/domain/core"
)

func constantCube(cond string, trials int, freqs, times []float64, value float64) *Cube {
	cube := &Cube{
		Condition: core.ConditionKey(cond),
		Freqs:     freqs,
		Times:     times,
		Power:     make([][][]float64, trials),
	}
	for ti := range cube.Power {
		cube.Power[ti] = make([][]float64, len(freqs))
		for fi := range freqs {
			row := make([]float64, len(times))
			for si := range row {
				row[si] = value
			}
			cube.Power[ti][fi] = row
		}
	}
	return cube
}

func TestContrast_SubtractsPerTrial(t *testing.T) {
	freqs := LinspaceFreqs(4, 40, 5)
	times := LinspaceFreqs(-0.2, 0.8, 11)
	left := constantCube("left", 3, freqs, times, 1)
	right := constantCube("right", 2, freqs, times, 5)

	diff, err := Contrast(left, right)
	if err != nil {
		t.Fatalf("Contrast failed: %v", err)
	}

	if diff.NumTrials() != 2 {
		t.Errorf("Expected truncation to the common trial count 2, got %d", diff.NumTrials())
	}
	if string(diff.Condition) != "right-left" {
		t.Errorf("Expected condition right-left, got %s", diff.Condition)
	}
	for _, trial := range diff.Power {
		for _, row := range trial {
			for _, v := range row {
				if v != 4 {
					t.Fatalf("Expected difference 4, got %g", v)
				}
			}
		}
	}
}

func TestContrast_RejectsMismatchedAxes(t *testing.T) {
	a := constantCube("left", 2, LinspaceFreqs(4, 40, 5), LinspaceFreqs(0, 1, 11), 0)
	b := constantCube("right", 2, LinspaceFreqs(4, 40, 6), LinspaceFreqs(0, 1, 11), 0)

	_, err := Contrast(a, b)
	if !errors.Is(err, core.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

func TestContrast_RejectsEmptyCubes(t *testing.T) {
	freqs := LinspaceFreqs(4, 40, 5)
	times := LinspaceFreqs(0, 1, 11)
	_, err := Contrast(constantCube("left", 0, freqs, times, 0), constantCube("right", 0, freqs, times, 0))
	if !errors.Is(err, core.ErrInsufficientTrials) {
		t.Errorf("Expected ErrInsufficientTrials, got %v", err)
	}
}

func TestRobustRange_SymmetricAroundZero(t *testing.T) {
	m := &Map{
		Freqs:  []float64{1, 2},
		Times:  []float64{0, 1, 2},
		Values: [][]float64{{-8, 1, 2}, {3, -1, 4}},
	}
	lo, hi := RobustRange(m, 98)
	if lo != -hi {
		t.Errorf("Expected symmetric range, got (%g, %g)", lo, hi)
	}
	if hi <= 0 {
		t.Errorf("Expected positive extent, got %g", hi)
	}
}

func TestRobustRange_EmptyMapFallsBack(t *testing.T) {
	m := &Map{Values: [][]float64{{math.NaN()}}, Times: []float64{0}, Freqs: []float64{1}}
	lo, hi := RobustRange(m, 98)
	if lo != -1 || hi != 1 {
		t.Errorf("Expected fallback (-1, 1), got (%g, %g)", lo, hi)
	}
}

func TestSummarize(t *testing.T) {
	m := &Map{
		Freqs:  []float64{1},
		Times:  []float64{0, 1, 2, 3},
		Values: [][]float64{{1, 2, 3, 4}},
	}
	s := Summarize(m)
	if s.Min != 1 || s.Max != 4 {
		t.Errorf("Expected min 1 max 4, got %g %g", s.Min, s.Max)
	}
	if math.Abs(s.Mean-2.5) > 1e-9 || math.Abs(s.Median-2.5) > 1e-9 {
		t.Errorf("Expected mean and median 2.5, got %g %g", s.Mean, s.Median)
	}
	want := math.Sqrt((2.25 + 0.25 + 0.25 + 2.25) / 3)
	if math.Abs(s.StdDev-want) > 1e-9 {
		t.Errorf("Expected sample sd %.6f, got %.6f", want, s.StdDev)
	}
}
