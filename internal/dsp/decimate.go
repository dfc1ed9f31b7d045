package dsp

import (
	"math"

	"eegtfr/internal/errors"
)

// Decimate low-pass filters x below the new Nyquist frequency and keeps
// every factor-th sample. factor <= 1 returns a copy.
func Decimate(x []float64, factor int, sfreq float64) ([]float64, error) {
	if factor <= 1 {
		out := make([]float64, len(x))
		copy(out, x)
		return out, nil
	}
	if len(x) < 2*factor {
		return nil, errors.SignalError("signal too short to decimate")
	}

	// Anti-alias cutoff with a 20% guard band
	cutoff := 0.8 * sfreq / (2 * float64(factor))
	h, err := designLowpass(cutoff, sfreq, BandpassLength(cutoff, sfreq))
	if err != nil {
		return nil, err
	}
	filtered := FiltFilt(x, h)

	out := make([]float64, 0, len(x)/factor+1)
	for i := 0; i < len(filtered); i += factor {
		out = append(out, filtered[i])
	}
	return out, nil
}

// designLowpass builds an odd-length Hamming windowed-sinc low-pass
// filter normalized to unity DC gain.
func designLowpass(cutoffHz, sfreq float64, taps int) ([]float64, error) {
	nyq := sfreq / 2
	if cutoffHz <= 0 || cutoffHz >= nyq {
		return nil, errors.InvalidInput("cutoff must be inside (0, nyquist)")
	}
	if taps%2 == 0 {
		taps++
	}
	wc := math.Pi * cutoffHz / nyq
	center := taps / 2

	h := make([]float64, taps)
	var sum float64
	for i := range h {
		n := float64(i - center)
		var ideal float64
		if n == 0 {
			ideal = wc / math.Pi
		} else {
			ideal = math.Sin(wc*n) / (math.Pi * n)
		}
		win := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(taps-1))
		h[i] = ideal * win
		sum += h[i]
	}
	for i := range h {
		h[i] /= sum
	}
	return h, nil
}
