package dsp

import (
	"math"

	"eegtfr/internal/errors"
)

// DesignBandpass builds an odd-length Hamming windowed-sinc band-pass
// FIR filter. The passband gain is normalized to unity at the geometric
// center of the band.
func DesignBandpass(lowHz, highHz, sfreq float64, taps int) ([]float64, error) {
	if sfreq <= 0 {
		return nil, errors.InvalidInput("sampling rate must be positive")
	}
	nyq := sfreq / 2
	if lowHz <= 0 || highHz <= lowHz || highHz >= nyq {
		return nil, errors.InvalidInput("band edges must satisfy 0 < low < high < nyquist")
	}
	if taps < 3 {
		return nil, errors.InvalidInput("at least 3 taps are required")
	}
	if taps%2 == 0 {
		taps++
	}

	wl := math.Pi * lowHz / nyq
	wh := math.Pi * highHz / nyq
	center := taps / 2

	h := make([]float64, taps)
	for i := range h {
		n := float64(i - center)
		var ideal float64
		if n == 0 {
			ideal = (wh - wl) / math.Pi
		} else {
			ideal = (math.Sin(wh*n) - math.Sin(wl*n)) / (math.Pi * n)
		}
		// Hamming window
		win := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(taps-1))
		h[i] = ideal * win
	}

	// Unity gain at the geometric band center
	fc := math.Sqrt(lowHz * highHz)
	wc := math.Pi * fc / nyq
	var re, im float64
	for i, v := range h {
		n := float64(i - center)
		re += v * math.Cos(wc*n)
		im += v * math.Sin(wc*n)
	}
	gain := math.Hypot(re, im)
	if gain == 0 {
		return nil, errors.SignalError("degenerate filter design: zero passband gain")
	}
	for i := range h {
		h[i] /= gain
	}
	return h, nil
}

// BandpassLength picks a filter length from the lower transition
// bandwidth (narrower transitions need longer filters).
func BandpassLength(lowHz, sfreq float64) int {
	trans := math.Max(lowHz*0.25, 2.0)
	taps := int(math.Ceil(3.3 * sfreq / trans))
	if taps%2 == 0 {
		taps++
	}
	if taps < 11 {
		taps = 11
	}
	return taps
}

// convolveSame computes the "same"-length linear convolution of x with
// an odd-length kernel h.
func convolveSame(x, h []float64) []float64 {
	center := len(h) / 2
	y := make([]float64, len(x))
	for i := range x {
		var acc float64
		for k, hv := range h {
			j := i + k - center
			if j < 0 || j >= len(x) {
				continue
			}
			acc += hv * x[j]
		}
		y[i] = acc
	}
	return y
}

// FiltFilt applies h forward and backward for zero-phase filtering.
// Edges are reflect-padded by the kernel length to suppress transients.
func FiltFilt(x, h []float64) []float64 {
	pad := len(h)
	if pad > len(x)-1 {
		pad = len(x) - 1
	}
	if pad < 0 {
		pad = 0
	}

	ext := make([]float64, 0, len(x)+2*pad)
	for i := pad; i > 0; i-- {
		ext = append(ext, x[i])
	}
	ext = append(ext, x...)
	for i := len(x) - 2; i >= len(x)-1-pad; i-- {
		ext = append(ext, x[i])
	}

	y := convolveSame(ext, h)
	reverse(y)
	y = convolveSame(y, h)
	reverse(y)

	out := make([]float64, len(x))
	copy(out, y[pad:pad+len(x)])
	return out
}

// Bandpass designs and applies a zero-phase band-pass filter
func Bandpass(x []float64, lowHz, highHz, sfreq float64) ([]float64, error) {
	h, err := DesignBandpass(lowHz, highHz, sfreq, BandpassLength(lowHz, sfreq))
	if err != nil {
		return nil, err
	}
	return FiltFilt(x, h), nil
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
