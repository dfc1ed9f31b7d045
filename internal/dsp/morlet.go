package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"eegtfr/internal/errors"
)

// MorletKernel samples a complex Morlet wavelet at the given center
// frequency. The Gaussian envelope has sigma_t = cycles / (2*pi*f) and
// the support extends to +/- 5 sigma_t. The kernel is L2-normalized so
// absolute power is comparable across frequencies.
func MorletKernel(freqHz, cycles, sfreq float64) []complex128 {
	sigmaT := cycles / (2 * math.Pi * freqHz)
	half := int(math.Ceil(5 * sigmaT * sfreq))
	n := 2*half + 1

	w := make([]complex128, n)
	var norm float64
	for i := range w {
		t := float64(i-half) / sfreq
		env := math.Exp(-t * t / (2 * sigmaT * sigmaT))
		phase := 2 * math.Pi * freqHz * t
		w[i] = complex(env*math.Cos(phase), env*math.Sin(phase))
		norm += env * env
	}
	norm = math.Sqrt(norm)
	for i := range w {
		w[i] /= complex(norm, 0)
	}
	return w
}

// MorletPower convolves every trial with a bank of Morlet wavelets and
// returns squared magnitude, laid out [trial][freq][time]. Convolution
// runs in the frequency domain; all trials share one wavelet spectrum
// per frequency.
func MorletPower(trials [][]float64, sfreq float64, freqs, cycles []float64) ([][][]float64, error) {
	if len(trials) == 0 {
		return nil, errors.SignalError("no trials to transform")
	}
	if len(freqs) != len(cycles) {
		return nil, errors.InvalidInput("freqs and cycles must have equal length")
	}
	nTimes := len(trials[0])
	for _, tr := range trials {
		if len(tr) != nTimes {
			return nil, errors.SignalError("trials have unequal lengths")
		}
	}

	// Longest kernel decides the padded FFT length
	maxKernel := 0
	kernels := make([][]complex128, len(freqs))
	for i, f := range freqs {
		if f <= 0 || cycles[i] <= 0 {
			return nil, errors.InvalidInput("frequencies and cycles must be positive")
		}
		k := MorletKernel(f, cycles[i], sfreq)
		kernels[i] = k
		if len(k) > maxKernel {
			maxKernel = len(k)
		}
	}

	n := nextPow2(nTimes + maxKernel - 1)
	fft := fourier.NewCmplxFFT(n)

	// Wavelet spectra, shared across trials
	spectra := make([][]complex128, len(freqs))
	for i, k := range kernels {
		buf := make([]complex128, n)
		copy(buf, k)
		spectra[i] = fft.Coefficients(nil, buf)
	}

	power := make([][][]float64, len(trials))
	sig := make([]complex128, n)
	prod := make([]complex128, n)
	for ti, trial := range trials {
		for i := range sig {
			sig[i] = 0
		}
		for i, v := range trial {
			sig[i] = complex(v, 0)
		}
		sigSpec := fft.Coefficients(nil, sig)

		power[ti] = make([][]float64, len(freqs))
		for fi := range freqs {
			spec := spectra[fi]
			for i := range prod {
				prod[i] = sigSpec[i] * spec[i]
			}
			conv := fft.Sequence(nil, prod)

			// Center the full convolution back on the input samples.
			// gonum's inverse is unnormalized, hence the 1/n scaling.
			half := len(kernels[fi]) / 2
			scale := 1 / float64(n)
			row := make([]float64, nTimes)
			for i := 0; i < nTimes; i++ {
				c := conv[i+half]
				re := real(c) * scale
				im := imag(c) * scale
				row[i] = re*re + im*im
			}
			power[ti][fi] = row
		}
	}
	return power, nil
}

// MorletAmplitude is MorletPower's square root, kept for callers that
// want magnitude rather than power.
func MorletAmplitude(trials [][]float64, sfreq float64, freqs, cycles []float64) ([][][]float64, error) {
	power, err := MorletPower(trials, sfreq, freqs, cycles)
	if err != nil {
		return nil, err
	}
	for _, trial := range power {
		for _, row := range trial {
			for i, v := range row {
				row[i] = math.Sqrt(v)
			}
		}
	}
	return power, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
