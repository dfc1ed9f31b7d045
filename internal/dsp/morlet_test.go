package dsp

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestMorletKernel_UnitEnergy(t *testing.T) {
	k := MorletKernel(10, 5, 160)

	if len(k)%2 == 0 {
		t.Fatalf("Expected odd kernel length, got %d", len(k))
	}

	var energy float64
	for _, v := range k {
		m := cmplx.Abs(v)
		energy += m * m
	}
	if math.Abs(energy-1) > 1e-9 {
		t.Errorf("Expected unit L2 energy, got %.12f", energy)
	}
}

func TestMorletKernel_SupportScalesWithCycles(t *testing.T) {
	short := MorletKernel(10, 3, 160)
	long := MorletKernel(10, 7, 160)
	if len(long) <= len(short) {
		t.Errorf("More cycles should widen the kernel: %d vs %d", len(long), len(short))
	}
}

func TestMorletPower_LocalizesBurst(t *testing.T) {
	sfreq := 160.0
	nTimes := 320
	burstFrom, burstTo := 96, 192

	trial := make([]float64, nTimes)
	for i := burstFrom; i < burstTo; i++ {
		trial[i] = math.Sin(2 * math.Pi * 12 * float64(i) / sfreq)
	}

	freqs := []float64{6, 12, 24}
	cycles := []float64{3, 6, 12}
	power, err := MorletPower([][]float64{trial}, sfreq, freqs, cycles)
	if err != nil {
		t.Fatalf("MorletPower failed: %v", err)
	}

	meanPower := func(fi, lo, hi int) float64 {
		var sum float64
		for i := lo; i < hi; i++ {
			sum += power[0][fi][i]
		}
		return sum / float64(hi-lo)
	}

	// Power at the burst frequency inside the burst window, well inset
	// from the envelope ramps
	inside12 := meanPower(1, burstFrom+16, burstTo-16)
	outside12 := meanPower(1, 0, burstFrom-32)
	inside6 := meanPower(0, burstFrom+16, burstTo-16)
	inside24 := meanPower(2, burstFrom+16, burstTo-16)

	if inside12 < 10*outside12 {
		t.Errorf("Burst should localize in time: inside=%.6f outside=%.6f", inside12, outside12)
	}
	if inside12 < 10*inside6 {
		t.Errorf("Burst should localize in frequency vs 6 Hz: %.6f vs %.6f", inside12, inside6)
	}
	if inside12 < 10*inside24 {
		t.Errorf("Burst should localize in frequency vs 24 Hz: %.6f vs %.6f", inside12, inside24)
	}
}

func TestMorletPower_RejectsBadInput(t *testing.T) {
	if _, err := MorletPower(nil, 160, []float64{10}, []float64{5}); err == nil {
		t.Error("Expected error for empty trial set")
	}
	trials := [][]float64{make([]float64, 100)}
	if _, err := MorletPower(trials, 160, []float64{10, 20}, []float64{5}); err == nil {
		t.Error("Expected error for freqs/cycles length mismatch")
	}
	if _, err := MorletPower(trials, 160, []float64{-1}, []float64{5}); err == nil {
		t.Error("Expected error for non-positive frequency")
	}
	ragged := [][]float64{make([]float64, 100), make([]float64, 99)}
	if _, err := MorletPower(ragged, 160, []float64{10}, []float64{5}); err == nil {
		t.Error("Expected error for ragged trials")
	}
}

func TestMorletAmplitude_IsSqrtOfPower(t *testing.T) {
	trial := sineWave(10, 160, 200)
	freqs := []float64{10}
	cycles := []float64{5}

	power, err := MorletPower([][]float64{trial}, 160, freqs, cycles)
	if err != nil {
		t.Fatalf("MorletPower failed: %v", err)
	}
	amp, err := MorletAmplitude([][]float64{append([]float64(nil), trial...)}, 160, freqs, cycles)
	if err != nil {
		t.Fatalf("MorletAmplitude failed: %v", err)
	}

	for i := range amp[0][0] {
		want := math.Sqrt(power[0][0][i])
		if math.Abs(amp[0][0][i]-want) > 1e-9 {
			t.Fatalf("Amplitude mismatch at %d: got %g want %g", i, amp[0][0][i], want)
		}
	}
}
