package testkit

import (
	"context"
	"math"
	"math/rand"

	"eegtfr/domain/core"
	"eegtfr/domain/signal"
	"eegtfr/domain/tfr"
	"eegtfr/ports"
)

// Conditions used by the synthetic dataset
const (
	CondLeft  = signal.CondLeft
	CondRight = signal.CondRight
)

// SyntheticSpec configures the generated EEG recording. Trials of the
// right condition carry an oscillatory burst after onset so pipelines
// have a known effect to detect.
type SyntheticSpec struct {
	SFreq              float64
	Channels           []string
	EventsPerCondition int
	SpacingSec         float64
	PaddingSec         float64
	BurstFreqHz        float64
	BurstFromSec       float64
	BurstToSec         float64
	BurstAmplitude     float64
	NoiseSD            float64
	Seed               int64
}

// DefaultSyntheticSpec mirrors the real dataset's geometry at a small scale
func DefaultSyntheticSpec() SyntheticSpec {
	return SyntheticSpec{
		SFreq:              160,
		Channels:           []string{"C3..", "C4.."},
		EventsPerCondition: 20,
		SpacingSec:         2.0,
		PaddingSec:         1.0,
		BurstFreqHz:        12,
		BurstFromSec:       0.15,
		BurstToSec:         0.55,
		BurstAmplitude:     4.0,
		NoiseSD:            1.0,
		Seed:               1234,
	}
}

// NewSyntheticRecording builds a continuous recording with alternating
// left/right events and the configured burst on the first channel of
// right trials.
func NewSyntheticRecording(spec SyntheticSpec) *signal.Recording {
	r := rand.New(rand.NewSource(spec.Seed))

	totalEvents := 2 * spec.EventsPerCondition
	durationSec := 2*spec.PaddingSec + float64(totalEvents)*spec.SpacingSec
	numSamples := int(durationSec * spec.SFreq)

	rec := &signal.Recording{
		Name:   "synthetic",
		SFreq:  spec.SFreq,
		Labels: append([]string(nil), spec.Channels...),
	}
	for range spec.Channels {
		channel := make([]float64, numSamples)
		for i := range channel {
			channel[i] = r.NormFloat64() * spec.NoiseSD
		}
		rec.Data = append(rec.Data, channel)
	}

	for i := 0; i < totalEvents; i++ {
		onset := spec.PaddingSec + float64(i)*spec.SpacingSec
		cond := CondLeft
		if i%2 == 1 {
			cond = CondRight
		}
		sample := int(math.Round(onset * spec.SFreq))
		rec.Events = append(rec.Events, signal.Event{
			Sample:    sample,
			Onset:     onset,
			Duration:  spec.SpacingSec,
			Condition: cond,
		})
		if cond == CondRight {
			addBurst(rec.Data[0], sample, spec)
		}
	}
	return rec
}

func addBurst(channel []float64, onsetSample int, spec SyntheticSpec) {
	from := onsetSample + int(spec.BurstFromSec*spec.SFreq)
	to := onsetSample + int(spec.BurstToSec*spec.SFreq)
	if from < 0 {
		from = 0
	}
	if to > len(channel) {
		to = len(channel)
	}
	for i := from; i < to; i++ {
		t := float64(i-onsetSample) / spec.SFreq
		// Hann-shaped envelope keeps the burst band-limited
		env := 0.5 * (1 - math.Cos(2*math.Pi*float64(i-from)/float64(to-from)))
		channel[i] += spec.BurstAmplitude * env * math.Sin(2*math.Pi*spec.BurstFreqHz*t)
	}
}

// FakeDatasetAdapter serves a synthetic recording through DatasetPort
type FakeDatasetAdapter struct {
	spec SyntheticSpec
	rec  *signal.Recording
}

var _ ports.DatasetPort = (*FakeDatasetAdapter)(nil)

// NewFakeDatasetAdapter creates a dataset fake backed by one synthetic recording
func NewFakeDatasetAdapter(spec SyntheticSpec) *FakeDatasetAdapter {
	return &FakeDatasetAdapter{spec: spec, rec: NewSyntheticRecording(spec)}
}

// Fetch returns the synthetic recording
func (f *FakeDatasetAdapter) Fetch(ctx context.Context) ([]*signal.Recording, error) {
	return []*signal.Recording{f.rec}, nil
}

// Describe returns a human-readable dataset identifier for reports
func (f *FakeDatasetAdapter) Describe() string {
	return "synthetic motor-burst recording"
}

// NoiseCube builds a per-trial power cube of Gaussian noise
func NoiseCube(r *rand.Rand, trials int, freqs, times []float64, sd float64) *tfr.Cube {
	cube := &tfr.Cube{
		Condition: core.ConditionKey("noise"),
		Channel:   "synthetic",
		Freqs:     freqs,
		Times:     times,
		Power:     make([][][]float64, trials),
	}
	for ti := range cube.Power {
		cube.Power[ti] = make([][]float64, len(freqs))
		for fi := range freqs {
			row := make([]float64, len(times))
			for si := range row {
				row[si] = r.NormFloat64() * sd
			}
			cube.Power[ti][fi] = row
		}
	}
	return cube
}

// PlantEffect adds a constant offset to a rectangular freq x time block
// across all trials, giving the cluster test a known target.
func PlantEffect(cube *tfr.Cube, freqLo, freqHi, timeLo, timeHi int, amplitude float64) {
	for _, trial := range cube.Power {
		for fi := freqLo; fi <= freqHi && fi < len(trial); fi++ {
			for ti := timeLo; ti <= timeHi && ti < len(trial[fi]); ti++ {
				trial[fi][ti] += amplitude
			}
		}
	}
}

// Linspace builds an evenly spaced axis, inclusive of both ends
func Linspace(lo, hi float64, n int) []float64 {
	return tfr.LinspaceFreqs(lo, hi, n)
}
