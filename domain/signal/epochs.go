package signal

import (
	"fmt"
	"math"

	"eegtfr/domain/core"
)

// Epochs holds single-channel trial data for one condition,
// laid out [trial][sample].
type Epochs struct {
	Condition core.ConditionKey
	Channel   string
	SFreq     float64
	Tmin      float64
	Trials    [][]float64
}

// Window defines an epoch extraction window relative to event onset
type Window struct {
	TminSec float64
	TmaxSec float64
}

// NumSamples returns the per-trial sample count for a window at sfreq
func (w Window) NumSamples(sfreq float64) int {
	return int(math.Round((w.TmaxSec-w.TminSec)*sfreq)) + 1
}

// NumTrials returns the trial count
func (e *Epochs) NumTrials() int { return len(e.Trials) }

// NumTimes returns the per-trial sample count
func (e *Epochs) NumTimes() int {
	if len(e.Trials) == 0 {
		return 0
	}
	return len(e.Trials[0])
}

// Times returns the time axis in seconds relative to event onset
func (e *Epochs) Times() []float64 {
	n := e.NumTimes()
	times := make([]float64, n)
	for i := range times {
		times[i] = e.Tmin + float64(i)/e.SFreq
	}
	return times
}

// Extract cuts single-channel epochs for one condition out of a
// recording. Events whose window falls outside the recording are
// dropped, not clamped.
func Extract(rec *Recording, channel int, cond core.ConditionKey, win Window) (*Epochs, error) {
	if channel < 0 || channel >= rec.NumChannels() {
		return nil, core.NewChannelNotFoundError(fmt.Sprintf("index %d", channel))
	}
	if win.TmaxSec <= win.TminSec {
		return nil, core.ErrEmptyWindow
	}

	data := rec.Data[channel]
	offset := int(math.Round(win.TminSec * rec.SFreq))
	count := win.NumSamples(rec.SFreq)

	epochs := &Epochs{
		Condition: cond,
		Channel:   rec.Labels[channel],
		SFreq:     rec.SFreq,
		Tmin:      win.TminSec,
	}

	for _, ev := range rec.EventsFor(cond) {
		start := ev.Sample + offset
		if start < 0 || start+count > len(data) {
			continue
		}
		trial := make([]float64, count)
		copy(trial, data[start:start+count])
		epochs.Trials = append(epochs.Trials, trial)
	}

	if len(epochs.Trials) == 0 {
		return nil, core.NewNoEventsError(string(cond))
	}
	return epochs, nil
}

// Append merges trials from another epoch set into e. Sampling rate,
// trial length and condition must agree.
func (e *Epochs) Append(other *Epochs) error {
	if other.Condition != e.Condition {
		return fmt.Errorf("condition mismatch: %s vs %s", e.Condition, other.Condition)
	}
	if other.SFreq != e.SFreq {
		return fmt.Errorf("sampling rate mismatch: %.2f vs %.2f", e.SFreq, other.SFreq)
	}
	if e.NumTrials() > 0 && other.NumTrials() > 0 && e.NumTimes() != other.NumTimes() {
		return core.NewShapeMismatchError(
			fmt.Sprintf("%d samples", e.NumTimes()),
			fmt.Sprintf("%d samples", other.NumTimes()))
	}
	e.Trials = append(e.Trials, other.Trials...)
	return nil
}

// Truncate caps the trial count. max <= 0 leaves the set unchanged.
func (e *Epochs) Truncate(max int) {
	if max > 0 && len(e.Trials) > max {
		e.Trials = e.Trials[:max]
	}
}

// MatchTrials truncates both epoch sets to their common minimum trial
// count so a per-trial contrast is well defined.
func MatchTrials(a, b *Epochs) int {
	n := a.NumTrials()
	if b.NumTrials() < n {
		n = b.NumTrials()
	}
	a.Trials = a.Trials[:n]
	b.Trials = b.Trials[:n]
	return n
}
