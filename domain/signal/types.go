package signal

import (
	"math"
	"strings"

	"eegtfr/domain/core"
)

// The two analyzed conditions
const (
	CondLeft  = core.ConditionKey("left")
	CondRight = core.ConditionKey("right")
)

// Recording holds one continuous multi-channel EEG record plus its
// event markers. Data is laid out [channel][sample].
type Recording struct {
	Name   string
	SFreq  float64
	Labels []string
	Data   [][]float64
	Events []Event
}

// Event marks a stimulus/response onset within a recording
type Event struct {
	Sample    int     // sample index into the recording
	Onset     float64 // seconds from recording start
	Duration  float64 // seconds
	Condition core.ConditionKey
}

// NumChannels returns the channel count
func (r *Recording) NumChannels() int {
	return len(r.Data)
}

// NumSamples returns the per-channel sample count
func (r *Recording) NumSamples() int {
	if len(r.Data) == 0 {
		return 0
	}
	return len(r.Data[0])
}

// DurationSec returns the recording length in seconds
func (r *Recording) DurationSec() float64 {
	if r.SFreq <= 0 {
		return 0
	}
	return float64(r.NumSamples()) / r.SFreq
}

// ChannelIndex resolves a channel label to its row index. Labels are
// matched after trimming whitespace, case-insensitively.
func (r *Recording) ChannelIndex(label string) (int, error) {
	want := strings.ToLower(strings.TrimSpace(label))
	for i, l := range r.Labels {
		if strings.ToLower(strings.TrimSpace(l)) == want {
			return i, nil
		}
	}
	return -1, core.NewChannelNotFoundError(label)
}

// PickChannel resolves the preferred channel, falling back to the first
// channel when the preferred label is absent (mirrors running the same
// analysis on montages with differing label conventions).
func (r *Recording) PickChannel(preferred string) (int, string) {
	if idx, err := r.ChannelIndex(preferred); err == nil {
		return idx, r.Labels[idx]
	}
	if len(r.Labels) > 0 {
		return 0, r.Labels[0]
	}
	return -1, ""
}

// EventsFor returns the events belonging to one condition, in order
func (r *Recording) EventsFor(cond core.ConditionKey) []Event {
	var out []Event
	for _, ev := range r.Events {
		if ev.Condition == cond {
			out = append(out, ev)
		}
	}
	return out
}

// SampleAt converts a time in seconds to the nearest sample index
func (r *Recording) SampleAt(sec float64) int {
	return int(math.Round(sec * r.SFreq))
}
