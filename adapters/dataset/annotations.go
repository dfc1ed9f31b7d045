package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"eegtfr/domain/core"
	"eegtfr/domain/signal"
)

// EDF+ time-stamped annotations, one per line: "+onset duration label"
var annotationRE = regexp.MustCompile(`^\+([\d.]+)\s+([\d.]+)\s+(.+?)\s*$`)

// ParseAnnotations converts EDF+ annotation text into events, keeping
// only labels present in the conditions map. Onsets are in seconds from
// recording start.
func ParseAnnotations(text string, sfreq float64, conditions map[string]core.ConditionKey) []signal.Event {
	if text == "" || len(conditions) == 0 {
		return nil
	}

	var events []signal.Event
	for _, line := range strings.Split(text, "\n") {
		match := annotationRE.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		onset, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		duration, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}
		label := strings.TrimSpace(match[3])
		cond, ok := conditions[label]
		if !ok {
			continue
		}
		events = append(events, signal.Event{
			Sample:    int(math.Round(onset * sfreq)),
			Onset:     onset,
			Duration:  duration,
			Condition: cond,
		})
	}
	return events
}
