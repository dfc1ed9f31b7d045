package dataset

import (
	"testing"

	"eegtfr/domain/signal"
)

func TestParseAnnotations(t *testing.T) {
	text := "+0.000000 4.200000 T0\n" +
		"+4.200000 4.100000 T1\n" +
		"+8.300000 4.200000 T2\n" +
		"+12.500000 4.200000 T0\n" +
		"not an annotation\n"

	events := ParseAnnotations(text, 160, DefaultConditions())
	if len(events) != 2 {
		t.Fatalf("Expected 2 mapped events, got %d", len(events))
	}

	first := events[0]
	if first.Condition != signal.CondLeft {
		t.Errorf("Expected T1 to map to left, got %s", first.Condition)
	}
	if first.Onset != 4.2 || first.Duration != 4.1 {
		t.Errorf("Unexpected onset/duration: %v/%v", first.Onset, first.Duration)
	}
	if first.Sample != 672 {
		t.Errorf("Expected sample 672 at 160 Hz, got %d", first.Sample)
	}

	second := events[1]
	if second.Condition != signal.CondRight {
		t.Errorf("Expected T2 to map to right, got %s", second.Condition)
	}
	if second.Sample != 1328 {
		t.Errorf("Expected sample 1328, got %d", second.Sample)
	}
}

func TestParseAnnotations_Empty(t *testing.T) {
	if events := ParseAnnotations("", 160, DefaultConditions()); events != nil {
		t.Errorf("Expected nil for empty text, got %v", events)
	}
	if events := ParseAnnotations("+1.0 2.0 T1", 160, nil); events != nil {
		t.Errorf("Expected nil for empty condition map, got %v", events)
	}
}

func TestParseAnnotations_SkipsMalformedLines(t *testing.T) {
	text := "+abc 1.0 T1\n+1.0 xyz T2\n+2.0 1.0 T9\n+3.0 1.0 T1\n"
	events := ParseAnnotations(text, 100, DefaultConditions())
	if len(events) != 1 {
		t.Fatalf("Expected only the well-formed mapped line, got %d events", len(events))
	}
	if events[0].Sample != 300 {
		t.Errorf("Expected sample 300, got %d", events[0].Sample)
	}
}
