package core

import (
	"testing"
)

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()

	if id1.IsEmpty() || id2.IsEmpty() {
		t.Error("Generated IDs should not be empty")
	}
	if id1 == id2 {
		t.Error("Generated IDs should be unique")
	}
	if len(id1.String()) != 36 {
		t.Errorf("Expected UUID string length 36, got %d", len(id1.String()))
	}
}

func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID("run-1"); err != nil {
		t.Errorf("Expected valid run ID to parse, got %v", err)
	}
	if _, err := ParseRunID("  "); err == nil {
		t.Error("Expected error for blank run ID")
	}
}

func TestParseConditionKey(t *testing.T) {
	key, err := ParseConditionKey("left")
	if err != nil || key.String() != "left" {
		t.Errorf("Expected condition key left, got %q (%v)", key, err)
	}
	if _, err := ParseConditionKey(""); err == nil {
		t.Error("Expected error for empty condition key")
	}
}

func TestComputeParamsHash_Deterministic(t *testing.T) {
	params := map[string]interface{}{
		"seed":         int64(42),
		"permutations": 512,
		"alpha":        0.05,
		"channel":      "C3..",
	}

	h1 := ComputeParamsHash(params)
	h2 := ComputeParamsHash(params)
	if !h1.Equals(h2) {
		t.Error("Identical parameter sets should hash identically")
	}
	if h1.IsEmpty() {
		t.Error("Hash should not be empty")
	}

	params["seed"] = int64(43)
	if ComputeParamsHash(params).Equals(h1) {
		t.Error("Changing a parameter should change the hash")
	}
}
