package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeFile_MissingFile(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.edf"), DefaultConditions())
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestDecodeFile_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.edf")
	if err := os.WriteFile(path, []byte("not an edf file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeFile(path, DefaultConditions()); err == nil {
		t.Fatal("Expected decode error for malformed file")
	}
}

func TestPhysioNetAdapter_Describe(t *testing.T) {
	a := NewPhysioNetAdapter(PhysioNetConfig{Subject: "S001", Runs: []int{3, 7, 11}})
	want := "PhysioNet eegmmidb S001 runs [3 7 11]"
	if got := a.Describe(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDefaultConditions(t *testing.T) {
	conds := DefaultConditions()
	if conds["T1"] != "left" || conds["T2"] != "right" {
		t.Errorf("Unexpected condition mapping: %v", conds)
	}
	if _, ok := conds["T0"]; ok {
		t.Error("Rest periods should not map to a condition")
	}
}
