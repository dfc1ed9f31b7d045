package cluster

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"eegtfr/adapters/rng"
	"eegtfr/domain/stats"
	"eegtfr/internal/testkit"
)

func TestLabelComponents(t *testing.T) {
	mask := [][]bool{
		{true, true, false, false},
		{false, true, false, true},
		{false, false, false, true},
	}
	labels, count := LabelComponents(mask)
	if count != 2 {
		t.Fatalf("Expected 2 components, got %d", count)
	}
	if labels[0][0] != labels[1][1] {
		t.Error("4-connected cells should share a label")
	}
	if labels[1][3] == labels[0][0] {
		t.Error("Diagonal-only cells should not share a label")
	}
	if labels[0][2] != 0 {
		t.Error("Cells outside any component should stay 0")
	}
}

func TestLabelComponents_EmptyMask(t *testing.T) {
	labels, count := LabelComponents(nil)
	if labels != nil || count != 0 {
		t.Errorf("Expected no components for empty mask, got %d", count)
	}
}

func TestEngine_DetectsPlantedEffect(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	freqs := testkit.Linspace(4, 26, 12)
	times := testkit.Linspace(-0.2, 0.75, 20)
	cube := testkit.NoiseCube(r, 30, freqs, times, 1.0)
	testkit.PlantEffect(cube, 3, 6, 5, 12, 1.5)

	engine := NewEngine(rng.NewDeterministicRNG())
	result, err := engine.Test(context.Background(), cube, stats.ClusterParams{
		Permutations: 200,
		Alpha:        0.05,
		Tail:         stats.TailBoth,
		Seed:         42,
		Workers:      2,
	})
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}

	if result.DF != 29 {
		t.Errorf("Expected 29 degrees of freedom, got %d", result.DF)
	}
	if len(result.NullMax) != 200 {
		t.Errorf("Expected 200 null samples, got %d", len(result.NullMax))
	}
	if !result.AnySignificant() {
		t.Fatal("Expected the planted effect to reach significance")
	}

	top := result.Clusters[0]
	if !top.Significant(0.05) {
		t.Fatalf("Expected top cluster to be significant, p=%.4f", top.PValue)
	}
	if top.Mass <= 0 {
		t.Errorf("Expected positive cluster mass, got %.2f", top.Mass)
	}

	// The cluster must span the planted block: freqs[3..6], times[5..12]
	eps := 1e-9
	if top.FreqLoHz > freqs[3]+eps || top.FreqHiHz < freqs[6]-eps {
		t.Errorf("Cluster frequency extent %.1f-%.1f misses planted block %.1f-%.1f",
			top.FreqLoHz, top.FreqHiHz, freqs[3], freqs[6])
	}
	if top.TimeLoS > times[5]+eps || top.TimeHiS < times[12]-eps {
		t.Errorf("Cluster time extent %.2f-%.2f misses planted block %.2f-%.2f",
			top.TimeLoS, top.TimeHiS, times[5], times[12])
	}
	if !result.SigMask[4][8] {
		t.Error("Significance mask should cover the planted block interior")
	}
}

func TestEngine_NoiseAloneStaysBelowAlpha(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	freqs := testkit.Linspace(4, 42, 20)
	times := testkit.Linspace(-0.2, 0.775, 40)
	cube := testkit.NoiseCube(r, 40, freqs, times, 1.0)

	engine := NewEngine(rng.NewDeterministicRNG())
	result, err := engine.Test(context.Background(), cube, stats.ClusterParams{
		Permutations: 512,
		Alpha:        0.05,
		Tail:         stats.TailBoth,
		Seed:         42,
		Workers:      2,
	})
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}

	if n := result.NumSignificant(0.05); n != 0 {
		t.Errorf("White noise should yield no significant cluster, got %d", n)
	}
	if result.AnySignificant() {
		t.Error("Significance mask should be empty for pure noise")
	}
}

func TestEngine_DetectsNegativeEffect(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	freqs := testkit.Linspace(4, 26, 8)
	times := testkit.Linspace(-0.2, 0.55, 12)
	cube := testkit.NoiseCube(r, 24, freqs, times, 1.0)
	testkit.PlantEffect(cube, 2, 5, 3, 8, -1.5)

	engine := NewEngine(rng.NewDeterministicRNG())
	result, err := engine.Test(context.Background(), cube, stats.ClusterParams{
		Permutations: 200,
		Alpha:        0.05,
		Tail:         stats.TailBoth,
		Seed:         42,
	})
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}

	if len(result.Clusters) == 0 {
		t.Fatal("Expected at least one cluster")
	}
	top := result.Clusters[0]
	if top.Mass >= 0 {
		t.Errorf("Expected negative cluster mass, got %.2f", top.Mass)
	}
	if !top.Significant(0.05) {
		t.Errorf("Expected negative effect to reach significance, p=%.4f", top.PValue)
	}
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	freqs := testkit.Linspace(4, 20, 8)
	times := testkit.Linspace(-0.1, 0.4, 10)
	cube := testkit.NoiseCube(r, 20, freqs, times, 1.0)
	testkit.PlantEffect(cube, 1, 4, 2, 6, 1.0)

	run := func(workers int) *stats.ClusterResult {
		engine := NewEngine(rng.NewDeterministicRNG())
		result, err := engine.Test(context.Background(), cube, stats.ClusterParams{
			Permutations: 200,
			Alpha:        0.05,
			Tail:         stats.TailBoth,
			Seed:         42,
			Workers:      workers,
		})
		if err != nil {
			t.Fatalf("Test with %d workers failed: %v", workers, err)
		}
		return result
	}

	serial := run(1)
	parallel := run(4)

	for i := range serial.NullMax {
		if serial.NullMax[i] != parallel.NullMax[i] {
			t.Fatalf("Null sample %d differs: %g vs %g", i, serial.NullMax[i], parallel.NullMax[i])
		}
	}
	if len(serial.Clusters) != len(parallel.Clusters) {
		t.Fatalf("Cluster counts differ: %d vs %d", len(serial.Clusters), len(parallel.Clusters))
	}
	for i := range serial.Clusters {
		if serial.Clusters[i].PValue != parallel.Clusters[i].PValue {
			t.Errorf("Cluster %d p-value differs: %g vs %g",
				i, serial.Clusters[i].PValue, parallel.Clusters[i].PValue)
		}
		if math.Abs(serial.Clusters[i].Mass-parallel.Clusters[i].Mass) > 1e-12 {
			t.Errorf("Cluster %d mass differs", i)
		}
	}
}

func TestEngine_RejectsDegenerateInput(t *testing.T) {
	engine := NewEngine(rng.NewDeterministicRNG())
	freqs := testkit.Linspace(4, 20, 4)
	times := testkit.Linspace(0, 0.3, 4)

	one := testkit.NoiseCube(rand.New(rand.NewSource(1)), 1, freqs, times, 1.0)
	if _, err := engine.Test(context.Background(), one, stats.ClusterParams{Permutations: 10, Alpha: 0.05, Seed: 1}); err == nil {
		t.Error("Expected error for a single trial")
	}

	ok := testkit.NoiseCube(rand.New(rand.NewSource(1)), 5, freqs, times, 1.0)
	if _, err := engine.Test(context.Background(), ok, stats.ClusterParams{Permutations: 0, Alpha: 0.05, Seed: 1}); err == nil {
		t.Error("Expected error for zero permutations")
	}
}
