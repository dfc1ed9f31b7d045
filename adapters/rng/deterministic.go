package rng

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"eegtfr/ports"
)

// DeterministicRNG derives independent rand streams from a base seed
// and a stream name. The same (name, seed) pair always yields the same
// sequence, regardless of goroutine scheduling.
type DeterministicRNG struct{}

// NewDeterministicRNG creates the default RNGPort implementation
func NewDeterministicRNG() *DeterministicRNG {
	return &DeterministicRNG{}
}

var _ ports.RNGPort = (*DeterministicRNG)(nil)

// SeededStream creates a deterministic random number generator for a named operation
func (d *DeterministicRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name == "" {
		return nil, fmt.Errorf("stream name cannot be empty")
	}
	return rand.New(rand.NewSource(deriveSeed(name, seed))), nil
}

// Stream creates a deterministic RNG stream for an indexed unit of work
func (d *DeterministicRNG) Stream(ctx context.Context, runID, stageName string, index int, baseSeed int64) (*rand.Rand, error) {
	name := fmt.Sprintf("%s/%s/%d", runID, stageName, index)
	return d.SeededStream(ctx, name, baseSeed)
}

func deriveSeed(name string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(seed >> (8 * i))
	}
	h.Write(buf[:])
	derived := int64(h.Sum64())
	if derived < 0 {
		derived = -derived
	}
	return derived
}
