package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for an indexed unit of work
	// (e.g. one permutation), so parallel schedules reproduce identical results
	Stream(ctx context.Context, runID, stageName string, index int, baseSeed int64) (*rand.Rand, error)
}
