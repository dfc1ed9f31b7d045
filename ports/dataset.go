package ports

import (
	"context"

	"eegtfr/domain/signal"
)

// DatasetPort loads the sample EEG recordings, fetching and caching
// remote files as needed.
type DatasetPort interface {
	// Fetch returns all configured recordings with events attached
	Fetch(ctx context.Context) ([]*signal.Recording, error)

	// Describe returns a human-readable dataset identifier for reports
	Describe() string
}
