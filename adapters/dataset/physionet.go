package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"eegtfr/domain/core"
	"eegtfr/domain/signal"
	"eegtfr/internal"
	"eegtfr/internal/errors"
	"eegtfr/ports"
)

// PhysioNetConfig locates the EEG Motor Movement/Imagery sample records
type PhysioNetConfig struct {
	BaseURL    string
	Subject    string
	Runs       []int
	CacheDir   string
	Conditions map[string]core.ConditionKey // annotation label -> condition
}

// DefaultConditions maps the motor-task annotation codes to the two
// analyzed conditions (T1 = left fist, T2 = right fist).
func DefaultConditions() map[string]core.ConditionKey {
	return map[string]core.ConditionKey{
		"T1": core.ConditionKey("left"),
		"T2": core.ConditionKey("right"),
	}
}

// PhysioNetAdapter downloads EDF+ records on first use and serves them
// from an on-disk cache afterwards.
type PhysioNetAdapter struct {
	config PhysioNetConfig
	client *http.Client
	logger *internal.Logger
}

var _ ports.DatasetPort = (*PhysioNetAdapter)(nil)

// NewPhysioNetAdapter creates a dataset adapter for the sample records
func NewPhysioNetAdapter(config PhysioNetConfig) *PhysioNetAdapter {
	if config.Conditions == nil {
		config.Conditions = DefaultConditions()
	}
	return &PhysioNetAdapter{
		config: config,
		client: &http.Client{Timeout: 5 * time.Minute},
		logger: internal.DefaultLogger,
	}
}

// Describe returns a human-readable dataset identifier for reports
func (a *PhysioNetAdapter) Describe() string {
	return fmt.Sprintf("PhysioNet eegmmidb %s runs %v", a.config.Subject, a.config.Runs)
}

// Fetch returns all configured recordings, downloading missing files
func (a *PhysioNetAdapter) Fetch(ctx context.Context) ([]*signal.Recording, error) {
	if err := os.MkdirAll(a.subjectDir(), 0o755); err != nil {
		return nil, errors.DatasetError("failed to create cache directory", err)
	}

	recordings := make([]*signal.Recording, 0, len(a.config.Runs))
	for _, run := range a.config.Runs {
		path, err := a.ensureRun(ctx, run)
		if err != nil {
			return nil, err
		}
		rec, err := DecodeFile(path, a.config.Conditions)
		if err != nil {
			return nil, err
		}
		a.logger.Info("loaded %s: %d channels, %s samples at %.1f Hz, %d events",
			rec.Name, rec.NumChannels(), humanize.Comma(int64(rec.NumSamples())), rec.SFreq, len(rec.Events))
		recordings = append(recordings, rec)
	}
	return recordings, nil
}

// ensureRun returns the cache path of one run file, downloading it if absent
func (a *PhysioNetAdapter) ensureRun(ctx context.Context, run int) (string, error) {
	name := fmt.Sprintf("%sR%02d.edf", a.config.Subject, run)
	path := filepath.Join(a.subjectDir(), name)
	if _, err := os.Stat(path); err == nil {
		a.logger.Debug("cache hit: %s", path)
		return path, nil
	}

	url := fmt.Sprintf("%s/%s/%s", a.config.BaseURL, a.config.Subject, name)
	a.logger.Info("downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.DatasetError("failed to build download request", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", errors.DatasetError(fmt.Sprintf("download of %s failed", name), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.DatasetError(fmt.Sprintf("download of %s returned %s", name, resp.Status), nil)
	}

	tmp, err := os.CreateTemp(a.subjectDir(), name+".part*")
	if err != nil {
		return "", errors.DatasetError("failed to create temp file", err)
	}
	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return "", errors.DatasetError(fmt.Sprintf("download of %s interrupted", name), err)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return "", errors.DatasetError("failed to flush download", closeErr)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", errors.DatasetError("failed to move download into cache", err)
	}

	a.logger.Info("cached %s (%s)", name, humanize.Bytes(uint64(written)))
	return path, nil
}

func (a *PhysioNetAdapter) subjectDir() string {
	return filepath.Join(a.config.CacheDir, a.config.Subject)
}
