package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ishiikurisu/edf"

	"eegtfr/domain/core"
	"eegtfr/domain/signal"
	"eegtfr/internal/errors"
)

// DecodeFile reads an EDF/EDF+ file into a Recording. Annotation
// channels are stripped from the data block and turned into events via
// the conditions map.
func DecodeFile(path string, conditions map[string]core.ConditionKey) (*signal.Recording, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.DatasetError(fmt.Sprintf("EDF file %s not readable", path), err)
	}

	data, err := readEDF(path)
	if err != nil {
		return nil, err
	}

	sfreq := samplingRate(data)
	if sfreq <= 0 {
		return nil, errors.DecodeError(fmt.Sprintf("EDF file %s has no usable sampling rate", path), nil)
	}

	rec := &signal.Recording{
		Name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		SFreq: sfreq,
	}

	labels := data.GetLabels()
	for i, series := range data.PhysicalRecords {
		if i >= len(labels) {
			break
		}
		label := strings.TrimSpace(labels[i])
		// EDF+ carries annotations and checksums as pseudo-channels
		if label == "EDF Annotations" || label == "Crc16" {
			continue
		}
		channel := make([]float64, len(series))
		copy(channel, series)
		rec.Labels = append(rec.Labels, label)
		rec.Data = append(rec.Data, channel)
	}
	if len(rec.Data) == 0 {
		return nil, errors.DecodeError(fmt.Sprintf("EDF file %s has no signal channels", path), nil)
	}

	rec.Events = ParseAnnotations(data.WriteNotes(), sfreq, conditions)
	return rec, nil
}

// readEDF wraps the library call; ReadFile panics on malformed input
func readEDF(path string) (data edf.Edf, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.DecodeError(fmt.Sprintf("EDF decode of %s failed: %v", path, r), nil)
		}
	}()
	data = edf.ReadFile(path)
	return data, nil
}

// samplingRate derives Hz from samples-per-record and record duration
func samplingRate(data edf.Edf) float64 {
	duration := data.GetDuration()
	if duration <= 0 {
		return 0
	}
	return float64(data.GetSampling()) / duration
}
