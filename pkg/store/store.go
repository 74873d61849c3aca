// Package store reads the input record files and persists the day mapping.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codeGROOVE-dev/retry"
	jsoniter "github.com/json-iterator/go"

	"github.com/codeGROOVE-dev/healthagg/pkg/constants"
	"github.com/codeGROOVE-dev/healthagg/pkg/health"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrInputNotFound is returned when a required input file does not exist.
	ErrInputNotFound = errors.New("required file not found")
	// ErrInputTooLarge is returned for inputs above constants.MaxInputSize.
	ErrInputTooLarge = errors.New("file too large")
	// ErrMalformed is returned for input that is not valid JSON.
	ErrMalformed = errors.New("invalid JSON")
	// ErrNotArray is returned when the top-level JSON value is not an array.
	ErrNotArray = errors.New("must contain a JSON array")
)

// CheckInput verifies that path exists, is a regular file and is within
// the size ceiling. It returns the file size.
func CheckInput(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return 0, fmt.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory, not an input file", path)
	}
	if info.Size() > constants.MaxInputSize {
		return info.Size(), fmt.Errorf("%w: %s is %.2fMB, maximum is %.0fMB", ErrInputTooLarge, path,
			float64(info.Size())/(1024*1024), float64(constants.MaxInputSize)/(1024*1024))
	}
	return info.Size(), nil
}

// LoadRecords reads a JSON array of objects. Elements that are not objects
// come back as nil records so the caller can report them individually.
func LoadRecords(path string) ([]health.Record, error) {
	if _, err := CheckInput(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeRecords(path, data)
}

// DecodeRecords decodes a JSON array of objects. name is used in errors.
func DecodeRecords(name string, data []byte) ([]health.Record, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w in %s", ErrMalformed, name)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%s %w", name, ErrNotArray)
	}

	var raw []jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	records := make([]health.Record, len(raw))
	for i, elem := range raw {
		var r map[string]any
		if err := json.Unmarshal(elem, &r); err != nil {
			continue
		}
		records[i] = r
	}
	return records, nil
}

// WriteDays replaces path with the pretty-printed day mapping. The file is
// written to a temporary sibling and renamed into place; transient failures
// are retried.
func WriteDays(ctx context.Context, path string, days health.Days, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := json.MarshalIndent(days.Records(), "", "    ")
	if err != nil {
		return fmt.Errorf("encoding days: %w", err)
	}

	err = retry.Do(
		func() error {
			err := writeAtomic(path, data)
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("retrying output write", "attempt", n+1, "path", path, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("cannot write to %s: %w", path, err)
	}

	logger.Debug("days written", "path", path, "days", len(days), "bytes", len(data))
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()        //nolint:errcheck // already failing
			_ = os.Remove(tmpPath) //nolint:errcheck // best effort cleanup
		}
	}()

	if _, err = tmp.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// LoadDays reads a day mapping written by WriteDays.
func LoadDays(path string) (health.Days, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var records map[string]health.DayRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return health.FromRecords(records), nil
}
