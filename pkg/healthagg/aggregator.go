// Package healthagg runs the full pipeline: load the input records, resolve
// zone abbreviations, fold records into days and persist the result.
package healthagg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/codeGROOVE-dev/healthagg/pkg/health"
	"github.com/codeGROOVE-dev/healthagg/pkg/metrics"
	"github.com/codeGROOVE-dev/healthagg/pkg/store"
	"github.com/codeGROOVE-dev/healthagg/pkg/tzabbrev"
	"github.com/codeGROOVE-dev/healthagg/pkg/tzconvert"
	"github.com/codeGROOVE-dev/healthagg/pkg/zonecache"
)

// ErrUnknownMetric is returned for a metric name outside metrics.Names.
var ErrUnknownMetric = errors.New("invalid metric")

// Aggregator produces the day mapping from sleep and workout files.
type Aggregator struct {
	logger       *slog.Logger
	locations    *zonecache.Cache
	zoneInfo     fs.FS
	sleepFile    string
	workoutsFile string
	outputFile   string
	defaultZone  string
	zoneInfoDir  string
	zoneNames    []string
}

// NewWithLogger creates a new Aggregator with a custom logger.
func NewWithLogger(logger *slog.Logger, opts ...Option) *Aggregator {
	o := &OptionHolder{
		sleepFile:    DefaultSleepFile,
		workoutsFile: DefaultWorkoutsFile,
		outputFile:   DefaultOutputFile,
	}
	for _, opt := range opts {
		opt(o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	var zoneInfo fs.FS
	if o.zoneInfoDir != "" {
		zoneInfo = os.DirFS(o.zoneInfoDir)
	}
	return &Aggregator{
		logger:       logger,
		locations:    zonecache.NewFS(logger, zoneInfo),
		zoneInfo:     zoneInfo,
		sleepFile:    o.sleepFile,
		workoutsFile: o.workoutsFile,
		outputFile:   o.outputFile,
		defaultZone:  o.defaultZone,
		zoneInfoDir:  o.zoneInfoDir,
		zoneNames:    o.zoneNames,
	}
}

// New creates a new Aggregator with the default logger.
func New(opts ...Option) *Aggregator {
	return NewWithLogger(slog.Default(), opts...)
}

// Refresh rebuilds the day mapping from scratch and overwrites the output
// file. The abbreviation map is built anew on every call; loaded zones are
// kept for the lifetime of the Aggregator.
func (a *Aggregator) Refresh(ctx context.Context) (*Result, error) {
	// Both inputs are checked before either is read.
	for _, path := range []string{a.sleepFile, a.workoutsFile} {
		if _, err := store.CheckInput(path); err != nil {
			return nil, err
		}
	}
	sleep, err := store.LoadRecords(a.sleepFile)
	if err != nil {
		return nil, err
	}
	workouts, err := store.LoadRecords(a.workoutsFile)
	if err != nil {
		return nil, err
	}

	names, err := a.zones()
	if err != nil {
		return nil, err
	}
	abbrevs, err := tzabbrev.Resolve(ctx, names, a.locations, a.logger)
	if err != nil {
		return nil, err
	}

	defaultLoc := time.UTC
	if a.defaultZone != "" {
		if defaultLoc, err = a.locations.Load(a.defaultZone); err != nil {
			return nil, fmt.Errorf("default zone: %w", err)
		}
	}
	parser := tzconvert.NewParser(abbrevs, tzconvert.WithDefaultLocation(defaultLoc))

	days, report := health.Aggregate(sleep, workouts, parser, a.logger)

	if err := store.WriteDays(ctx, a.outputFile, days, a.logger); err != nil {
		return nil, err
	}

	skipped := 0
	for _, r := range abbrevs.Results() {
		if r.Skipped() {
			skipped++
		}
	}
	a.logger.Info("days refreshed",
		"output", a.outputFile,
		"days", report.Days,
		"sleep_skipped", report.SleepSkipped,
		"workouts_skipped", report.WorkoutsSkipped)

	return &Result{
		Days:          days,
		OutputFile:    a.outputFile,
		Report:        report,
		Abbreviations: abbrevs.Len(),
		ZonesSkipped:  skipped,
	}, nil
}

// Days refreshes the output file and returns the mapping as persisted.
func (a *Aggregator) Days(ctx context.Context) (health.Days, error) {
	if _, err := a.Refresh(ctx); err != nil {
		return nil, err
	}
	return store.LoadDays(a.outputFile)
}

// Metric refreshes the mapping and computes the named metric's result line.
func (a *Aggregator) Metric(ctx context.Context, name string) (string, error) {
	m, ok := metrics.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	days, err := a.Days(ctx)
	if err != nil {
		return "", err
	}
	return m.Compute(days)
}

func (a *Aggregator) zones() ([]string, error) {
	switch {
	case len(a.zoneNames) > 0:
		return a.zoneNames, nil
	case a.zoneInfo != nil:
		names, err := zonecache.NamesFS(a.zoneInfo)
		if err != nil {
			return nil, fmt.Errorf("reading zoneinfo %s: %w", a.zoneInfoDir, err)
		}
		return names, nil
	default:
		return zonecache.Names(), nil
	}
}
