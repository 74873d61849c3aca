package healthagg

import "github.com/codeGROOVE-dev/healthagg/pkg/health"

// Default file names, relative to the working directory.
const (
	DefaultSleepFile    = "sleep.json"
	DefaultWorkoutsFile = "workouts.json"
	DefaultOutputFile   = "days.json"
)

// Option configures an Aggregator.
type Option func(*OptionHolder)

// OptionHolder holds all options for the Aggregator.
type OptionHolder struct {
	sleepFile    string
	workoutsFile string
	outputFile   string
	defaultZone  string
	zoneInfoDir  string
	zoneNames    []string
}

// WithSleepFile sets the sleep input path.
func WithSleepFile(path string) Option {
	return func(o *OptionHolder) {
		o.sleepFile = path
	}
}

// WithWorkoutsFile sets the workouts input path.
func WithWorkoutsFile(path string) Option {
	return func(o *OptionHolder) {
		o.workoutsFile = path
	}
}

// WithOutputFile sets where the day mapping is written.
func WithOutputFile(path string) Option {
	return func(o *OptionHolder) {
		o.outputFile = path
	}
}

// WithDefaultZone sets the IANA zone used for timestamps without a zone.
// Empty means UTC.
func WithDefaultZone(name string) Option {
	return func(o *OptionHolder) {
		o.defaultZone = name
	}
}

// WithZoneInfoDir enumerates zones from a zoneinfo directory instead of the
// built-in list and reads their rules from the same directory.
func WithZoneInfoDir(dir string) Option {
	return func(o *OptionHolder) {
		o.zoneInfoDir = dir
	}
}

// WithZoneNames restricts abbreviation resolution to the given zones.
func WithZoneNames(names []string) Option {
	return func(o *OptionHolder) {
		o.zoneNames = names
	}
}

// Result describes one refresh of the day mapping.
type Result struct {
	Days          health.Days
	OutputFile    string
	Report        health.Report
	Abbreviations int
	ZonesSkipped  int
}
