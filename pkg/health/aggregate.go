package health

import (
	"log/slog"

	"github.com/codeGROOVE-dev/healthagg/pkg/tzconvert"
)

// Normalizer converts a local timestamp to a UTC instant.
type Normalizer interface {
	Normalize(raw string) (tzconvert.Instant, error)
}

// Report summarizes an aggregation run.
type Report struct {
	Skipped         []*RecordError
	SleepRead       int
	SleepSkipped    int
	WorkoutsRead    int
	WorkoutsSkipped int
	Days            int
}

// Aggregate folds sleep records, then workout records, into per-day
// aggregates keyed by UTC calendar day. Records that fail validation or
// normalization are logged, recorded in the report and skipped; they never
// abort the run.
func Aggregate(sleep, workouts []Record, n Normalizer, logger *slog.Logger) (Days, Report) {
	if logger == nil {
		logger = slog.Default()
	}
	days := make(Days)
	var rep Report

	skip := func(kind RecordKind, i int, r Record, err error) {
		rerr := &RecordError{Kind: kind, Index: i, Record: r, Err: err}
		rep.Skipped = append(rep.Skipped, rerr)
		logger.Warn("skipped "+string(kind)+" entry", "index", i, "error", err, "record", r)
	}

	for i, r := range sleep {
		rep.SleepRead++
		s, err := ParseSleep(r)
		if err != nil {
			rep.SleepSkipped++
			skip(KindSleep, i, r, err)
			continue
		}
		at, err := n.Normalize(s.Start)
		if err != nil {
			rep.SleepSkipped++
			skip(KindSleep, i, r, err)
			continue
		}
		// One sleep entry per day is assumed; a later one replaces an earlier one.
		days.day(at.Day()).SetSleep(s)
	}

	for i, r := range workouts {
		rep.WorkoutsRead++
		w, err := ParseWorkout(r)
		if err != nil {
			rep.WorkoutsSkipped++
			skip(KindWorkout, i, r, err)
			continue
		}
		at, err := n.Normalize(w.Time)
		if err != nil {
			rep.WorkoutsSkipped++
			skip(KindWorkout, i, r, err)
			continue
		}
		days.day(at.Day()).AddWorkout(w, at.TimeOfDay())
	}

	rep.Days = len(days)
	logger.Debug("aggregation complete",
		"sleep_read", rep.SleepRead,
		"sleep_skipped", rep.SleepSkipped,
		"workouts_read", rep.WorkoutsRead,
		"workouts_skipped", rep.WorkoutsSkipped,
		"days", rep.Days)
	return days, rep
}
