// Package health folds sleep and workout records into per-day aggregates.
package health

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// JSON field names of the input records.
const (
	FieldSleepStart     = "sleep_start"
	FieldSleepQuality   = "sleep_quality"
	FieldSleepDuration  = "sleep_duration"
	FieldWorkoutTime    = "time"
	FieldName           = "name"
	FieldDescription    = "description"
	FieldMuscles        = "muscles"
	FieldEquipment      = "equipment"
	FieldCaloriesBurned = "calories_burned"
)

var (
	// ErrNotObject is returned for array elements that are not JSON objects.
	ErrNotObject = errors.New("record is not an object")
	// ErrMissingTimestamp is returned when the required timestamp field is absent.
	ErrMissingTimestamp = errors.New("missing timestamp field")
	// ErrInvalidField is returned when a field cannot be coerced to its type.
	ErrInvalidField = errors.New("invalid field")
)

// Record is one decoded input object. A nil Record stands for an array
// element that was not an object.
type Record map[string]any

// RecordKind names the input collection a record came from.
type RecordKind string

// Record kinds.
const (
	KindSleep   RecordKind = "sleep"
	KindWorkout RecordKind = "workout"
)

// RecordError describes a skipped record.
type RecordError struct {
	Err    error
	Record Record
	Kind   RecordKind
	Index  int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s record %d: %v", e.Kind, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// SleepRecord is a validated sleep entry.
type SleepRecord struct {
	Start    string
	Quality  float64
	Duration float64 // hours, never negative
}

// WorkoutRecord is a validated workout entry.
type WorkoutRecord struct {
	Time           string
	Name           string
	Description    string
	Muscles        string
	Equipment      string
	CaloriesBurned float64
	// hasName distinguishes an absent name from an empty one when merging.
	hasName bool
}

// ParseSleep validates a raw sleep record. Missing quality or duration
// count as zero; a negative duration is sign-corrected.
func ParseSleep(r Record) (SleepRecord, error) {
	if r == nil {
		return SleepRecord{}, ErrNotObject
	}
	start, err := timestamp(r, FieldSleepStart)
	if err != nil {
		return SleepRecord{}, err
	}
	quality, err := number(r, FieldSleepQuality)
	if err != nil {
		return SleepRecord{}, err
	}
	duration, err := number(r, FieldSleepDuration)
	if err != nil {
		return SleepRecord{}, err
	}
	return SleepRecord{Start: start, Quality: quality, Duration: math.Abs(duration)}, nil
}

// ParseWorkout validates a raw workout record. Every field but the
// timestamp is optional.
func ParseWorkout(r Record) (WorkoutRecord, error) {
	if r == nil {
		return WorkoutRecord{}, ErrNotObject
	}
	ts, err := timestamp(r, FieldWorkoutTime)
	if err != nil {
		return WorkoutRecord{}, err
	}
	w := WorkoutRecord{Time: ts}
	if w.CaloriesBurned, err = number(r, FieldCaloriesBurned); err != nil {
		return WorkoutRecord{}, err
	}
	if v, ok := r[FieldName]; ok && v != nil {
		w.hasName = true
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{FieldName, &w.Name},
		{FieldDescription, &w.Description},
		{FieldMuscles, &w.Muscles},
		{FieldEquipment, &w.Equipment},
	} {
		if *f.dst, err = text(r, f.name); err != nil {
			return WorkoutRecord{}, err
		}
	}
	return w, nil
}

func timestamp(r Record, field string) (string, error) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", fmt.Errorf("%w %q", ErrMissingTimestamp, field)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidField, field, err)
	}
	return s, nil
}

// number coerces JSON numbers and numeric strings. Absent and null are zero.
func number(r Record, field string) (float64, error) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, nil
	}
	if _, isBool := v.(bool); isBool {
		return 0, fmt.Errorf("%w %q: boolean is not a number", ErrInvalidField, field)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidField, field, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w %q: not finite", ErrInvalidField, field)
	}
	return f, nil
}

// text coerces scalars to strings. Absent and null are empty.
func text(r Record, field string) (string, error) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidField, field, err)
	}
	return s, nil
}
