package health

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/healthagg/pkg/tzabbrev"
	"github.com/codeGROOVE-dev/healthagg/pkg/tzconvert"
	"github.com/codeGROOVE-dev/healthagg/pkg/zonecache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testParser(t *testing.T) *tzconvert.Parser {
	t.Helper()
	zones := []string{"America/New_York", "America/Los_Angeles", "Europe/Berlin", "UTC"}
	m, err := tzabbrev.Resolve(context.Background(), zones, zonecache.New(testLogger()), testLogger())
	require.NoError(t, err)
	return tzconvert.NewParser(m)
}

func TestAggregateMergesWorkoutsOnSameDay(t *testing.T) {
	workouts := []Record{
		{"time": "2024-03-01 07:00:00 UTC", "name": "Push A", "calories_burned": 100.0, "muscles": "chest"},
		{"time": "2024-03-01 18:30:00 UTC", "name": "Leg B", "calories_burned": 50.0, "muscles": "quads"},
	}

	days, rep := Aggregate(nil, workouts, testParser(t), testLogger())
	require.Len(t, days, 1)
	assert.Equal(t, 0, rep.WorkoutsSkipped)

	d := days["2024-03-01"]
	require.NotNil(t, d)
	require.NotNil(t, d.Workouts)
	assert.InDelta(t, 150.0, d.Workouts.CaloriesBurned, 1e-9)
	assert.Equal(t, "Push A, Leg B", d.Workouts.Name)
	assert.Equal(t, "chestquads", d.Workouts.Muscles)
	assert.Equal(t, "07:00:00, 18:30:00", d.Workouts.Time)
	assert.Zero(t, d.SleepQuality)
	assert.Zero(t, d.SleepDuration)
}

func TestAggregateMissingCaloriesContributesZero(t *testing.T) {
	workouts := []Record{
		{"time": "2024-03-01 07:00:00 UTC", "name": "Yoga"},
		{"time": "2024-03-01 09:00:00 UTC", "name": "Run", "calories_burned": 300},
	}

	days, rep := Aggregate(nil, workouts, testParser(t), testLogger())
	assert.Empty(t, rep.Skipped)
	assert.InDelta(t, 300.0, days["2024-03-01"].Calories(), 1e-9)
}

func TestAggregateSkipsMalformedSleep(t *testing.T) {
	sleep := []Record{
		{"sleep_start": "not a time at all", "sleep_quality": 80, "sleep_duration": 7},
		{"sleep_quality": 70, "sleep_duration": 6},
		nil,
		{"sleep_start": "2024-03-02 23:00:00 UTC", "sleep_quality": 90, "sleep_duration": "8.5"},
	}

	var days Days
	var rep Report
	require.NotPanics(t, func() {
		days, rep = Aggregate(sleep, nil, testParser(t), testLogger())
	})

	assert.Equal(t, 4, rep.SleepRead)
	assert.Equal(t, 3, rep.SleepSkipped)
	require.Len(t, rep.Skipped, 3)
	assert.ErrorIs(t, rep.Skipped[0], tzconvert.ErrUnknownAbbreviation)
	assert.ErrorIs(t, rep.Skipped[1], ErrMissingTimestamp)
	assert.ErrorIs(t, rep.Skipped[2], ErrNotObject)
	assert.Equal(t, 1, rep.Skipped[1].Index)

	require.Len(t, days, 1)
	d := days["2024-03-02"]
	require.NotNil(t, d)
	assert.InDelta(t, 8.5, d.SleepDuration, 1e-9)
	assert.Nil(t, d.Workouts)
}

func TestAggregateSleepThenWorkouts(t *testing.T) {
	sleep := []Record{
		{"sleep_start": "2024-03-01 22:30:00 EST", "sleep_quality": 60, "sleep_duration": -5.5},
		{"sleep_start": "2024-03-04 01:00:00 UTC", "sleep_quality": 50, "sleep_duration": 4},
		{"sleep_start": "2024-03-04 02:00:00 UTC", "sleep_quality": 75, "sleep_duration": 7},
	}
	workouts := []Record{
		{"time": "2024-03-01 20:00:00 EST", "name": "Push Day", "calories_burned": 400},
		{"time": "2024-03-05 06:00:00 PST", "description": "easy", "calories_burned": "250"},
	}

	days, rep := Aggregate(sleep, workouts, testParser(t), testLogger())
	assert.Empty(t, rep.Skipped)
	assert.Equal(t, []string{"2024-03-02", "2024-03-04", "2024-03-05"}, days.Keys())

	// 22:30 EST and 20:00 EST are both on the next UTC day.
	d := days["2024-03-02"]
	assert.InDelta(t, 5.5, d.SleepDuration, 1e-9, "negative duration is sign-corrected")
	assert.InDelta(t, 60.0, d.SleepQuality, 1e-9)
	require.NotNil(t, d.Workouts)
	assert.Equal(t, "Push Day", d.Workouts.Name)
	assert.Equal(t, "01:00:00", d.Workouts.Time)

	// Duplicate sleep day: last write wins.
	assert.InDelta(t, 75.0, days["2024-03-04"].SleepQuality, 1e-9)
	assert.Nil(t, days["2024-03-04"].Workouts)

	// Workout without sleep.
	d = days["2024-03-05"]
	assert.Zero(t, d.SleepDuration)
	assert.Equal(t, "", d.Workouts.Name)
	assert.Equal(t, "easy", d.Workouts.Description)
	assert.Equal(t, "14:00:00", d.Workouts.Time)
	assert.InDelta(t, 250.0, d.Workouts.CaloriesBurned, 1e-9)
}

func TestAggregateSkipsInvalidWorkouts(t *testing.T) {
	workouts := []Record{
		{"name": "no time"},
		{"time": "2024-03-01 07:00:00 UTC", "calories_burned": "lots"},
		{"time": "2024-03-01 07:00:00 UTC", "calories_burned": true},
		{"time": "2024-03-01 07:00:00 UTC", "name": map[string]any{"nested": 1}},
		{"time": "2024-03-01 07:00:00 UTC", "name": "Pull", "calories_burned": 120},
	}

	days, rep := Aggregate(nil, workouts, testParser(t), testLogger())
	assert.Equal(t, 5, rep.WorkoutsRead)
	assert.Equal(t, 4, rep.WorkoutsSkipped)
	assert.ErrorIs(t, rep.Skipped[0], ErrMissingTimestamp)
	assert.ErrorIs(t, rep.Skipped[1], ErrInvalidField)
	assert.ErrorIs(t, rep.Skipped[2], ErrInvalidField)
	assert.ErrorIs(t, rep.Skipped[3], ErrInvalidField)
	assert.Equal(t, KindWorkout, rep.Skipped[0].Kind)

	require.Len(t, days, 1)
	assert.Equal(t, "Pull", days["2024-03-01"].Name())
}

func TestAggregateIsIdempotent(t *testing.T) {
	sleep := []Record{
		{"sleep_start": "2024-03-01 23:00:00 CET", "sleep_quality": 80, "sleep_duration": 7},
		{"sleep_start": "2024-03-02 23:00:00 CET", "sleep_quality": 60, "sleep_duration": 5},
	}
	workouts := []Record{
		{"time": "2024-03-01 07:00:00 CET", "name": "Push", "calories_burned": 200},
		{"time": "2024-03-01 19:00:00 CET", "name": "Core", "calories_burned": 80},
		{"time": "2024-03-03 06:00:00 PST", "name": "Run"},
	}

	p := testParser(t)
	first, _ := Aggregate(sleep, workouts, p, testLogger())
	second, _ := Aggregate(sleep, workouts, p, testLogger())
	assert.Equal(t, first, second)
	assert.Equal(t, first.Records(), second.Records())
}
