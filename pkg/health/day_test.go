package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWorkoutMergePolicy(t *testing.T) {
	d := &Day{}
	d.AddWorkout(WorkoutRecord{Name: "Push A", Description: "heavy", Equipment: "bar", CaloriesBurned: 100, hasName: true}, "07:00:00")
	d.AddWorkout(WorkoutRecord{Description: " light", CaloriesBurned: 20}, "12:00:00")
	d.AddWorkout(WorkoutRecord{Name: "Leg B", Equipment: "rack", CaloriesBurned: 50, hasName: true}, "18:00:00")

	require.NotNil(t, d.Workouts)
	assert.Equal(t, "Push A, Leg B", d.Workouts.Name, "absent names add no separator")
	assert.Equal(t, "heavy light", d.Workouts.Description)
	assert.Equal(t, "barrack", d.Workouts.Equipment)
	assert.Equal(t, "07:00:00, 12:00:00, 18:00:00", d.Workouts.Time)
	assert.InDelta(t, 170.0, d.Workouts.CaloriesBurned, 1e-9)
}

func TestAddWorkoutEmptyNameStillSeparates(t *testing.T) {
	d := &Day{}
	d.AddWorkout(WorkoutRecord{Name: "Push", hasName: true}, "07:00:00")
	d.AddWorkout(WorkoutRecord{Name: "", hasName: true}, "08:00:00")
	assert.Equal(t, "Push, ", d.Name())
}

func TestSetSleepReplaces(t *testing.T) {
	d := &Day{}
	d.SetSleep(SleepRecord{Quality: 50, Duration: 4})
	d.SetSleep(SleepRecord{Quality: 90, Duration: 8})
	assert.InDelta(t, 90.0, d.SleepQuality, 1e-9)
	assert.InDelta(t, 8.0, d.SleepDuration, 1e-9)
	assert.Nil(t, d.Workouts)
}

func TestDayAccessorsWithoutWorkouts(t *testing.T) {
	d := &Day{SleepQuality: 70, SleepDuration: 5}
	assert.Zero(t, d.Calories())
	assert.Empty(t, d.Name())
	_, ok := d.Time()
	assert.False(t, ok)

	var nilDay *Day
	assert.Zero(t, nilDay.Calories())
}

func TestDayRecordRoundTrip(t *testing.T) {
	sleepOnly := &Day{SleepQuality: 70, SleepDuration: 5}
	rec := sleepOnly.Record()
	assert.Nil(t, rec.CaloriesBurned)
	assert.Nil(t, rec.Name)
	assert.Nil(t, rec.Time)
	assert.Equal(t, sleepOnly, rec.Day())

	withWorkout := &Day{Workouts: &Workouts{Name: "", Time: "09:00:00", CaloriesBurned: 0}}
	rec = withWorkout.Record()
	require.NotNil(t, rec.Name)
	assert.Equal(t, "", *rec.Name)
	assert.Equal(t, withWorkout, rec.Day())
}

func TestDaysKeysSorted(t *testing.T) {
	days := Days{"2024-03-02": {}, "2023-12-31": {}, "2024-01-15": {}}
	assert.Equal(t, []string{"2023-12-31", "2024-01-15", "2024-03-02"}, days.Keys())
}
