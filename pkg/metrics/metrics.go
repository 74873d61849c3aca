// Package metrics computes derived health metrics from the day mapping.
// Every calculator is a pure, read-only reducer.
package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/healthagg/pkg/constants"
	"github.com/codeGROOVE-dev/healthagg/pkg/health"
)

// ErrNoLowSleepDays is returned when no day has less than constants.LowSleepHours of sleep.
var ErrNoLowSleepDays = fmt.Errorf("no days with less than %v hours of sleep", constants.LowSleepHours)

// AverageCaloriesLowSleep averages calories burned over days with less than
// constants.LowSleepHours of sleep. Days without workouts count as zero calories.
func AverageCaloriesLowSleep(days health.Days) (float64, error) {
	var total float64
	n := 0
	for _, d := range days {
		if d == nil || d.SleepDuration >= constants.LowSleepHours {
			continue
		}
		total += d.Calories()
		n++
	}
	if n == 0 {
		return 0, ErrNoLowSleepDays
	}
	return total / float64(n), nil
}

// PushDays counts case-insensitive occurrences of "push" in every day's
// merged workout name. A day with two push workouts contributes two.
func PushDays(days health.Days) int {
	total := 0
	for _, d := range days {
		total += strings.Count(strings.ToLower(d.Name()), constants.PushKeyword)
	}
	return total
}

// MorningWorkouts counts days whose merged time field sorts before
// "10:00:00". The comparison is on the whole string, so for a multi-workout
// day only the first listed time decides.
func MorningWorkouts(days health.Days) int {
	total := 0
	for _, d := range days {
		if t, ok := d.Time(); ok && t < constants.MorningCutoff {
			total++
		}
	}
	return total
}

// Metric is a named calculator that renders a one-line result.
type Metric struct {
	Compute func(health.Days) (string, error)
	Name    string
}

var registry = []Metric{
	{
		Name: "average_calories_low_sleep",
		Compute: func(days health.Days) (string, error) {
			avg, err := AverageCaloriesLowSleep(days)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Average calories burned on days with less than %v hours of sleep: %s",
				constants.LowSleepHours, FormatFloat(avg)), nil
		},
	},
	{
		Name: "push_days",
		Compute: func(days health.Days) (string, error) {
			return fmt.Sprintf("Total push days: %d", PushDays(days)), nil
		},
	},
	{
		Name: "morning_workouts",
		Compute: func(days health.Days) (string, error) {
			return fmt.Sprintf("Total morning workouts: %d", MorningWorkouts(days)), nil
		},
	},
}

// Lookup finds a metric by name.
func Lookup(name string) (Metric, bool) {
	for _, m := range registry {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Names lists the supported metric names.
func Names() []string {
	names := make([]string, len(registry))
	for i, m := range registry {
		names[i] = m.Name
	}
	return names
}

// FormatFloat renders v with the shortest exact representation and always
// at least one decimal, e.g. "150.0" or "133.33333333333334".
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
