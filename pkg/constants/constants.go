// Package constants defines shared constants for the healthagg application.
package constants

import "time"

// MaxInputSize is the largest input file accepted, in bytes.
const MaxInputSize = 100 * 1024 * 1024

// LowSleepHours is the sleep duration below which a day counts as a low-sleep day.
const LowSleepHours = 6.0

// MorningCutoff is compared lexicographically against a day's merged time field.
const MorningCutoff = "10:00:00"

// PushKeyword is counted case-insensitively in merged workout names.
const PushKeyword = "push"

// Layouts for the UTC calendar day key and the UTC time-of-day string.
const (
	DayLayout       = "2006-01-02"
	TimeOfDayLayout = "15:04:05"
)

// ReferenceInstants are the wall-clock times sampled in every zone when
// building the abbreviation map. Only the wall clock is used; the location
// is replaced by the zone under test. January is standard time in the
// northern hemisphere and daylight time in the southern one, July the reverse.
var ReferenceInstants = []time.Time{
	time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
	time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC),
}
