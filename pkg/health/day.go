package health

import "slices"

// Workouts is the merged workout summary of one day.
type Workouts struct {
	Name        string
	Description string
	Muscles     string
	Equipment   string
	// Time lists the UTC time of day of every workout, joined with ", "
	// in processing order.
	Time           string
	CaloriesBurned float64
}

// Day is the aggregate for one UTC calendar day. Workouts is nil for a day
// with sleep but no workout.
type Day struct {
	Workouts      *Workouts
	SleepQuality  float64
	SleepDuration float64
}

// SetSleep replaces the day's sleep fields and drops any workouts, matching
// the last-write-wins rule for duplicate sleep days.
func (d *Day) SetSleep(s SleepRecord) {
	d.SleepQuality = s.Quality
	d.SleepDuration = s.Duration
	d.Workouts = nil
}

// AddWorkout merges a workout observed at timeOfDay (UTC, "HH:MM:SS").
// Calories sum, names join with ", ", the free-text fields concatenate as is,
// and times join with ", ".
func (d *Day) AddWorkout(w WorkoutRecord, timeOfDay string) {
	if d.Workouts == nil {
		d.Workouts = &Workouts{
			Name:           w.Name,
			Description:    w.Description,
			Muscles:        w.Muscles,
			Equipment:      w.Equipment,
			Time:           timeOfDay,
			CaloriesBurned: w.CaloriesBurned,
		}
		return
	}

	s := d.Workouts
	s.CaloriesBurned += w.CaloriesBurned
	if w.hasName {
		s.Name += ", " + w.Name
	}
	s.Description += w.Description
	s.Muscles += w.Muscles
	s.Equipment += w.Equipment
	s.Time += ", " + timeOfDay
}

// Calories returns the day's calories burned, zero without workouts.
func (d *Day) Calories() float64 {
	if d == nil || d.Workouts == nil {
		return 0
	}
	return d.Workouts.CaloriesBurned
}

// Name returns the merged workout name, empty without workouts.
func (d *Day) Name() string {
	if d == nil || d.Workouts == nil {
		return ""
	}
	return d.Workouts.Name
}

// Time returns the merged time field and whether the day has one.
func (d *Day) Time() (string, bool) {
	if d == nil || d.Workouts == nil {
		return "", false
	}
	return d.Workouts.Time, true
}

// Days maps "YYYY-MM-DD" to the aggregate of that UTC day.
type Days map[string]*Day

// Keys returns the day keys in ascending order.
func (d Days) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// day returns the entry for key, creating it when absent.
func (d Days) day(key string) *Day {
	if e, ok := d[key]; ok {
		return e
	}
	e := &Day{}
	d[key] = e
	return e
}

// DayRecord is the serialized form of a Day. Workout fields are omitted
// entirely for sleep-only days.
type DayRecord struct {
	CaloriesBurned *float64 `json:"calories_burned,omitempty"`
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Muscles        *string  `json:"muscles,omitempty"`
	Equipment      *string  `json:"equipment,omitempty"`
	Time           *string  `json:"time,omitempty"`
	SleepQuality   float64  `json:"sleep_quality"`
	SleepDuration  float64  `json:"sleep_duration"`
}

// Record converts the day to its serialized form.
func (d *Day) Record() DayRecord {
	r := DayRecord{SleepQuality: d.SleepQuality, SleepDuration: d.SleepDuration}
	if w := d.Workouts; w != nil {
		calories := w.CaloriesBurned
		r.CaloriesBurned = &calories
		r.Name = ptr(w.Name)
		r.Description = ptr(w.Description)
		r.Muscles = ptr(w.Muscles)
		r.Equipment = ptr(w.Equipment)
		r.Time = ptr(w.Time)
	}
	return r
}

// Day converts a serialized record back. Any workout field marks the day
// as having workouts.
func (r DayRecord) Day() *Day {
	d := &Day{SleepQuality: r.SleepQuality, SleepDuration: r.SleepDuration}
	if r.CaloriesBurned == nil && r.Name == nil && r.Description == nil &&
		r.Muscles == nil && r.Equipment == nil && r.Time == nil {
		return d
	}
	d.Workouts = &Workouts{
		Name:        deref(r.Name),
		Description: deref(r.Description),
		Muscles:     deref(r.Muscles),
		Equipment:   deref(r.Equipment),
		Time:        deref(r.Time),
	}
	if r.CaloriesBurned != nil {
		d.Workouts.CaloriesBurned = *r.CaloriesBurned
	}
	return d
}

// Records converts every day to its serialized form.
func (d Days) Records() map[string]DayRecord {
	out := make(map[string]DayRecord, len(d))
	for k, day := range d {
		out[k] = day.Record()
	}
	return out
}

// FromRecords rebuilds Days from serialized records.
func FromRecords(records map[string]DayRecord) Days {
	out := make(Days, len(records))
	for k, r := range records {
		out[k] = r.Day()
	}
	return out
}

func ptr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
