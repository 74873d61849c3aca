// Package tzconvert turns free-form local timestamps into UTC instants.
// ALL times leaving this package are in UTC; day keys and times of day are
// derived from the UTC instant, never from the original wall clock.
package tzconvert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/healthagg/pkg/constants"
	"github.com/codeGROOVE-dev/healthagg/pkg/tzabbrev"
)

var (
	// ErrUnparsable is returned when no supported layout matches.
	ErrUnparsable = errors.New("unrecognized date-time format")
	// ErrUnknownAbbreviation is returned for a zone abbreviation missing from the map.
	ErrUnknownAbbreviation = errors.New("unknown time zone abbreviation")
	// ErrMultipleZones is returned when a timestamp names more than one zone.
	ErrMultipleZones = errors.New("more than one time zone in timestamp")
)

// ParseError describes a timestamp that could not be normalized.
type ParseError struct {
	Err   error
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Instant is an absolute point in time, always held in UTC.
type Instant struct {
	t time.Time
}

// NewInstant converts t to UTC.
func NewInstant(t time.Time) Instant {
	return Instant{t: t.UTC()}
}

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time {
	return i.t
}

// Day returns the UTC calendar day, e.g. "2024-03-01".
func (i Instant) Day() string {
	return i.t.Format(constants.DayLayout)
}

// TimeOfDay returns the UTC time of day, e.g. "12:15:00".
func (i Instant) TimeOfDay() string {
	return i.t.Format(constants.TimeOfDayLayout)
}

// Option configures a Parser.
type Option func(*Parser)

// WithDefaultLocation sets the location used for timestamps that name no zone.
// The default is UTC.
func WithDefaultLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.defaultLoc = loc
		}
	}
}

// Parser normalizes timestamps against an abbreviation map.
type Parser struct {
	abbrevs    *tzabbrev.Map
	defaultLoc *time.Location
}

// NewParser returns a parser backed by m. A nil map only accepts UTC,
// numeric offsets and naive timestamps.
func NewParser(m *tzabbrev.Map, opts ...Option) *Parser {
	p := &Parser{abbrevs: m, defaultLoc: time.UTC}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Normalize parses raw with m and the default (UTC) location for naive input.
func Normalize(raw string, m *tzabbrev.Map) (Instant, error) {
	return NewParser(m).Normalize(raw)
}

// zone is the time zone named inside a timestamp.
type zone struct {
	loc *time.Location
	// abbr is set when the zone came from the abbreviation map.
	abbr   string
	offset int
}

// Normalize parses a timestamp such as "2024-03-01 07:15:00 EST" and
// returns its UTC instant. An abbreviation selects a zone from the map;
// the stated abbreviation always wins over the zone's own rule, so "EDT" in
// January still means UTC-4.
func (p *Parser) Normalize(raw string) (Instant, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return Instant{}, &ParseError{Input: raw, Err: ErrUnparsable}
	}

	rest, z, err := p.extractZone(input)
	if err != nil {
		return Instant{}, &ParseError{Input: raw, Err: err}
	}

	loc := p.defaultLoc
	if z != nil {
		loc = z.loc
	}

	t, ok := parseLayouts(rest, loc)
	if !ok {
		return Instant{}, &ParseError{Input: raw, Err: ErrUnparsable}
	}

	if z != nil && z.abbr != "" {
		if name, _ := t.Zone(); name != z.abbr {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
				time.FixedZone(z.abbr, z.offset))
		}
	}
	return NewInstant(t), nil
}

// extractZone removes the zone token from the timestamp. Tokens that are
// part of the date itself (month and weekday names, AM/PM) are left alone.
func (p *Parser) extractZone(input string) (string, *zone, error) {
	fields := strings.Fields(input)
	kept := make([]string, 0, len(fields))
	var found *zone

	for _, f := range fields {
		tok := strings.Trim(f, "(),")
		z, isZone, err := p.zoneToken(tok)
		if err != nil {
			return "", nil, err
		}
		if !isZone {
			if isMeridiem(tok) {
				f = strings.ToUpper(tok)
			}
			kept = append(kept, f)
			continue
		}
		if found != nil {
			return "", nil, ErrMultipleZones
		}
		found = z
	}
	return strings.Join(kept, " "), found, nil
}

func (p *Parser) zoneToken(tok string) (*zone, bool, error) {
	if tok == "" {
		return nil, false, nil
	}

	if isOffsetToken(tok) {
		offset, err := ParseOffset(tok)
		if err != nil {
			return nil, false, nil //nolint:nilerr // not an offset, leave it to the layouts
		}
		return &zone{loc: time.FixedZone("", offset)}, true, nil
	}

	if !isLetters(tok) || isMeridiem(tok) || isCalendarWord(tok) {
		return nil, false, nil
	}

	if e, ok := p.abbrevs.Lookup(tok); ok {
		return &zone{loc: e.Location, abbr: e.Abbreviation, offset: e.Offset}, true, nil
	}
	switch strings.ToUpper(tok) {
	case "Z", "UTC", "GMT", "UT":
		return &zone{loc: time.UTC}, true, nil
	}
	return nil, false, fmt.Errorf("%w: %s", ErrUnknownAbbreviation, tok)
}

// isOffsetToken matches "+05:30", "-0300" and "UTC+8" style tokens.
func isOffsetToken(tok string) bool {
	if tok[0] == '+' || tok[0] == '-' {
		return true
	}
	upper := strings.ToUpper(tok)
	return len(tok) > 3 && (strings.HasPrefix(upper, "UTC") || strings.HasPrefix(upper, "GMT")) &&
		(tok[3] == '+' || tok[3] == '-')
}

// ParseOffset parses a numeric UTC offset and returns it in seconds.
// Accepted forms: "+5", "-03", "+0530", "+05:30", "UTC+8", "GMT-4", "UTC".
// The sign is the conventional one: "UTC-4" is four hours behind UTC.
func ParseOffset(s string) (int, error) {
	orig := s
	upper := strings.ToUpper(s)
	for _, prefix := range []string{"UTC", "GMT"} {
		if strings.HasPrefix(upper, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if s == "" {
		return 0, nil
	}

	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	default:
		return 0, fmt.Errorf("offset %q: missing sign", orig)
	}

	var hh, mm string
	switch {
	case strings.Contains(s, ":"):
		hh, mm, _ = strings.Cut(s, ":")
	case len(s) <= 2:
		hh = s
	case len(s) == 4:
		hh, mm = s[:2], s[2:]
	default:
		return 0, fmt.Errorf("offset %q: bad length", orig)
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hh == "" || hours > 14 {
		return 0, fmt.Errorf("offset %q: bad hours", orig)
	}
	minutes := 0
	if mm != "" {
		minutes, err = strconv.Atoi(mm)
		if err != nil || len(mm) != 2 || minutes >= 60 {
			return 0, fmt.Errorf("offset %q: bad minutes", orig)
		}
	}
	return sign * (hours*3600 + minutes*60), nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}

func isMeridiem(s string) bool {
	return strings.EqualFold(s, "AM") || strings.EqualFold(s, "PM")
}

var calendarWords = map[string]bool{}

func init() {
	for m := time.January; m <= time.December; m++ {
		calendarWords[strings.ToLower(m.String())] = true
		calendarWords[strings.ToLower(m.String()[:3])] = true
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		calendarWords[strings.ToLower(d.String())] = true
		calendarWords[strings.ToLower(d.String()[:3])] = true
	}
	calendarWords["sept"] = true
}

func isCalendarWord(s string) bool {
	return calendarWords[strings.ToLower(s)]
}
