// Package tzabbrev resolves time zone abbreviations ("EST", "CEST") to concrete zones.
//
// Abbreviations are ambiguous: "CST" is reported by zones in North America,
// China and Cuba, and "IST" by Israel, India and Ireland. Resolution is
// therefore first-wins over a sorted zone list, which makes it deterministic
// but not necessarily what every user of a shared abbreviation meant.
package tzabbrev

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/healthagg/pkg/constants"
	"github.com/codeGROOVE-dev/healthagg/pkg/zonecache"
)

// ErrNoAbbreviation is recorded for zones that report no abbreviation at any reference instant.
var ErrNoAbbreviation = errors.New("zone reports no abbreviation")

// Loader loads a zone by IANA identifier.
type Loader interface {
	Load(name string) (*time.Location, error)
}

// Entry is the zone an abbreviation resolves to.
type Entry struct {
	Location *time.Location
	// Zone is the IANA identifier, e.g. "America/New_York".
	Zone string
	// Abbreviation as reported by the zone.
	Abbreviation string
	// Offset is the UTC offset in seconds the zone reported together with
	// the abbreviation at the reference instant.
	Offset int
}

// ZoneResult records what a single zone contributed to the map.
type ZoneResult struct {
	Err   error
	Zone  string
	Added []string
}

// Skipped reports whether the zone was skipped entirely.
func (r ZoneResult) Skipped() bool {
	return r.Err != nil
}

// Map is an abbreviation to zone mapping. The first zone to report an
// abbreviation keeps it.
type Map struct {
	entries map[string]Entry
	order   []string
	results []ZoneResult
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Entry)}
}

// Lookup finds the entry for an abbreviation. An exact match is preferred;
// otherwise the first abbreviation equal under case folding is used.
func (m *Map) Lookup(abbr string) (Entry, bool) {
	if m == nil || abbr == "" {
		return Entry{}, false
	}
	if e, ok := m.entries[abbr]; ok {
		return e, true
	}
	for _, a := range m.order {
		if strings.EqualFold(a, abbr) {
			return m.entries[a], true
		}
	}
	return Entry{}, false
}

// Len returns the number of abbreviations.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Abbreviations returns the abbreviations in insertion order.
func (m *Map) Abbreviations() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Results returns the per-zone outcome of the last Resolve, in enumeration order.
func (m *Map) Results() []ZoneResult {
	if m == nil {
		return nil
	}
	return m.results
}

// add inserts abbr unless it is already present. It reports whether the entry was new.
func (m *Map) add(e Entry) bool {
	if e.Abbreviation == "" {
		return false
	}
	if _, exists := m.entries[e.Abbreviation]; exists {
		return false
	}
	m.entries[e.Abbreviation] = e
	m.order = append(m.order, e.Abbreviation)
	return true
}

// Resolve builds a map from the given zone identifiers. Names are sorted and
// de-duplicated first so insertion order never depends on the caller.
// Zones that fail to load are recorded in Results and skipped.
func Resolve(ctx context.Context, names []string, loader Loader, logger *slog.Logger) (*Map, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := NewMap()
	sorted := zonecache.Sorted(names)
	m.results = make([]ZoneResult, 0, len(sorted))

	skipped := 0
	for _, name := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolving abbreviations: %w", err)
		}
		r := m.resolveZone(name, loader)
		m.results = append(m.results, r)
		if r.Skipped() {
			skipped++
			logger.Debug("skipping zone", "zone", name, "reason", r.Err)
		}
	}

	logger.Debug("abbreviation map built",
		"zones", len(sorted),
		"skipped", skipped,
		"abbreviations", m.Len())
	return m, nil
}

// ResolveAll builds a map from the built-in zone list.
func ResolveAll(ctx context.Context, loader Loader, logger *slog.Logger) (*Map, error) {
	return Resolve(ctx, zonecache.Names(), loader, logger)
}

func (m *Map) resolveZone(name string, loader Loader) ZoneResult {
	r := ZoneResult{Zone: name}
	loc, err := loader.Load(name)
	if err != nil {
		r.Err = err
		return r
	}

	reported := false
	for _, e := range Sample(name, loc) {
		if e.Abbreviation == "" {
			continue
		}
		reported = true
		if m.add(e) {
			r.Added = append(r.Added, e.Abbreviation)
		}
	}
	if !reported {
		r.Err = ErrNoAbbreviation
	}
	return r
}

// Sample returns what the zone reports at each reference instant: the wall
// clock of the instant is attached to loc and the zone's abbreviation and
// offset are read back.
func Sample(name string, loc *time.Location) []Entry {
	out := make([]Entry, 0, len(constants.ReferenceInstants))
	for _, ref := range constants.ReferenceInstants {
		t := time.Date(ref.Year(), ref.Month(), ref.Day(), ref.Hour(), ref.Minute(), ref.Second(), 0, loc)
		abbr, offset := t.Zone()
		out = append(out, Entry{
			Location:     loc,
			Zone:         name,
			Abbreviation: abbr,
			Offset:       offset,
		})
	}
	return out
}
