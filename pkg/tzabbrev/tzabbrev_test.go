package tzabbrev

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/healthagg/pkg/zonecache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLoader serves fixed locations and fails for everything else.
type fakeLoader map[string]*time.Location

func (f fakeLoader) Load(name string) (*time.Location, error) {
	if loc, ok := f[name]; ok {
		return loc, nil
	}
	return nil, errors.New("unknown zone " + name)
}

func TestResolveAllIsSound(t *testing.T) {
	m, err := ResolveAll(context.Background(), zonecache.New(testLogger()), testLogger())
	require.NoError(t, err)
	require.Positive(t, m.Len())

	// Every abbreviation must be reported by its zone at one of the reference instants.
	for _, abbr := range m.Abbreviations() {
		e, ok := m.Lookup(abbr)
		require.True(t, ok, abbr)

		found := false
		for _, s := range Sample(e.Zone, e.Location) {
			if s.Abbreviation == abbr && s.Offset == e.Offset {
				found = true
			}
		}
		assert.True(t, found, "%s resolved to %s which never reports it", abbr, e.Zone)
	}
}

func TestResolveAllCommonAbbreviations(t *testing.T) {
	m, err := ResolveAll(context.Background(), zonecache.New(testLogger()), testLogger())
	require.NoError(t, err)

	tests := []struct {
		abbr       string
		wantOffset int
	}{
		{"EST", -5 * 3600},
		{"EDT", -4 * 3600},
		{"PST", -8 * 3600},
		{"PDT", -7 * 3600},
		{"CET", 1 * 3600},
		{"CEST", 2 * 3600},
		{"UTC", 0},
		{"JST", 9 * 3600},
		{"AEST", 10 * 3600},
		{"AEDT", 11 * 3600},
		{"IST", 5*3600 + 30*60},
	}

	for _, tt := range tests {
		t.Run(tt.abbr, func(t *testing.T) {
			e, ok := m.Lookup(tt.abbr)
			require.True(t, ok, "abbreviation %s not resolved", tt.abbr)
			assert.Equal(t, tt.wantOffset, e.Offset)
			assert.Equal(t, tt.abbr, e.Abbreviation)
		})
	}
}

func TestResolveAllSharedAbbreviationGoesToFirstZone(t *testing.T) {
	m, err := ResolveAll(context.Background(), zonecache.New(testLogger()), testLogger())
	require.NoError(t, err)

	// Asia/Jerusalem and Europe/Dublin also report IST but sort after the link.
	e, ok := m.Lookup("IST")
	require.True(t, ok)
	assert.Equal(t, "Asia/Calcutta", e.Zone)
}

func TestResolveIsDeterministic(t *testing.T) {
	names := zonecache.Names()
	reversed := make([]string, len(names))
	for i, n := range names {
		reversed[len(names)-1-i] = n
	}

	a, err := Resolve(context.Background(), names, zonecache.New(testLogger()), testLogger())
	require.NoError(t, err)
	b, err := Resolve(context.Background(), reversed, zonecache.New(testLogger()), testLogger())
	require.NoError(t, err)

	assert.Equal(t, a.Abbreviations(), b.Abbreviations())
	for _, abbr := range a.Abbreviations() {
		ea, _ := a.Lookup(abbr)
		eb, _ := b.Lookup(abbr)
		assert.Equal(t, ea.Zone, eb.Zone, abbr)
	}
}

func TestResolveFirstZoneWins(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	loader := fakeLoader{
		"America/Chicago": chicago,
		"Asia/Shanghai":   shanghai,
	}

	m, err := Resolve(context.Background(), []string{"Asia/Shanghai", "America/Chicago"}, loader, testLogger())
	require.NoError(t, err)

	e, ok := m.Lookup("CST")
	require.True(t, ok)
	assert.Equal(t, "America/Chicago", e.Zone)
	assert.Equal(t, -6*3600, e.Offset)
	assert.Equal(t, []string{"CST", "CDT"}, m.Abbreviations())
}

func TestResolveSkipsBrokenZones(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	loader := fakeLoader{
		"Asia/Tokyo": tokyo,
		"Etc/Blank":  time.FixedZone("", 3600),
	}

	m, err := Resolve(context.Background(), []string{"Asia/Tokyo", "Bogus/Zone", "Etc/Blank"}, loader, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"JST"}, m.Abbreviations())

	results := m.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "Asia/Tokyo", results[0].Zone)
	assert.False(t, results[0].Skipped())
	assert.Equal(t, []string{"JST"}, results[0].Added)

	assert.Equal(t, "Bogus/Zone", results[1].Zone)
	assert.True(t, results[1].Skipped())

	assert.Equal(t, "Etc/Blank", results[2].Zone)
	assert.ErrorIs(t, results[2].Err, ErrNoAbbreviation)
}

func TestResolveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, []string{"UTC"}, zonecache.New(testLogger()), testLogger())
	require.ErrorIs(t, err, context.Canceled)
}

func TestLookup(t *testing.T) {
	guam, err := time.LoadLocation("Pacific/Guam")
	require.NoError(t, err)
	m, err := Resolve(context.Background(), []string{"Pacific/Guam"}, fakeLoader{"Pacific/Guam": guam}, testLogger())
	require.NoError(t, err)

	tests := []struct {
		name string
		abbr string
		want bool
	}{
		{"exact", "ChST", true},
		{"case folded", "CHST", true},
		{"missing", "EST", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := m.Lookup(tt.abbr)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, "Pacific/Guam", e.Zone)
			}
		})
	}

	var nilMap *Map
	_, ok := nilMap.Lookup("EST")
	assert.False(t, ok)
	assert.Zero(t, nilMap.Len())
}
