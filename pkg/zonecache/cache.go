// Package zonecache enumerates IANA zone identifiers and caches loaded locations.
package zonecache

import (
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	// Embedded zone database so every identifier loads without system tzdata.
	_ "time/tzdata"

	"github.com/maypok86/otter/v2"
)

// Cache memoizes loaded locations, including failures. A Cache is meant to
// outlive a single aggregation run.
type Cache struct {
	cache  *otter.Cache[string, entry]
	source fs.FS
	logger *slog.Logger
}

type entry struct {
	loc *time.Location
	err error
}

// New returns an empty cache backed by the system and embedded zone databases.
func New(logger *slog.Logger) *Cache {
	return NewFS(logger, nil)
}

// NewFS returns an empty cache that reads zone rules from a zoneinfo tree,
// the same tree NamesFS enumerates. A nil fsys behaves like New.
func NewFS(logger *slog.Logger, fsys fs.FS) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	cache := otter.Must(&otter.Options[string, entry]{
		MaximumSize:     2048,
		InitialCapacity: 512,
	})
	return &Cache{cache: cache, source: fsys, logger: logger}
}

// Load returns the location for a zone identifier.
func (c *Cache) Load(name string) (*time.Location, error) {
	if e, found := c.cache.GetIfPresent(name); found {
		return e.loc, e.err
	}

	loc, err := c.load(name)
	if err != nil {
		err = fmt.Errorf("loading zone %q: %w", name, err)
		c.logger.Debug("zone load failed", "zone", name, "error", err)
	}
	c.cache.Set(name, entry{loc: loc, err: err})
	return loc, err
}

func (c *Cache) load(name string) (*time.Location, error) {
	if c.source == nil {
		return time.LoadLocation(name)
	}
	data, err := fs.ReadFile(c.source, name)
	if err != nil {
		return nil, err
	}
	return time.LoadLocationFromTZData(name, data)
}

// Size reports the approximate number of cached zones.
func (c *Cache) Size() int {
	return c.cache.EstimatedSize()
}
