package zonecache

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Names returns the built-in zone identifiers, sorted and de-duplicated.
// The result is identical on every machine, which keeps first-wins
// abbreviation resolution reproducible.
func Names() []string {
	return Sorted(builtinZones)
}

// Sorted returns a sorted copy of names with duplicates and blanks removed.
func Sorted(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

var skipDirs = map[string]bool{
	"posix": true,
	"right": true,
}

var skipFiles = map[string]bool{
	"localtime":  true,
	"posixrules": true,
	"Factory":    true,
}

// NamesFS enumerates zone identifiers from a zoneinfo tree such as
// os.DirFS("/usr/share/zoneinfo"). Only files carrying the TZif magic are kept.
func NamesFS(fsys fs.FS) ([]string, error) {
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && skipDirs[p] {
				return fs.SkipDir
			}
			return nil
		}
		if skipFiles[path.Base(p)] || strings.Contains(path.Base(p), ".") {
			return nil
		}
		ok, err := isTZif(fsys, p)
		if err != nil {
			return err
		}
		if ok {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking zoneinfo: %w", err)
	}
	return Sorted(names), nil
}

func isTZif(fsys fs.FS, p string) (bool, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close() //nolint:errcheck // read-only

	magic := make([]byte, 4)
	n, err := f.Read(magic)
	if err != nil || n < 4 {
		return false, nil //nolint:nilerr // short or unreadable files are not zones
	}
	return bytes.Equal(magic, []byte("TZif")), nil
}
