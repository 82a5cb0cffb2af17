// Package vectorcache persists projected sun-vector years to disk so
// repeated runs against the same site and year skip ephemeris
// regeneration. The cache is strictly an optimization: any read error
// is treated as a miss.
package vectorcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skysolve/suntilt/pkg/solar"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion guards against stale entries when the vector encoding
// changes.
const cacheVersion = 2

// Cache is a directory of msgpack-encoded sun-vector series, one file
// per (site, year).
type Cache struct {
	dir string
}

// cacheEntry carries the vector series plus the IANA zone its
// timestamps were generated in. msgpack decodes time.Time without the
// original location, and monthly bucketing depends on the site's local
// month boundaries, so the zone is re-attached on load.
type cacheEntry struct {
	Version int               `msgpack:"v"`
	Zone    string            `msgpack:"zone"`
	Vectors []solar.SunVector `msgpack:"vectors"`
}

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Load returns the cached vector series for a site-year, reporting a
// miss for anything unreadable or from an older cache version.
func (c *Cache) Load(site string, year int) ([]solar.SunVector, bool) {
	data, err := os.ReadFile(c.entryPath(site, year))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Version != cacheVersion {
		return nil, false
	}

	if entry.Zone != "" {
		loc, err := time.LoadLocation(entry.Zone)
		if err != nil {
			return nil, false
		}
		for i := range entry.Vectors {
			entry.Vectors[i].Time = entry.Vectors[i].Time.In(loc)
		}
	}
	return entry.Vectors, true
}

// Store writes the vector series for a site-year, replacing any
// previous entry.
func (c *Cache) Store(site string, year int, vectors []solar.SunVector) error {
	zone := ""
	if len(vectors) > 0 {
		zone = vectors[0].Time.Location().String()
	}
	data, err := msgpack.Marshal(cacheEntry{Version: cacheVersion, Zone: zone, Vectors: vectors})
	if err != nil {
		return fmt.Errorf("encoding vector cache entry: %w", err)
	}

	path := c.entryPath(site, year)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing vector cache entry: %w", err)
	}
	return os.Rename(tmp, path)
}

func (c *Cache) entryPath(site string, year int) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s-%d.vectors", sanitize(site), year))
}

// sanitize maps a site name onto a safe filename fragment.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
