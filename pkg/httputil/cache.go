package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] together with the stale entry when a
// cached response has outlived the TTL. The entry's ETag can be used to
// revalidate it with a conditional request.
var ErrExpired = errors.New("cache entry expired")

// Entry is a cached response body with the validators needed to revalidate
// it.
type Entry struct {
	Body         []byte    `json:"-"`
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Cache stores response bodies on disk, one pair of files per key: the body
// as downloaded and a JSON sidecar with its validators. File names are the
// SHA-256 of the key.
//
// Freshness is judged by FetchedAt. A TTL of 0 means entries never expire.
// Cache is not safe for concurrent writers to the same key; distinct keys
// may be used from several goroutines.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewCache creates a Cache in dir with the given TTL. An empty dir means
// $XDG_CACHE_HOME/cygpm (or the platform equivalent). The directory is
// created if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "cygpm")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live of cache entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get looks up key. The outcomes are:
//   - (entry, nil): fresh hit
//   - (nil, nil): miss
//   - (entry, ErrExpired): stale hit; the entry is still usable for revalidation
//   - (nil, err): I/O or decode failure
func (c *Cache) Get(key string) (*Entry, error) {
	base := c.keyPath(key)

	meta, err := os.ReadFile(base + ".json")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(meta, &e); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(base)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Body = body

	if c.ttl > 0 && c.now().Sub(e.FetchedAt) > c.ttl {
		return &e, ErrExpired
	}
	return &e, nil
}

// Set stores e under key. A zero FetchedAt is set to the current time.
// The body is written before the sidecar, so a reader never sees validators
// for a body that is not there.
func (c *Cache) Set(key string, e *Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = c.now()
	}
	meta, err := json.Marshal(e)
	if err != nil {
		return err
	}

	base := c.keyPath(key)
	if err := writeFileAtomic(base, e.Body); err != nil {
		return err
	}
	return writeFileAtomic(base+".json", meta)
}

// Touch marks a stale entry as fresh again, after the origin confirmed it
// with 304 Not Modified.
func (c *Cache) Touch(key string, e *Entry) error {
	e.FetchedAt = c.now()
	return c.Set(key, e)
}

// Namespace returns a view of the cache whose keys are prefixed with prefix.
// Namespaces chain.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
		now:    c.now,
	}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
