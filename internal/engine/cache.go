package engine

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"cargodash/internal/common"

	"github.com/golang/groupcache/lru"
)

// DefaultMaxViews bounds the filtered views memoized per dataset.
const DefaultMaxViews = 256

type cacheKey struct {
	path  string
	sheet string
}

type cacheEntry struct {
	ds      *Dataset
	modTime time.Time
	size    int64
	views   *lru.Cache // selection key -> View
}

// Cache holds loaded datasets keyed by (path, sheet) and memoizes filtered
// views per selection, keeping the most recently used DefaultMaxViews per
// dataset. An entry is reloaded when the file's modification time or size
// changes. Safe for concurrent use.
type Cache struct {
	entries  map[cacheKey]*cacheEntry
	load     func(path, sheet string) (*Dataset, error)
	maxViews int
	mu       sync.Mutex
}

// NewCache creates an empty cache that loads with Load.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[cacheKey]*cacheEntry),
		load:     Load,
		maxViews: DefaultMaxViews,
	}
}

// Load returns the dataset for path and sheet, reading the file on a miss
// or when it changed on disk. Failed loads are not cached.
func (c *Cache) Load(path, sheet string) (*Dataset, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.entryLocked(cacheKey{path, sheet})
	if err != nil {
		return nil, err
	}
	return entry.ds, nil
}

// Filter returns the view of the cached dataset selected by sel.
func (c *Cache) Filter(path, sheet string, sel Selection) (View, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := sel.Validate(); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.entryLocked(cacheKey{path, sheet})
	if err != nil {
		return View{}, err
	}

	key := sel.Key()
	if v, ok := entry.views.Get(key); ok {
		slog.Debug("view cache hit", "path", path, "selection", key)
		return v.(View), nil
	}

	v, err := entry.ds.View().Filter(sel)
	if err != nil {
		return View{}, err
	}
	entry.views.Add(key, v)
	return v, nil
}

func (c *Cache) entryLocked(key cacheKey) (*cacheEntry, error) {
	info, err := os.Stat(key.path)
	if err != nil {
		delete(c.entries, key)
		return nil, &common.LoadError{Path: key.path, Sheet: key.sheet, Err: err}
	}

	if entry, ok := c.entries[key]; ok {
		if entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			slog.Debug("dataset cache hit", "path", key.path)
			return entry, nil
		}
		slog.Info("dataset changed on disk, reloading", "path", key.path)
		delete(c.entries, key)
	}

	ds, err := c.load(key.path, key.sheet)
	if err != nil {
		return nil, err
	}
	entry := &cacheEntry{
		ds:      ds,
		modTime: info.ModTime(),
		size:    info.Size(),
		views:   lru.New(c.maxViews),
	}
	c.entries[key] = entry
	return entry, nil
}

// Invalidate drops every cached dataset and view for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.path == path {
			delete(c.entries, key)
		}
	}
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*cacheEntry)
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Source binds a cache to the one spreadsheet a dashboard serves.
type Source struct {
	cache *Cache
	path  string
	sheet string
}

func NewSource(cache *Cache, path, sheet string) *Source {
	return &Source{cache: cache, path: path, sheet: sheet}
}

func (s *Source) Dataset() (*Dataset, error) {
	return s.cache.Load(s.path, s.sheet)
}

func (s *Source) Filter(sel Selection) (View, error) {
	return s.cache.Filter(s.path, s.sheet, sel)
}

// Reload forgets the cached copy and reads the file again.
func (s *Source) Reload() (*Dataset, error) {
	s.cache.Invalidate(s.path)
	return s.cache.Load(s.path, s.sheet)
}
