package bundlecache

import (
	"sync"

	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// Separator joins a bundle key and a locale tag.
const Separator = "#"

// Key builds the cache key for bundle in locale. An unknown locale is
// represented by the empty string so locale-less lookups still share a key.
func Key(bundle, locale string) string {
	return bundle + Separator + locale
}

// Cache holds parsed bundles for one engine. Entries are never evicted.
// Whether the cache participates in a Get or Set is decided by the engine's
// CacheFlag at call time.
type Cache struct {
	flag    interfaces.CacheFlag
	bundles sync.Map // map[string]interfaces.ContentMapping
}

// New creates a cache gated by flag. A nil flag disables caching.
func New(flag interfaces.CacheFlag) *Cache {
	return &Cache{flag: flag}
}

// Enabled reports the current value of the engine-wide cache flag.
func (c *Cache) Enabled() bool {
	return c != nil && c.flag != nil && c.flag.CacheEnabled()
}

// Get returns the mapping stored under key when caching is enabled.
func (c *Cache) Get(key string) (interfaces.ContentMapping, bool) {
	if !c.Enabled() {
		return nil, false
	}
	value, ok := c.bundles.Load(key)
	if !ok {
		return nil, false
	}
	mapping, ok := value.(interfaces.ContentMapping)
	return mapping, ok
}

// Set stores mapping under key when caching is enabled. The last writer wins.
func (c *Cache) Set(key string, mapping interfaces.ContentMapping) bool {
	if !c.Enabled() {
		return false
	}
	c.bundles.Store(key, mapping)
	return true
}

// Len returns the number of distinct keys stored.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	c.bundles.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
