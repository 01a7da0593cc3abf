package tools

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/nullshift/vocalops/pkg/types"
)

// DefaultCacheTTL bounds how long a result is retained at all, per spec
// §4.9.
const DefaultCacheTTL = 15 * time.Minute

// DefaultCooldown is applied to read-only lookup tools whose policy does
// not specify its own cooldown, per spec §4.8 step 7.
const DefaultCooldown = 45 * time.Second

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// Cache is the per-(tool, canonical-argument-JSON) result cache. A single
// mutex guards short lookup/insert critical sections only, per spec §5's
// "Tool cache: shared map guarded by a single mutex" resource note.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewCache returns a Cache with the given TTL. ttl <= 0 uses
// [DefaultCacheTTL].
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// get returns a cached value if one exists, is within cooldown (the
// per-call replay window, spec §4.8 step 7), and within the cache's TTL.
// A cooldown of zero disables replay entirely — every call executes fresh
// — even though the result is still stored for potential future use within
// TTL.
func (c *Cache) get(key string, cooldown time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	age := time.Since(e.storedAt)
	if age > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	if cooldown <= 0 || age > cooldown {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: time.Now()}
}

// canonicalKey derives a deterministic cache key from a tool name and its
// arguments. encoding/json marshals map keys in sorted order, so building
// a plain map[string]any from the ArgValue union and marshaling it
// produces a byte-stable key regardless of argument insertion order.
func canonicalKey(name string, args map[string]types.ArgValue) string {
	plain := make(map[string]any, len(args))
	for k, v := range args {
		plain[k] = argValueToAny(v)
	}
	data, err := json.Marshal(plain)
	if err != nil {
		// Fall back to a sorted key listing; err is only possible for
		// unsupported types, which ArgValue's tagged union cannot produce.
		names := make([]string, 0, len(args))
		for k := range args {
			names = append(names, k)
		}
		sort.Strings(names)
		data, _ = json.Marshal(names)
	}
	return name + "|" + string(data)
}

func argValueToAny(v types.ArgValue) any {
	switch v.Kind {
	case types.ArgString:
		return v.Str
	case types.ArgInt:
		return v.Int
	case types.ArgFloat:
		return v.Float
	case types.ArgBool:
		return v.Bool
	case types.ArgStringList:
		return v.Strs
	default:
		return nil
	}
}
