package schedule

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cyp0633/blocksched/timing"
)

// CacheEntry represents a cached expansion result
type CacheEntry struct {
	Result     []Occurrence
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// ExpansionCache memoizes expansion results keyed by their inputs
type ExpansionCache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// CacheConfig holds configuration for the expansion cache
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`              // How long entries stay valid
	MaxEntries      int           `yaml:"max_entries"`      // Maximum number of entries before cleanup
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for expansion caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute, // Cache results for 15 minutes
	MaxEntries:      1000,             // Keep up to 1000 cached results
	CleanupInterval: 5 * time.Minute,  // Cleanup every 5 minutes
}

// NewExpansionCache creates a new expansion cache with the given configuration
func NewExpansionCache(config CacheConfig) *ExpansionCache {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}

	cache := &ExpansionCache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	// Start cleanup goroutine
	go cache.cleanupLoop()

	return cache
}

// expansionKey identifies one Expand call
type expansionKey struct {
	schedule   Schedule
	timing     timing.Timing
	candidates []IndexRange
	options    ExpandOptions
	defaultMax int
}

// generateCacheKey hashes every input that influences the result
func (c *ExpansionCache) generateCacheKey(k expansionKey) string {
	hasher := sha256.New()

	fmt.Fprintf(hasher, "w=%s;d=%v;ex=%v;", k.schedule.W, k.schedule.D, k.schedule.Ex)
	fmt.Fprintf(hasher, "start=%s;end=%s;dur=%d;tz=%s;",
		k.timing.StartsAt.UTC().Format(time.RFC3339Nano),
		k.timing.End.UTC().Format(time.RFC3339Nano),
		k.timing.Duration, k.timing.Timezone)

	for _, r := range k.candidates {
		fmt.Fprintf(hasher, "r=%d-%d;", r.From, r.To)
	}

	if now, ok := k.options.Now.Get(); ok {
		fmt.Fprintf(hasher, "now=%s;", now.UTC().Format(time.RFC3339Nano))
	}
	fmt.Fprintf(hasher, "future=%t;", k.options.OnlyBlocksNotYetStarted)
	if limit, ok := k.options.MaxResults.Get(); ok {
		fmt.Fprintf(hasher, "max=%d;", limit)
	} else {
		fmt.Fprintf(hasher, "defaultmax=%d;", k.defaultMax)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a cached result if it exists and hasn't expired
func (c *ExpansionCache) Get(k expansionKey) ([]Occurrence, bool) {
	key := c.generateCacheKey(k)

	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	// Check if entry has expired
	now := time.Now()
	if now.After(entry.ExpiresAt) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return nil, false
	}

	c.mutex.Lock()
	entry.AccessedAt = now
	result := slices.Clone(entry.Result)
	c.mutex.Unlock()

	return result, true
}

// Set stores a copy of result in the cache
func (c *ExpansionCache) Set(k expansionKey, result []Occurrence) {
	key := c.generateCacheKey(k)
	now := time.Now()

	entry := &CacheEntry{
		Result:     slices.Clone(result),
		ExpiresAt:  now.Add(c.ttl),
		AccessedAt: now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	// If we're over the limit, trigger cleanup
	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries and oldest entries if over limit.
// Callers hold the write lock.
func (c *ExpansionCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	// Least recently accessed first
	type keyAccess struct {
		key        string
		accessedAt time.Time
	}

	keyAccessList := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		keyAccessList = append(keyAccessList, keyAccess{key: key, accessedAt: entry.AccessedAt})
	}
	sort.Slice(keyAccessList, func(i, j int) bool {
		return keyAccessList[i].accessedAt.Before(keyAccessList[j].accessedAt)
	})

	entriesToRemove := len(c.entries) - c.maxEntries
	for i := 0; i < entriesToRemove; i++ {
		delete(c.entries, keyAccessList[i].key)
	}
}

// cleanupLoop sweeps the cache every cleanupInterval until Close
func (c *ExpansionCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCleanup:
			return
		case <-ticker.C:
		}

		c.mutex.Lock()
		c.cleanup()
		c.mutex.Unlock()
	}
}

// Close ends the sweep goroutine and drops every entry. Safe to call twice.
func (c *ExpansionCache) Close() {
	c.closeOnce.Do(func() { close(c.stopCleanup) })

	c.mutex.Lock()
	clear(c.entries)
	c.mutex.Unlock()
}

// Stats counts stored entries against the configured capacity. Expired
// entries still count towards Total until a sweep or Get removes them.
func (c *ExpansionCache) Stats() CacheStats {
	now := time.Now()

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := CacheStats{TotalEntries: len(c.entries), Capacity: c.maxEntries}
	for _, entry := range c.entries {
		if entry.ExpiresAt.Before(now) {
			stats.ExpiredEntries++
		}
	}
	stats.ActiveEntries = stats.TotalEntries - stats.ExpiredEntries
	return stats
}

// CacheStats is a snapshot of the expansion cache
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
	Capacity       int
}
