package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/blocksched/timing"
)

func testKey(w string) expansionKey {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return expansionKey{
		schedule: Schedule{W: w},
		timing: timing.Timing{
			StartsAt: start,
			Duration: 60,
			Timezone: "UTC",
			End:      start.AddDate(0, 0, 6).Add(time.Hour),
		},
		candidates: []IndexRange{{From: 0, To: 6}},
	}
}

func TestExpansionCache_BasicOperations(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: 1 * time.Minute,
	})
	defer cache.Close()

	key := testKey("89")

	// Cache miss first
	result, found := cache.Get(key)
	assert.False(t, found)
	assert.Nil(t, result)

	stored := []Occurrence{{StartsAt: key.timing.StartsAt, Duration: 60, Index: 0}}
	cache.Set(key, stored)

	result, found = cache.Get(key)
	require.True(t, found)
	assert.Equal(t, stored, result)

	// callers cannot mutate cached results
	result[0].Index = 42
	again, found := cache.Get(key)
	require.True(t, found)
	assert.Equal(t, 0, again[0].Index)
}

func TestExpansionCache_TTLExpiration(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             100 * time.Millisecond, // Very short TTL for testing
		MaxEntries:      100,
		CleanupInterval: 50 * time.Millisecond,
	})
	defer cache.Close()

	key := testKey("89")
	cache.Set(key, []Occurrence{})

	_, found := cache.Get(key)
	assert.True(t, found, "expected cache hit immediately after set")

	time.Sleep(150 * time.Millisecond)

	_, found = cache.Get(key)
	assert.False(t, found, "expected cache miss after TTL expiration")
}

func TestExpansionCache_DifferentKeys(t *testing.T) {
	cache := NewExpansionCache(DefaultCacheConfig)
	defer cache.Close()

	weekdays := testKey("8")
	weekend := testKey("9")
	capped := testKey("8")
	capped.options = ExpandOptions{MaxResults: mo.Some(1)}
	future := testKey("8")
	future.options = ExpandOptions{Now: mo.Some(weekdays.timing.StartsAt), OnlyBlocksNotYetStarted: true}

	cache.Set(weekdays, []Occurrence{{Index: 1}})
	cache.Set(weekend, []Occurrence{{Index: 0}})

	r1, found1 := cache.Get(weekdays)
	r2, found2 := cache.Get(weekend)
	require.True(t, found1)
	require.True(t, found2)
	assert.Equal(t, 1, r1[0].Index)
	assert.Equal(t, 0, r2[0].Index)

	_, found := cache.Get(capped)
	assert.False(t, found, "result cap is part of the key")
	_, found = cache.Get(future)
	assert.False(t, found, "now is part of the key")
}

func TestExpansionCache_MaxEntriesEviction(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      3, // Small limit for testing
		CleanupInterval: 1 * time.Minute,
	})
	defer cache.Close()

	for _, w := range []string{"1", "2", "3"} {
		cache.Set(testKey(w), []Occurrence{})
		time.Sleep(2 * time.Millisecond)
	}
	assert.Equal(t, 3, cache.Stats().TotalEntries)

	cache.Set(testKey("4"), []Occurrence{})
	assert.Equal(t, 3, cache.Stats().TotalEntries)

	_, found := cache.Get(testKey("4"))
	assert.True(t, found, "newest entry stays")
	_, found = cache.Get(testKey("1"))
	assert.False(t, found, "least recently used entry is evicted")
}

func TestExpansionCache_ConcurrentAccess(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: 1 * time.Minute,
	})
	defer cache.Close()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			key := testKey(string(rune('1' + g%7)))
			for i := 0; i < 100; i++ {
				cache.Set(key, []Occurrence{{Index: i}})
				cache.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 7, cache.Stats().TotalEntries)
}

func TestExpansionCache_CloseTwice(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{TTL: time.Minute, MaxEntries: 10})
	cache.Set(testKey("8"), []Occurrence{})
	cache.Close()
	cache.Close()

	assert.Equal(t, 0, cache.Stats().TotalEntries)
}

func TestEngine_CachedExpansion(t *testing.T) {
	e := NewEngineWithConfig(DefaultEngineConfig)
	defer e.Close()

	tm := sundayTiming(t, e, 14)
	candidates := []IndexRange{{From: 0, To: 13}}

	first, err := e.Expand(Schedule{W: "23"}, tm, candidates, ExpandOptions{})
	require.NoError(t, err)

	stats, ok := e.CacheStats()
	require.True(t, ok)
	assert.Equal(t, 1, stats.ActiveEntries)

	first[0].Index = 99
	second, err := e.Expand(Schedule{W: "23"}, tm, candidates, ExpandOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 8, 9}, indicesOf(second))

	stats, _ = e.CacheStats()
	assert.Equal(t, 1, stats.TotalEntries)

	_, ok = NewEngine().CacheStats()
	assert.False(t, ok)
}

func TestExpansionCache_StatsCountsExpired(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             50 * time.Millisecond,
		MaxEntries:      10,
		CleanupInterval: time.Hour, // keep the sweep out of the way
	})
	defer cache.Close()

	cache.Set(testKey("8"), []Occurrence{})
	time.Sleep(80 * time.Millisecond)
	cache.Set(testKey("9"), []Occurrence{})

	stats := cache.Stats()
	assert.Equal(t, CacheStats{TotalEntries: 2, ExpiredEntries: 1, ActiveEntries: 1, Capacity: 10}, stats)
}
