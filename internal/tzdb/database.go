package tzdb

import (
	"fmt"
	"sync"
	"time"
)

// Database resolves IANA timezone names. Implementations must be safe for
// concurrent use.
type Database interface {
	Location(name string) (*time.Location, error)
}

// SystemDatabase loads zones through time.LoadLocation and caches them
type SystemDatabase struct {
	mu        sync.RWMutex
	locations map[string]*time.Location
}

// NewSystemDatabase creates a database backed by the host zoneinfo (or the
// embedded copy when time/tzdata is linked in)
func NewSystemDatabase() *SystemDatabase {
	return &SystemDatabase{
		locations: make(map[string]*time.Location),
	}
}

// Location implements Database
func (d *SystemDatabase) Location(name string) (*time.Location, error) {
	if isUTC(name) {
		return time.UTC, nil
	}

	d.mu.RLock()
	loc, ok := d.locations[name]
	d.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}

	d.mu.Lock()
	d.locations[name] = loc
	d.mu.Unlock()

	return loc, nil
}

// FixedDatabase is a read-only table of zones, mostly useful in tests
type FixedDatabase map[string]*time.Location

// Location implements Database
func (d FixedDatabase) Location(name string) (*time.Location, error) {
	if isUTC(name) {
		return time.UTC, nil
	}
	loc, ok := d[name]
	if !ok {
		return nil, fmt.Errorf("timezone %q not in table", name)
	}
	return loc, nil
}

func isUTC(name string) bool {
	return name == "" || name == "UTC"
}
