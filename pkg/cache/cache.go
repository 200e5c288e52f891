// Package cache provides the in-process store of prior research reports,
// keyed by query and depth.
package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/soundprediction/inquiro/pkg/types"
)

// keySeparator joins query and depth in a cache key. The unit separator
// cannot appear in a meaningful query, so "ab" at depth 12 can never collide
// with "ab1" at depth 2.
const keySeparator = "\x1f"

// Key derives the deterministic cache key for a query and depth.
func Key(query string, depth int) string {
	return query + keySeparator + strconv.Itoa(depth)
}

type entry struct {
	report   *types.ResearchReport
	storedAt time.Time
}

// Store is a process-lifetime key/value store of research reports. There is
// no eviction and no TTL enforcement at lookup; the configured expiry is
// carried so callers that want it can check StoredAt against Expiry.
// Concurrent reads are safe; same-key writes are last-write-wins.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	expiry  time.Duration
}

// New creates a store carrying the configured expiry.
func New(expiry time.Duration) *Store {
	return &Store{
		entries: map[string]entry{},
		expiry:  expiry,
	}
}

// Get returns the cached report for key, if any. Hits are shared snapshots;
// callers must not mutate them.
func (s *Store) Get(key string) (*types.ResearchReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.report, true
}

// StoredAt returns when the entry for key was written.
func (s *Store) StoredAt(key string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.storedAt, ok
}

// Put stores a report under key, replacing any previous entry.
func (s *Store) Put(key string, report *types.ResearchReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{report: report, storedAt: time.Now()}
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Expiry returns the configured entry lifetime. Zero means no expiry was
// configured.
func (s *Store) Expiry() time.Duration { return s.expiry }
