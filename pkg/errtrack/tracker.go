package errtrack

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

// TimelineCap bounds the recent-history timeline. The lifetime counters are
// not bounded by it.
const TimelineCap = 100

// Record is one tracked error occurrence.
type Record struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"error_type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context"`
}

// Stats is the durable error-statistics structure. TotalErrors and ErrorKinds
// are lifetime counters; Timeline holds only the TimelineCap most recent
// records, oldest evicted first.
type Stats struct {
	TotalErrors int            `json:"total_errors"`
	ErrorKinds  map[string]int `json:"error_types"`
	Timeline    []Record       `json:"error_timeline"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Tracker is a process-wide, mutex-guarded error ledger persisted to a JSON
// file after every mutation. Persistence is best-effort: a failed write is
// logged, never raised.
type Tracker struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
	stats  Stats
}

// NewTracker creates a tracker backed by the JSON file at path. An absent or
// corrupt file reinitializes empty statistics rather than failing.
func NewTracker(path string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		path:   path,
		logger: logger,
		stats:  newStats(),
	}
	t.load()
	return t
}

func newStats() Stats {
	return Stats{
		ErrorKinds:  map[string]int{},
		Timeline:    []Record{},
		LastUpdated: time.Now().UTC(),
	}
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return
	}
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.logger.Warn("error statistics file is corrupt, reinitializing", "path", t.path, "error", err)
		return
	}
	if stats.ErrorKinds == nil {
		stats.ErrorKinds = map[string]int{}
	}
	if stats.Timeline == nil {
		stats.Timeline = []Record{}
	}
	t.stats = stats
}

// Track records an error occurrence with optional context and persists the
// updated statistics.
func (t *Tracker) Track(err error, context map[string]any) {
	if err == nil {
		return
	}
	kind := Kind(err)
	now := time.Now().UTC()
	if context == nil {
		context = map[string]any{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalErrors++
	t.stats.ErrorKinds[kind]++
	t.stats.Timeline = append(t.stats.Timeline, Record{
		Timestamp: now,
		Kind:      kind,
		Message:   err.Error(),
		Context:   context,
	})
	if excess := len(t.stats.Timeline) - TimelineCap; excess > 0 {
		t.stats.Timeline = append([]Record(nil), t.stats.Timeline[excess:]...)
	}
	t.stats.LastUpdated = now

	if perr := t.persist(); perr != nil {
		t.logger.Error("failed to save error statistics", "path", t.path, "error", perr)
	}
}

// persist writes the statistics file atomically. Caller must hold the lock.
func (t *Tracker) persist() error {
	data, err := json.MarshalIndent(t.stats, "", "  ")
	if err != nil {
		return err
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, t.path)
}

// Snapshot returns a copy of the current statistics safe for concurrent use.
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := Stats{
		TotalErrors: t.stats.TotalErrors,
		ErrorKinds:  make(map[string]int, len(t.stats.ErrorKinds)),
		Timeline:    make([]Record, len(t.stats.Timeline)),
		LastUpdated: t.stats.LastUpdated,
	}
	for k, v := range t.stats.ErrorKinds {
		out.ErrorKinds[k] = v
	}
	copy(out.Timeline, t.stats.Timeline)
	return out
}
