package sink

import (
	"sync"
	"time"
)

// rollingWindow bounds the cardinality of a Prometheus label set by
// keeping only the most recently observed values: every Observe resets
// that label's last-seen timestamp, and Snapshot drops (and stops
// reporting) any label whose last-seen is older than window. This is
// the same idle-eviction shape used for churn telemetry, generalised
// to arbitrary string labels instead of request-rate keys.
type rollingWindow struct {
	mu      sync.Mutex
	entries map[string]*rollingEntry
	window  time.Duration
	now     func() time.Time
}

type rollingEntry struct {
	lastSeen time.Time
	count    int64
}

func newRollingWindow(window time.Duration) *rollingWindow {
	return &rollingWindow{
		entries: make(map[string]*rollingEntry),
		window:  window,
		now:     time.Now,
	}
}

// Observe increments label's count and refreshes its last-seen time.
func (r *rollingWindow) Observe(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[label]
	if !ok {
		e = &rollingEntry{}
		r.entries[label] = e
	}
	e.count++
	e.lastSeen = r.now()
}

// Snapshot returns counts for every label last seen within window,
// pruning (and no longer reporting) anything older.
func (r *rollingWindow) Snapshot() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	out := make(map[string]int64, len(r.entries))
	for label, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, label)
			continue
		}
		out[label] = e.count
	}
	return out
}
