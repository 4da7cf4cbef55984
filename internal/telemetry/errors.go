package telemetry

import (
	"sync"
	"time"
)

// ErrorRecord is one captured failure for the diagnostics endpoint.
type ErrorRecord struct {
	TS        time.Time `json:"ts"`
	Code      string    `json:"code,omitempty"`
	Stage     string    `json:"stage"`
	SessionID string    `json:"session_id,omitempty"`
	Message   string    `json:"message"`
}

// ErrorTracker keeps the most recent errors in a capacity-bounded ring for
// the /v1/errors endpoint. Totals live in Metrics; this buffer exists for
// human diagnostics.
type ErrorTracker struct {
	mu      sync.Mutex
	cap     int
	records []ErrorRecord
}

const defaultErrorCapacity = 200

func NewErrorTracker(capacity int) *ErrorTracker {
	if capacity <= 0 {
		capacity = defaultErrorCapacity
	}
	return &ErrorTracker{cap: capacity}
}

// Record appends an error, dropping the oldest entries past capacity.
func (t *ErrorTracker) Record(code, stage, sessionID, message string) {
	rec := ErrorRecord{
		TS:        time.Now().UTC(),
		Code:      code,
		Stage:     stage,
		SessionID: sessionID,
		Message:   message,
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, rec)
	if len(t.records) > t.cap {
		t.records = t.records[len(t.records)-t.cap:]
	}
}

// Snapshot returns up to limit most recent records, optionally restricted to
// the last sinceSeconds. Zero values disable the respective filter.
func (t *ErrorTracker) Snapshot(limit, sinceSeconds int) []ErrorRecord {
	t.mu.Lock()
	items := make([]ErrorRecord, len(t.records))
	copy(items, t.records)
	t.mu.Unlock()

	if sinceSeconds > 0 {
		cutoff := time.Now().UTC().Add(-time.Duration(sinceSeconds) * time.Second)
		filtered := items[:0]
		for _, r := range items {
			if !r.TS.Before(cutoff) {
				filtered = append(filtered, r)
			}
		}
		items = filtered
	}
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items
}
