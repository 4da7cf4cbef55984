package llm

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditRecord captures one model attempt for the /v1/audit endpoint. Prompts
// and responses are recorded by length only, never by content.
type AuditRecord struct {
	ID             string    `json:"id"`
	TS             time.Time `json:"ts"`
	Model          string    `json:"model"`
	PromptTag      string    `json:"prompt_tag"`
	PromptLen      int       `json:"prompt_len"`
	ResponseLen    int       `json:"response_len"`
	JSONValid      bool      `json:"json_valid"`
	RepairAttempts int       `json:"repair_attempts"`
	FallbackUsed   bool      `json:"fallback_used"`
	ErrorCode      string    `json:"error_code,omitempty"`
}

// Audit is a capacity-bounded ring of recent model attempts.
type Audit struct {
	mu      sync.Mutex
	cap     int
	records []AuditRecord
}

const defaultAuditCapacity = 300

func NewAudit(capacity int) *Audit {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &Audit{cap: capacity}
}

func (a *Audit) Record(rec AuditRecord) {
	rec.ID = uuid.NewString()
	rec.TS = time.Now().UTC()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	if len(a.records) > a.cap {
		a.records = a.records[len(a.records)-a.cap:]
	}
}

// Snapshot returns up to limit most recent records, optionally restricted to
// the last sinceSeconds. Zero values disable the respective filter.
func (a *Audit) Snapshot(limit, sinceSeconds int) []AuditRecord {
	a.mu.Lock()
	items := make([]AuditRecord, len(a.records))
	copy(items, a.records)
	a.mu.Unlock()

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
