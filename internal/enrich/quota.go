package enrich

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/RAVBLACK/sentiguard/internal/errors"
)

const quotaFileName = "quota.json"

// quotaState is the persisted shape: the local-time date the counter
// belongs to, and how many remote calls were spent on that date.
type quotaState struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Quota is the daily remote-call budget. The counter resets when the local
// date changes; state survives restarts via a small JSON file.
type Quota struct {
	mu    sync.Mutex
	path  string
	limit int
	state quotaState
	now   func() time.Time
}

// NewQuota loads (or initializes) the quota at baseDir with the given
// daily limit. A corrupt or missing state file starts a fresh counter.
func NewQuota(baseDir string, limit int) *Quota {
	q := &Quota{
		path:  filepath.Join(baseDir, quotaFileName),
		limit: limit,
		now:   time.Now,
	}

	data, err := os.ReadFile(q.path)
	if err == nil {
		var s quotaState
		if json.Unmarshal(data, &s) == nil {
			q.state = s
		}
	}
	return q
}

// Take spends one call from today's budget. Returns a quota error when the
// daily limit is already spent; the caller should fall back rather than
// wait.
func (q *Quota) Take() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	today := q.now().Format("2006-01-02")
	if q.state.Date != today {
		q.state = quotaState{Date: today}
	}

	if q.state.Count >= q.limit {
		return errors.NewQuotaExhausted(q.limit)
	}

	q.state.Count++
	return q.persist()
}

// Remaining reports how many calls are left today.
func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	today := q.now().Format("2006-01-02")
	if q.state.Date != today {
		return q.limit
	}
	left := q.limit - q.state.Count
	if left < 0 {
		return 0
	}
	return left
}

// persist writes the state file; callers hold q.mu. A write failure is
// reported but the in-memory count stands, so one process never overspends.
func (q *Quota) persist() error {
	data, err := json.MarshalIndent(q.state, "", "  ")
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := os.WriteFile(q.path, data, 0o600); err != nil {
		return errors.NewPersistence("enrichment quota", err)
	}
	return nil
}
