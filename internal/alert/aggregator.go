// Package alert tracks threshold breaches in the incoming line stream and
// escalates to the guardian when too many accumulate unacknowledged.
package alert

import (
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/sentiment"
)

// Alert statuses. Pending means fired but not yet handed to the notifier.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// MaxSampleLines bounds how many breaching previews an alert record keeps.
const MaxSampleLines = 5

// Observation is one scan over the unacknowledged tail of the line stream.
type Observation struct {
	BreachCount int
	TotalLines  int
	BreachLines []string
}

// Aggregator counts breaches strictly after the acknowledgment pointer.
// Lines before the pointer were already covered by a fired alert and are
// never recounted.
type Aggregator struct {
	mu        sync.Mutex
	db        *sql.DB
	pipeline  *sentiment.Pipeline
	threshold float64
	last      Observation
	haveLast  bool
	now       func() time.Time
	entropy   *rand.Rand
}

// NewAggregator creates an Aggregator. threshold is the adjusted-score
// level below which a line counts as a breach.
func NewAggregator(database *sql.DB, pipeline *sentiment.Pipeline, threshold float64) *Aggregator {
	return &Aggregator{
		db:        database,
		pipeline:  pipeline,
		threshold: threshold,
		now:       time.Now,
		entropy:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Observe scans lines past the acknowledgment pointer and records how many
// breach the threshold. The observation is retained for MaybeFire and for
// callers riding out a source outage.
func (a *Aggregator) Observe(lines []string) (Observation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	acked, err := db.GetLastAckedIndex(a.db)
	if err != nil {
		return Observation{}, err
	}
	if acked > len(lines) {
		// The log was wiped underneath a stale pointer. Treat everything
		// as acknowledged rather than double-counting old lines.
		acked = len(lines)
	}

	obs := Observation{TotalLines: len(lines)}
	for _, line := range lines[acked:] {
		r := a.pipeline.Analyze(line)
		if r.AdjustedScore < a.threshold {
			obs.BreachCount++
			if len(obs.BreachLines) < MaxSampleLines {
				obs.BreachLines = append(obs.BreachLines, sentiment.Preview(line))
			}
		}
	}

	a.last = obs
	a.haveLast = true
	return obs, nil
}

// Last returns the most recent observation, if any. Used when the current
// scan cannot run (source unavailable).
func (a *Aggregator) Last() (Observation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.haveLast
}

// MaybeFire escalates when the last observation's breach count strictly
// exceeds limit. On fire it writes an alert record with a fresh ULID,
// advances the acknowledgment pointer to the observed total so those lines
// are never recounted, and returns the record with status pending. A
// persistence failure does not undo the fire; the error is returned
// alongside the record so the caller can surface the drift.
func (a *Aggregator) MaybeFire(limit int) (*db.AlertRow, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.haveLast || a.last.BreachCount <= limit {
		return nil, nil
	}

	ts := a.now()
	rec := &db.AlertRow{
		ID:          ulid.MustNew(ulid.Timestamp(ts), a.entropy).String(),
		Timestamp:   ts,
		BreachCount: a.last.BreachCount,
		Status:      StatusPending,
		SampleLines: a.last.BreachLines,
	}

	var firstErr error
	if err := db.SetLastAckedIndex(a.db, a.last.TotalLines); err != nil {
		firstErr = err
	}
	if err := db.InsertAlert(a.db, *rec); err != nil && firstErr == nil {
		firstErr = err
	}

	a.last = Observation{TotalLines: a.last.TotalLines}
	return rec, firstErr
}

// RecordOutcome stores the delivery result for a fired alert.
func (a *Aggregator) RecordOutcome(id string, delivered bool) error {
	status := StatusSent
	if !delivered {
		status = StatusFailed
	}
	return db.UpdateAlertStatus(a.db, id, status)
}

// Reset moves the acknowledgment pointer back to zero. Session boundary
// only; the next scan recounts the whole log.
func (a *Aggregator) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.last = Observation{}
	a.haveLast = false
	return db.SetLastAckedIndex(a.db, 0)
}
