// Package monitor runs the periodic check cycle: ingest new lines, score
// them into the mood history, feed the breach aggregator, and escalate to
// the guardian when it fires.
package monitor

import (
	"context"
	"log"
	"time"

	"github.com/RAVBLACK/sentiguard/internal/alert"
	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/history"
	"github.com/RAVBLACK/sentiguard/internal/sentiment"
	"github.com/RAVBLACK/sentiguard/internal/source"
)

// CheckReport is the outcome of one check cycle.
type CheckReport struct {
	SourceOK    bool
	NewLines    int
	Observation alert.Observation
	Fired       *db.AlertRow
	Delivered   bool
}

// Monitor owns the check cycle. It is a single logical consumer; only the
// line log's own append lock guards against the producers.
type Monitor struct {
	log       *source.LineLog
	pipeline  *sentiment.Pipeline
	store     *history.Store
	agg       *alert.Aggregator
	notifier  alert.Notifier
	recipient string
	limit     int
	scored    int
	now       func() time.Time
}

// NewMonitor wires a Monitor. pipeline should carry the attention sink;
// the aggregator must run its own sink-less pipeline so re-scanning the
// unacknowledged tail does not duplicate attention entries. Lines already
// in the log are treated as scored, so a restart never double-counts
// history.
func NewMonitor(
	lineLog *source.LineLog,
	pipeline *sentiment.Pipeline,
	store *history.Store,
	agg *alert.Aggregator,
	notifier alert.Notifier,
	recipient string,
	limit int,
) *Monitor {
	return &Monitor{
		log:       lineLog,
		pipeline:  pipeline,
		store:     store,
		agg:       agg,
		notifier:  notifier,
		recipient: recipient,
		limit:     limit,
		scored:    lineLog.Count(),
		now:       time.Now,
	}
}

// Check runs one cycle. A source outage is not an error: the cycle reports
// the last-known observation and tries again next tick.
func (m *Monitor) Check() (CheckReport, error) {
	if err := m.log.Check(); err != nil {
		report := CheckReport{}
		if obs, ok := m.agg.Last(); ok {
			report.Observation = obs
		}
		return report, nil
	}

	lines := m.log.Lines()
	report := CheckReport{SourceOK: true}

	// Log wiped under the cursor.
	if m.scored > len(lines) {
		m.scored = len(lines)
	}

	results := m.pipeline.AnalyzeIncremental(lines, m.scored)
	report.NewLines = len(results)
	ts := m.now()
	previous := m.scored
	for i, r := range results {
		if err := m.store.Append(ts, r.AdjustedScore); err != nil {
			return report, err
		}
		// Advance per appended line so a retry after a persistence
		// failure resumes instead of re-scoring what already landed.
		m.scored = previous + i + 1
	}

	obs, err := m.agg.Observe(lines)
	if err != nil {
		return report, err
	}
	report.Observation = obs

	rec, fireErr := m.agg.MaybeFire(m.limit)
	if rec == nil {
		return report, fireErr
	}
	report.Fired = rec

	report.Delivered = m.deliver(rec)
	if err := m.agg.RecordOutcome(rec.ID, report.Delivered); err != nil && fireErr == nil {
		fireErr = err
	}
	return report, fireErr
}

// deliver builds the guardian report and sends it. Summary and trend
// failures degrade to a minimal report rather than blocking the alert.
func (m *Monitor) deliver(rec *db.AlertRow) bool {
	if m.notifier == nil || m.recipient == "" {
		return false
	}

	summary, err := m.store.Summarize()
	if err != nil {
		summary = history.Summary{}
	}
	trend, err := m.store.Aggregate(history.PeriodDaily)
	if err != nil {
		trend = nil
	}

	report := alert.BuildReport(*rec, summary, trend)
	if err := m.notifier.Notify(m.recipient, report); err != nil {
		log.Printf("alert %s: delivery failed: %v", rec.ID, err)
		return false
	}
	return true
}

// Watch runs Check every interval until ctx is cancelled. Errors are
// logged and the loop keeps going; a broken cycle must not stop the watch.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := m.Check()
			if err != nil {
				log.Printf("check cycle: %v", err)
				continue
			}
			if report.Fired != nil {
				log.Printf("alert %s fired: %d negative messages (delivered=%v)",
					report.Fired.ID, report.Fired.BreachCount, report.Delivered)
			}
		}
	}
}
