package history

import (
	"database/sql"
	"log"
	"time"

	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/sentiment"
)

// AttentionLog is the bounded persisted log of flagged results. It
// satisfies the scoring pipeline's sink interface; only truncated previews
// ever reach it.
type AttentionLog struct {
	db         *sql.DB
	maxEntries int
}

// NewAttentionLog creates the log. maxEntries bounds retention; 0 disables
// the cap.
func NewAttentionLog(database *sql.DB, maxEntries int) *AttentionLog {
	return &AttentionLog{db: database, maxEntries: maxEntries}
}

// Record stores one flagged result. Scoring must not fail because the log
// could not be written, so failures are reported to stderr and dropped.
func (l *AttentionLog) Record(ts time.Time, preview string, r sentiment.Result) {
	row := db.AttentionRow{
		Timestamp:     ts,
		Preview:       preview,
		RawScore:      r.RawScore,
		AdjustedScore: r.AdjustedScore,
		Sarcastic:     r.IsSarcastic,
		Concern:       r.MentalHealthConcern,
		Explanation:   r.Explanation,
	}
	if err := db.InsertAttention(l.db, row, l.maxEntries); err != nil {
		log.Printf("attention log: %v", err)
	}
}

// List returns flagged entries newest-first, up to limit (0 = all).
func (l *AttentionLog) List(limit int) ([]db.AttentionRow, error) {
	return db.ListAttention(l.db, limit)
}

// Clear wipes the log. Irreversible.
func (l *AttentionLog) Clear() error {
	return db.ClearAttention(l.db)
}
