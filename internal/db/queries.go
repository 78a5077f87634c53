package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/RAVBLACK/sentiguard/internal/errors"
)

// MoodEntry is one row of the mood history time series.
type MoodEntry struct {
	Seq       int64
	Timestamp time.Time
	Score     float64
}

// AlertRow is one row of the alert log.
type AlertRow struct {
	ID          string
	Timestamp   time.Time
	BreachCount int
	Status      string
	SampleLines []string
}

// AttentionRow is one row of the needs-attention log.
type AttentionRow struct {
	Seq           int64
	Timestamp     time.Time
	Preview       string
	RawScore      float64
	AdjustedScore float64
	Sarcastic     bool
	Concern       bool
	Explanation   string
}

// InsertMood appends one score to the mood history and evicts the oldest
// rows beyond maxEntries. Eviction and insert run in one transaction so a
// reader never observes the cap exceeded.
func InsertMood(db *sql.DB, ts time.Time, score float64, maxEntries int) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO mood_history (ts, score) VALUES (?, ?)`,
		ts.Format(time.RFC3339Nano), score,
	); err != nil {
		return errors.NewInternal(err)
	}

	if maxEntries > 0 {
		if _, err := tx.Exec(
			`DELETE FROM mood_history WHERE seq NOT IN (
				SELECT seq FROM mood_history ORDER BY seq DESC LIMIT ?
			)`, maxEntries,
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListMood returns all mood history entries in insertion order (oldest first).
func ListMood(db *sql.DB) ([]MoodEntry, error) {
	rows, err := db.Query(`SELECT seq, ts, score FROM mood_history ORDER BY seq ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []MoodEntry
	for rows.Next() {
		var e MoodEntry
		var ts string
		if err := rows.Scan(&e.Seq, &ts, &e.Score); err != nil {
			return nil, errors.NewInternal(err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			// Unparseable rows are skipped rather than failing the read,
			// matching the scan path's degrade-don't-crash rule.
			continue
		}
		e.Timestamp = parsed
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// CountMood returns the number of mood history entries.
func CountMood(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM mood_history`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// ClearMood wipes the mood history. Irreversible.
func ClearMood(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM mood_history`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetLastAckedIndex returns the acknowledgment pointer, 0 if never set.
func GetLastAckedIndex(db *sql.DB) (int, error) {
	var idx int
	err := db.QueryRow(`SELECT last_acked_index FROM alert_state WHERE id = 1`).Scan(&idx)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return idx, nil
}

// SetLastAckedIndex persists the acknowledgment pointer.
func SetLastAckedIndex(db *sql.DB, idx int) error {
	_, err := db.Exec(`
		INSERT INTO alert_state (id, last_acked_index) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_acked_index = excluded.last_acked_index
	`, idx)
	if err != nil {
		return errors.NewPersistence("alert_state", err)
	}
	return nil
}

// InsertAlert appends one record to the alert log.
func InsertAlert(db *sql.DB, row AlertRow) error {
	var samplesJSON sql.NullString
	if len(row.SampleLines) > 0 {
		data, err := json.Marshal(row.SampleLines)
		if err != nil {
			return errors.NewInternal(err)
		}
		samplesJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := db.Exec(
		`INSERT INTO alerts (id, ts, breach_count, status, sample_lines) VALUES (?, ?, ?, ?, ?)`,
		row.ID, row.Timestamp.Format(time.RFC3339Nano), row.BreachCount, row.Status, samplesJSON,
	)
	if err != nil {
		return errors.NewPersistence("alert_record", err)
	}
	return nil
}

// ListAlerts returns alert records newest-first, up to limit (0 = all).
func ListAlerts(db *sql.DB, limit int) ([]AlertRow, error) {
	query := `SELECT id, ts, breach_count, status, sample_lines FROM alerts ORDER BY ts DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var result []AlertRow
	for rows.Next() {
		var r AlertRow
		var ts string
		var samplesJSON sql.NullString
		if err := rows.Scan(&r.ID, &ts, &r.BreachCount, &r.Status, &samplesJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			continue
		}
		r.Timestamp = parsed
		if samplesJSON.Valid {
			if err := json.Unmarshal([]byte(samplesJSON.String), &r.SampleLines); err != nil {
				r.SampleLines = nil
			}
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return result, nil
}

// UpdateAlertStatus records the delivery outcome for an alert.
func UpdateAlertStatus(db *sql.DB, id, status string) error {
	res, err := db.Exec(`UPDATE alerts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return errors.NewPersistence("alert_record", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFound("alert " + id)
	}
	return nil
}

// ClearAlerts wipes the alert log. Irreversible.
func ClearAlerts(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM alerts`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertAttention appends one needs-attention entry and evicts the oldest
// rows beyond maxEntries (privacy bound on retained previews).
func InsertAttention(db *sql.DB, row AttentionRow, maxEntries int) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO attention_log (ts, preview, raw_score, adjusted_score, sarcastic, concern, explanation)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.Timestamp.Format(time.RFC3339Nano), row.Preview, row.RawScore, row.AdjustedScore,
		boolToInt(row.Sarcastic), boolToInt(row.Concern), row.Explanation,
	); err != nil {
		return errors.NewInternal(err)
	}

	if maxEntries > 0 {
		if _, err := tx.Exec(
			`DELETE FROM attention_log WHERE seq NOT IN (
				SELECT seq FROM attention_log ORDER BY seq DESC LIMIT ?
			)`, maxEntries,
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListAttention returns needs-attention entries newest-first, up to limit (0 = all).
func ListAttention(db *sql.DB, limit int) ([]AttentionRow, error) {
	query := `SELECT seq, ts, preview, raw_score, adjusted_score, sarcastic, concern, explanation
		FROM attention_log ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var result []AttentionRow
	for rows.Next() {
		var r AttentionRow
		var ts string
		var sarcastic, concern int
		if err := rows.Scan(&r.Seq, &ts, &r.Preview, &r.RawScore, &r.AdjustedScore, &sarcastic, &concern, &r.Explanation); err != nil {
			return nil, errors.NewInternal(err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			continue
		}
		r.Timestamp = parsed
		r.Sarcastic = sarcastic != 0
		r.Concern = concern != 0
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return result, nil
}

// ClearAttention wipes the needs-attention log. Irreversible.
func ClearAttention(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM attention_log`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
