// Package history persists and summarizes the mood score time series.
package history

import (
	"database/sql"
	"time"

	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/errors"
)

// Period selects the bucket granularity for Aggregate.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Windows per period. Daily covers a month of days, weekly and monthly a
// quarter-year and a year respectively.
const (
	DailyWindow   = 30
	WeeklyWindow  = 12
	MonthlyWindow = 12
)

// Bucket is one aggregation bucket. Mean is 0 when Count is 0.
type Bucket struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Summary are the whole-history counts shown by the summary command.
type Summary struct {
	Total    int     `json:"total"`
	Average  float64 `json:"average"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Neutral  int     `json:"neutral"`
}

// Store is the mood history backed by the shared database.
type Store struct {
	db         *sql.DB
	maxEntries int
	now        func() time.Time
}

// NewStore creates a Store. maxEntries bounds the series FIFO; 0 disables
// the cap.
func NewStore(database *sql.DB, maxEntries int) *Store {
	return &Store{db: database, maxEntries: maxEntries, now: time.Now}
}

// Append records one score at ts, evicting the oldest entries beyond the cap.
func (s *Store) Append(ts time.Time, score float64) error {
	return db.InsertMood(s.db, ts, score, s.maxEntries)
}

// All returns the full series, oldest first.
func (s *Store) All() ([]db.MoodEntry, error) {
	return db.ListMood(s.db)
}

// Latest returns the most recent entry, or a not-found error on an empty
// history.
func (s *Store) Latest() (db.MoodEntry, error) {
	entries, err := db.ListMood(s.db)
	if err != nil {
		return db.MoodEntry{}, err
	}
	if len(entries) == 0 {
		return db.MoodEntry{}, errors.NewNotFound("mood entry")
	}
	return entries[len(entries)-1], nil
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	return db.CountMood(s.db)
}

// Clear wipes the series. Irreversible.
func (s *Store) Clear() error {
	return db.ClearMood(s.db)
}

// Summarize computes the whole-history summary. Scores above 0.1 count as
// positive, below -0.1 as negative, the rest neutral.
func (s *Store) Summarize() (Summary, error) {
	entries, err := db.ListMood(s.db)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Total: len(entries)}
	if sum.Total == 0 {
		return sum, nil
	}

	total := 0.0
	for _, e := range entries {
		total += e.Score
		switch {
		case e.Score > 0.1:
			sum.Positive++
		case e.Score < -0.1:
			sum.Negative++
		default:
			sum.Neutral++
		}
	}
	sum.Average = total / float64(sum.Total)
	return sum, nil
}

// Aggregate buckets the series by calendar period, oldest bucket first. The
// window always spans up to the current period, so a fresh install still
// renders a full axis of empty buckets.
func (s *Store) Aggregate(period Period) ([]Bucket, error) {
	entries, err := db.ListMood(s.db)
	if err != nil {
		return nil, err
	}

	switch period {
	case PeriodDaily:
		return bucketize(entries, s.now(), DailyWindow, dayKey, dayLabel, addDays), nil
	case PeriodWeekly:
		return bucketize(entries, s.now(), WeeklyWindow, weekKey, weekLabel, addWeeks), nil
	case PeriodMonthly:
		return bucketize(entries, s.now(), MonthlyWindow, monthKey, monthLabel, addMonths), nil
	default:
		return nil, errors.NewInvalidRequest("period must be daily, weekly, or monthly")
	}
}

// bucketize walks window periods ending at now, oldest first, averaging the
// entries whose key falls in each period.
func bucketize(
	entries []db.MoodEntry,
	now time.Time,
	window int,
	key func(time.Time) string,
	label func(time.Time) string,
	step func(time.Time, int) time.Time,
) []Bucket {
	sums := make(map[string]float64, len(entries))
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		k := key(e.Timestamp)
		sums[k] += e.Score
		counts[k]++
	}

	buckets := make([]Bucket, 0, window)
	for i := window - 1; i >= 0; i-- {
		at := step(now, -i)
		k := key(at)
		b := Bucket{Label: label(at)}
		if n := counts[k]; n > 0 {
			b.Count = n
			b.Mean = sums[k] / float64(n)
		}
		buckets = append(buckets, b)
	}
	return buckets
}

func dayKey(t time.Time) string   { return t.Format("2006-01-02") }
func dayLabel(t time.Time) string { return t.Format("01/02") }

// weekKey identifies the ISO week, so Monday starts each bucket.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return weekStart(year, week).Format("2006-01-02")
}

func weekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return "Week " + weekStart(year, week).Format("01/02")
}

// weekStart returns the Monday opening ISO week (year, week).
func weekStart(year, week int) time.Time {
	// Jan 4 is always inside ISO week 1.
	ref := time.Date(year, time.January, 4, 0, 0, 0, 0, time.Local)
	offset := int(ref.Weekday())
	if offset == 0 {
		offset = 7
	}
	monday := ref.AddDate(0, 0, 1-offset)
	return monday.AddDate(0, 0, (week-1)*7)
}

func monthKey(t time.Time) string   { return t.Format("2006-01") }
func monthLabel(t time.Time) string { return t.Format("Jan 2006") }

func addDays(t time.Time, n int) time.Time  { return t.AddDate(0, 0, n) }
func addWeeks(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }

// addMonths steps whole calendar months from the first of the month.
// Stepping from the 29th or later would otherwise normalize into the
// wrong month for short months.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, n, 0)
}
