package db

import (
	"testing"
	"time"

	"github.com/RAVBLACK/sentiguard/internal/errors"
)

func TestInsertAndListMood(t *testing.T) {
	database := setupTestDB(t)

	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	scores := []float64{0.3, -0.6, 0.1}
	for i, s := range scores {
		if err := InsertMood(database, base.Add(time.Duration(i)*time.Minute), s, 0); err != nil {
			t.Fatalf("InsertMood failed: %v", err)
		}
	}

	entries, err := ListMood(database)
	if err != nil {
		t.Fatalf("ListMood failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Score != scores[i] {
			t.Errorf("entry %d score = %v, want %v", i, e.Score, scores[i])
		}
		want := base.Add(time.Duration(i) * time.Minute)
		if !e.Timestamp.Equal(want) {
			t.Errorf("entry %d ts = %v, want %v", i, e.Timestamp, want)
		}
	}
}

func TestInsertMoodEvictsOldest(t *testing.T) {
	database := setupTestDB(t)

	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := InsertMood(database, base.Add(time.Duration(i)*time.Minute), float64(i)/10, 3); err != nil {
			t.Fatalf("InsertMood failed: %v", err)
		}
	}

	entries, err := ListMood(database)
	if err != nil {
		t.Fatalf("ListMood failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 after eviction", len(entries))
	}
	if entries[0].Score != 0.2 {
		t.Errorf("oldest surviving score = %v, want 0.2", entries[0].Score)
	}
	if entries[2].Score != 0.4 {
		t.Errorf("newest score = %v, want 0.4", entries[2].Score)
	}
}

func TestCountAndClearMood(t *testing.T) {
	database := setupTestDB(t)

	n, err := CountMood(database)
	if err != nil {
		t.Fatalf("CountMood failed: %v", err)
	}
	if n != 0 {
		t.Errorf("count on empty db = %d, want 0", n)
	}

	if err := InsertMood(database, time.Now(), 0.5, 0); err != nil {
		t.Fatalf("InsertMood failed: %v", err)
	}
	n, err = CountMood(database)
	if err != nil {
		t.Fatalf("CountMood failed: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	if err := ClearMood(database); err != nil {
		t.Fatalf("ClearMood failed: %v", err)
	}
	n, _ = CountMood(database)
	if n != 0 {
		t.Errorf("count after clear = %d, want 0", n)
	}
}

func TestLastAckedIndexDefaultsToZero(t *testing.T) {
	database := setupTestDB(t)

	idx, err := GetLastAckedIndex(database)
	if err != nil {
		t.Fatalf("GetLastAckedIndex failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("default index = %d, want 0", idx)
	}
}

func TestSetLastAckedIndexUpserts(t *testing.T) {
	database := setupTestDB(t)

	if err := SetLastAckedIndex(database, 7); err != nil {
		t.Fatalf("SetLastAckedIndex failed: %v", err)
	}
	if err := SetLastAckedIndex(database, 12); err != nil {
		t.Fatalf("second SetLastAckedIndex failed: %v", err)
	}

	idx, err := GetLastAckedIndex(database)
	if err != nil {
		t.Fatalf("GetLastAckedIndex failed: %v", err)
	}
	if idx != 12 {
		t.Errorf("index = %d, want 12", idx)
	}
}

func TestInsertAndListAlerts(t *testing.T) {
	database := setupTestDB(t)

	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	first := AlertRow{
		ID:          "alert-1",
		Timestamp:   base,
		BreachCount: 6,
		Status:      "sent",
		SampleLines: []string{"first sample", "second sample"},
	}
	second := AlertRow{
		ID:          "alert-2",
		Timestamp:   base.Add(time.Hour),
		BreachCount: 8,
		Status:      "pending",
	}
	if err := InsertAlert(database, first); err != nil {
		t.Fatalf("InsertAlert failed: %v", err)
	}
	if err := InsertAlert(database, second); err != nil {
		t.Fatalf("InsertAlert failed: %v", err)
	}

	alerts, err := ListAlerts(database, 0)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	if alerts[0].ID != "alert-2" {
		t.Errorf("newest-first ordering broken: first id = %q", alerts[0].ID)
	}
	if alerts[1].BreachCount != 6 {
		t.Errorf("breach_count = %d, want 6", alerts[1].BreachCount)
	}
	if len(alerts[1].SampleLines) != 2 || alerts[1].SampleLines[0] != "first sample" {
		t.Errorf("sample lines = %v, want round-tripped pair", alerts[1].SampleLines)
	}
	if alerts[0].SampleLines != nil {
		t.Errorf("sample lines = %v, want nil when none stored", alerts[0].SampleLines)
	}

	limited, err := ListAlerts(database, 1)
	if err != nil {
		t.Fatalf("ListAlerts with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "alert-2" {
		t.Errorf("limited list = %+v, want just alert-2", limited)
	}
}

func TestUpdateAlertStatus(t *testing.T) {
	database := setupTestDB(t)

	row := AlertRow{ID: "alert-1", Timestamp: time.Now(), BreachCount: 6, Status: "pending"}
	if err := InsertAlert(database, row); err != nil {
		t.Fatalf("InsertAlert failed: %v", err)
	}

	if err := UpdateAlertStatus(database, "alert-1", "sent"); err != nil {
		t.Fatalf("UpdateAlertStatus failed: %v", err)
	}
	alerts, err := ListAlerts(database, 0)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if alerts[0].Status != "sent" {
		t.Errorf("status = %q, want sent", alerts[0].Status)
	}

	err = UpdateAlertStatus(database, "no-such-alert", "sent")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestInsertAndListAttention(t *testing.T) {
	database := setupTestDB(t)

	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	rows := []AttentionRow{
		{Timestamp: base, Preview: "first entry", RawScore: 0.4, AdjustedScore: -0.5, Sarcastic: true, Explanation: "sarcasm"},
		{Timestamp: base.Add(time.Minute), Preview: "second entry", RawScore: -0.8, AdjustedScore: -0.8, Concern: true, Explanation: "concern"},
	}
	for _, r := range rows {
		if err := InsertAttention(database, r, 0); err != nil {
			t.Fatalf("InsertAttention failed: %v", err)
		}
	}

	got, err := ListAttention(database, 0)
	if err != nil {
		t.Fatalf("ListAttention failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Preview != "second entry" {
		t.Errorf("newest-first ordering broken: first preview = %q", got[0].Preview)
	}
	if !got[0].Concern || got[0].Sarcastic {
		t.Errorf("flags = sarcastic=%v concern=%v, want concern only", got[0].Sarcastic, got[0].Concern)
	}
	if !got[1].Sarcastic || got[1].Concern {
		t.Errorf("flags = sarcastic=%v concern=%v, want sarcastic only", got[1].Sarcastic, got[1].Concern)
	}
}

func TestInsertAttentionEvictsOldest(t *testing.T) {
	database := setupTestDB(t)

	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	previews := []string{"one", "two", "three", "four"}
	for i, p := range previews {
		row := AttentionRow{Timestamp: base.Add(time.Duration(i) * time.Minute), Preview: p}
		if err := InsertAttention(database, row, 2); err != nil {
			t.Fatalf("InsertAttention failed: %v", err)
		}
	}

	got, err := ListAttention(database, 0)
	if err != nil {
		t.Fatalf("ListAttention failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 after eviction", len(got))
	}
	if got[0].Preview != "four" || got[1].Preview != "three" {
		t.Errorf("surviving previews = %q, %q, want four, three", got[0].Preview, got[1].Preview)
	}
}

func TestClearAlertsAndAttention(t *testing.T) {
	database := setupTestDB(t)

	if err := InsertAlert(database, AlertRow{ID: "a", Timestamp: time.Now(), Status: "pending"}); err != nil {
		t.Fatalf("InsertAlert failed: %v", err)
	}
	if err := InsertAttention(database, AttentionRow{Timestamp: time.Now(), Preview: "p"}, 0); err != nil {
		t.Fatalf("InsertAttention failed: %v", err)
	}

	if err := ClearAlerts(database); err != nil {
		t.Fatalf("ClearAlerts failed: %v", err)
	}
	if err := ClearAttention(database); err != nil {
		t.Fatalf("ClearAttention failed: %v", err)
	}

	alerts, _ := ListAlerts(database, 0)
	attention, _ := ListAttention(database, 0)
	if len(alerts) != 0 || len(attention) != 0 {
		t.Errorf("after clear: %d alerts, %d attention entries, want 0 and 0", len(alerts), len(attention))
	}
}
