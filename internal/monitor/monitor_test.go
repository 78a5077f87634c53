package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RAVBLACK/sentiguard/internal/alert"
	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/errors"
	"github.com/RAVBLACK/sentiguard/internal/history"
	"github.com/RAVBLACK/sentiguard/internal/sentiment"
	"github.com/RAVBLACK/sentiguard/internal/source"
)

type fakeNotifier struct {
	sent []alert.Report
	fail bool
}

func (f *fakeNotifier) Notify(recipient string, report alert.Report) error {
	if f.fail {
		return errors.NewDeliveryFailed(recipient, nil)
	}
	f.sent = append(f.sent, report)
	return nil
}

var negativeLines = []string{
	"I want to die, nothing matters anymore",
	"I hate everything and everyone around me",
	"I feel worthless and want to give up",
	"no point in trying, I want to disappear",
	"I wish I was gone, everyone hates me",
	"I can't take it anymore, end it all",
}

func testMonitor(t *testing.T, notifier alert.Notifier) (*Monitor, *source.LineLog, *history.Store) {
	t.Helper()
	dir := t.TempDir()

	database, err := db.Init(dir)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	lineLog := source.NewLineLog(source.DefaultPath(dir))
	store := history.NewStore(database, 0)
	agg := alert.NewAggregator(database, sentiment.NewPipeline(nil), -0.5)
	m := NewMonitor(lineLog, sentiment.NewPipeline(nil), store, agg, notifier, "guardian@example.com", 5)
	return m, lineLog, store
}

func TestCheckScoresNewLines(t *testing.T) {
	m, lineLog, store := testMonitor(t, &fakeNotifier{})

	require.NoError(t, lineLog.Append("what a lovely morning"))
	require.NoError(t, lineLog.Append("this afternoon is awful"))

	report, err := m.Check()
	require.NoError(t, err)
	require.True(t, report.SourceOK)
	require.Equal(t, 2, report.NewLines)

	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// Unchanged log: nothing is rescored.
	report, err = m.Check()
	require.NoError(t, err)
	require.Zero(t, report.NewLines)
	n, err = store.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestCheckFiresAndDelivers(t *testing.T) {
	notifier := &fakeNotifier{}
	m, lineLog, _ := testMonitor(t, notifier)

	for _, line := range negativeLines {
		require.NoError(t, lineLog.Append(line))
	}

	report, err := m.Check()
	require.NoError(t, err)
	require.NotNil(t, report.Fired)
	require.Equal(t, 6, report.Fired.BreachCount)
	require.True(t, report.Delivered)
	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0].Subject, "6 negative messages")
}

func TestCheckBelowLimitDoesNotFire(t *testing.T) {
	notifier := &fakeNotifier{}
	m, lineLog, _ := testMonitor(t, notifier)

	for _, line := range negativeLines[:5] {
		require.NoError(t, lineLog.Append(line))
	}

	report, err := m.Check()
	require.NoError(t, err)
	require.Equal(t, 5, report.Observation.BreachCount)
	require.Nil(t, report.Fired)
	require.Empty(t, notifier.sent)
}

func TestCheckRecordsFailedDelivery(t *testing.T) {
	m, lineLog, _ := testMonitor(t, &fakeNotifier{fail: true})

	for _, line := range negativeLines {
		require.NoError(t, lineLog.Append(line))
	}

	report, err := m.Check()
	require.NoError(t, err)
	require.NotNil(t, report.Fired)
	require.False(t, report.Delivered)

	// The pointer advanced regardless: a second cycle stays quiet.
	report, err = m.Check()
	require.NoError(t, err)
	require.Nil(t, report.Fired)
	require.Zero(t, report.Observation.BreachCount)
}

func TestCheckSkipsPreexistingLines(t *testing.T) {
	dir := t.TempDir()
	database, err := db.Init(dir)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	lineLog := source.NewLineLog(source.DefaultPath(dir))
	require.NoError(t, lineLog.Append("written before the monitor started"))

	store := history.NewStore(database, 0)
	agg := alert.NewAggregator(database, sentiment.NewPipeline(nil), -0.5)
	m := NewMonitor(lineLog, sentiment.NewPipeline(nil), store, agg, &fakeNotifier{}, "g@example.com", 5)

	report, err := m.Check()
	require.NoError(t, err)
	require.Zero(t, report.NewLines)

	require.NoError(t, lineLog.Append("a fresh line after startup"))
	report, err = m.Check()
	require.NoError(t, err)
	require.Equal(t, 1, report.NewLines)
}

func TestCheckResumesAfterAppendFailure(t *testing.T) {
	dir := t.TempDir()
	database, err := db.Init(dir)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	lineLog := source.NewLineLog(source.DefaultPath(dir))
	store := history.NewStore(database, 0)
	agg := alert.NewAggregator(database, sentiment.NewPipeline(nil), -0.5)
	m := NewMonitor(lineLog, sentiment.NewPipeline(nil), store, agg, &fakeNotifier{}, "g@example.com", 5)

	require.NoError(t, lineLog.Append("the morning walk was lovely"))
	require.NoError(t, lineLog.Append("lunch was fine"))
	require.NoError(t, lineLog.Append("the afternoon dragged on"))

	// Reject the third insert to simulate a transient persistence failure
	// partway through the batch.
	_, err = database.Exec(`
		CREATE TRIGGER reject_third BEFORE INSERT ON mood_history
		WHEN (SELECT COUNT(*) FROM mood_history) >= 2
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	_, err = m.Check()
	require.Error(t, err)
	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = database.Exec(`DROP TRIGGER reject_third`)
	require.NoError(t, err)

	// The retry resumes at the failed line; the two that landed are not
	// appended again.
	report, err := m.Check()
	require.NoError(t, err)
	require.Equal(t, 1, report.NewLines)
	n, err = store.Count()
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestCheckClampsCursorAfterLogWipe(t *testing.T) {
	m, lineLog, store := testMonitor(t, &fakeNotifier{})

	for _, line := range []string{"one fine day", "another fine day", "a third fine day", "a fourth fine day"} {
		require.NoError(t, lineLog.Append(line))
	}
	_, err := m.Check()
	require.NoError(t, err)

	// Wipe the log underneath the running monitor.
	require.NoError(t, lineLog.Clear())
	report, err := m.Check()
	require.NoError(t, err)
	require.Zero(t, report.NewLines)

	require.NoError(t, lineLog.Append("a fresh start"))
	require.NoError(t, lineLog.Append("feeling hopeful again"))

	report, err = m.Check()
	require.NoError(t, err)
	require.Equal(t, 2, report.NewLines)

	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 6, n)
}
