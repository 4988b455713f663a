package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramanasai/amal/internal/persist"
	"github.com/ramanasai/amal/internal/tracker"
)

const day = "2025-03-03"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type alerts struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (a *alerts) SessionComplete(title string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.titles = append(a.titles, title)
	return a.err
}

func (a *alerts) Reminder(int) error { return nil }

type sink struct {
	mu    sync.Mutex
	saves []tracker.Store
}

func (s *sink) save(_ context.Context, v tracker.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, v)
	return nil
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func (s *sink) last() tracker.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[len(s.saves)-1]
}

type fixture struct {
	c      *Controller
	clock  *clock
	alerts *alerts
	sink   *sink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:  &clock{now: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)},
		alerts: &alerts{},
		sink:   &sink{},
	}
	n := 0
	f.c = New(tracker.Store{},
		WithSaver(persist.New(time.Hour, f.sink.save)),
		WithNotifier(f.alerts),
		WithClock(f.clock.Now),
		WithIDs(func() string { n++; return fmt.Sprintf("t%d", n) }),
	)
	return f
}

func (f *fixture) add(t *testing.T, title string) {
	t.Helper()
	_, err := f.c.Dispatch(tracker.AddTask{Day: day, Title: title})
	require.NoError(t, err)
}

func TestDispatch_AppliesAndSchedulesWrite(t *testing.T) {
	f := newFixture(t)
	f.add(t, "read")

	assert.Len(t, f.c.Day(day), 1)
	assert.Equal(t, 0, f.sink.count())

	require.NoError(t, f.c.Close(context.Background()))
	require.Equal(t, 1, f.sink.count())
	assert.Equal(t, "read", f.sink.last()[day][0].Title)
}

func TestDispatch_ErrorLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.add(t, "read")
	before := f.c.State()

	state, err := f.c.Dispatch(tracker.UpdateTask{ID: "t1", Day: day, Patch: tracker.TaskPatch{TargetSessions: intPtr(17)}})
	assert.ErrorIs(t, err, tracker.ErrTargetOutOfRange)
	assert.Equal(t, before, state)
	assert.Equal(t, before, f.c.State())
}

func TestDispatch_SingleActiveSession(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	f.add(t, "b")

	_, err := f.c.Dispatch(tracker.UpdateSession{TaskID: "t1", Day: day})
	require.NoError(t, err)
	_, err = f.c.Dispatch(tracker.UpdateSession{TaskID: "t2", Day: day})
	assert.ErrorIs(t, err, tracker.ErrTaskActive)

	_, active, ok := f.c.Active()
	require.True(t, ok)
	assert.Equal(t, "t1", active.ID)
}

func TestTick_SettlesAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.add(t, "write")
	_, err := f.c.Dispatch(tracker.UpdateSession{TaskID: "t1", Day: day})
	require.NoError(t, err)

	f.clock.Advance(24 * time.Minute)
	assert.Empty(t, f.c.Tick(f.clock.Now()))

	f.clock.Advance(time.Minute)
	settled := f.c.Tick(f.clock.Now())
	require.Len(t, settled, 1)
	assert.Equal(t, []string{"write"}, f.alerts.titles)
	assert.Equal(t, tracker.StatusPending, f.c.Day(day)[0].Status)

	assert.Empty(t, f.c.Tick(f.clock.Now()))
	assert.Len(t, f.alerts.titles, 1)
}

func TestTick_NotificationErrorIgnored(t *testing.T) {
	f := newFixture(t)
	f.alerts.err = errors.New("no daemon")
	f.add(t, "write")
	_, err := f.c.Dispatch(tracker.UpdateSession{TaskID: "t1", Day: day})
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	assert.Len(t, f.c.Tick(f.clock.Now()), 1)
	assert.Equal(t, tracker.StatusPending, f.c.Day(day)[0].Status)
}

func TestDispatch_SettlesBeforeApplying(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	f.add(t, "b")
	_, err := f.c.Dispatch(tracker.UpdateSession{TaskID: "t1", Day: day})
	require.NoError(t, err)

	f.clock.Advance(26 * time.Minute)
	_, err = f.c.Dispatch(tracker.UpdateSession{TaskID: "t2", Day: day})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, f.alerts.titles)
}

func TestImport_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.add(t, "keep")
	before := f.c.State()

	err := f.c.Import([]byte(`{"2025-03-03": [{"id": "x", "title": "no stamp"}]}`))
	assert.ErrorIs(t, err, tracker.ErrInvalidImport)
	assert.Equal(t, before, f.c.State())

	err = f.c.Import([]byte(`{"2025-03-04": [{"id": "x", "title": "new", "created_at": "2025-03-04T08:00:00Z"}]}`))
	require.NoError(t, err)
	assert.Len(t, f.c.Day("2025-03-04"), 1)
}

func TestImport_RejectsSecondRunningSession(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	_, err := f.c.Dispatch(tracker.UpdateSession{TaskID: "t1", Day: day})
	require.NoError(t, err)

	payload := `{"2025-03-03": [{"id": "other", "title": "b", "status": "progress",
		"sessions": ["2025-03-03T09:00:00Z"], "created_at": "2025-03-03T08:00:00Z"}]}`
	err = f.c.Import([]byte(payload))
	assert.ErrorIs(t, err, tracker.ErrInvalidImport)
	assert.Len(t, f.c.Day(day), 1)
}

func TestExportImport_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	f.add(t, "b")
	before, err := f.c.Export()
	require.NoError(t, err)

	require.NoError(t, f.c.Import(before))
	after, err := f.c.Export()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestSummaryAndStreak(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	_, err := f.c.Dispatch(tracker.UpdateSession{TaskID: "t1", Day: day})
	require.NoError(t, err)
	f.clock.Advance(25 * time.Minute)
	_, err = f.c.Dispatch(tracker.UpdateTask{ID: "t1", Day: day, Patch: tracker.TaskPatch{Status: statusPtr(tracker.StatusCompleted)}})
	require.NoError(t, err)

	sum := f.c.Summary(day)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 1, sum.Sessions)
	assert.Equal(t, 25*time.Minute, sum.FocusTime)
	assert.Equal(t, tracker.Streak{Current: 1, Longest: 1}, f.c.Streak())
	assert.Len(t, f.c.History(), 1)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.c.Run(ctx), context.Canceled)
}

func TestClose_StopsPersisting(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.Close(context.Background()))
	f.add(t, "late")
	require.NoError(t, f.c.Close(context.Background()))
	assert.Equal(t, 0, f.sink.count())
}

func TestDiscard_DropsScheduledWrite(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.Import([]byte(`{"2025-03-04": [{"id": "x", "title": "new", "created_at": "2025-03-04T08:00:00Z"}]}`)))
	f.c.Discard()

	assert.Len(t, f.c.Day("2025-03-04"), 1)
	require.NoError(t, f.c.Close(context.Background()))
	assert.Equal(t, 0, f.sink.count())
}

func intPtr(n int) *int                         { return &n }
func statusPtr(s tracker.Status) *tracker.Status { return &s }
