package ui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramanasai/amal/internal/app"
	"github.com/ramanasai/amal/internal/tracker"
)

const today = "2025-03-03"

type harness struct {
	t     *testing.T
	now   time.Time
	ctrl  *app.Controller
	model Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, now: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)}
	n := 0
	h.ctrl = app.New(tracker.Store{},
		app.WithClock(func() time.Time { return h.now }),
		app.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	h.model = New(h.ctrl, Options{Theme: MonoTheme, Location: time.UTC})
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, _ := h.model.Update(msg)
	h.model = next.(Model)
}

func (h *harness) keys(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		switch k {
		case "enter":
			h.send(tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			h.send(tea.KeyMsg{Type: tea.KeyEsc})
		default:
			h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

func (h *harness) addTask(title string) {
	h.t.Helper()
	h.keys("a", title, "enter")
}

func (h *harness) tasks() []tracker.Task {
	return h.ctrl.Day(today)
}

func TestNew_OpensToday(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, today, h.model.day)
	assert.Contains(t, h.model.View(), "No tasks for this day")
}

func TestAddTask(t *testing.T) {
	h := newHarness(t)
	h.addTask("write report")
	h.addTask("call home")

	require.Len(t, h.tasks(), 2)
	assert.Equal(t, "call home", h.tasks()[1].Title)
	assert.Equal(t, 1, h.model.cursor)
	assert.Equal(t, modeNormal, h.model.mode)
	assert.Contains(t, h.model.View(), "write report")
}

func TestAddTask_EscCancels(t *testing.T) {
	h := newHarness(t)
	h.keys("a", "draft", "esc")
	assert.Empty(t, h.tasks())
	assert.Equal(t, modeNormal, h.model.mode)
}

func TestSessionToggle(t *testing.T) {
	h := newHarness(t)
	h.addTask("write report")

	h.keys("s")
	require.Equal(t, tracker.StatusProgress, h.tasks()[0].Status)
	assert.Contains(t, h.model.View(), "25:00")

	h.now = h.now.Add(5 * time.Minute)
	h.keys("s")
	assert.Equal(t, tracker.StatusPending, h.tasks()[0].Status)
	assert.Empty(t, h.tasks()[0].Sessions)
}

func TestSecondSessionIsRejected(t *testing.T) {
	h := newHarness(t)
	h.addTask("first")
	h.addTask("second")

	h.keys("k", "s", "j", "s")
	assert.True(t, h.model.statusErr)
	assert.Equal(t, tracker.StatusProgress, h.tasks()[0].Status)
	assert.Equal(t, tracker.StatusPending, h.tasks()[1].Status)
}

func TestTickSettlesFinishedSession(t *testing.T) {
	h := newHarness(t)
	h.addTask("write report")
	h.keys("s")

	h.now = h.now.Add(25 * time.Minute)
	h.send(tickMsg{now: h.now})

	assert.Equal(t, tracker.StatusPending, h.tasks()[0].Status)
	assert.Contains(t, h.model.status, "Focus session complete: write report")
}

func TestToggleDoneAndTarget(t *testing.T) {
	h := newHarness(t)
	h.addTask("write report")

	h.keys("x")
	assert.Equal(t, tracker.StatusCompleted, h.tasks()[0].Status)
	h.keys("x")
	assert.Equal(t, tracker.StatusPending, h.tasks()[0].Status)

	h.keys("+", "+", "-")
	assert.Equal(t, 1, h.tasks()[0].TargetSessions)

	h.keys("-", "-")
	assert.Equal(t, 0, h.tasks()[0].TargetSessions)
	assert.True(t, h.model.statusErr)
}

func TestMoveAndDelete(t *testing.T) {
	h := newHarness(t)
	h.addTask("a")
	h.addTask("b")
	h.addTask("c")

	h.keys("K")
	assert.Equal(t, []string{"a", "c", "b"}, titlesOf(h.tasks()))
	assert.Equal(t, 1, h.model.cursor)

	h.keys("d", "n")
	assert.Len(t, h.tasks(), 3)

	h.keys("d", "y")
	assert.Equal(t, []string{"a", "b"}, titlesOf(h.tasks()))
	assert.Equal(t, 1, h.model.cursor)
}

func TestSubTasks(t *testing.T) {
	h := newHarness(t)
	h.addTask("write report")
	h.keys("A", "outline", "enter")
	h.keys("A", "draft", "enter")

	subs := h.tasks()[0].SubTasks
	require.Len(t, subs, 2)
	assert.True(t, h.model.expanded[h.tasks()[0].ID])

	h.keys("k")
	require.Equal(t, 0, h.model.subCursor)
	h.keys("x")
	assert.True(t, h.tasks()[0].SubTasks[0].Checked)

	h.keys("J")
	assert.Equal(t, "draft", h.tasks()[0].SubTasks[0].Title)
	assert.Equal(t, 1, h.model.subCursor)

	h.keys("d", "y")
	require.Len(t, h.tasks()[0].SubTasks, 1)
	assert.Equal(t, "draft", h.tasks()[0].SubTasks[0].Title)
}

func TestEditTitle(t *testing.T) {
	h := newHarness(t)
	h.addTask("draft")
	h.keys("e", " v2", "enter")
	assert.Equal(t, "draft v2", h.tasks()[0].Title)
}

func TestCategory(t *testing.T) {
	h := newHarness(t)
	h.addTask("write report")

	h.keys("g", "Work", "enter")
	require.NotNil(t, h.tasks()[0].Category)
	assert.Equal(t, "Work", h.tasks()[0].Category.Label)

	h.keys("g", "enter")
	assert.Nil(t, h.tasks()[0].Category)

	h.keys("g", "Chores", "enter")
	assert.True(t, h.model.statusErr)
}

func TestDayNavigationAndCopy(t *testing.T) {
	h := newHarness(t)
	h.keys("h")
	assert.Equal(t, "2025-03-02", h.model.day)

	h.addTask("leftover")
	h.keys("c")
	require.Len(t, h.tasks(), 1)
	assert.Equal(t, "leftover", h.tasks()[0].Title)

	h.keys("l", "l")
	assert.Equal(t, "2025-03-04", h.model.day)
	h.keys("T")
	assert.Equal(t, today, h.model.day)
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSessionDots(t *testing.T) {
	assert.Equal(t, "●●○○", sessionDots(2, 4))
	assert.Equal(t, "●● +1", sessionDots(3, 2))
	assert.Equal(t, "3 🍅", sessionDots(3, 0))
}

func titlesOf(tasks []tracker.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
