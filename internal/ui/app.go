package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ramanasai/amal/internal/app"
	"github.com/ramanasai/amal/internal/tracker"
	"github.com/ramanasai/amal/internal/utils"
)

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeAddSub
	modeEdit
	modeCategory
	modeConfirmDelete
)

// Model is the day planner: one day's tasks with a live focus timer.
type Model struct {
	ctrl  *app.Controller
	theme Theme
	loc   *time.Location

	day       string
	now       time.Time
	cursor    int
	subCursor int // -1 selects the task row itself
	expanded  map[string]bool

	mode     mode
	input    textinput.Model
	category AutocompleteModel

	status    string
	statusErr bool
	width     int
	height    int
}

// Options configures the TUI.
type Options struct {
	Theme    Theme
	Location *time.Location
	Day      string
}

// New builds a model over ctrl, opened on opts.Day (today when empty).
func New(ctrl *app.Controller, opts Options) Model {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := ctrl.Now().In(loc)
	day := opts.Day
	if day == "" {
		day = tracker.DayKey(now)
	}

	in := textinput.New()
	in.CharLimit = 200
	in.Width = 50

	return Model{
		ctrl:      ctrl,
		theme:     opts.Theme,
		loc:       loc,
		day:       day,
		now:       now,
		subCursor: -1,
		expanded:  map[string]bool{},
		input:     in,
		category:  NewAutocomplete("Category (Tab to cycle, empty clears)", tracker.PaletteLabels(), len(tracker.Palette)),
	}
}

// Run starts the full-screen TUI and blocks until the user quits.
func Run(ctrl *app.Controller, opts Options) error {
	_, err := tea.NewProgram(New(ctrl, opts), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tickNow()
}

// ---------- messages & commands ----------

type tickMsg struct{ now time.Time }

func tickNow() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg{now: t} })
}

func (m Model) tasks() []tracker.Task {
	return m.ctrl.Day(m.day)
}

func (m Model) selected() (tracker.Task, bool) {
	tasks := m.tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return tracker.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) setStatus(msg string) {
	m.status, m.statusErr = msg, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m *Model) clamp() {
	n := len(m.tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	t, ok := m.selected()
	if !ok || !m.expanded[t.ID] || m.subCursor >= len(t.SubTasks) {
		m.subCursor = -1
	}
}

func (m *Model) dispatch(a tracker.Action, okMsg string) bool {
	if _, err := m.ctrl.Dispatch(a); err != nil {
		m.setError(err)
		return false
	}
	if okMsg != "" {
		m.setStatus(okMsg)
	}
	m.clamp()
	return true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = msg.now.In(m.loc)
		for _, s := range m.ctrl.Tick(msg.now) {
			m.setStatus(fmt.Sprintf("Focus session complete: %s 🎉", s.Task.Title))
		}
		return m, tickNow()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case AutocompleteMsg:
		var cmd tea.Cmd
		m.category, cmd = m.category.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeAddSub, modeEdit:
			return m.updateInput(msg)
		case modeCategory:
			return m.updateCategory(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg.String())
		}
		return m.updateNormal(msg.String())
	}
	return m, nil
}

func (m Model) updateNormal(k string) (tea.Model, tea.Cmd) {
	tasks := m.tasks()
	task, hasTask := m.selected()

	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if hasTask && m.expanded[task.ID] && m.subCursor < len(task.SubTasks)-1 {
			m.subCursor++
		} else if m.cursor < len(tasks)-1 {
			m.cursor++
			m.subCursor = -1
		}
	case "k", "up":
		switch {
		case m.subCursor >= 0:
			m.subCursor--
		case m.cursor > 0:
			m.cursor--
			m.subCursor = -1
			if prev, ok := m.selected(); ok && m.expanded[prev.ID] {
				m.subCursor = len(prev.SubTasks) - 1
			}
		}

	case "h", "left":
		m.shiftDay(-1)
	case "l", "right":
		m.shiftDay(1)
	case "T":
		m.day = tracker.DayKey(m.now)
		m.cursor, m.subCursor = 0, -1

	case "tab", "o":
		if hasTask {
			m.expanded[task.ID] = !m.expanded[task.ID]
			m.subCursor = -1
		}

	case "a":
		return m.openInput(modeAdd, "", "New task title")
	case "A":
		if hasTask {
			m.expanded[task.ID] = true
			return m.openInput(modeAddSub, "", "New subtask title")
		}
	case "e":
		if !hasTask {
			break
		}
		if m.subCursor >= 0 {
			return m.openInput(modeEdit, task.SubTasks[m.subCursor].Title, "Subtask title")
		}
		return m.openInput(modeEdit, task.Title, "Task title")
	case "g":
		if hasTask {
			m.mode = modeCategory
			m.category.SetValue("")
			cmd := m.category.Focus()
			return m, cmd
		}

	case "s", "enter":
		if !hasTask || m.subCursor >= 0 {
			break
		}
		m.toggleSession(task)
	case "x", " ":
		if !hasTask {
			break
		}
		if m.subCursor >= 0 {
			st := task.SubTasks[m.subCursor]
			checked := !st.Checked
			m.dispatch(tracker.UpdateSubTask{TaskID: task.ID, Day: m.day, SubID: st.ID,
				Patch: tracker.SubTaskPatch{Checked: &checked}}, "")
			break
		}
		next := tracker.StatusCompleted
		if task.Status == tracker.StatusCompleted {
			next = tracker.StatusPending
		}
		m.dispatch(tracker.UpdateTask{ID: task.ID, Day: m.day, Patch: tracker.TaskPatch{Status: &next}}, "")

	case "+", "=":
		if hasTask {
			n := task.TargetSessions + 1
			m.dispatch(tracker.UpdateTask{ID: task.ID, Day: m.day, Patch: tracker.TaskPatch{TargetSessions: &n}}, "")
		}
	case "-":
		if hasTask {
			n := task.TargetSessions - 1
			m.dispatch(tracker.UpdateTask{ID: task.ID, Day: m.day, Patch: tracker.TaskPatch{TargetSessions: &n}}, "")
		}

	case "J":
		m.move(task, hasTask, 1)
	case "K":
		m.move(task, hasTask, -1)

	case "c":
		if hasTask {
			m.dispatch(tracker.CopyTask{ID: task.ID, From: m.day}, "Copied to today")
		}
	case "d":
		if hasTask {
			m.mode = modeConfirmDelete
		}
	}
	return m, nil
}

func (m *Model) shiftDay(delta int) {
	t, err := tracker.ParseDay(m.day)
	if err != nil {
		return
	}
	m.day = tracker.DayKey(t.AddDate(0, 0, delta))
	m.cursor, m.subCursor = 0, -1
}

func (m *Model) toggleSession(task tracker.Task) {
	length := m.ctrl.SessionLength()
	if tracker.Running(task, m.ctrl.Now(), length) {
		m.dispatch(tracker.UpdateSession{TaskID: task.ID, Day: m.day, Stamp: task.LastSession()}, "Session cancelled")
		return
	}
	m.dispatch(tracker.UpdateSession{TaskID: task.ID, Day: m.day},
		fmt.Sprintf("Focus on %q for %s", task.Title, utils.FormatDuration(length)))
}

func (m *Model) move(task tracker.Task, hasTask bool, delta int) {
	if !hasTask {
		return
	}
	if m.subCursor >= 0 {
		to := m.subCursor + delta
		if to < 0 || to >= len(task.SubTasks) {
			return
		}
		if m.dispatch(tracker.MoveSubTask{TaskID: task.ID, Day: m.day, From: m.subCursor, To: to}, "") {
			m.subCursor = to
		}
		return
	}
	to := m.cursor + delta
	if to < 0 || to >= len(m.tasks()) {
		return
	}
	if m.dispatch(tracker.MoveTask{Day: m.day, From: m.cursor, To: to}, "") {
		m.cursor = to
	}
}

func (m Model) openInput(md mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) closeInput() Model {
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.closeInput(), nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		md := m.mode
		m = m.closeInput()
		if text == "" {
			return m, nil
		}
		task, hasTask := m.selected()
		switch md {
		case modeAdd:
			if m.dispatch(tracker.AddTask{Day: m.day, Title: text}, "Task added") {
				m.cursor = len(m.tasks()) - 1
				m.subCursor = -1
			}
		case modeAddSub:
			if hasTask && m.dispatch(tracker.AddSubTask{TaskID: task.ID, Day: m.day, Title: text}, "Subtask added") {
				m.expanded[task.ID] = true
				m.subCursor = len(task.SubTasks)
			}
		case modeEdit:
			if !hasTask {
				break
			}
			if m.subCursor >= 0 {
				m.dispatch(tracker.UpdateSubTask{TaskID: task.ID, Day: m.day, SubID: task.SubTasks[m.subCursor].ID,
					Patch: tracker.SubTaskPatch{Title: &text}}, "")
			} else {
				m.dispatch(tracker.UpdateTask{ID: task.ID, Day: m.day, Patch: tracker.TaskPatch{Title: &text}}, "")
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateCategory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if !m.category.Showing() {
			m.mode = modeNormal
			m.category.Blur()
			return m, nil
		}
	case tea.KeyEnter:
		if !m.category.Showing() {
			label := strings.TrimSpace(m.category.Value())
			m.mode = modeNormal
			m.category.Blur()
			m.applyCategory(label)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.category, cmd = m.category.Update(msg)
	return m, cmd
}

func (m *Model) applyCategory(label string) {
	task, ok := m.selected()
	if !ok {
		return
	}
	var cat *tracker.Category
	if label != "" {
		c, err := tracker.LookupCategory(label)
		if err != nil {
			m.setError(err)
			return
		}
		cat = &c
	}
	if m.subCursor >= 0 {
		m.dispatch(tracker.UpdateSubTask{TaskID: task.ID, Day: m.day, SubID: task.SubTasks[m.subCursor].ID,
			Patch: tracker.SubTaskPatch{Category: cat, ClearCategory: cat == nil}}, "")
		return
	}
	m.dispatch(tracker.UpdateTask{ID: task.ID, Day: m.day,
		Patch: tracker.TaskPatch{Category: cat, ClearCategory: cat == nil}}, "")
}

func (m Model) updateConfirm(k string) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	if k != "y" && k != "Y" {
		m.setStatus("Delete cancelled")
		return m, nil
	}
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.subCursor >= 0 {
		m.dispatch(tracker.DeleteSubTask{TaskID: task.ID, Day: m.day, SubID: task.SubTasks[m.subCursor].ID}, "Subtask deleted")
		return m, nil
	}
	m.dispatch(tracker.DeleteTask{ID: task.ID, Day: m.day}, "Task deleted")
	return m, nil
}

// ---------- view ----------

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTopBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderTasks())
	b.WriteString("\n")

	switch m.mode {
	case modeAdd, modeAddSub, modeEdit:
		b.WriteString(m.theme.Border.Render(m.input.View()))
		b.WriteString("\n")
	case modeCategory:
		b.WriteString(m.theme.Border.Render(m.category.View()))
		b.WriteString("\n")
	case modeConfirmDelete:
		b.WriteString(m.theme.Error.Render("Delete selected item? (y/N)"))
		b.WriteString("\n")
	}

	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) renderTopBar() string {
	sum := m.ctrl.Summary(m.day)
	streak := m.ctrl.Streak()

	label := m.day
	if m.day == tracker.DayKey(m.now) {
		label += " (today)"
	}
	parts := []string{
		m.theme.Title.Render("Amal"),
		m.theme.Value.Render(label),
		m.theme.Label.Render(fmt.Sprintf("%d/%d done", sum.Completed, sum.Tasks)),
		m.theme.Label.Render(fmt.Sprintf("%d 🍅", sum.Sessions)),
		m.theme.Label.Render(utils.FormatDuration(sum.FocusTime) + " focus"),
		m.theme.Success.Render(fmt.Sprintf("🔥 %d", streak.Current)),
	}
	if day, task, ok := m.ctrl.Active(); ok {
		left := tracker.Remaining(task, m.ctrl.Now(), m.ctrl.SessionLength())
		running := fmt.Sprintf("▶ %s %s", task.Title, utils.FormatClock(left))
		if day != m.day {
			running += " (" + day + ")"
		}
		parts = append(parts, m.theme.Running.Render(running))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTasks() string {
	tasks := m.tasks()
	if len(tasks) == 0 {
		return m.theme.Hint.Render("  No tasks for this day. Press a to add one.") + "\n"
	}
	now := m.ctrl.Now()
	length := m.ctrl.SessionLength()

	var b strings.Builder
	for i, t := range tasks {
		running := tracker.Running(t, now, length)
		cursor := "  "
		if i == m.cursor && m.subCursor < 0 {
			cursor = m.theme.Cursor.Render("› ")
		}

		mark := "○"
		title := t.Title
		switch {
		case running:
			mark = "▶"
			title = m.theme.Running.Render(title)
		case t.Status == tracker.StatusCompleted:
			mark = "✓"
			title = m.theme.Done.Render(title)
		}

		line := cursor + mark + " " + title
		if t.Category != nil {
			line += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(t.Category.Color)).Render("● "+t.Category.Label)
		}
		done := tracker.CompletedSessions(t, now, length)
		if t.TargetSessions > 0 || done > 0 {
			line += " " + m.theme.Label.Render(sessionDots(done, t.TargetSessions))
		}
		if running {
			line += " " + m.theme.Running.Render(utils.FormatClock(tracker.Remaining(t, now, length)))
		}
		if n := len(t.SubTasks); n > 0 && !m.expanded[t.ID] {
			checked := 0
			for _, st := range t.SubTasks {
				if st.Checked {
					checked++
				}
			}
			line += " " + m.theme.Hint.Render(fmt.Sprintf("[%d/%d]", checked, n))
		}
		b.WriteString(line)
		b.WriteString("\n")

		if m.expanded[t.ID] {
			for j, st := range t.SubTasks {
				cur := "    "
				if i == m.cursor && j == m.subCursor {
					cur = "  " + m.theme.Cursor.Render("› ")
				}
				box, title := "[ ]", st.Title
				if st.Checked {
					box, title = "[x]", m.theme.Done.Render(st.Title)
				}
				sub := cur + "  " + box + " " + title
				if st.Category != nil {
					sub += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(st.Category.Color)).Render("● "+st.Category.Label)
				}
				b.WriteString(sub)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// sessionDots draws finished sessions against the target, e.g. ●●○○.
func sessionDots(done, target int) string {
	if target <= 0 {
		return fmt.Sprintf("%d 🍅", done)
	}
	filled := min(done, target)
	s := strings.Repeat("●", filled) + strings.Repeat("○", target-filled)
	if done > target {
		s += fmt.Sprintf(" +%d", done-target)
	}
	return s
}

func (m Model) statusBar() string {
	hints := "a add · A sub · e edit · s start/stop · x done · g category · +/- target · J/K move · c copy · d delete · ←/→ day · q quit"
	if m.status == "" {
		return m.theme.Hint.Render(hints)
	}
	style := m.theme.Success
	if m.statusErr {
		style = m.theme.Error
	}
	return style.Render(m.status) + "\n" + m.theme.Hint.Render(hints)
}
