package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Env carries everything a reducer needs from the outside world so that
// Reduce stays deterministic.
type Env struct {
	Now           time.Time
	NewID         func() string
	SessionLength time.Duration
}

func (e Env) length() time.Duration {
	if e.SessionLength <= 0 {
		return DefaultSessionLength
	}
	return e.SessionLength
}

func (e Env) id() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return NewID()
}

func (e Env) today() string {
	return DayKey(e.Now)
}

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Action is a state transition understood by Reduce.
type Action interface {
	apply(s Store, env Env) error
}

// Reduce applies a to a copy of s. The input store is never modified; on
// error s itself is returned.
func Reduce(s Store, a Action, env Env) (Store, error) {
	if a == nil {
		return s, nil
	}
	next := s.Clone()
	if err := a.apply(next, env); err != nil {
		return s, err
	}
	return next, nil
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title          *string   `json:"title,omitempty"`
	Status         *Status   `json:"status,omitempty"`
	TargetSessions *int      `json:"target_sessions,omitempty"`
	Category       *Category `json:"category,omitempty"`
	ClearCategory  bool      `json:"clear_category,omitempty"`
}

func (p TaskPatch) validate() error {
	if p.TargetSessions != nil {
		if err := checkTarget(*p.TargetSessions); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	return validCategory(p.Category)
}

// SubTaskPatch is a partial subtask update.
type SubTaskPatch struct {
	Title         *string   `json:"title,omitempty"`
	Checked       *bool     `json:"checked,omitempty"`
	Category      *Category `json:"category,omitempty"`
	ClearCategory bool      `json:"clear_category,omitempty"`
}

func checkTarget(n int) error {
	if n < 0 || n > MaxTargetSessions {
		return fmt.Errorf("%w (got %d)", ErrTargetOutOfRange, n)
	}
	return nil
}

// AddTask appends a new pending task to Day. ID is generated when empty.
type AddTask struct {
	Day      string
	ID       string
	Title    string
	Category *Category
	Target   int
}

func (a AddTask) apply(s Store, env Env) error {
	if _, err := ParseDay(a.Day); err != nil {
		return err
	}
	if err := checkTarget(a.Target); err != nil {
		return err
	}
	if err := validCategory(a.Category); err != nil {
		return err
	}
	id := a.ID
	if id == "" {
		id = env.id()
	}
	if _, _, ok := s.Find(a.Day, id); ok {
		return fmt.Errorf("task %s already exists on %s", id, a.Day)
	}
	s[a.Day] = append(s[a.Day], Task{
		ID:             id,
		Title:          strings.TrimSpace(a.Title),
		Status:         StatusPending,
		Sessions:       []string{},
		TargetSessions: a.Target,
		Category:       cloneCategory(a.Category),
		SubTasks:       []SubTask{},
		CreatedAt:      env.Now,
	})
	return nil
}

// UpdateTask merges Patch into the task with ID on Day. Unknown ids are a no-op.
type UpdateTask struct {
	ID    string
	Day   string
	Patch TaskPatch
}

func (a UpdateTask) apply(s Store, env Env) error {
	if err := a.Patch.validate(); err != nil {
		return err
	}
	day, i, ok := s.Find(a.Day, a.ID)
	if !ok {
		return nil
	}
	t := &s[day][i]
	p := a.Patch
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.TargetSessions != nil {
		t.TargetSessions = *p.TargetSessions
	}
	if p.ClearCategory {
		t.Category = nil
	}
	if p.Category != nil {
		t.Category = cloneCategory(p.Category)
	}
	if p.Status != nil {
		switch {
		case *p.Status != StatusProgress:
			setStatus(t, *p.Status, env.Now)
		case !Running(*t, env.Now, env.length()):
			// progress only exists with a running session
			return startSession(s, env, t, SessionStamp(env.Now))
		}
	}
	return nil
}

func setStatus(t *Task, st Status, now time.Time) {
	switch {
	case st == StatusCompleted && t.Status != StatusCompleted:
		at := now
		t.CompletedAt = &at
	case st != StatusCompleted:
		t.CompletedAt = nil
	}
	t.Status = st
}

// DeleteTask removes a task by id. Absence is a no-op.
type DeleteTask struct {
	ID  string
	Day string
}

func (a DeleteTask) apply(s Store, _ Env) error {
	day, i, ok := s.Find(a.Day, a.ID)
	if !ok {
		return nil
	}
	s[day] = append(s[day][:i], s[day][i+1:]...)
	return nil
}

// CopyTask duplicates a task into To (today when empty) as a fresh pending
// task. The source is left untouched.
type CopyTask struct {
	ID   string
	From string
	To   string
	// NewID overrides the generated id of the copy.
	NewID string
}

func (a CopyTask) apply(s Store, env Env) error {
	to := a.To
	if to == "" {
		to = env.today()
	}
	if _, err := ParseDay(to); err != nil {
		return err
	}
	day, i, ok := s.Find(a.From, a.ID)
	if !ok {
		return nil
	}
	c := s[day][i].clone()
	c.ID = a.NewID
	if c.ID == "" {
		c.ID = env.id()
	}
	c.Sessions = []string{}
	c.CompletedAt = nil
	c.Status = StatusPending
	c.CreatedAt = env.Now
	s[to] = append(s[to], c)
	return nil
}

// AddSubTask appends a subtask to a task. Unknown tasks are a no-op.
type AddSubTask struct {
	TaskID   string
	Day      string
	ID       string
	Title    string
	Category *Category
}

func (a AddSubTask) apply(s Store, env Env) error {
	if err := validCategory(a.Category); err != nil {
		return err
	}
	day, i, ok := s.Find(a.Day, a.TaskID)
	if !ok {
		return nil
	}
	id := a.ID
	if id == "" {
		id = env.id()
	}
	t := &s[day][i]
	t.SubTasks = append(t.SubTasks, SubTask{
		ID:        id,
		Title:     strings.TrimSpace(a.Title),
		Category:  cloneCategory(a.Category),
		CreatedAt: env.Now,
	})
	return nil
}

// UpdateSubTask merges Patch into one subtask.
type UpdateSubTask struct {
	TaskID string
	Day    string
	SubID  string
	Patch  SubTaskPatch
}

func (a UpdateSubTask) apply(s Store, env Env) error {
	if err := validCategory(a.Patch.Category); err != nil {
		return err
	}
	day, i, ok := s.Find(a.Day, a.TaskID)
	if !ok {
		return nil
	}
	subs := s[day][i].SubTasks
	for j := range subs {
		if subs[j].ID != a.SubID {
			continue
		}
		st := &subs[j]
		p := a.Patch
		if p.Title != nil {
			st.Title = strings.TrimSpace(*p.Title)
		}
		if p.ClearCategory {
			st.Category = nil
		}
		if p.Category != nil {
			st.Category = cloneCategory(p.Category)
		}
		if p.Checked != nil {
			switch {
			case *p.Checked && !st.Checked:
				at := env.Now
				st.CompletedAt = &at
			case !*p.Checked:
				st.CompletedAt = nil
			}
			st.Checked = *p.Checked
		}
		return nil
	}
	return nil
}

// DeleteSubTask removes one subtask. Absence is a no-op.
type DeleteSubTask struct {
	TaskID string
	Day    string
	SubID  string
}

func (a DeleteSubTask) apply(s Store, _ Env) error {
	day, i, ok := s.Find(a.Day, a.TaskID)
	if !ok {
		return nil
	}
	t := &s[day][i]
	for j := range t.SubTasks {
		if t.SubTasks[j].ID == a.SubID {
			t.SubTasks = append(t.SubTasks[:j], t.SubTasks[j+1:]...)
			return nil
		}
	}
	return nil
}

// UpdateTasksColumn replaces the ordering of a day, as produced by a drag
// reorder.
type UpdateTasksColumn struct {
	Day   string
	Tasks []Task
}

func (a UpdateTasksColumn) apply(s Store, env Env) error {
	if _, err := ParseDay(a.Day); err != nil {
		return err
	}
	seen := make(map[string]bool, len(a.Tasks))
	next := make([]Task, len(a.Tasks))
	for i, t := range a.Tasks {
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %s on %s", t.ID, a.Day)
		}
		seen[t.ID] = true
		if err := checkTarget(t.TargetSessions); err != nil {
			return err
		}
		next[i] = t.clone()
	}
	s[a.Day] = next
	if runningCount(s, env) > 1 {
		return ErrTaskActive
	}
	return nil
}

// UpdateSubTasksColumn replaces the subtask ordering of one task.
type UpdateSubTasksColumn struct {
	TaskID   string
	Day      string
	SubTasks []SubTask
}

func (a UpdateSubTasksColumn) apply(s Store, _ Env) error {
	day, i, ok := s.Find(a.Day, a.TaskID)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(a.SubTasks))
	next := make([]SubTask, len(a.SubTasks))
	for j, st := range a.SubTasks {
		if seen[st.ID] {
			return fmt.Errorf("duplicate subtask id %s", st.ID)
		}
		seen[st.ID] = true
		next[j] = st.clone()
	}
	s[day][i].SubTasks = next
	return nil
}

// MoveTask relocates a task within its day.
type MoveTask struct {
	Day      string
	From, To int
}

func (a MoveTask) apply(s Store, _ Env) error {
	if tasks, ok := s[a.Day]; ok {
		s[a.Day] = MoveItem(tasks, a.From, a.To)
	}
	return nil
}

// MoveSubTask relocates a subtask within its task.
type MoveSubTask struct {
	TaskID   string
	Day      string
	From, To int
}

func (a MoveSubTask) apply(s Store, _ Env) error {
	day, i, ok := s.Find(a.Day, a.TaskID)
	if !ok {
		return nil
	}
	s[day][i].SubTasks = MoveItem(s[day][i].SubTasks, a.From, a.To)
	return nil
}
