package tracker

import (
	"fmt"
	"sort"
	"time"
)

// DayLayout is the layout of every day key in the store.
const DayLayout = "2006-01-02"

const (
	// MaxTargetSessions is the largest goal a task may carry.
	MaxTargetSessions = 16
	// DefaultSessionLength is one focus interval.
	DefaultSessionLength = 25 * time.Minute
)

// Status of a task
type Status string

const (
	StatusPending   Status = "pending"
	StatusProgress  Status = "progress"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProgress, StatusCompleted:
		return true
	}
	return false
}

// Category is a label/color pair taken from Palette.
type Category struct {
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// SubTask is a checklist item under a Task.
type SubTask struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Checked     bool       `json:"checked" yaml:"checked"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Category    *Category  `json:"category,omitempty" yaml:"category,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

// Task is one entry of a day's plan. Sessions holds the RFC3339 start stamp
// of every focus session, oldest first.
type Task struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Status         Status     `json:"status" yaml:"status"`
	Sessions       []string   `json:"sessions" yaml:"sessions"`
	TargetSessions int        `json:"target_sessions" yaml:"target_sessions"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Category       *Category  `json:"category,omitempty" yaml:"category,omitempty"`
	SubTasks       []SubTask  `json:"sub_tasks" yaml:"sub_tasks"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

// LastSession returns the newest session stamp, or "" when none exist.
func (t Task) LastSession() string {
	if len(t.Sessions) == 0 {
		return ""
	}
	return t.Sessions[len(t.Sessions)-1]
}

func (t Task) clone() Task {
	c := t
	if t.Sessions != nil {
		c.Sessions = append([]string{}, t.Sessions...)
	}
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.Category = cloneCategory(t.Category)
	if t.SubTasks != nil {
		c.SubTasks = make([]SubTask, len(t.SubTasks))
		for i, st := range t.SubTasks {
			c.SubTasks[i] = st.clone()
		}
	}
	return c
}

func (st SubTask) clone() SubTask {
	c := st
	c.CompletedAt = cloneTime(st.CompletedAt)
	c.Category = cloneCategory(st.Category)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneCategory(c *Category) *Category {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// Store maps a day key to that day's ordered tasks.
type Store map[string][]Task

// Clone returns a deep copy of s.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for day, tasks := range s {
		cp := make([]Task, len(tasks))
		for i, t := range tasks {
			cp[i] = t.clone()
		}
		out[day] = cp
	}
	return out
}

// Days returns the day keys in ascending order.
func (s Store) Days() []string {
	days := make([]string, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// Find locates a task by id. An empty day searches every day.
func (s Store) Find(day, id string) (string, int, bool) {
	if day != "" {
		for i, t := range s[day] {
			if t.ID == id {
				return day, i, true
			}
		}
		return "", -1, false
	}
	for _, d := range s.Days() {
		for i, t := range s[d] {
			if t.ID == id {
				return d, i, true
			}
		}
	}
	return "", -1, false
}

// DayKey formats t as a store key in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay validates a day key.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return t, nil
}
