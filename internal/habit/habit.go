// Package habit tracks daily check-ins that live beside the task plan.
package habit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ramanasai/amal/internal/tracker"
)

var (
	ErrNotFound  = errors.New("habit not found")
	ErrEmptyName = errors.New("habit name is empty")
)

// Habit is one recurring daily practice. Done holds the day keys it was
// checked on, sorted.
type Habit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Done      []string  `json:"done"`
}

// Book is the persisted list of habits. Methods never modify the receiver.
type Book []Habit

func (b Book) clone() Book {
	out := make(Book, len(b))
	for i, h := range b {
		h.Done = append([]string{}, h.Done...)
		out[i] = h
	}
	return out
}

func (b Book) index(id string) int {
	for i, h := range b {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the habit with id.
func (b Book) Find(id string) (Habit, bool) {
	if i := b.index(id); i >= 0 {
		return b[i], true
	}
	return Habit{}, false
}

// Add appends a habit. An empty id gets a generated one.
func (b Book) Add(id, name, color string, now time.Time) (Book, Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, Habit{}, ErrEmptyName
	}
	if id == "" {
		id = tracker.NewID()
	}
	if b.index(id) >= 0 {
		return b, Habit{}, fmt.Errorf("habit %s already exists", id)
	}
	h := Habit{ID: id, Name: name, Color: color, CreatedAt: now, Done: []string{}}
	return append(b.clone(), h), h, nil
}

func (b Book) Rename(id, name string) (Book, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, ErrEmptyName
	}
	i := b.index(id)
	if i < 0 {
		return b, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := b.clone()
	out[i].Name = name
	return out, nil
}

// Toggle checks the habit on day, or unchecks it when already checked.
func (b Book) Toggle(id, day string) (Book, bool, error) {
	if _, err := tracker.ParseDay(day); err != nil {
		return b, false, err
	}
	i := b.index(id)
	if i < 0 {
		return b, false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := b.clone()
	h := &out[i]
	for j, d := range h.Done {
		if d == day {
			h.Done = append(h.Done[:j], h.Done[j+1:]...)
			return out, false, nil
		}
	}
	h.Done = append(h.Done, day)
	sort.Strings(h.Done)
	return out, true, nil
}

func (b Book) Delete(id string) (Book, error) {
	i := b.index(id)
	if i < 0 {
		return b, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := b.clone()
	return append(out[:i], out[i+1:]...), nil
}

// Checked reports whether h was done on day.
func (h Habit) Checked(day string) bool {
	for _, d := range h.Done {
		if d == day {
			return true
		}
	}
	return false
}

// Streak walks every day from the first check-in to today. Every day counts
// for a habit; today only breaks the run once it is over, so an unchecked
// today is skipped.
func (h Habit) Streak(today time.Time) tracker.Streak {
	if len(h.Done) == 0 {
		return tracker.Streak{}
	}
	first, err := tracker.ParseDay(h.Done[0])
	if err != nil {
		return tracker.Streak{}
	}
	done := make(map[string]bool, len(h.Done))
	for _, d := range h.Done {
		done[d] = true
	}
	todayKey := tracker.DayKey(today)
	return tracker.WalkStreak(first, today, func(day time.Time) tracker.DayState {
		key := tracker.DayKey(day)
		switch {
		case done[key]:
			return tracker.DayActive
		case key == todayKey:
			return tracker.DayNeutral
		default:
			return tracker.DayMissed
		}
	})
}
