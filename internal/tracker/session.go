package tracker

import (
	"fmt"
	"time"
)

// SessionStamp formats a session start the way it is stored.
func SessionStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseStamp reads a stored session start.
func ParseStamp(stamp string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStamp, stamp)
	}
	return t, nil
}

// Running reports whether t has a focus session that has not yet reached
// length at now. A progress task without a readable stamp is stale, not
// running.
func Running(t Task, now time.Time, length time.Duration) bool {
	if t.Status != StatusProgress {
		return false
	}
	start, err := ParseStamp(t.LastSession())
	if err != nil {
		return false
	}
	return now.Sub(start) < length
}

// Remaining is the time left in t's current session, zero when idle.
func Remaining(t Task, now time.Time, length time.Duration) time.Duration {
	if !Running(t, now, length) {
		return 0
	}
	start, err := ParseStamp(t.LastSession())
	if err != nil {
		return length
	}
	left := length - now.Sub(start)
	if left < 0 {
		return 0
	}
	if left > length {
		return length
	}
	return left
}

// Active returns the running task, if any.
func Active(s Store, now time.Time, length time.Duration) (string, Task, bool) {
	for _, day := range s.Days() {
		for _, t := range s[day] {
			if Running(t, now, length) {
				return day, t, true
			}
		}
	}
	return "", Task{}, false
}

func runningCount(s Store, env Env) int {
	n := 0
	for _, tasks := range s {
		for _, t := range tasks {
			if Running(t, env.Now, env.length()) {
				n++
			}
		}
	}
	return n
}

func ensureIdle(s Store, env Env, exceptID string) error {
	for day, tasks := range s {
		for _, t := range tasks {
			if t.ID == exceptID {
				continue
			}
			if Running(t, env.Now, env.length()) {
				return fmt.Errorf("%w: %q on %s", ErrTaskActive, t.Title, day)
			}
		}
	}
	return nil
}

// claimActive fails when another task is running and otherwise returns every
// stale progress task to pending, so at most one task carries that status.
func claimActive(s Store, env Env, exceptID string) error {
	if err := ensureIdle(s, env, exceptID); err != nil {
		return err
	}
	for day := range s {
		for i := range s[day] {
			if t := &s[day][i]; t.ID != exceptID && t.Status == StatusProgress {
				t.Status = StatusPending
			}
		}
	}
	return nil
}

// UpdateSession starts or stops a focus session. A Stamp equal to the
// task's last session stops it (the entry is removed and the task returns to
// pending); any other stamp starts a new session. An empty Stamp means now.
type UpdateSession struct {
	TaskID string
	Day    string
	Stamp  string
}

func (a UpdateSession) apply(s Store, env Env) error {
	day, i, ok := s.Find(a.Day, a.TaskID)
	if !ok {
		return nil
	}
	t := &s[day][i]
	stamp := a.Stamp
	if stamp == "" {
		stamp = SessionStamp(env.Now)
	}
	if n := len(t.Sessions); n > 0 && t.Sessions[n-1] == stamp {
		t.Sessions = t.Sessions[:n-1]
		setStatus(t, StatusPending, env.Now)
		return nil
	}
	return startSession(s, env, t, stamp)
}

// startSession appends stamp to t and marks it progress once no other task
// is running.
func startSession(s Store, env Env, t *Task, stamp string) error {
	if _, err := ParseStamp(stamp); err != nil {
		return err
	}
	if err := claimActive(s, env, ""); err != nil {
		return err
	}
	t.Sessions = append(t.Sessions, stamp)
	setStatus(t, StatusProgress, env.Now)
	return nil
}

// CompleteSession ends a progress task's session while keeping it, returning
// the task to pending.
type CompleteSession struct {
	TaskID string
	Day    string
}

func (a CompleteSession) apply(s Store, _ Env) error {
	day, i, ok := s.Find(a.Day, a.TaskID)
	if !ok {
		return nil
	}
	if t := &s[day][i]; t.Status == StatusProgress {
		t.Status = StatusPending
	}
	return nil
}

// Settled describes a task whose session reached its full length.
type Settled struct {
	Day  string
	Task Task
}

// Settle moves every progress task whose last session has reached the
// session length back to pending. Stale progress tasks without a readable
// stamp are reset as well but not reported. s is not modified.
func Settle(s Store, env Env) (Store, []Settled) {
	var done []Settled
	var stale [][2]string
	for _, day := range s.Days() {
		for _, t := range s[day] {
			if t.Status != StatusProgress || Running(t, env.Now, env.length()) {
				continue
			}
			if _, err := ParseStamp(t.LastSession()); err != nil {
				stale = append(stale, [2]string{day, t.ID})
				continue
			}
			done = append(done, Settled{Day: day, Task: t})
		}
	}
	if len(done) == 0 && len(stale) == 0 {
		return s, nil
	}
	next := s.Clone()
	for _, st := range stale {
		_, j, _ := next.Find(st[0], st[1])
		next[st[0]][j].Status = StatusPending
	}
	for i, d := range done {
		_, j, _ := next.Find(d.Day, d.Task.ID)
		next[d.Day][j].Status = StatusPending
		done[i].Task = next[d.Day][j].clone()
	}
	return next, done
}

// SessionDuration is the focus time credited to session i of t.
func SessionDuration(t Task, i int, now time.Time, length time.Duration) time.Duration {
	if i < 0 || i >= len(t.Sessions) {
		return 0
	}
	start, err := ParseStamp(t.Sessions[i])
	if err != nil {
		return 0
	}
	d := now.Sub(start)
	if d > length {
		d = length
	}
	if i == len(t.Sessions)-1 && t.Status == StatusCompleted && t.CompletedAt != nil {
		if c := t.CompletedAt.Sub(start); c < d {
			d = c
		}
	}
	if d < 0 {
		return 0
	}
	return d
}
