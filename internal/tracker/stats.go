package tracker

import (
	"time"
)

// CompletedSessions counts t's sessions whose wall-clock time reached length.
func CompletedSessions(t Task, now time.Time, length time.Duration) int {
	n := 0
	for _, stamp := range t.Sessions {
		start, err := ParseStamp(stamp)
		if err != nil {
			continue
		}
		if now.Sub(start) >= length {
			n++
		}
	}
	return n
}

// FocusTime sums the credited duration of every session of t.
func FocusTime(t Task, now time.Time, length time.Duration) time.Duration {
	var total time.Duration
	for i := range t.Sessions {
		total += SessionDuration(t, i, now, length)
	}
	return total
}

// DaySessions counts finished sessions across a day's tasks.
func DaySessions(tasks []Task, now time.Time, length time.Duration) int {
	n := 0
	for _, t := range tasks {
		n += CompletedSessions(t, now, length)
	}
	return n
}

// DayFocusTime sums focus time across a day's tasks.
func DayFocusTime(tasks []Task, now time.Time, length time.Duration) time.Duration {
	var total time.Duration
	for _, t := range tasks {
		total += FocusTime(t, now, length)
	}
	return total
}

// DaySummary is the derived view of one day.
type DaySummary struct {
	Day             string        `json:"day"`
	Tasks           int           `json:"tasks"`
	Completed       int           `json:"completed"`
	CompletionRatio float64       `json:"completion_ratio"`
	Sessions        int           `json:"sessions"`
	Target          int           `json:"target_sessions"`
	FocusTime       time.Duration `json:"focus_time"`
}

// Summarize derives the statistics of one day.
func Summarize(day string, tasks []Task, now time.Time, length time.Duration) DaySummary {
	sum := DaySummary{Day: day, Tasks: len(tasks)}
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			sum.Completed++
		}
		sum.Target += t.TargetSessions
	}
	if sum.Tasks > 0 {
		sum.CompletionRatio = float64(sum.Completed) / float64(sum.Tasks)
	}
	sum.Sessions = DaySessions(tasks, now, length)
	sum.FocusTime = DayFocusTime(tasks, now, length)
	return sum
}

// SummarizeAll returns one summary per recorded day, oldest first.
func SummarizeAll(s Store, now time.Time, length time.Duration) []DaySummary {
	days := s.Days()
	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		out = append(out, Summarize(d, s[d], now, length))
	}
	return out
}
