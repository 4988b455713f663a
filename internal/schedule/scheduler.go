package schedule

import (
	"context"
	"strings"
	"time"

	"github.com/ramanasai/amal/internal/config"
	"github.com/ramanasai/amal/internal/tracker"
)

// NextAt computes the next occurrence of reminder time that is on a configured workday and not a holiday.
func NextAt(now time.Time, cfg config.Config) time.Time {
	loc := cfg.Location()
	now = now.In(loc)

	// parse "HH:MM"
	hour, min := 17, 0
	if t, err := time.ParseInLocation("15:04", strings.TrimSpace(cfg.Reminder.Time), loc); err == nil {
		hour = t.Hour()
		min = t.Minute()
	}
	workdays := map[time.Weekday]bool{}
	for _, wd := range config.Weekdays(cfg.Reminder.Workdays) {
		workdays[wd] = true
	}
	if len(workdays) == 0 {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			workdays[wd] = true
		}
	}
	holidays := map[string]bool{}
	for _, h := range cfg.Reminder.Holidays {
		holidays[strings.TrimSpace(h)] = true
	}

	// candidate today at hh:mm
	cand := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, loc)
	if !now.Before(cand) {
		cand = cand.AddDate(0, 0, 1)
	}
	for {
		if workdays[cand.Weekday()] && !holidays[tracker.DayKey(cand)] {
			return cand
		}
		cand = cand.AddDate(0, 0, 1)
	}
}

// RunConfigured runs the reminder callback at the configured schedule until ctx is canceled.
// It returns immediately when reminders are disabled.
func RunConfigured(ctx context.Context, cfg config.Config, f func()) {
	if !cfg.Reminder.Enabled {
		return
	}
	next := NextAt(time.Now(), cfg)
	t := time.NewTimer(time.Until(next))
	for {
		select {
		case <-ctx.Done():
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
			return
		case <-t.C:
			f()
			next = NextAt(time.Now(), cfg)
			t.Reset(time.Until(next))
		}
	}
}

// PendingToday counts today's tasks that are not completed.
func PendingToday(s tracker.Store, now time.Time) int {
	n := 0
	for _, t := range s[tracker.DayKey(now)] {
		if t.Status != tracker.StatusCompleted {
			n++
		}
	}
	return n
}
