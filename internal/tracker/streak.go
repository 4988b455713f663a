package tracker

import (
	"time"
)

// DayState is how a single calendar day affects a streak.
type DayState int

const (
	// DayNeutral neither extends nor breaks a streak.
	DayNeutral DayState = iota
	// DayActive extends the streak.
	DayActive
	// DayMissed resets the current streak.
	DayMissed
)

// Streak is the result of a streak walk.
type Streak struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// StreakOptions controls which days never break a streak.
type StreakOptions struct {
	RestDays []time.Weekday
	Holidays []string
}

// DefaultStreakOptions exempts Saturday and Sunday.
func DefaultStreakOptions() StreakOptions {
	return StreakOptions{RestDays: []time.Weekday{time.Saturday, time.Sunday}}
}

func (o StreakOptions) exempt(day time.Time) bool {
	for _, wd := range o.RestDays {
		if day.Weekday() == wd {
			return true
		}
	}
	key := DayKey(day)
	for _, h := range o.Holidays {
		if h == key {
			return true
		}
	}
	return false
}

// WalkStreak visits every calendar day from first to last inclusive.
func WalkStreak(first, last time.Time, state func(day time.Time) DayState) Streak {
	var st Streak
	first = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	last = time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		switch state(d) {
		case DayActive:
			st.Current++
			if st.Current > st.Longest {
				st.Longest = st.Current
			}
		case DayMissed:
			st.Current = 0
		}
	}
	return st
}

// ComputeStreak walks the store from its earliest to its latest day. A day
// with at least one session extends the streak. Rest days, holidays and days
// with no record at all are neutral; any other day resets the current streak.
func ComputeStreak(s Store, opts StreakOptions) Streak {
	days := s.Days()
	var first, last time.Time
	var have bool
	for _, d := range days {
		t, err := ParseDay(d)
		if err != nil {
			continue
		}
		if !have || t.Before(first) {
			first = t
		}
		if !have || t.After(last) {
			last = t
		}
		have = true
	}
	if !have {
		return Streak{}
	}
	return WalkStreak(first, last, func(day time.Time) DayState {
		tasks, recorded := s[DayKey(day)]
		for _, t := range tasks {
			if len(t.Sessions) > 0 {
				return DayActive
			}
		}
		if !recorded || opts.exempt(day) {
			return DayNeutral
		}
		return DayMissed
	})
}
