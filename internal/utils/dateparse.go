package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ramanasai/amal/internal/tracker"
)

var (
	agoPattern    = regexp.MustCompile(`^(\d+)\s*(d|day|days|w|week|weeks)\s+ago$`)
	offsetPattern = regexp.MustCompile(`^([+-])(\d+)$`)
)

// ParseDay turns user input into a day key relative to now. It accepts
// "today", "yesterday", "tomorrow", weekday names (the most recent one,
// today included), "3 days ago", "+2"/"-1" offsets and common date layouts.
func ParseDay(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" || input == "today" {
		return tracker.DayKey(now), nil
	}

	switch input {
	case "yesterday":
		return tracker.DayKey(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return tracker.DayKey(now.AddDate(0, 0, 1)), nil
	}

	if m := agoPattern.FindStringSubmatch(input); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "w") {
			n *= 7
		}
		return tracker.DayKey(now.AddDate(0, 0, -n)), nil
	}

	if m := offsetPattern.FindStringSubmatch(input); m != nil {
		n, _ := strconv.Atoi(m[2])
		if m[1] == "-" {
			n = -n
		}
		return tracker.DayKey(now.AddDate(0, 0, n)), nil
	}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if input == name || input == name[:3] {
			back := (int(now.Weekday()) - int(wd) + 7) % 7
			return tracker.DayKey(now.AddDate(0, 0, -back)), nil
		}
	}

	formats := []string{
		tracker.DayLayout,
		"2006/01/02",
		"02-01-2006",
		"Jan 2, 2006",
		"2 Jan 2006",
		"January 2, 2006",
		"2 January 2006",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, input, now.Location()); err == nil {
			return tracker.DayKey(t), nil
		}
	}

	return "", fmt.Errorf("unable to parse day: %s", input)
}

// DayRange returns the first and last day keys of a preset window ending at
// now: week (Monday-based), month, year, last7days, last30days, last90days.
func DayRange(preset string, now time.Time) (string, string, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	last := tracker.DayKey(today)

	switch strings.ToLower(preset) {
	case "", "all":
		return "", "", nil
	case "today":
		return last, last, nil
	case "week":
		weekday := int(today.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		return tracker.DayKey(today.AddDate(0, 0, -(weekday - 1))), last, nil
	case "month":
		return tracker.DayKey(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())), last, nil
	case "year":
		return tracker.DayKey(time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())), last, nil
	case "last7days", "last-7-days":
		return tracker.DayKey(today.AddDate(0, 0, -6)), last, nil
	case "last30days", "last-30-days":
		return tracker.DayKey(today.AddDate(0, 0, -29)), last, nil
	case "last90days", "last-90-days":
		return tracker.DayKey(today.AddDate(0, 0, -89)), last, nil
	default:
		return "", "", fmt.Errorf("unknown date preset: %s", preset)
	}
}

// InRange reports whether day lies within [from, to]. Empty bounds are open.
func InRange(day, from, to string) bool {
	if from != "" && day < from {
		return false
	}
	if to != "" && day > to {
		return false
	}
	return true
}

// FormatDuration renders a focus duration as "1h 05m" or "25m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// FormatClock renders a countdown as mm:ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int((d%time.Minute)/time.Second))
}
