// Package dateutil parses and formats task due dates.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be YYYY-MM-DD or YYYY-MM-DD HH:MM")
	ErrDateInPast        = errors.New("the due date cannot be in the past")
)

// Layouts used on the wire and in forms.
const (
	DueLayout       = "2006-01-02 15:04"
	DateLayout      = "2006-01-02"
	FormInputLayout = "2006-01-02T15:04" // datetime-local form field
	DisplayLayout   = "2 January 2006, 15:04"
)

// defaultDueHour is used when a due date is given without a time.
const (
	defaultDueHour   = 23
	defaultDueMinute = 59
)

var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// serverLayouts are tried in order when reading dates rendered by the server.
var serverLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	FormInputLayout,
	DueLayout,
	"02/01/2006 15:04",
	"02/01/2006 à 15:04",
	DateLayout,
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDue parses a due date typed by the user. It accepts
// "YYYY-MM-DD HH:MM", "YYYY-MM-DD" or a relative day ("today", "tomorrow",
// "monday", "next-friday", "next-week"), optionally followed by " HH:MM".
// Without a time the end of the day is used. Empty input returns nil.
// Dates before now are rejected with ErrDateInPast.
func ParseDue(s string, now time.Time) (*time.Time, error) {
	input := strings.ToLower(strings.TrimSpace(s))
	if input == "" {
		return nil, nil
	}

	dayPart, clock := input, ""
	if i := strings.LastIndexByte(input, ' '); i > 0 && strings.Contains(input[i+1:], ":") {
		dayPart, clock = strings.TrimSpace(input[:i]), input[i+1:]
	}
	if strings.Contains(dayPart, "t") && strings.Count(dayPart, "-") == 2 {
		// datetime-local input "2025-01-15t09:30"
		if before, after, ok := strings.Cut(dayPart, "t"); ok && clock == "" {
			dayPart, clock = before, after
		}
	}

	day, err := resolveDay(dayPart, now)
	if err != nil {
		return nil, err
	}

	hour, minute := defaultDueHour, defaultDueMinute
	if clock != "" {
		c, err := time.Parse("15:04", clock)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		hour, minute = c.Hour(), c.Minute()
	}

	due := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	if due.Before(now) {
		return nil, ErrDateInPast
	}
	return &due, nil
}

func resolveDay(input string, now time.Time) (time.Time, error) {
	today := TruncateToDay(now)

	switch input {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	}

	if name, ok := strings.CutPrefix(input, "next-"); ok {
		if target, ok := weekdayMap[name]; ok {
			return nextWeekday(today, target), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}
	if target, ok := weekdayMap[input]; ok {
		return nextWeekday(today, target), nil
	}

	d, err := time.ParseInLocation(DateLayout, input, now.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return d, nil
}

// nextWeekday returns the next occurrence of target strictly after today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	days := int(target) - int(today.Weekday())
	if days <= 0 {
		days += 7
	}
	return today.AddDate(0, 0, days)
}

// ParseServerTime reads a date rendered by the server in any of the known
// layouts.
func ParseServerTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range serverLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateFormat
}

// FormatDate renders t for display, e.g. "15 January 2025, 09:30".
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// FormatDue renders an optional due date in DueLayout, or "" for nil.
func FormatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DueLayout)
}
