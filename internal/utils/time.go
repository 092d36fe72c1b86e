package utils

import (
	"strings"
	"time"
)

const (
	LayoutDate     = "2006-01-02"
	LayoutTime     = "15:04"
	layoutDateTime = "2006-01-02 15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(LayoutDate, strings.TrimSpace(s), orLocal(loc))
}

// ParseClock parses HH:MM.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(LayoutTime, strings.TrimSpace(s))
}

// ParseDateTime joins a YYYY-MM-DD date and a HH:MM time in the given location.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(layoutDateTime, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), orLocal(loc))
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
