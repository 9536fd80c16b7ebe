package timeutil

import (
	"time"
)

// Montreal is the local operations timezone
var Montreal *time.Location

func init() {
	var err error
	Montreal, err = time.LoadLocation("America/Montreal")
	if err != nil {
		// Fallback: fixed EST if the zone database is unavailable
		Montreal = time.FixedZone("EST", -5*60*60)
	}
}

// Now returns the current time in Montreal local time
func Now() time.Time {
	return time.Now().In(Montreal)
}

// ToLocal converts any time to Montreal local time
func ToLocal(t time.Time) time.Time {
	return t.In(Montreal)
}

// ParseLocal parses a time string in Montreal local time
func ParseLocal(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, Montreal)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StartOfDay returns the start of day (00:00:00) in Montreal local time
func StartOfDay(t time.Time) time.Time {
	local := t.In(Montreal)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Montreal)
}

// PeriodForTime buckets a requested delivery time into a day period:
// morning is 5h to 9h30, midday 9h30 to 13h, afternoon everything after.
// Times before 5h fall into morning as well.
func PeriodForTime(t time.Time) string {
	local := t.In(Montreal)
	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes < 9*60+30:
		return "morning"
	case minutes < 13*60:
		return "midday"
	default:
		return "afternoon"
	}
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	DateTimeLayout = "2006-01-02 15:04:05"
)
