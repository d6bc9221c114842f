package booking

import (
	"fmt"
	"time"
)

// parseClock converts an "HH:MM" 24-hour string into minutes since
// midnight. All slot arithmetic runs on minutes to avoid hour rollover
// mistakes; there is no timezone handling, times are wall-clock local to
// the clinic.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("time %q is not in HH:MM format", s)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour %d out of range", h)
	}
	if m < 0 || m > 59 {
		return 0, fmt.Errorf("minute %d out of range", m)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// parseDate validates a YYYY-MM-DD calendar date string.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not in YYYY-MM-DD format", s)
	}
	return d, nil
}
