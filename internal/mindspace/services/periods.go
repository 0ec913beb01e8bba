package services

import (
	"strconv"
	"time"
)

// WindowStart returns the start of a named reporting window ending at now.
// Unknown periods fall back to monthly.
func WindowStart(period string, now time.Time) time.Time {
	switch period {
	case "daily":
		return now.AddDate(0, 0, -1)
	case "weekly":
		return now.AddDate(0, 0, -7)
	case "yearly":
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// DaysBack parses a "?period=30" style day count, defaulting to def.
func DaysBack(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > 3650 {
		return 3650
	}
	return n
}
