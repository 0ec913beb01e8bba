package services

import (
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
)

// UpdateStreak applies one new journal entry written at now to s.
// Days are compared as calendar dates in now's location: a one day gap
// extends the streak, a longer gap restarts it at 1 and a same-day entry
// leaves it unchanged.
func UpdateStreak(s models.Streak, now time.Time) models.Streak {
	if s.LastEntryDate == nil {
		s.Current = 1
	} else {
		switch days := daysBetween(s.LastEntryDate.In(now.Location()), now); {
		case days == 1:
			s.Current++
		case days > 1:
			s.Current = 1
		}
		if s.Current == 0 {
			s.Current = 1
		}
	}

	ts := now
	s.LastEntryDate = &ts
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}

// daysBetween counts calendar days from a to b. Both dates are mapped to
// UTC midnight so DST shifts in the source zone cannot shorten a day.
func daysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a)).Hours() / 24)
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
