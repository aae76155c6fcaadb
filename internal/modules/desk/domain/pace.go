package domain

import (
	"math"
	"time"
)

// Pace is the derived reading plan for the current material.
type Pace struct {
	RemainingPages int
	PagesPerDay    int
	Percent        int
	Completed      bool
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysRemaining counts calendar days from today until exam, clamped at 0.
// Both dates are compared as local calendar dates, so DST shifts do not
// change the count.
func DaysRemaining(exam, today time.Time) int {
	if exam.IsZero() {
		return 0
	}
	ey, em, ed := exam.In(today.Location()).Date()
	ty, tm, td := today.Date()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	days := int(math.Ceil(e.Sub(t).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// PagesPerDay is ceil((total-current)/remainingDays). It degrades to 0 when
// total is not positive, no days remain, or current is past total.
func PagesPerDay(total, current, remainingDays int) int {
	if total <= 0 || remainingDays <= 0 || current > total {
		return 0
	}
	if current < 0 {
		current = 0
	}
	remaining := total - current
	return (remaining + remainingDays - 1) / remainingDays
}

func ComputePace(m MaterialProgress, remainingDays int) Pace {
	p := Pace{PagesPerDay: PagesPerDay(m.TotalPages, m.CurrentPage, remainingDays)}
	if m.TotalPages <= 0 {
		return p
	}
	current := m.CurrentPage
	if current < 0 {
		current = 0
	}
	if current >= m.TotalPages {
		p.Completed = true
		p.Percent = 100
		return p
	}
	p.RemainingPages = m.TotalPages - current
	p.Percent = int(math.Round(float64(current) / float64(m.TotalPages) * 100))
	return p
}
