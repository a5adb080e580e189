package domain

import (
	"strings"
	"time"
)

// DefaultHolidays is the static holiday list used when none is configured.
var DefaultHolidays = []string{"2025-01-26", "2025-08-15", "2025-10-02"}

// HolidayCalendar reports non-working days: weekends plus a static list of
// ISO dates.
type HolidayCalendar struct {
	holidays map[string]struct{}
}

// NewHolidayCalendar creates a calendar from ISO dates. Blank entries are
// skipped.
func NewHolidayCalendar(dates []string) *HolidayCalendar {
	c := &HolidayCalendar{holidays: make(map[string]struct{}, len(dates))}
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		c.holidays[d] = struct{}{}
	}
	return c
}

// DefaultHolidayCalendar returns a calendar with DefaultHolidays.
func DefaultHolidayCalendar() *HolidayCalendar {
	return NewHolidayCalendar(DefaultHolidays)
}

// IsNonWorkingDay returns true for Saturdays, Sundays and listed holidays.
func (c *HolidayCalendar) IsNonWorkingDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	if c == nil {
		return false
	}
	_, ok := c.holidays[date.Format(DateLayout)]
	return ok
}

// Len returns the number of listed holidays.
func (c *HolidayCalendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.holidays)
}
