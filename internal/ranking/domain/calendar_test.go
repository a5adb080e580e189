package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHolidayCalendar_IsNonWorkingDay(t *testing.T) {
	cal := DefaultHolidayCalendar()

	assert.Equal(t, 3, cal.Len())
	assert.True(t, cal.IsNonWorkingDay(time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)), "listed holiday")
	assert.True(t, cal.IsNonWorkingDay(time.Date(2026, time.October, 24, 0, 0, 0, 0, time.UTC)), "saturday")
	assert.True(t, cal.IsNonWorkingDay(time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC)), "sunday")
	assert.False(t, cal.IsNonWorkingDay(time.Date(2026, time.October, 23, 0, 0, 0, 0, time.UTC)), "friday")
}

func TestHolidayCalendar_SkipsBlankEntries(t *testing.T) {
	cal := NewHolidayCalendar([]string{"", " 2026-12-25 "})
	assert.Equal(t, 1, cal.Len())
	assert.True(t, cal.IsNonWorkingDay(time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)))
}

func TestHolidayCalendar_NilStillKnowsWeekends(t *testing.T) {
	var cal *HolidayCalendar
	assert.Equal(t, 0, cal.Len())
	assert.True(t, cal.IsNonWorkingDay(time.Date(2026, time.October, 24, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsNonWorkingDay(time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)))
}
