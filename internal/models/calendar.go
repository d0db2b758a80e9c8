package models

import "time"

// HolidayKind distinguishes mandatory national holidays from optional points.
type HolidayKind string

const (
	HolidayKindNational HolidayKind = "NATIONAL"
	HolidayKindOptional HolidayKind = "OPTIONAL"
)

// HolidayRecord is one entry of the holiday list merged into the calendar.
type HolidayRecord struct {
	Date time.Time   `json:"date"`
	Name string      `json:"name"`
	Kind HolidayKind `json:"kind"`
}

// CalendarDay is a single flagged day inside an academic calendar.
// At most one of IsHoliday/IsOptionalHoliday is ever set.
type CalendarDay struct {
	Date              time.Time    `json:"date"`
	Weekday           time.Weekday `json:"weekday"`
	IsHoliday         bool         `json:"is_holiday"`
	IsOptionalHoliday bool         `json:"is_optional_holiday"`
	HolidayName       string       `json:"holiday_name,omitempty"`
}

// Working reports whether the day can host a session given the weekend set.
func (d CalendarDay) Working(weekend map[time.Weekday]bool) bool {
	return !d.IsHoliday && !d.IsOptionalHoliday && !weekend[d.Weekday]
}

// Calendar is the validated, contiguous day sequence for one course run.
// It is immutable after construction.
type Calendar struct {
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Days      []CalendarDay `json:"days"`

	weekend map[time.Weekday]bool
	weeks   []calendarWeek
}

// calendarWeek groups the in-range days of one ISO week.
type calendarWeek struct {
	isoYear int
	isoWeek int
	days    map[time.Weekday]int // weekday -> index into Calendar.Days
}

// NewCalendar assembles a calendar from an already validated day sequence.
// Days must be contiguous and ascending; the constructor only derives the
// week grouping used by the generator and the availability counters.
func NewCalendar(start, end time.Time, days []CalendarDay, weekend map[time.Weekday]bool) *Calendar {
	cal := &Calendar{
		StartDate: start,
		EndDate:   end,
		Days:      days,
		weekend:   make(map[time.Weekday]bool, len(weekend)),
	}
	for wd, isWeekend := range weekend {
		if isWeekend {
			cal.weekend[wd] = true
		}
	}
	for i, day := range days {
		isoYear, isoWeek := day.Date.ISOWeek()
		n := len(cal.weeks)
		if n == 0 || cal.weeks[n-1].isoYear != isoYear || cal.weeks[n-1].isoWeek != isoWeek {
			cal.weeks = append(cal.weeks, calendarWeek{
				isoYear: isoYear,
				isoWeek: isoWeek,
				days:    make(map[time.Weekday]int, 7),
			})
			n++
		}
		cal.weeks[n-1].days[day.Weekday] = i
	}
	return cal
}

// WeekendDays returns a copy of the configured weekend set.
func (c *Calendar) WeekendDays() map[time.Weekday]bool {
	out := make(map[time.Weekday]bool, len(c.weekend))
	for wd := range c.weekend {
		out[wd] = true
	}
	return out
}

// BusinessDayCount counts days that are neither holidays, optional holidays
// nor configured weekend weekdays.
func (c *Calendar) BusinessDayCount() int {
	count := 0
	for _, day := range c.Days {
		if day.Working(c.weekend) {
			count++
		}
	}
	return count
}

// WeeksAvailable counts distinct ISO weeks containing at least one business day.
func (c *Calendar) WeeksAvailable() int {
	count := 0
	for _, week := range c.weeks {
		for _, idx := range week.days {
			if c.Days[idx].Working(c.weekend) {
				count++
				break
			}
		}
	}
	return count
}

// WeekCount returns the number of ISO weeks spanned by the calendar.
func (c *Calendar) WeekCount() int {
	return len(c.weeks)
}

// DayAt resolves the calendar day for a week index and weekday, when the
// date falls inside the calendar range.
func (c *Calendar) DayAt(weekIndex int, weekday time.Weekday) (CalendarDay, bool) {
	if weekIndex < 0 || weekIndex >= len(c.weeks) {
		return CalendarDay{}, false
	}
	idx, ok := c.weeks[weekIndex].days[weekday]
	if !ok {
		return CalendarDay{}, false
	}
	return c.Days[idx], true
}
