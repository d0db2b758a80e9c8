package models

import (
	"fmt"
	"time"
)

// TimeWindow is an allowed daily teaching window in minutes since midnight.
type TimeWindow struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Duration returns the window length in minutes.
func (w TimeWindow) Duration() int {
	return w.EndMinute - w.StartMinute
}

// Valid reports whether the window end is strictly after its start.
func (w TimeWindow) Valid() bool {
	return w.StartMinute >= 0 && w.EndMinute > w.StartMinute && w.EndMinute <= 24*60
}

// String renders the window as "HH:MM-HH:MM".
func (w TimeWindow) String() string {
	return FormatClock(w.StartMinute) + "-" + FormatClock(w.EndMinute)
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(raw string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(raw, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", raw, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", raw)
	}
	return h*60 + m, nil
}

// FormatClock converts minutes since midnight into "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Discipline describes one course unit and its placement constraints.
type Discipline struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	RequiredHours     int            `json:"required_hours"`
	AllowedWeekdays   []time.Weekday `json:"allowed_weekdays"`
	AllowedWindows    []TimeWindow   `json:"allowed_windows"`
	InstructorID      string         `json:"instructor_id"`
	CohortID          string         `json:"cohort_id"`
	RoomID            string         `json:"room_id,omitempty"`
	MaxSessionMinutes int            `json:"max_session_minutes"`
}

// RequiredMinutes returns the demand in minutes.
func (d Discipline) RequiredMinutes() int {
	return d.RequiredHours * 60
}

// SessionPlan is the analyzer output for one discipline: how many sessions
// of which duration cover the required hours.
type SessionPlan struct {
	DisciplineID           string `json:"discipline_id"`
	SessionCount           int    `json:"session_count"`
	SessionDurationMinutes int    `json:"session_duration_minutes"`
}

// InfeasibleLoad reports a discipline whose demand cannot fit the calendar.
type InfeasibleLoad struct {
	DisciplineID   string `json:"discipline_id"`
	SessionCount   int    `json:"session_count"`
	WeeklyCapacity int    `json:"weekly_capacity"`
	Reason         string `json:"reason"`
}

// Error implements the error interface so the analyzer can surface the
// finding as a wrapped error value.
func (e *InfeasibleLoad) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Reason
}
