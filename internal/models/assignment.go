package models

import "time"

// TimeSlot is a recurring weekly placement: weekday plus time range,
// independent of the concrete calendar week it lands in.
type TimeSlot struct {
	Weekday     time.Weekday `json:"weekday"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`
}

// Duration returns the slot length in minutes.
func (s TimeSlot) Duration() int {
	return s.EndMinute - s.StartMinute
}

// Overlaps reports whether two slots on the same weekday intersect in time.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.Weekday != other.Weekday {
		return false
	}
	return s.StartMinute < other.EndMinute && other.StartMinute < s.EndMinute
}

// String renders the slot as "Monday 19:00-20:40".
func (s TimeSlot) String() string {
	return s.Weekday.String() + " " + FormatClock(s.StartMinute) + "-" + FormatClock(s.EndMinute)
}

// Assignment places one session of a discipline into a concrete calendar week.
type Assignment struct {
	DisciplineID string    `json:"discipline_id"`
	Slot         TimeSlot  `json:"slot"`
	WeekIndex    int       `json:"week_index"`
	Date         time.Time `json:"date"`
}
