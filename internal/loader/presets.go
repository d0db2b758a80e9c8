package loader

import (
	"time"

	"github.com/acadepol/horarios-api/internal/models"
)

// SlotPreset is one of the institutional timetable grids: which weekdays a
// cohort meets and the teaching windows on those days.
type SlotPreset struct {
	Name              string
	Weekdays          []time.Weekday
	Windows           []models.TimeWindow
	MaxSessionMinutes int
}

func window(start, end string) models.TimeWindow {
	s, _ := models.ParseClock(start)
	e, _ := models.ParseClock(end)
	return models.TimeWindow{StartMinute: s, EndMinute: e}
}

// WeeklyPreset is the evening grid: Monday and Wednesday, two 100 minute
// blocks per evening.
func WeeklyPreset() SlotPreset {
	return SlotPreset{
		Name:     "weekly",
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		Windows: []models.TimeWindow{
			window("19:00", "20:40"),
			window("21:00", "22:40"),
		},
		MaxSessionMinutes: 100,
	}
}

// BiweeklyPreset is the condensed grid: Friday evening plus Saturday, four
// daytime blocks on Saturday.
func BiweeklyPreset() SlotPreset {
	return SlotPreset{
		Name:     "biweekly",
		Weekdays: []time.Weekday{time.Friday, time.Saturday},
		Windows: []models.TimeWindow{
			window("08:00", "09:40"),
			window("10:00", "11:40"),
			window("13:00", "14:40"),
			window("15:00", "16:40"),
			window("19:00", "20:40"),
			window("21:00", "22:40"),
		},
		MaxSessionMinutes: 100,
	}
}

// PresetByName resolves a preset identifier; unknown names fall back to the
// weekly grid.
func PresetByName(name string) SlotPreset {
	if name == "biweekly" {
		return BiweeklyPreset()
	}
	return WeeklyPreset()
}

// Apply fills a discipline's placement constraints from the preset when the
// payload left them empty.
func (p SlotPreset) Apply(d models.Discipline) models.Discipline {
	if len(d.AllowedWeekdays) == 0 {
		d.AllowedWeekdays = append([]time.Weekday(nil), p.Weekdays...)
	}
	if len(d.AllowedWindows) == 0 {
		d.AllowedWindows = append([]models.TimeWindow(nil), p.Windows...)
	}
	if d.MaxSessionMinutes == 0 {
		d.MaxSessionMinutes = p.MaxSessionMinutes
	}
	return d
}
