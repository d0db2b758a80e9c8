package service

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

// TimetableGenerator assigns discipline sessions to concrete day/time slots
// with a deterministic greedy heuristic. Re-running with identical inputs
// yields the identical assignment set; the ordering rules below are the
// contract, not an accident of iteration order.
type TimetableGenerator struct {
	logger *zap.Logger
}

// NewTimetableGenerator constructs the generator.
func NewTimetableGenerator(logger *zap.Logger) *TimetableGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableGenerator{logger: logger}
}

// Generate places every session of every planned discipline. Disciplines are
// handled largest demand first (ties broken by identifier); each session goes
// to the least-loaded eligible candidate slot, where load counts assignments
// already placed on that weekday for the same cohort. Slots overlapping an
// excluded slot on the same weekday are skipped.
func (g *TimetableGenerator) Generate(
	plans []models.SessionPlan,
	disciplines []models.Discipline,
	cal *models.Calendar,
	excluded []models.TimeSlot,
) ([]models.Assignment, error) {
	planByID := make(map[string]models.SessionPlan, len(plans))
	for _, plan := range plans {
		planByID[plan.DisciplineID] = plan
	}

	ordered := make([]models.Discipline, 0, len(disciplines))
	for _, d := range disciplines {
		if _, ok := planByID[d.ID]; ok {
			ordered = append(ordered, d)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].RequiredHours != ordered[j].RequiredHours {
			return ordered[i].RequiredHours > ordered[j].RequiredHours
		}
		return ordered[i].ID < ordered[j].ID
	})

	state := newGeneratorState(cal)
	var assignments []models.Assignment

	for _, discipline := range ordered {
		plan := planByID[discipline.ID]
		candidates := candidateSlots(discipline, plan.SessionDurationMinutes, excluded)
		if len(candidates) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNoFeasibleSlot,
				fmt.Sprintf("discipline %s: every candidate slot is excluded or too short", discipline.ID))
		}
		for session := 0; session < plan.SessionCount; session++ {
			assignment, ok := state.placeSession(discipline, candidates)
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrNoFeasibleSlot,
					fmt.Sprintf("discipline %s: placed %d of %d sessions before calendar exhaustion",
						discipline.ID, session, plan.SessionCount))
			}
			assignments = append(assignments, assignment)
		}
	}

	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if a.WeekIndex != b.WeekIndex {
			return a.WeekIndex < b.WeekIndex
		}
		if a.Slot.Weekday != b.Slot.Weekday {
			return a.Slot.Weekday < b.Slot.Weekday
		}
		if a.Slot.StartMinute != b.Slot.StartMinute {
			return a.Slot.StartMinute < b.Slot.StartMinute
		}
		return a.DisciplineID < b.DisciplineID
	})

	g.logger.Debug("timetable generated",
		zap.Int("disciplines", len(ordered)),
		zap.Int("assignments", len(assignments)),
		zap.Int("excluded_slots", len(excluded)),
	)
	return assignments, nil
}

// candidateSlots builds the cross product of allowed weekdays and windows,
// trimmed to the session duration. Candidates that cannot hold the duration
// or that overlap an excluded slot are dropped.
func candidateSlots(d models.Discipline, durationMinutes int, excluded []models.TimeSlot) []models.TimeSlot {
	weekdays := make([]time.Weekday, len(d.AllowedWeekdays))
	copy(weekdays, d.AllowedWeekdays)
	sort.Slice(weekdays, func(i, j int) bool { return weekdays[i] < weekdays[j] })

	windows := make([]models.TimeWindow, len(d.AllowedWindows))
	copy(windows, d.AllowedWindows)
	sort.Slice(windows, func(i, j int) bool { return windows[i].StartMinute < windows[j].StartMinute })

	var slots []models.TimeSlot
	for _, wd := range weekdays {
		for _, window := range windows {
			if window.Duration() < durationMinutes {
				continue
			}
			slot := models.TimeSlot{
				Weekday:     wd,
				StartMinute: window.StartMinute,
				EndMinute:   window.StartMinute + durationMinutes,
			}
			if overlapsAny(slot, excluded) {
				continue
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

func overlapsAny(slot models.TimeSlot, excluded []models.TimeSlot) bool {
	for _, ex := range excluded {
		if slot.Overlaps(ex) {
			return true
		}
	}
	return false
}

// slotUseKey identifies the weekly recurrence of one discipline slot.
type slotUseKey struct {
	disciplineID string
	weekday      time.Weekday
	startMinute  int
}

type generatorState struct {
	cal        *models.Calendar
	cohortLoad map[string]map[time.Weekday]int
	usedWeeks  map[slotUseKey]map[int]bool
}

func newGeneratorState(cal *models.Calendar) *generatorState {
	return &generatorState{
		cal:        cal,
		cohortLoad: make(map[string]map[time.Weekday]int),
		usedWeeks:  make(map[slotUseKey]map[int]bool),
	}
}

// placeSession picks the least-loaded candidate that still has a free
// calendar week; ties fall to the earlier start time, then the lower
// weekday. Returns false when no candidate has a week left.
func (s *generatorState) placeSession(d models.Discipline, candidates []models.TimeSlot) (models.Assignment, bool) {
	order := make([]models.TimeSlot, len(candidates))
	copy(order, candidates)
	sort.SliceStable(order, func(i, j int) bool {
		li, lj := s.load(d.CohortID, order[i].Weekday), s.load(d.CohortID, order[j].Weekday)
		if li != lj {
			return li < lj
		}
		if order[i].StartMinute != order[j].StartMinute {
			return order[i].StartMinute < order[j].StartMinute
		}
		return order[i].Weekday < order[j].Weekday
	})

	for _, slot := range order {
		week, date, ok := s.nextWeek(d.ID, slot)
		if !ok {
			continue
		}
		s.reserve(d, slot, week)
		return models.Assignment{
			DisciplineID: d.ID,
			Slot:         slot,
			WeekIndex:    week,
			Date:         date,
		}, true
	}
	return models.Assignment{}, false
}

// nextWeek walks the calendar week by week and returns the first week whose
// matching weekday is in range, not flagged holiday or optional holiday, and
// not already taken by this discipline slot.
func (s *generatorState) nextWeek(disciplineID string, slot models.TimeSlot) (int, time.Time, bool) {
	key := slotUseKey{disciplineID: disciplineID, weekday: slot.Weekday, startMinute: slot.StartMinute}
	for week := 0; week < s.cal.WeekCount(); week++ {
		day, ok := s.cal.DayAt(week, slot.Weekday)
		if !ok || day.IsHoliday || day.IsOptionalHoliday {
			continue
		}
		if s.usedWeeks[key][week] {
			continue
		}
		return week, day.Date, true
	}
	return 0, time.Time{}, false
}

func (s *generatorState) reserve(d models.Discipline, slot models.TimeSlot, week int) {
	key := slotUseKey{disciplineID: d.ID, weekday: slot.Weekday, startMinute: slot.StartMinute}
	if s.usedWeeks[key] == nil {
		s.usedWeeks[key] = make(map[int]bool)
	}
	s.usedWeeks[key][week] = true
	if s.cohortLoad[d.CohortID] == nil {
		s.cohortLoad[d.CohortID] = make(map[time.Weekday]int)
	}
	s.cohortLoad[d.CohortID][slot.Weekday]++
}

func (s *generatorState) load(cohortID string, weekday time.Weekday) int {
	return s.cohortLoad[cohortID][weekday]
}
