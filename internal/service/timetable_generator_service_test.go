package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

func aprilCalendar(t *testing.T) *models.Calendar {
	t.Helper()
	svc := NewCalendarService(nil, nil)
	cal, err := svc.BuildCalendar(date(2026, time.April, 1), date(2026, time.May, 31), []models.HolidayRecord{
		{Date: date(2026, time.April, 21), Name: "Tiradentes", Kind: models.HolidayKindNational},
		{Date: date(2026, time.April, 20), Name: "Ponto Facultativo", Kind: models.HolidayKindOptional},
	}, nil)
	require.NoError(t, err)
	return cal
}

func analyzePlans(t *testing.T, disciplines []models.Discipline, cal *models.Calendar) []models.SessionPlan {
	t.Helper()
	analyzer := NewDisciplineAnalyzer(100, nil)
	plans := make([]models.SessionPlan, 0, len(disciplines))
	for _, d := range disciplines {
		plan, err := analyzer.Analyze(d, cal, 0)
		require.NoError(t, err)
		plans = append(plans, plan)
	}
	return plans
}

func TestGeneratorIsDeterministic(t *testing.T) {
	gen := NewTimetableGenerator(nil)
	cal := aprilCalendar(t)
	disciplines := []models.Discipline{
		eveningDiscipline("D1", 10),
		eveningDiscipline("D2", 6),
	}
	disciplines[1].InstructorID = "P2"
	disciplines[1].CohortID = "C2"
	plans := analyzePlans(t, disciplines, cal)

	first, err := gen.Generate(plans, disciplines, cal, nil)
	require.NoError(t, err)
	second, err := gen.Generate(plans, disciplines, cal, nil)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(first, second), "identical inputs must produce identical assignments")
}

func TestGeneratorSkipsHolidaysAndOptionals(t *testing.T) {
	gen := NewTimetableGenerator(nil)
	cal := aprilCalendar(t)
	d := eveningDiscipline("D1", 10)
	d.AllowedWeekdays = []time.Weekday{time.Monday, time.Tuesday}
	plans := analyzePlans(t, []models.Discipline{d}, cal)

	assignments, err := gen.Generate(plans, []models.Discipline{d}, cal, nil)
	require.NoError(t, err)
	require.NotEmpty(t, assignments)
	for _, a := range assignments {
		assert.False(t, a.Date.Equal(date(2026, time.April, 20)), "optional holiday must not host a session")
		assert.False(t, a.Date.Equal(date(2026, time.April, 21)), "holiday must not host a session")
	}
}

func TestGeneratorCoversEverySession(t *testing.T) {
	gen := NewTimetableGenerator(nil)
	cal := aprilCalendar(t)
	disciplines := []models.Discipline{
		eveningDiscipline("D1", 12),
		eveningDiscipline("D2", 8),
	}
	disciplines[1].InstructorID = "P2"
	disciplines[1].CohortID = "C2"
	plans := analyzePlans(t, disciplines, cal)

	assignments, err := gen.Generate(plans, disciplines, cal, nil)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, a := range assignments {
		counts[a.DisciplineID]++
		day, ok := cal.DayAt(a.WeekIndex, a.Slot.Weekday)
		require.True(t, ok, "assignment must land inside the calendar")
		assert.True(t, day.Date.Equal(a.Date))
	}
	for _, plan := range plans {
		assert.Equal(t, plan.SessionCount, counts[plan.DisciplineID], "discipline %s", plan.DisciplineID)
	}
}

func TestGeneratorAssignmentsAreOrdered(t *testing.T) {
	gen := NewTimetableGenerator(nil)
	cal := aprilCalendar(t)
	disciplines := []models.Discipline{
		eveningDiscipline("D1", 10),
		eveningDiscipline("D2", 10),
	}
	disciplines[1].InstructorID = "P2"
	disciplines[1].CohortID = "C2"
	plans := analyzePlans(t, disciplines, cal)

	assignments, err := gen.Generate(plans, disciplines, cal, nil)
	require.NoError(t, err)
	for i := 1; i < len(assignments); i++ {
		prev, cur := assignments[i-1], assignments[i]
		ordered := prev.WeekIndex < cur.WeekIndex ||
			(prev.WeekIndex == cur.WeekIndex && prev.Slot.Weekday < cur.Slot.Weekday) ||
			(prev.WeekIndex == cur.WeekIndex && prev.Slot.Weekday == cur.Slot.Weekday && prev.Slot.StartMinute < cur.Slot.StartMinute) ||
			(prev.WeekIndex == cur.WeekIndex && prev.Slot.Weekday == cur.Slot.Weekday && prev.Slot.StartMinute == cur.Slot.StartMinute && prev.DisciplineID <= cur.DisciplineID)
		assert.True(t, ordered, "assignments out of order at %d", i)
	}
}

func TestGeneratorHonoursExclusions(t *testing.T) {
	gen := NewTimetableGenerator(nil)
	cal := aprilCalendar(t)
	d := eveningDiscipline("D1", 6)
	plans := analyzePlans(t, []models.Discipline{d}, cal)

	excluded := []models.TimeSlot{
		{Weekday: time.Monday, StartMinute: 19 * 60, EndMinute: 20*60 + 40},
	}
	assignments, err := gen.Generate(plans, []models.Discipline{d}, cal, excluded)
	require.NoError(t, err)
	for _, a := range assignments {
		for _, ex := range excluded {
			assert.False(t, a.Slot.Overlaps(ex), "assignment %s overlaps excluded slot", a.Slot)
		}
	}
}

func TestGeneratorFailsWhenEverySlotExcluded(t *testing.T) {
	gen := NewTimetableGenerator(nil)
	cal := aprilCalendar(t)
	d := eveningDiscipline("D1", 6)
	plans := analyzePlans(t, []models.Discipline{d}, cal)

	excluded := []models.TimeSlot{
		{Weekday: time.Monday, StartMinute: 19 * 60, EndMinute: 20*60 + 40},
		{Weekday: time.Monday, StartMinute: 21 * 60, EndMinute: 22*60 + 40},
		{Weekday: time.Wednesday, StartMinute: 19 * 60, EndMinute: 20*60 + 40},
		{Weekday: time.Wednesday, StartMinute: 21 * 60, EndMinute: 22*60 + 40},
	}
	_, err := gen.Generate(plans, []models.Discipline{d}, cal, excluded)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoFeasibleSlot.Code, appErrors.FromError(err).Code)
}

func TestGeneratorBalancesCohortLoad(t *testing.T) {
	gen := NewTimetableGenerator(nil)
	cal := aprilCalendar(t)
	d := eveningDiscipline("D1", 10)
	plans := analyzePlans(t, []models.Discipline{d}, cal)
	require.Equal(t, 6, plans[0].SessionCount)

	assignments, err := gen.Generate(plans, []models.Discipline{d}, cal, nil)
	require.NoError(t, err)

	perWeekday := map[time.Weekday]int{}
	for _, a := range assignments {
		perWeekday[a.Slot.Weekday]++
	}
	assert.Equal(t, 3, perWeekday[time.Monday])
	assert.Equal(t, 3, perWeekday[time.Wednesday])
}
