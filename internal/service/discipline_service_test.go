package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

func semesterCalendar(t *testing.T) *models.Calendar {
	t.Helper()
	svc := NewCalendarService(nil, nil)
	cal, err := svc.BuildCalendar(date(2026, time.March, 1), date(2026, time.June, 30), nil, nil)
	require.NoError(t, err)
	return cal
}

func eveningDiscipline(id string, hours int) models.Discipline {
	return models.Discipline{
		ID:            id,
		Name:          id,
		RequiredHours: hours,
		AllowedWeekdays: []time.Weekday{
			time.Monday, time.Wednesday,
		},
		AllowedWindows: []models.TimeWindow{
			{StartMinute: 19 * 60, EndMinute: 20*60 + 40},
			{StartMinute: 21 * 60, EndMinute: 22*60 + 40},
		},
		InstructorID:      "P1",
		CohortID:          "C1",
		MaxSessionMinutes: 100,
	}
}

func TestAnalyzerFullBlockSessions(t *testing.T) {
	analyzer := NewDisciplineAnalyzer(100, nil)
	cal := semesterCalendar(t)

	plan, err := analyzer.Analyze(eveningDiscipline("D1", 20), cal, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, plan.SessionDurationMinutes)
	assert.Equal(t, 12, plan.SessionCount)
}

func TestAnalyzerFineGranularity(t *testing.T) {
	analyzer := NewDisciplineAnalyzer(20, nil)
	cal := semesterCalendar(t)

	// 1200 required minutes over 18 weeks rounds to an 80 minute session.
	plan, err := analyzer.Analyze(eveningDiscipline("D1", 20), cal, 0)
	require.NoError(t, err)
	assert.Equal(t, 80, plan.SessionDurationMinutes)
	assert.Equal(t, 15, plan.SessionCount)
}

func TestAnalyzerDurationCappedByWindow(t *testing.T) {
	analyzer := NewDisciplineAnalyzer(100, nil)
	cal := semesterCalendar(t)

	d := eveningDiscipline("D1", 20)
	d.MaxSessionMinutes = 240
	d.AllowedWindows = []models.TimeWindow{{StartMinute: 19 * 60, EndMinute: 20 * 60}}

	plan, err := analyzer.Analyze(d, cal, 0)
	require.NoError(t, err)
	assert.Equal(t, 60, plan.SessionDurationMinutes)
	assert.Equal(t, 20, plan.SessionCount)
}

func TestAnalyzerInfeasibleLoad(t *testing.T) {
	analyzer := NewDisciplineAnalyzer(100, nil)
	cal := semesterCalendar(t)

	d := eveningDiscipline("D1", 80)
	d.AllowedWeekdays = []time.Weekday{time.Monday}

	_, err := analyzer.Analyze(d, cal, 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInfeasibleLoad.Code, appErrors.FromError(err).Code)

	var load *models.InfeasibleLoad
	require.True(t, errors.As(err, &load))
	assert.Equal(t, "D1", load.DisciplineID)
	assert.Equal(t, 48, load.SessionCount)
	assert.Equal(t, 18, load.WeeklyCapacity)
}

func TestAnalyzerValidatesDiscipline(t *testing.T) {
	analyzer := NewDisciplineAnalyzer(100, nil)
	cal := semesterCalendar(t)

	cases := []struct {
		name   string
		mutate func(*models.Discipline)
	}{
		{"missing id", func(d *models.Discipline) { d.ID = "" }},
		{"zero hours", func(d *models.Discipline) { d.RequiredHours = 0 }},
		{"no weekdays", func(d *models.Discipline) { d.AllowedWeekdays = nil }},
		{"no windows", func(d *models.Discipline) { d.AllowedWindows = nil }},
		{"zero max session", func(d *models.Discipline) { d.MaxSessionMinutes = 0 }},
		{"inverted window", func(d *models.Discipline) {
			d.AllowedWindows = []models.TimeWindow{{StartMinute: 600, EndMinute: 500}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := eveningDiscipline("D1", 20)
			tc.mutate(&d)
			_, err := analyzer.Analyze(d, cal, 0)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}
