package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

// DefaultRoundingGranularityMinutes is the session-duration rounding block
// used when no granularity is configured. The source calendars use
// 100-minute teaching blocks; callers can override per run.
const DefaultRoundingGranularityMinutes = 20

// DisciplineAnalyzer turns raw hour requirements into per-discipline session
// plans given the validated calendar.
type DisciplineAnalyzer struct {
	granularity int
	logger      *zap.Logger
}

// NewDisciplineAnalyzer constructs the analyzer with the configured rounding
// block in minutes.
func NewDisciplineAnalyzer(granularityMinutes int, logger *zap.Logger) *DisciplineAnalyzer {
	if granularityMinutes <= 0 {
		granularityMinutes = DefaultRoundingGranularityMinutes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisciplineAnalyzer{granularity: granularityMinutes, logger: logger}
}

// Analyze computes the session count and duration for one discipline.
// granularityMinutes <= 0 falls back to the configured block.
func (a *DisciplineAnalyzer) Analyze(d models.Discipline, cal *models.Calendar, granularityMinutes int) (models.SessionPlan, error) {
	if err := a.checkDiscipline(d); err != nil {
		return models.SessionPlan{}, err
	}
	if granularityMinutes <= 0 {
		granularityMinutes = a.granularity
	}

	weeks := cal.WeeksAvailable()
	weekdays := len(d.AllowedWeekdays)
	if weeks == 0 {
		return models.SessionPlan{}, appErrors.Wrap(
			&models.InfeasibleLoad{
				DisciplineID: d.ID,
				Reason:       fmt.Sprintf("discipline %s: calendar has no business weeks", d.ID),
			},
			appErrors.ErrInfeasibleLoad.Code, appErrors.ErrInfeasibleLoad.Status,
			"no business weeks available")
	}

	longestWindow := 0
	for _, window := range d.AllowedWindows {
		if window.Duration() > longestWindow {
			longestWindow = window.Duration()
		}
	}

	required := d.RequiredMinutes()
	duration := roundUpToBlock(ceilDiv(required, weeks), granularityMinutes)
	if duration > d.MaxSessionMinutes {
		duration = d.MaxSessionMinutes
	}
	if duration > longestWindow {
		duration = longestWindow
	}

	count := ceilDiv(required, duration)
	capacity := weeks * weekdays
	if count > capacity {
		return models.SessionPlan{}, appErrors.Wrap(
			&models.InfeasibleLoad{
				DisciplineID:   d.ID,
				SessionCount:   count,
				WeeklyCapacity: capacity,
				Reason: fmt.Sprintf("discipline %s needs %d sessions but only %d weekly slots exist (%d weeks x %d weekdays)",
					d.ID, count, capacity, weeks, weekdays),
			},
			appErrors.ErrInfeasibleLoad.Code, appErrors.ErrInfeasibleLoad.Status,
			fmt.Sprintf("discipline %s does not fit the available weeks", d.ID))
	}

	a.logger.Debug("discipline analyzed",
		zap.String("discipline", d.ID),
		zap.Int("session_count", count),
		zap.Int("session_duration_minutes", duration),
	)
	return models.SessionPlan{
		DisciplineID:           d.ID,
		SessionCount:           count,
		SessionDurationMinutes: duration,
	}, nil
}

func (a *DisciplineAnalyzer) checkDiscipline(d models.Discipline) error {
	if d.ID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "discipline identifier is required")
	}
	if d.RequiredHours <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("discipline %s: required hours must be positive", d.ID))
	}
	if len(d.AllowedWeekdays) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("discipline %s: allowed weekdays must not be empty", d.ID))
	}
	if d.MaxSessionMinutes <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("discipline %s: max session minutes must be positive", d.ID))
	}
	for _, window := range d.AllowedWindows {
		if !window.Valid() {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("discipline %s: window %s must end after it starts", d.ID, window))
		}
	}
	if len(d.AllowedWindows) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("discipline %s: allowed time windows must not be empty", d.ID))
	}
	return nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func roundUpToBlock(minutes, block int) int {
	if block <= 0 {
		return minutes
	}
	return ceilDiv(minutes, block) * block
}
