package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
)

// ConflictValidator checks a generated assignment set for double bookings
// and calendar violations. It always completes the full pass so the pipeline
// can exclude every conflicting slot at once before retrying.
type ConflictValidator struct {
	metrics *MetricsService
	logger  *zap.Logger
}

// NewConflictValidator constructs the validator. A nil metrics service
// disables instrumentation.
func NewConflictValidator(metrics *MetricsService, logger *zap.Logger) *ConflictValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictValidator{metrics: metrics, logger: logger}
}

// Validate reports every conflict in the assignment set. Two assignments in
// the same calendar week with overlapping time ranges produce one record per
// shared dimension: instructor, room (when both are set) and cohort. Each
// assignment is also rechecked against the calendar; a date landing on a
// holiday, an optional holiday or outside the range is a calendar violation.
func (v *ConflictValidator) Validate(
	assignments []models.Assignment,
	disciplines []models.Discipline,
	cal *models.Calendar,
) []models.ConflictRecord {
	byID := make(map[string]models.Discipline, len(disciplines))
	for _, d := range disciplines {
		byID[d.ID] = d
	}

	var conflicts []models.ConflictRecord

	for i := 0; i < len(assignments); i++ {
		for j := i + 1; j < len(assignments); j++ {
			a, b := assignments[i], assignments[j]
			if a.WeekIndex != b.WeekIndex || a.Slot.Weekday != b.Slot.Weekday {
				continue
			}
			if !a.Slot.Overlaps(b.Slot) {
				continue
			}
			da, db := byID[a.DisciplineID], byID[b.DisciplineID]
			if da.InstructorID != "" && da.InstructorID == db.InstructorID {
				conflicts = append(conflicts, models.ConflictRecord{
					Kind:          models.ConflictInstructorOverlap,
					SlotsInvolved: []models.Assignment{a, b},
					Description: fmt.Sprintf("instructor %s booked twice on %s week %d (%s and %s)",
						da.InstructorID, a.Slot.Weekday, a.WeekIndex, a.Slot, b.Slot),
				})
			}
			if da.RoomID != "" && da.RoomID == db.RoomID {
				conflicts = append(conflicts, models.ConflictRecord{
					Kind:          models.ConflictRoomOverlap,
					SlotsInvolved: []models.Assignment{a, b},
					Description: fmt.Sprintf("room %s booked twice on %s week %d (%s and %s)",
						da.RoomID, a.Slot.Weekday, a.WeekIndex, a.Slot, b.Slot),
				})
			}
			if da.CohortID != "" && da.CohortID == db.CohortID {
				conflicts = append(conflicts, models.ConflictRecord{
					Kind:          models.ConflictCohortOverlap,
					SlotsInvolved: []models.Assignment{a, b},
					Description: fmt.Sprintf("cohort %s double booked on %s week %d (%s and %s)",
						da.CohortID, a.Slot.Weekday, a.WeekIndex, a.Slot, b.Slot),
				})
			}
		}
	}

	for _, a := range assignments {
		day, ok := cal.DayAt(a.WeekIndex, a.Slot.Weekday)
		switch {
		case !ok:
			conflicts = append(conflicts, models.ConflictRecord{
				Kind:          models.ConflictCalendarViolation,
				SlotsInvolved: []models.Assignment{a},
				Description: fmt.Sprintf("discipline %s placed outside the calendar range (week %d %s)",
					a.DisciplineID, a.WeekIndex, a.Slot.Weekday),
			})
		case day.IsHoliday || day.IsOptionalHoliday:
			conflicts = append(conflicts, models.ConflictRecord{
				Kind:          models.ConflictCalendarViolation,
				SlotsInvolved: []models.Assignment{a},
				Description: fmt.Sprintf("discipline %s placed on %s (%s)",
					a.DisciplineID, day.Date.Format("2006-01-02"), day.HolidayName),
			})
		}
	}

	if len(conflicts) > 0 {
		byKind := make(map[models.ConflictKind]int, 4)
		for _, conflict := range conflicts {
			byKind[conflict.Kind]++
		}
		for kind, count := range byKind {
			v.metrics.ObserveConflicts(string(kind), count)
		}
		v.logger.Debug("validation found conflicts",
			zap.Int("assignments", len(assignments)),
			zap.Int("conflicts", len(conflicts)),
		)
	}
	return conflicts
}
