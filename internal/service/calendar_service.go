package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

// CalendarService builds and validates academic calendars: it merges a raw
// date range with the holiday list, flags every day and derives the counters
// the rest of the pipeline works from.
type CalendarService struct {
	defaultWeekend []time.Weekday
	logger         *zap.Logger
}

// NewCalendarService constructs the service with the configured weekend set.
func NewCalendarService(weekendDays []time.Weekday, logger *zap.Logger) *CalendarService {
	if len(weekendDays) == 0 {
		weekendDays = []time.Weekday{time.Saturday, time.Sunday}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{defaultWeekend: weekendDays, logger: logger}
}

// BuildCalendar produces one CalendarDay per date in [start, end], flagged
// from the holiday records. A nil weekend set falls back to the configured
// default. The returned calendar is immutable.
func (s *CalendarService) BuildCalendar(start, end time.Time, records []models.HolidayRecord, weekendDays []time.Weekday) (*models.Calendar, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange,
			fmt.Sprintf("start date %s must precede end date %s", start.Format("2006-01-02"), end.Format("2006-01-02")))
	}

	byDate := make(map[string]models.HolidayRecord, len(records))
	for _, record := range records {
		key := truncateToDate(record.Date).Format("2006-01-02")
		existing, ok := byDate[key]
		if !ok {
			record.Date = truncateToDate(record.Date)
			byDate[key] = record
			continue
		}
		if existing.Kind != record.Kind {
			return nil, appErrors.Clone(appErrors.ErrDuplicateHoliday,
				fmt.Sprintf("holiday records for %s disagree on kind (%s vs %s)", key, existing.Kind, record.Kind))
		}
		// Identical duplicates are collapsed silently.
	}

	if len(weekendDays) == 0 {
		weekendDays = s.defaultWeekend
	}
	weekend := make(map[time.Weekday]bool, len(weekendDays))
	for _, wd := range weekendDays {
		weekend[wd] = true
	}

	days := make([]models.CalendarDay, 0, int(end.Sub(start).Hours()/24)+1)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		day := models.CalendarDay{
			Date:    current,
			Weekday: current.Weekday(),
		}
		if record, ok := byDate[current.Format("2006-01-02")]; ok {
			day.HolidayName = record.Name
			switch record.Kind {
			case models.HolidayKindOptional:
				day.IsOptionalHoliday = true
			default:
				day.IsHoliday = true
			}
		}
		days = append(days, day)
	}

	cal := models.NewCalendar(start, end, days, weekend)
	s.logger.Debug("calendar built",
		zap.String("start", start.Format("2006-01-02")),
		zap.String("end", end.Format("2006-01-02")),
		zap.Int("days", len(days)),
		zap.Int("business_days", cal.BusinessDayCount()),
		zap.Int("weeks_available", cal.WeeksAvailable()),
	)
	return cal, nil
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
