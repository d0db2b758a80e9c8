package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/acadepol/horarios-api/internal/models"
)

const dateLayout = "2006-01-02"

// HolidayRecordRequest is one holiday list entry in a generation payload.
type HolidayRecordRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=national optional"`
}

// TimeWindowRequest is an allowed daily window expressed as clock strings.
type TimeWindowRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// DisciplineRequest describes one discipline and its placement constraints.
// Weekdays, windows and the session cap may be omitted together with a preset
// name; the institutional grid then fills them in.
type DisciplineRequest struct {
	ID                string              `json:"id" validate:"required"`
	Name              string              `json:"name"`
	RequiredHours     int                 `json:"requiredHours" validate:"required,min=1"`
	Weekdays          []string            `json:"weekdays" validate:"omitempty,min=1"`
	Windows           []TimeWindowRequest `json:"windows" validate:"omitempty,min=1,dive"`
	InstructorID      string              `json:"instructorId" validate:"required"`
	CohortID          string              `json:"cohortId" validate:"required"`
	RoomID            string              `json:"roomId"`
	MaxSessionMinutes int                 `json:"maxSessionMinutes" validate:"omitempty,min=1"`
	Preset            string              `json:"preset" validate:"omitempty,oneof=weekly biweekly"`
}

// GenerateTimetableRequest instructs the pipeline to build a timetable for
// one course and academic year.
type GenerateTimetableRequest struct {
	Course       string                 `json:"course" validate:"required"`
	AcademicYear string                 `json:"academicYear" validate:"required"`
	StartDate    string                 `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string                 `json:"endDate" validate:"required,datetime=2006-01-02"`
	Holidays     []HolidayRecordRequest `json:"holidays" validate:"omitempty,dive"`
	Disciplines  []DisciplineRequest    `json:"disciplines" validate:"required,min=1,dive"`

	// Optional overrides of the configured scheduler options.
	WeekendDays                []string `json:"weekendDays"`
	RoundingGranularityMinutes int      `json:"roundingGranularityMinutes" validate:"omitempty,min=5"`
	MaxRetries                 int      `json:"maxRetries" validate:"omitempty,min=0,max=20"`
}

// AssignmentView is the display form of one placed session.
type AssignmentView struct {
	DisciplineID string `json:"disciplineId"`
	Weekday      string `json:"weekday"`
	Start        string `json:"start"`
	End          string `json:"end"`
	WeekIndex    int    `json:"weekIndex"`
	Date         string `json:"date"`
}

// ConflictView is the display form of one validation finding.
type ConflictView struct {
	Kind        string           `json:"kind"`
	Description string           `json:"description"`
	Slots       []AssignmentView `json:"slots"`
}

// PipelineStats summarises a pipeline run.
type PipelineStats struct {
	Attempts       int `json:"attempts"`
	BusinessDays   int `json:"businessDays"`
	WeeksAvailable int `json:"weeksAvailable"`
}

// GenerateTimetableResponse returns the built proposal.
type GenerateTimetableResponse struct {
	ProposalID  string                  `json:"proposalId"`
	State       string                  `json:"state"`
	Stats       PipelineStats           `json:"stats"`
	Plans       []models.SessionPlan    `json:"plans"`
	Assignments []AssignmentView        `json:"assignments"`
	Conflicts   []ConflictView          `json:"conflicts,omitempty"`
	Infeasible  []models.InfeasibleLoad `json:"infeasible,omitempty"`
}

// SaveTimetableRequest persists a proposal as a versioned snapshot.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// SnapshotQuery filters stored snapshots by course and academic year.
type SnapshotQuery struct {
	Course       string `form:"course" json:"course"`
	AcademicYear string `form:"academicYear" json:"academicYear"`
}

// ParseDate converts a payload date string into a UTC midnight time.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// ToHolidayRecord converts the payload entry into its model form.
func (r HolidayRecordRequest) ToHolidayRecord() (models.HolidayRecord, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return models.HolidayRecord{}, err
	}
	kind := models.HolidayKindNational
	if r.Kind == "optional" {
		kind = models.HolidayKindOptional
	}
	return models.HolidayRecord{Date: date, Name: r.Name, Kind: kind}, nil
}

// ToDiscipline converts the payload entry into its model form.
func (r DisciplineRequest) ToDiscipline() (models.Discipline, error) {
	weekdays, err := models.ParseWeekdaySet(r.Weekdays)
	if err != nil {
		return models.Discipline{}, err
	}
	windows := make([]models.TimeWindow, 0, len(r.Windows))
	for _, win := range r.Windows {
		start, err := models.ParseClock(win.Start)
		if err != nil {
			return models.Discipline{}, err
		}
		end, err := models.ParseClock(win.End)
		if err != nil {
			return models.Discipline{}, err
		}
		windows = append(windows, models.TimeWindow{StartMinute: start, EndMinute: end})
	}
	return models.Discipline{
		ID:                r.ID,
		Name:              r.Name,
		RequiredHours:     r.RequiredHours,
		AllowedWeekdays:   weekdays,
		AllowedWindows:    windows,
		InstructorID:      r.InstructorID,
		CohortID:          r.CohortID,
		RoomID:            r.RoomID,
		MaxSessionMinutes: r.MaxSessionMinutes,
	}, nil
}

// NewDisciplineRequest converts a loaded discipline back into its payload
// form, ready to be embedded in a generation request.
func NewDisciplineRequest(d models.Discipline) DisciplineRequest {
	weekdays := make([]string, 0, len(d.AllowedWeekdays))
	for _, wd := range d.AllowedWeekdays {
		weekdays = append(weekdays, strings.ToLower(wd.String()))
	}
	windows := make([]TimeWindowRequest, 0, len(d.AllowedWindows))
	for _, win := range d.AllowedWindows {
		windows = append(windows, TimeWindowRequest{
			Start: models.FormatClock(win.StartMinute),
			End:   models.FormatClock(win.EndMinute),
		})
	}
	return DisciplineRequest{
		ID:                d.ID,
		Name:              d.Name,
		RequiredHours:     d.RequiredHours,
		Weekdays:          weekdays,
		Windows:           windows,
		InstructorID:      d.InstructorID,
		CohortID:          d.CohortID,
		RoomID:            d.RoomID,
		MaxSessionMinutes: d.MaxSessionMinutes,
	}
}

// NewAssignmentView converts a model assignment for display.
func NewAssignmentView(a models.Assignment) AssignmentView {
	return AssignmentView{
		DisciplineID: a.DisciplineID,
		Weekday:      a.Slot.Weekday.String(),
		Start:        models.FormatClock(a.Slot.StartMinute),
		End:          models.FormatClock(a.Slot.EndMinute),
		WeekIndex:    a.WeekIndex,
		Date:         a.Date.Format(dateLayout),
	}
}

// NewConflictView converts a model conflict for display.
func NewConflictView(c models.ConflictRecord) ConflictView {
	slots := make([]AssignmentView, 0, len(c.SlotsInvolved))
	for _, a := range c.SlotsInvolved {
		slots = append(slots, NewAssignmentView(a))
	}
	return ConflictView{Kind: string(c.Kind), Description: c.Description, Slots: slots}
}
