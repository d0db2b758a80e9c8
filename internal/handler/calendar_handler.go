package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acadepol/horarios-api/internal/dto"
	"github.com/acadepol/horarios-api/internal/loader"
	"github.com/acadepol/horarios-api/internal/models"
	"github.com/acadepol/horarios-api/internal/service"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
	"github.com/acadepol/horarios-api/pkg/response"
)

type calendarPreviewRequest struct {
	StartDate   string                     `json:"startDate" binding:"required"`
	EndDate     string                     `json:"endDate" binding:"required"`
	Holidays    []dto.HolidayRecordRequest `json:"holidays"`
	WeekendDays []string                   `json:"weekendDays"`
}

type calendarPreviewResponse struct {
	StartDate      string               `json:"startDate"`
	EndDate        string               `json:"endDate"`
	BusinessDays   int                  `json:"businessDays"`
	WeeksAvailable int                  `json:"weeksAvailable"`
	WeekCount      int                  `json:"weekCount"`
	Days           []models.CalendarDay `json:"days"`
}

// CalendarHandler exposes calendar preview and holiday list endpoints.
type CalendarHandler struct {
	calendars *service.CalendarService
	parser    *loader.HolidayParser
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(calendars *service.CalendarService, parser *loader.HolidayParser) *CalendarHandler {
	return &CalendarHandler{calendars: calendars, parser: parser}
}

// Preview godoc
// @Summary Preview the validated calendar for a date range
// @Tags Calendars
// @Accept json
// @Produce json
// @Param payload body calendarPreviewRequest true "Calendar preview payload"
// @Success 200 {object} response.Envelope
// @Router /calendars/preview [post]
func (h *CalendarHandler) Preview(c *gin.Context) {
	var req calendarPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar preview payload"))
		return
	}
	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid start date"))
		return
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid end date"))
		return
	}
	records := make([]models.HolidayRecord, 0, len(req.Holidays))
	for _, item := range req.Holidays {
		record, convErr := item.ToHolidayRecord()
		if convErr != nil {
			response.Error(c, appErrors.Wrap(convErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid holiday record"))
			return
		}
		records = append(records, record)
	}
	var weekend []time.Weekday
	if len(req.WeekendDays) > 0 {
		weekend, err = models.ParseWeekdaySet(req.WeekendDays)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weekend days"))
			return
		}
	}

	cal, err := h.calendars.BuildCalendar(start, end, records, weekend)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendarPreviewResponse{
		StartDate:      cal.StartDate.Format("2006-01-02"),
		EndDate:        cal.EndDate.Format("2006-01-02"),
		BusinessDays:   cal.BusinessDayCount(),
		WeeksAvailable: cal.WeeksAvailable(),
		WeekCount:      cal.WeekCount(),
		Days:           cal.Days,
	}, nil)
}

// ParseHolidays godoc
// @Summary Parse an office holiday list into structured records
// @Tags Calendars
// @Accept mpfd
// @Produce json
// @Param year query int true "Calendar year"
// @Param file formData file true "Holiday list text file"
// @Success 200 {object} response.Envelope
// @Router /holidays/parse [post]
func (h *CalendarHandler) ParseHolidays(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a four digit calendar year"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "holiday list file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	records, err := h.parser.Parse(file, year)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to parse holiday list"))
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// DefaultHolidays godoc
// @Summary List the default national and optional holiday tables
// @Tags Calendars
// @Produce json
// @Param year query int true "Calendar year"
// @Success 200 {object} response.Envelope
// @Router /holidays/defaults [get]
func (h *CalendarHandler) DefaultHolidays(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a four digit calendar year"))
		return
	}
	response.JSON(c, http.StatusOK, loader.DefaultHolidays(year), nil)
}
