package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/acadepol/horarios-api/internal/dto"
	"github.com/acadepol/horarios-api/internal/loader"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
	"github.com/acadepol/horarios-api/pkg/response"
)

// DisciplineHandler turns course-office distribution files into generation
// payload entries.
type DisciplineHandler struct {
	loader *loader.DisciplineLoader
}

// NewDisciplineHandler constructs the handler.
func NewDisciplineHandler(l *loader.DisciplineLoader) *DisciplineHandler {
	return &DisciplineHandler{loader: l}
}

// Parse godoc
// @Summary Parse a discipline distribution CSV into generation payload entries
// @Description Rows missing weekdays or windows are filled from the named institutional grid.
// @Tags Disciplines
// @Accept mpfd
// @Produce json
// @Param preset query string false "Slot preset" Enums(weekly, biweekly) default(weekly)
// @Param instructorId query string true "Instructor assigned to the loaded disciplines"
// @Param cohortId query string true "Cohort attending the loaded disciplines"
// @Param file formData file true "Distribution CSV file"
// @Success 200 {object} response.Envelope
// @Router /disciplines/parse [post]
func (h *DisciplineHandler) Parse(c *gin.Context) {
	presetName := strings.ToLower(c.DefaultQuery("preset", "weekly"))
	if presetName != "weekly" && presetName != "biweekly" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "preset must be weekly or biweekly"))
		return
	}
	instructorID := strings.TrimSpace(c.Query("instructorId"))
	cohortID := strings.TrimSpace(c.Query("cohortId"))
	if instructorID == "" || cohortID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "instructorId and cohortId are required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "discipline distribution file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	disciplines, err := h.loader.Load(file, loader.PresetByName(presetName), instructorID, cohortID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to parse discipline distribution"))
		return
	}

	payload := make([]dto.DisciplineRequest, 0, len(disciplines))
	for _, d := range disciplines {
		payload = append(payload, dto.NewDisciplineRequest(d))
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
