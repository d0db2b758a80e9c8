package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acadepol/horarios-api/internal/dto"
	"github.com/acadepol/horarios-api/internal/models"
	"github.com/acadepol/horarios-api/internal/service"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
	"github.com/acadepol/horarios-api/pkg/response"
)

const maxDisciplinesPerRequest = 128

type timetablePipeline interface {
	Run(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error)
	List(ctx context.Context, query dto.SnapshotQuery) ([]models.TimetableSnapshot, error)
	GetAssignments(ctx context.Context, id string) ([]models.SnapshotAssignment, error)
	GetPublished(ctx context.Context, course, academicYear string) (*models.TimetableSnapshot, []models.SnapshotAssignment, error)
	Publish(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// TimetableHandler exposes the generation pipeline and snapshot endpoints.
type TimetableHandler struct {
	pipeline timetablePipeline
	metrics  *service.MetricsService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(pipeline *service.TimetablePipeline, metrics *service.MetricsService) *TimetableHandler {
	return &TimetableHandler{pipeline: pipeline, metrics: metrics}
}

// Generate godoc
// @Summary Generate a timetable proposal
// @Description Runs the full pipeline: calendar validation, load analysis, greedy placement and conflict validation with bounded retries.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	if len(req.Disciplines) > maxDisciplinesPerRequest {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "too many disciplines in one request"))
		return
	}
	started := time.Now()
	result, err := h.pipeline.Run(c.Request.Context(), req)
	elapsed := time.Since(started)
	if err != nil {
		h.metrics.ObservePipelineRun("failure", 0, elapsed)
		response.Error(c, err)
		return
	}
	h.metrics.ObservePipelineRun("success", result.Stats.Attempts, elapsed)
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Save a proposal as a versioned snapshot
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Router /timetables/save [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	id, err := h.pipeline.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"snapshotId": id})
}

// List godoc
// @Summary List snapshot versions for a course and academic year
// @Tags Timetables
// @Produce json
// @Param course query string true "Course"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	query := dto.SnapshotQuery{
		Course:       c.Query("course"),
		AcademicYear: c.Query("academicYear"),
	}
	result, err := h.pipeline.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Assignments godoc
// @Summary Get the assignment rows of a snapshot
// @Tags Timetables
// @Produce json
// @Param id path string true "Snapshot ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/assignments [get]
func (h *TimetableHandler) Assignments(c *gin.Context) {
	rows, err := h.pipeline.GetAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Published godoc
// @Summary Get the latest published timetable for a course and academic year
// @Tags Timetables
// @Produce json
// @Param course query string true "Course"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /published-timetables [get]
func (h *TimetableHandler) Published(c *gin.Context) {
	snapshot, rows, err := h.pipeline.GetPublished(c.Request.Context(), c.Query("course"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"snapshot":    snapshot,
		"assignments": rows,
	}, nil)
}

// Publish godoc
// @Summary Publish a draft snapshot
// @Tags Timetables
// @Param id path string true "Snapshot ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	id := c.Param("id")
	if err := h.pipeline.Publish(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"snapshotId": id, "status": models.SnapshotStatusPublished}, nil)
}

// Delete godoc
// @Summary Delete a draft snapshot version
// @Tags Timetables
// @Param id path string true "Snapshot ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.pipeline.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
