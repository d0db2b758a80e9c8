package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/acadepol/horarios-api/internal/service"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
	"github.com/acadepol/horarios-api/pkg/response"
)

var exportMimeTypes = map[string]string{
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportHandler exposes snapshot export and download endpoints.
type ExportHandler struct {
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports *service.ExportService, metrics *service.MetricsService) *ExportHandler {
	return &ExportHandler{exports: exports, metrics: metrics}
}

// Export godoc
// @Summary Export a snapshot to CSV, PDF or XLSX
// @Tags Exports
// @Produce json
// @Param id path string true "Snapshot ID"
// @Param format query string true "Export format" Enums(csv, pdf, xlsx)
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.exports.Generate(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveExport(string(format))
	response.JSON(c, http.StatusOK, gin.H{
		"url":       result.URL,
		"format":    result.Format,
		"expiresAt": result.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download an exported file via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	_, relPath, _, err := h.exports.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token"))
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	mime := exportMimeTypes[filepath.Ext(relPath)]
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(relPath)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), mime, file, nil)
}
