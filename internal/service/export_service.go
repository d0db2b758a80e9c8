package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
	"github.com/acadepol/horarios-api/pkg/export"
	"github.com/acadepol/horarios-api/pkg/storage"
)

// ExportFormat identifies a supported timetable export format.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

type exportSnapshotReader interface {
	FindByID(ctx context.Context, id string) (*models.TimetableSnapshot, error)
}

type exportAssignmentReader interface {
	ListBySnapshot(ctx context.Context, snapshotID string) ([]models.SnapshotAssignment, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheetName string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders stored timetable snapshots into downloadable files.
type ExportService struct {
	snapshots   exportSnapshotReader
	assignments exportAssignmentReader
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	xlsx        xlsxRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(
	snapshots exportSnapshotReader,
	assignments exportAssignmentReader,
	store fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		snapshots:   snapshots,
		assignments: assignments,
		storage:     store,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		xlsx:        export.NewXLSXExporter(),
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
	}
}

var exportHeaders = []string{"Discipline", "Week", "Date", "Weekday", "Start", "End"}

// Generate renders the snapshot in the requested format, stores the file and
// returns a signed download URL.
func (s *ExportService) Generate(ctx context.Context, snapshotID string, format ExportFormat) (*ExportResult, error) {
	snapshot, err := s.snapshots.FindByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable snapshot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable snapshot")
	}
	rows, err := s.assignments.ListBySnapshot(ctx, snapshotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list snapshot assignments")
	}

	dataset := buildExportDataset(rows)
	title := fmt.Sprintf("%s %s v%d", snapshot.Course, snapshot.AcademicYear, snapshot.Version)

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, "Timetable")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("%s/%s_v%d_%s.%s",
		snapshot.AcademicYear,
		sanitizeFilename(snapshot.Course),
		snapshot.Version,
		time.Now().UTC().Format("20060102T150405"),
		format,
	)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export file")
	}

	token, expiresAt, err := s.signer.Generate(snapshot.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("snapshot exported",
		zap.String("snapshot_id", snapshot.ID),
		zap.String("format", string(format)),
		zap.String("path", relPath),
	)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (snapshotID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes exports older than the result TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

func buildExportDataset(rows []models.SnapshotAssignment) export.Dataset {
	dataset := export.Dataset{Headers: exportHeaders}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Discipline": row.DisciplineID,
			"Week":       fmt.Sprintf("%d", row.WeekIndex+1),
			"Date":       row.SessionDate.Format("2006-01-02"),
			"Weekday":    time.Weekday(row.Weekday).String(),
			"Start":      models.FormatClock(row.StartMinute),
			"End":        models.FormatClock(row.EndMinute),
		})
	}
	return dataset
}

func sanitizeFilename(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, raw)
	return strings.Trim(cleaned, "_")
}
