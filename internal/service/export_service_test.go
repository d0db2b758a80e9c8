package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
	"github.com/acadepol/horarios-api/pkg/storage"
)

type exportSnapshotStub struct {
	snapshot *models.TimetableSnapshot
}

func (s *exportSnapshotStub) FindByID(_ context.Context, id string) (*models.TimetableSnapshot, error) {
	if s.snapshot == nil || s.snapshot.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.snapshot, nil
}

type exportAssignmentStub struct {
	rows []models.SnapshotAssignment
}

func (s *exportAssignmentStub) ListBySnapshot(_ context.Context, _ string) ([]models.SnapshotAssignment, error) {
	return s.rows, nil
}

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	snapshots := &exportSnapshotStub{snapshot: &models.TimetableSnapshot{
		ID:           "snap-1",
		Course:       "criminologia aplicada",
		AcademicYear: "2026-2027",
		Version:      3,
		Status:       models.SnapshotStatusPublished,
		Meta:         types.JSONText(`{}`),
	}}
	assignments := &exportAssignmentStub{rows: []models.SnapshotAssignment{
		{SnapshotID: "snap-1", DisciplineID: "CRIM", Weekday: 1, StartMinute: 19 * 60, EndMinute: 20*60 + 40, WeekIndex: 0, SessionDate: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{SnapshotID: "snap-1", DisciplineID: "CRIM", Weekday: 3, StartMinute: 19 * 60, EndMinute: 20*60 + 40, WeekIndex: 0, SessionDate: time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)},
	}}

	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(snapshots, assignments, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil)
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.Generate(context.Background(), "snap-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, result.Format)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/"))
	assert.Contains(t, result.RelativePath, "criminologia_aplicada_v3_")
	assert.True(t, result.ExpiresAt.After(time.Now()))

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	content, err := io.ReadAll(file)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "Discipline,Week,Date,Weekday,Start,End")
	assert.Contains(t, text, "CRIM,1,2026-03-02,Monday,19:00,20:40")
	assert.Contains(t, text, "CRIM,1,2026-03-04,Wednesday,19:00,20:40")
}

func TestExportServiceGenerateBinaryFormats(t *testing.T) {
	svc := newExportFixture(t)

	for _, format := range []ExportFormat{ExportFormatPDF, ExportFormatXLSX} {
		result, err := svc.Generate(context.Background(), "snap-1", format)
		require.NoError(t, err, "format %s", format)

		file, err := svc.Open(result.RelativePath)
		require.NoError(t, err)
		content, err := io.ReadAll(file)
		file.Close() //nolint:errcheck
		require.NoError(t, err)
		assert.NotEmpty(t, content, "format %s", format)
	}
}

func TestExportServiceTokenRoundTrip(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.Generate(context.Background(), "snap-1", ExportFormatCSV)
	require.NoError(t, err)

	snapshotID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "snap-1", snapshotID)
	assert.Equal(t, result.RelativePath, relPath)

	_, _, _, err = svc.ParseToken(result.Token+"tampered", false)
	require.Error(t, err)
}

func TestExportServiceUnknownSnapshot(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.Generate(context.Background(), "missing", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.Generate(context.Background(), "snap-1", ExportFormat("docx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
