package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/acadepol/horarios-api/internal/models"
)

// SnapshotRepository persists versioned timetable snapshots.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a snapshot assigning the next version for the
// course and academic year tuple.
func (r *SnapshotRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, snapshot *models.TimetableSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot payload is nil")
	}
	if snapshot.Course == "" || snapshot.AcademicYear == "" {
		return fmt.Errorf("course and academic_year are required")
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.Status == "" {
		snapshot.Status = models.SnapshotStatusDraft
	}
	if len(snapshot.Meta) == 0 {
		snapshot.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = now
	}
	snapshot.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_snapshots WHERE course = $1 AND academic_year = $2`
	if err := sqlx.GetContext(ctx, target, &snapshot.Version, nextVersionQuery, snapshot.Course, snapshot.AcademicYear); err != nil {
		return fmt.Errorf("compute next snapshot version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetable_snapshots (id, course, academic_year, version, status, meta, created_at, updated_at)
VALUES (:id, :course, :academic_year, :version, :status, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, snapshot); err != nil {
		return fmt.Errorf("insert timetable snapshot: %w", err)
	}
	return nil
}

// ListByCourseYear returns all versions for the provided course and year.
func (r *SnapshotRepository) ListByCourseYear(ctx context.Context, course, academicYear string) ([]models.TimetableSnapshot, error) {
	const query = `SELECT id, course, academic_year, version, status, meta, created_at, updated_at
FROM timetable_snapshots WHERE course = $1 AND academic_year = $2 ORDER BY version DESC`
	var snapshots []models.TimetableSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, course, academicYear); err != nil {
		return nil, fmt.Errorf("list timetable snapshots: %w", err)
	}
	return snapshots, nil
}

// FindByID loads a snapshot by its identifier.
func (r *SnapshotRepository) FindByID(ctx context.Context, id string) (*models.TimetableSnapshot, error) {
	const query = `SELECT id, course, academic_year, version, status, meta, created_at, updated_at FROM timetable_snapshots WHERE id = $1`
	var snapshot models.TimetableSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, id); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Delete removes a stored snapshot version.
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetable_snapshots WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable snapshot rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus updates the status (and optionally meta) of a snapshot.
func (r *SnapshotRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SnapshotStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	var (
		query string
		args  []interface{}
	)
	if len(meta) > 0 {
		query = `UPDATE timetable_snapshots SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, meta, now, id}
	} else {
		query = `UPDATE timetable_snapshots SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	}
	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update timetable snapshot status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable snapshot status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
