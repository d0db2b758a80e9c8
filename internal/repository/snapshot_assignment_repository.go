package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadepol/horarios-api/internal/models"
)

// SnapshotAssignmentRepository manages the assignment rows of a snapshot.
type SnapshotAssignmentRepository struct {
	db *sqlx.DB
}

// NewSnapshotAssignmentRepository builds repository.
func NewSnapshotAssignmentRepository(db *sqlx.DB) *SnapshotAssignmentRepository {
	return &SnapshotAssignmentRepository{db: db}
}

func (r *SnapshotAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch inserts the assignment rows of a freshly created snapshot.
// Snapshots are immutable, so there is no update path.
func (r *SnapshotAssignmentRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.SnapshotAssignment) error {
	if len(rows) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO snapshot_assignments (id, snapshot_id, discipline_id, weekday, start_minute, end_minute, week_index, session_date, created_at)
VALUES (:id, :snapshot_id, :discipline_id, :weekday, :start_minute, :end_minute, :week_index, :session_date, :created_at)`

	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, row); err != nil {
			return fmt.Errorf("insert snapshot assignment: %w", err)
		}
	}
	return nil
}

// ListBySnapshot returns assignments ordered by week, weekday and start time.
func (r *SnapshotAssignmentRepository) ListBySnapshot(ctx context.Context, snapshotID string) ([]models.SnapshotAssignment, error) {
	const query = `SELECT id, snapshot_id, discipline_id, weekday, start_minute, end_minute, week_index, session_date, created_at
FROM snapshot_assignments WHERE snapshot_id = $1 ORDER BY week_index ASC, weekday ASC, start_minute ASC`
	var rows []models.SnapshotAssignment
	if err := r.db.SelectContext(ctx, &rows, query, snapshotID); err != nil {
		return nil, fmt.Errorf("list snapshot assignments: %w", err)
	}
	return rows, nil
}
