package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SnapshotStatus represents lifecycle phases for generated timetables.
type SnapshotStatus string

const (
	SnapshotStatusDraft     SnapshotStatus = "DRAFT"
	SnapshotStatusPublished SnapshotStatus = "PUBLISHED"
	SnapshotStatusArchived  SnapshotStatus = "ARCHIVED"
)

// TimetableSnapshot is one immutable result of a pipeline run, versioned
// per course and academic year by the repository.
type TimetableSnapshot struct {
	ID           string         `db:"id" json:"id"`
	Course       string         `db:"course" json:"course"`
	AcademicYear string         `db:"academic_year" json:"academic_year"`
	Version      int            `db:"version" json:"version"`
	Status       SnapshotStatus `db:"status" json:"status"`
	Meta         types.JSONText `db:"meta" json:"meta"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`

	Assignments []Assignment `db:"-" json:"assignments,omitempty"`
}

// SnapshotAssignment is the persisted row form of one Assignment.
type SnapshotAssignment struct {
	ID           string    `db:"id" json:"id"`
	SnapshotID   string    `db:"snapshot_id" json:"snapshot_id"`
	DisciplineID string    `db:"discipline_id" json:"discipline_id"`
	Weekday      int       `db:"weekday" json:"weekday"`
	StartMinute  int       `db:"start_minute" json:"start_minute"`
	EndMinute    int       `db:"end_minute" json:"end_minute"`
	WeekIndex    int       `db:"week_index" json:"week_index"`
	SessionDate  time.Time `db:"session_date" json:"session_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Pagination describes list slicing metadata in responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
