package models

// ConflictKind classifies a detected overlap or constraint violation.
type ConflictKind string

const (
	ConflictInstructorOverlap ConflictKind = "INSTRUCTOR_OVERLAP"
	ConflictRoomOverlap       ConflictKind = "ROOM_OVERLAP"
	ConflictCohortOverlap     ConflictKind = "COHORT_OVERLAP"
	ConflictCalendarViolation ConflictKind = "CALENDAR_VIOLATION"
)

// ConflictRecord describes one validation finding. It is transient output:
// produced by a validation pass, never persisted as primary state.
type ConflictRecord struct {
	Kind          ConflictKind `json:"kind"`
	SlotsInvolved []Assignment `json:"slots_involved"`
	Description   string       `json:"description"`
}

// UnresolvedConflictError carries the conflicts remaining after the retry
// budget is exhausted.
type UnresolvedConflictError struct {
	Attempts  int              `json:"attempts"`
	Conflicts []ConflictRecord `json:"conflicts"`
}

// Error implements the error interface.
func (e *UnresolvedConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Conflicts) == 1 {
		return e.Conflicts[0].Description
	}
	return "timetable conflicts remain after retry budget exhausted"
}
