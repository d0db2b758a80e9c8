package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadepol/horarios-api/internal/dto"
	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

type snapshotRepoStub struct {
	created  *models.TimetableSnapshot
	statuses []models.SnapshotStatus
	stored   map[string]*models.TimetableSnapshot
	list     []models.TimetableSnapshot
}

func (s *snapshotRepoStub) CreateVersioned(_ context.Context, _ sqlx.ExtContext, snapshot *models.TimetableSnapshot) error {
	snapshot.ID = "snap-1"
	snapshot.Version = 1
	s.created = snapshot
	return nil
}

func (s *snapshotRepoStub) ListByCourseYear(_ context.Context, _, _ string) ([]models.TimetableSnapshot, error) {
	return s.list, nil
}

func (s *snapshotRepoStub) FindByID(_ context.Context, id string) (*models.TimetableSnapshot, error) {
	if snapshot, ok := s.stored[id]; ok {
		return snapshot, nil
	}
	return nil, sql.ErrNoRows
}

func (s *snapshotRepoStub) Delete(_ context.Context, _ string) error { return nil }

func (s *snapshotRepoStub) UpdateStatus(_ context.Context, _ sqlx.ExtContext, _ string, status models.SnapshotStatus, _ types.JSONText) error {
	s.statuses = append(s.statuses, status)
	return nil
}

type assignmentRepoStub struct {
	inserted []models.SnapshotAssignment
}

func (s *assignmentRepoStub) InsertBatch(_ context.Context, _ sqlx.ExtContext, rows []models.SnapshotAssignment) error {
	s.inserted = append(s.inserted, rows...)
	return nil
}

func (s *assignmentRepoStub) ListBySnapshot(_ context.Context, _ string) ([]models.SnapshotAssignment, error) {
	return s.inserted, nil
}

type publishedCacheStub struct {
	stored      int
	invalidated int
	hits        int
	cached      *models.TimetableSnapshot
	cachedRows  []models.SnapshotAssignment
}

func (s *publishedCacheStub) StorePublished(_ context.Context, snapshot *models.TimetableSnapshot, rows []models.SnapshotAssignment) error {
	s.stored++
	s.cached = snapshot
	s.cachedRows = rows
	return nil
}

func (s *publishedCacheStub) GetPublished(_ context.Context, _, _ string) (*models.TimetableSnapshot, []models.SnapshotAssignment, error) {
	if s.cached == nil {
		return nil, nil, appErrors.ErrCacheMiss
	}
	s.hits++
	return s.cached, s.cachedRows, nil
}

func (s *publishedCacheStub) Invalidate(_ context.Context, _, _ string) error {
	s.invalidated++
	return nil
}

func newTxProviderMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func newPipelineFixture(snapshots snapshotRepository, assignments snapshotAssignmentRepository, cache publishedSnapshotCache, tx pipelineTxProvider) *TimetablePipeline {
	return NewTimetablePipeline(
		NewCalendarService(nil, nil),
		NewDisciplineAnalyzer(100, nil),
		NewTimetableGenerator(nil),
		NewConflictValidator(nil, nil),
		snapshots, assignments, cache, tx,
		nil, nil,
		PipelineConfig{MaxRetries: 5, ProposalTTL: time.Minute},
	)
}

func eveningRequest(disciplines ...dto.DisciplineRequest) dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{
		Course:       "criminologia",
		AcademicYear: "2026-2027",
		StartDate:    "2026-03-01",
		EndDate:      "2026-06-30",
		Holidays: []dto.HolidayRecordRequest{
			{Date: "2026-04-21", Name: "Tiradentes", Kind: "national"},
			{Date: "2026-04-20", Name: "Ponto Facultativo", Kind: "optional"},
		},
		Disciplines: disciplines,
	}
}

func eveningDisciplineRequest(id, instructor, cohort string, hours int) dto.DisciplineRequest {
	return dto.DisciplineRequest{
		ID:            id,
		Name:          id,
		RequiredHours: hours,
		Weekdays:      []string{"monday", "wednesday"},
		Windows: []dto.TimeWindowRequest{
			{Start: "19:00", End: "20:40"},
			{Start: "21:00", End: "22:40"},
		},
		InstructorID:      instructor,
		CohortID:          cohort,
		MaxSessionMinutes: 100,
	}
}

func TestPipelineRunSucceeds(t *testing.T) {
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, nil, nil)

	req := eveningRequest(
		eveningDisciplineRequest("D1", "P1", "C1", 20),
		eveningDisciplineRequest("D2", "P2", "C2", 12),
	)
	resp, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ProposalID)
	assert.Equal(t, string(StateSucceeded), resp.State)
	assert.Equal(t, 1, resp.Stats.Attempts)
	assert.Equal(t, 18, resp.Stats.WeeksAvailable)
	assert.Empty(t, resp.Conflicts)
	assert.Empty(t, resp.Infeasible)

	sessions := 0
	for _, plan := range resp.Plans {
		sessions += plan.SessionCount
	}
	assert.Len(t, resp.Assignments, sessions)
}

func TestPipelineRunReportsInfeasibleAndContinues(t *testing.T) {
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, nil, nil)

	overloaded := eveningDisciplineRequest("D9", "P9", "C9", 200)
	overloaded.Weekdays = []string{"monday"}
	req := eveningRequest(
		eveningDisciplineRequest("D1", "P1", "C1", 20),
		overloaded,
	)
	resp, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Infeasible, 1)
	assert.Equal(t, "D9", resp.Infeasible[0].DisciplineID)
	require.Len(t, resp.Plans, 1)
	assert.Equal(t, "D1", resp.Plans[0].DisciplineID)
}

func TestPipelineRunFailsWhenNothingFits(t *testing.T) {
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, nil, nil)

	overloaded := eveningDisciplineRequest("D9", "P9", "C9", 200)
	overloaded.Weekdays = []string{"monday"}
	resp, err := pipeline.Run(context.Background(), eveningRequest(overloaded))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestPipelineRunExhaustsRetriesOnSharedInstructor(t *testing.T) {
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, nil, nil)

	// Both disciplines demand the same instructor on the same evenings, so
	// every retry only shrinks the slot pool until nothing is left.
	req := eveningRequest(
		eveningDisciplineRequest("D1", "P1", "C1", 20),
		eveningDisciplineRequest("D2", "P1", "C2", 20),
	)
	_, err := pipeline.Run(context.Background(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrUnresolvedConflict.Code:
		var unresolved *models.UnresolvedConflictError
		require.True(t, errors.As(err, &unresolved))
		assert.NotEmpty(t, unresolved.Conflicts)
		// The remaining conflicts must survive into the serialized error.
		views, ok := appErr.Details.([]dto.ConflictView)
		require.True(t, ok)
		require.NotEmpty(t, views)
		assert.NotEmpty(t, views[0].Kind)
		assert.NotEmpty(t, views[0].Slots)
	case appErrors.ErrNoFeasibleSlot.Code:
		// Exclusions can exhaust the candidate pool before the retry budget.
	default:
		t.Fatalf("unexpected error code %s", appErr.Code)
	}
}

func TestPipelineRunAppliesPresetDefaults(t *testing.T) {
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, nil, nil)

	// No weekdays, windows or session cap: the weekly grid fills them in.
	req := eveningRequest(dto.DisciplineRequest{
		ID:            "D1",
		Name:          "D1",
		RequiredHours: 20,
		InstructorID:  "P1",
		CohortID:      "C1",
		Preset:        "weekly",
	})
	resp, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Assignments)
	for _, a := range resp.Assignments {
		assert.Contains(t, []string{"Monday", "Wednesday"}, a.Weekday)
	}
	require.Len(t, resp.Plans, 1)
	assert.Equal(t, 100, resp.Plans[0].SessionDurationMinutes)
}

func TestPipelineRunValidatesPayload(t *testing.T) {
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, nil, nil)

	_, err := pipeline.Run(context.Background(), dto.GenerateTimetableRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPipelineSavePersistsSnapshot(t *testing.T) {
	snapshots := &snapshotRepoStub{}
	assignments := &assignmentRepoStub{}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	pipeline := newPipelineFixture(snapshots, assignments, nil, tx)
	resp, err := pipeline.Run(context.Background(), eveningRequest(
		eveningDisciplineRequest("D1", "P1", "C1", 20),
	))
	require.NoError(t, err)

	id, err := pipeline.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, "snap-1", id)
	require.NotNil(t, snapshots.created)
	assert.Equal(t, models.SnapshotStatusDraft, snapshots.created.Status)
	assert.Equal(t, "criminologia", snapshots.created.Course)
	assert.Len(t, assignments.inserted, len(resp.Assignments))
	assert.NoError(t, mock.ExpectationsWereMet())

	// The proposal is consumed by a successful save.
	_, err = pipeline.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPipelineSaveAndPublishCachesSnapshot(t *testing.T) {
	snapshots := &snapshotRepoStub{}
	assignments := &assignmentRepoStub{}
	cache := &publishedCacheStub{}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	pipeline := newPipelineFixture(snapshots, assignments, cache, tx)
	resp, err := pipeline.Run(context.Background(), eveningRequest(
		eveningDisciplineRequest("D1", "P1", "C1", 20),
	))
	require.NoError(t, err)

	_, err = pipeline.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID, Publish: true})
	require.NoError(t, err)
	assert.Equal(t, []models.SnapshotStatus{models.SnapshotStatusPublished}, snapshots.statuses)
	assert.Equal(t, 1, cache.stored)
}

func TestPipelineSaveUnknownProposal(t *testing.T) {
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, nil, nil)

	_, err := pipeline.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPipelineDeleteOnlyDrafts(t *testing.T) {
	snapshots := &snapshotRepoStub{stored: map[string]*models.TimetableSnapshot{
		"pub-1": {ID: "pub-1", Course: "criminologia", AcademicYear: "2026-2027", Status: models.SnapshotStatusPublished},
	}}
	pipeline := newPipelineFixture(snapshots, &assignmentRepoStub{}, nil, nil)

	err := pipeline.Delete(context.Background(), "pub-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	err = pipeline.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPipelineGetPublishedHitsCache(t *testing.T) {
	cache := &publishedCacheStub{
		cached:     &models.TimetableSnapshot{ID: "pub-1", Course: "criminologia", AcademicYear: "2026-2027", Status: models.SnapshotStatusPublished},
		cachedRows: []models.SnapshotAssignment{{SnapshotID: "pub-1", DisciplineID: "D1"}},
	}
	pipeline := newPipelineFixture(&snapshotRepoStub{}, &assignmentRepoStub{}, cache, nil)

	snapshot, rows, err := pipeline.GetPublished(context.Background(), "criminologia", "2026-2027")
	require.NoError(t, err)
	assert.Equal(t, "pub-1", snapshot.ID)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, cache.hits)
	assert.Zero(t, cache.stored)
}

func TestPipelineGetPublishedFallsBackAndBackfills(t *testing.T) {
	snapshots := &snapshotRepoStub{list: []models.TimetableSnapshot{
		{ID: "v3", Course: "criminologia", AcademicYear: "2026-2027", Version: 3, Status: models.SnapshotStatusDraft},
		{ID: "v2", Course: "criminologia", AcademicYear: "2026-2027", Version: 2, Status: models.SnapshotStatusPublished},
		{ID: "v1", Course: "criminologia", AcademicYear: "2026-2027", Version: 1, Status: models.SnapshotStatusPublished},
	}}
	assignments := &assignmentRepoStub{inserted: []models.SnapshotAssignment{{SnapshotID: "v2", DisciplineID: "D1"}}}
	cache := &publishedCacheStub{}
	pipeline := newPipelineFixture(snapshots, assignments, cache, nil)

	// Versions come back newest first; the latest published one wins.
	snapshot, rows, err := pipeline.GetPublished(context.Background(), "criminologia", "2026-2027")
	require.NoError(t, err)
	assert.Equal(t, "v2", snapshot.ID)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, cache.stored)
	assert.Equal(t, "v2", cache.cached.ID)
}

func TestPipelineGetPublishedNotFound(t *testing.T) {
	snapshots := &snapshotRepoStub{list: []models.TimetableSnapshot{
		{ID: "v1", Course: "criminologia", AcademicYear: "2026-2027", Version: 1, Status: models.SnapshotStatusDraft},
	}}
	pipeline := newPipelineFixture(snapshots, &assignmentRepoStub{}, nil, nil)

	_, _, err := pipeline.GetPublished(context.Background(), "criminologia", "2026-2027")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, _, err = pipeline.GetPublished(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPipelineStateTransitions(t *testing.T) {
	state := StateGenerating
	require.NoError(t, transition(&state, StateGenerating, StateValidating))
	require.NoError(t, transition(&state, StateValidating, StateRetrying))
	require.NoError(t, transition(&state, StateRetrying, StateGenerating))
	require.NoError(t, transition(&state, StateGenerating, StateValidating))
	require.NoError(t, transition(&state, StateValidating, StateSucceeded))
	assert.True(t, state.IsTerminal())

	err := transition(&state, StateSucceeded, StateGenerating)
	require.Error(t, err)

	state = StateValidating
	err = transition(&state, StateGenerating, StateFailed)
	require.Error(t, err, "expected-state mismatch must be rejected")
}
