package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/dto"
	"github.com/acadepol/horarios-api/internal/loader"
	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

type snapshotRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, snapshot *models.TimetableSnapshot) error
	ListByCourseYear(ctx context.Context, course, academicYear string) ([]models.TimetableSnapshot, error)
	FindByID(ctx context.Context, id string) (*models.TimetableSnapshot, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SnapshotStatus, meta types.JSONText) error
}

type snapshotAssignmentRepository interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.SnapshotAssignment) error
	ListBySnapshot(ctx context.Context, snapshotID string) ([]models.SnapshotAssignment, error)
}

type publishedSnapshotCache interface {
	StorePublished(ctx context.Context, snapshot *models.TimetableSnapshot, rows []models.SnapshotAssignment) error
	GetPublished(ctx context.Context, course, academicYear string) (*models.TimetableSnapshot, []models.SnapshotAssignment, error)
	Invalidate(ctx context.Context, course, academicYear string) error
}

type pipelineTxProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetablePipeline drives a full generation run: calendar construction,
// load analysis, greedy placement and conflict validation inside a bounded
// retry loop, then persistence of accepted proposals.
type TimetablePipeline struct {
	calendars   *CalendarService
	analyzer    *DisciplineAnalyzer
	generator   *TimetableGenerator
	conflicts   *ConflictValidator
	snapshots   snapshotRepository
	assignments snapshotAssignmentRepository
	cache       publishedSnapshotCache
	tx          pipelineTxProvider
	validator   *validator.Validate
	logger      *zap.Logger
	store       *proposalStore
	cfg         PipelineConfig
}

// PipelineConfig governs retry and proposal retention behaviour.
type PipelineConfig struct {
	MaxRetries  int
	ProposalTTL time.Duration
}

// NewTimetablePipeline wires the pipeline stages and persistence.
func NewTimetablePipeline(
	calendars *CalendarService,
	analyzer *DisciplineAnalyzer,
	generator *TimetableGenerator,
	conflicts *ConflictValidator,
	snapshots snapshotRepository,
	assignments snapshotAssignmentRepository,
	cache publishedSnapshotCache,
	tx pipelineTxProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PipelineConfig,
) *TimetablePipeline {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &TimetablePipeline{
		calendars:   calendars,
		analyzer:    analyzer,
		generator:   generator,
		conflicts:   conflicts,
		snapshots:   snapshots,
		assignments: assignments,
		cache:       cache,
		tx:          tx,
		validator:   validate,
		logger:      logger,
		store:       newProposalStore(cfg.ProposalTTL),
		cfg:         cfg,
	}
}

// timetableProposal is the in-memory result of one accepted pipeline run,
// held until the caller saves or the TTL expires.
type timetableProposal struct {
	ProposalID   string
	Course       string
	AcademicYear string
	StartDate    time.Time
	EndDate      time.Time
	State        PipelineState
	Attempts     int
	Plans        []models.SessionPlan
	Assignments  []models.Assignment
	Infeasible   []models.InfeasibleLoad
	Stats        dto.PipelineStats
	RequestedAt  time.Time
}

// Run executes the generation pipeline for one request. Disciplines whose
// load cannot fit the calendar are reported and skipped; everything else must
// place without conflicts within the retry budget or the run fails.
func (p *TimetablePipeline) Run(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := p.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end date")
	}

	holidays := make([]models.HolidayRecord, 0, len(req.Holidays))
	for _, item := range req.Holidays {
		record, convErr := item.ToHolidayRecord()
		if convErr != nil {
			return nil, appErrors.Wrap(convErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday record")
		}
		holidays = append(holidays, record)
	}

	disciplines := make([]models.Discipline, 0, len(req.Disciplines))
	for _, item := range req.Disciplines {
		discipline, convErr := item.ToDiscipline()
		if convErr != nil {
			return nil, appErrors.Wrap(convErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid discipline payload")
		}
		// Constraints the payload left empty fall back to the institutional
		// grid ("weekly" when no preset is named).
		discipline = loader.PresetByName(item.Preset).Apply(discipline)
		disciplines = append(disciplines, discipline)
	}

	var weekend []time.Weekday
	if len(req.WeekendDays) > 0 {
		weekend, err = models.ParseWeekdaySet(req.WeekendDays)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekend days")
		}
	}

	cal, err := p.calendars.BuildCalendar(start, end, holidays, weekend)
	if err != nil {
		return nil, err
	}

	plans, feasible, infeasible, err := p.analyzeAll(disciplines, cal, req.RoundingGranularityMinutes)
	if err != nil {
		return nil, err
	}
	if len(feasible) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no discipline fits the available calendar weeks")
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = p.cfg.MaxRetries
	}

	assignments, attempts, err := p.generateWithRetries(ctx, plans, feasible, cal, maxRetries)
	if err != nil {
		return nil, err
	}

	proposal := timetableProposal{
		ProposalID:   uuid.NewString(),
		Course:       req.Course,
		AcademicYear: req.AcademicYear,
		StartDate:    start,
		EndDate:      end,
		State:        StateSucceeded,
		Attempts:     attempts,
		Plans:        plans,
		Assignments:  assignments,
		Infeasible:   infeasible,
		Stats: dto.PipelineStats{
			Attempts:       attempts,
			BusinessDays:   cal.BusinessDayCount(),
			WeeksAvailable: cal.WeeksAvailable(),
		},
		RequestedAt: time.Now().UTC(),
	}
	p.store.Save(proposal)

	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, dto.NewAssignmentView(a))
	}
	p.logger.Info("timetable proposal generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("course", req.Course),
		zap.Int("attempts", attempts),
		zap.Int("assignments", len(assignments)),
		zap.Int("infeasible", len(infeasible)),
	)
	return &dto.GenerateTimetableResponse{
		ProposalID:  proposal.ProposalID,
		State:       string(proposal.State),
		Stats:       proposal.Stats,
		Plans:       plans,
		Assignments: views,
		Infeasible:  infeasible,
	}, nil
}

// analyzeAll runs the analyzer over every discipline, splitting feasible
// plans from infeasible findings. Validation errors abort the batch.
func (p *TimetablePipeline) analyzeAll(
	disciplines []models.Discipline,
	cal *models.Calendar,
	granularityMinutes int,
) ([]models.SessionPlan, []models.Discipline, []models.InfeasibleLoad, error) {
	var (
		plans      []models.SessionPlan
		feasible   []models.Discipline
		infeasible []models.InfeasibleLoad
	)
	for _, discipline := range disciplines {
		plan, err := p.analyzer.Analyze(discipline, cal, granularityMinutes)
		if err != nil {
			var load *models.InfeasibleLoad
			if errors.As(err, &load) {
				infeasible = append(infeasible, *load)
				continue
			}
			return nil, nil, nil, err
		}
		plans = append(plans, plan)
		feasible = append(feasible, discipline)
	}
	return plans, feasible, infeasible, nil
}

// generateWithRetries runs the generate/validate loop. Each failed validation
// adds every conflicting slot to the exclusion set and retries; the budget is
// attempts, not wall time.
func (p *TimetablePipeline) generateWithRetries(
	ctx context.Context,
	plans []models.SessionPlan,
	disciplines []models.Discipline,
	cal *models.Calendar,
	maxRetries int,
) ([]models.Assignment, int, error) {
	var (
		excluded      []models.TimeSlot
		lastConflicts []models.ConflictRecord
	)
	state := StateGenerating

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation cancelled")
		}

		assignments, err := p.generator.Generate(plans, disciplines, cal, excluded)
		if err != nil {
			// Exclusions only ever grow, so a placement failure cannot be
			// repaired by another attempt.
			_ = transition(&state, StateGenerating, StateFailed)
			return nil, attempt, err
		}
		if err := transition(&state, StateGenerating, StateValidating); err != nil {
			return nil, attempt, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pipeline state corrupted")
		}

		conflicts := p.conflicts.Validate(assignments, disciplines, cal)
		if len(conflicts) == 0 {
			if err := transition(&state, StateValidating, StateSucceeded); err != nil {
				return nil, attempt, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pipeline state corrupted")
			}
			return assignments, attempt, nil
		}

		lastConflicts = conflicts
		p.logger.Warn("validation failed, retrying with exclusions",
			zap.Int("attempt", attempt),
			zap.Int("conflicts", len(conflicts)),
			zap.Int("excluded_slots", len(excluded)),
		)
		if attempt == maxRetries {
			break
		}
		if err := transition(&state, StateValidating, StateRetrying); err != nil {
			return nil, attempt, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pipeline state corrupted")
		}
		excluded = mergeConflictSlots(excluded, conflicts)
		if err := transition(&state, StateRetrying, StateGenerating); err != nil {
			return nil, attempt, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pipeline state corrupted")
		}
	}

	_ = transition(&state, StateValidating, StateFailed)
	remaining := make([]dto.ConflictView, 0, len(lastConflicts))
	for _, conflict := range lastConflicts {
		remaining = append(remaining, dto.NewConflictView(conflict))
	}
	return nil, maxRetries, appErrors.Wrap(
		&models.UnresolvedConflictError{Attempts: maxRetries, Conflicts: lastConflicts},
		appErrors.ErrUnresolvedConflict.Code, appErrors.ErrUnresolvedConflict.Status,
		fmt.Sprintf("conflicts remain after %d attempts", maxRetries)).WithDetails(remaining)
}

// mergeConflictSlots unions the slots involved in the conflicts into the
// exclusion set, deduplicated by weekday and time range.
func mergeConflictSlots(excluded []models.TimeSlot, conflicts []models.ConflictRecord) []models.TimeSlot {
	seen := make(map[models.TimeSlot]bool, len(excluded))
	for _, slot := range excluded {
		seen[slot] = true
	}
	out := excluded
	for _, conflict := range conflicts {
		for _, involved := range conflict.SlotsInvolved {
			if seen[involved.Slot] {
				continue
			}
			seen[involved.Slot] = true
			out = append(out, involved.Slot)
		}
	}
	return out
}

// Save persists a held proposal as a new versioned draft snapshot, optionally
// publishing it in the same transaction.
func (p *TimetablePipeline) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	if err := p.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	proposal, ok := p.store.Get(req.ProposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if p.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := p.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaPayload := map[string]any{
		"attempts":   proposal.Attempts,
		"stats":      proposal.Stats,
		"generated":  proposal.RequestedAt,
		"startDate":  proposal.StartDate.Format("2006-01-02"),
		"endDate":    proposal.EndDate.Format("2006-01-02"),
		"plans":      proposal.Plans,
		"infeasible": proposal.Infeasible,
		"algorithm":  "greedy_v1",
	}
	metaBytes, marshalErr := json.Marshal(metaPayload)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode snapshot metadata")
		return "", err
	}

	record := &models.TimetableSnapshot{
		Course:       proposal.Course,
		AcademicYear: proposal.AcademicYear,
		Status:       models.SnapshotStatusDraft,
		Meta:         types.JSONText(metaBytes),
	}
	if err = p.snapshots.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable snapshot")
		return "", err
	}

	rows := make([]models.SnapshotAssignment, 0, len(proposal.Assignments))
	for _, a := range proposal.Assignments {
		rows = append(rows, models.SnapshotAssignment{
			SnapshotID:   record.ID,
			DisciplineID: a.DisciplineID,
			Weekday:      int(a.Slot.Weekday),
			StartMinute:  a.Slot.StartMinute,
			EndMinute:    a.Slot.EndMinute,
			WeekIndex:    a.WeekIndex,
			SessionDate:  a.Date,
		})
	}
	if err = p.assignments.InsertBatch(ctx, tx, rows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist snapshot assignments")
		return "", err
	}

	if req.Publish {
		if err = p.snapshots.UpdateStatus(ctx, tx, record.ID, models.SnapshotStatusPublished, nil); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish snapshot")
			return "", err
		}
		record.Status = models.SnapshotStatusPublished
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit snapshot transaction")
		return "", err
	}

	if req.Publish && p.cache != nil {
		if cacheErr := p.cache.StorePublished(ctx, record, rows); cacheErr != nil {
			p.logger.Warn("failed to cache published snapshot", zap.String("snapshot_id", record.ID), zap.Error(cacheErr))
		}
	}

	p.store.Delete(req.ProposalID)
	return record.ID, nil
}

// List returns stored snapshots for a course and academic year.
func (p *TimetablePipeline) List(ctx context.Context, query dto.SnapshotQuery) ([]models.TimetableSnapshot, error) {
	if query.Course == "" || query.AcademicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course and academicYear are required")
	}
	list, err := p.snapshots.ListByCourseYear(ctx, query.Course, query.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable snapshots")
	}
	return list, nil
}

// GetAssignments returns the stored assignment rows for one snapshot.
func (p *TimetablePipeline) GetAssignments(ctx context.Context, snapshotID string) ([]models.SnapshotAssignment, error) {
	if snapshotID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "snapshot id is required")
	}
	if _, err := p.snapshots.FindByID(ctx, snapshotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable snapshot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable snapshot")
	}
	rows, err := p.assignments.ListBySnapshot(ctx, snapshotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list snapshot assignments")
	}
	return rows, nil
}

// GetPublished returns the latest published snapshot for a course and year,
// reading through the Redis cache and backfilling it on a miss.
func (p *TimetablePipeline) GetPublished(ctx context.Context, course, academicYear string) (*models.TimetableSnapshot, []models.SnapshotAssignment, error) {
	if course == "" || academicYear == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "course and academicYear are required")
	}

	if p.cache != nil {
		snapshot, rows, err := p.cache.GetPublished(ctx, course, academicYear)
		if err == nil {
			return snapshot, rows, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			p.logger.Warn("published snapshot cache lookup failed",
				zap.String("course", course), zap.String("academic_year", academicYear), zap.Error(err))
		}
	}

	list, err := p.snapshots.ListByCourseYear(ctx, course, academicYear)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable snapshots")
	}
	var published *models.TimetableSnapshot
	for i := range list {
		if list[i].Status == models.SnapshotStatusPublished {
			published = &list[i]
			break
		}
	}
	if published == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no published timetable for this course and academic year")
	}

	rows, err := p.assignments.ListBySnapshot(ctx, published.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list snapshot assignments")
	}
	if p.cache != nil {
		if cacheErr := p.cache.StorePublished(ctx, published, rows); cacheErr != nil {
			p.logger.Warn("failed to cache published snapshot", zap.String("snapshot_id", published.ID), zap.Error(cacheErr))
		}
	}
	return published, rows, nil
}

// Publish promotes a draft snapshot and refreshes the published cache.
func (p *TimetablePipeline) Publish(ctx context.Context, snapshotID string) error {
	record, err := p.snapshots.FindByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable snapshot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable snapshot")
	}
	if record.Status != models.SnapshotStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft snapshots can be published")
	}
	if p.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := p.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = p.snapshots.UpdateStatus(ctx, tx, snapshotID, models.SnapshotStatusPublished, nil); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish snapshot")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit publish transaction")
		return err
	}
	record.Status = models.SnapshotStatusPublished

	if p.cache != nil {
		rows, rowsErr := p.assignments.ListBySnapshot(ctx, snapshotID)
		if rowsErr != nil {
			p.logger.Warn("failed to load assignments for published cache", zap.String("snapshot_id", snapshotID), zap.Error(rowsErr))
			return nil
		}
		if cacheErr := p.cache.StorePublished(ctx, record, rows); cacheErr != nil {
			p.logger.Warn("failed to cache published snapshot", zap.String("snapshot_id", snapshotID), zap.Error(cacheErr))
		}
	}
	return nil
}

// Delete removes a draft snapshot version.
func (p *TimetablePipeline) Delete(ctx context.Context, snapshotID string) error {
	record, err := p.snapshots.FindByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable snapshot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable snapshot")
	}
	if record.Status != models.SnapshotStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft snapshots can be deleted")
	}
	if err := p.snapshots.Delete(ctx, snapshotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable snapshot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable snapshot")
	}
	if p.cache != nil {
		if cacheErr := p.cache.Invalidate(ctx, record.Course, record.AcademicYear); cacheErr != nil {
			p.logger.Warn("failed to invalidate snapshot cache", zap.String("snapshot_id", snapshotID), zap.Error(cacheErr))
		}
	}
	return nil
}

// --- Proposal retention ---

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
