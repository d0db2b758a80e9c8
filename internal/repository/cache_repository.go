package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
	appErrors "github.com/acadepol/horarios-api/pkg/errors"
)

const publishedSnapshotTTL = 12 * time.Hour

// CacheRepository caches published timetable snapshots in Redis so read-heavy
// consumers skip the database. A nil client degrades to a no-op.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

type cachedSnapshot struct {
	Snapshot    *models.TimetableSnapshot   `json:"snapshot"`
	Assignments []models.SnapshotAssignment `json:"assignments"`
}

func publishedKey(course, academicYear string) string {
	return fmt.Sprintf("timetable:published:%s:%s", course, academicYear)
}

// StorePublished caches the latest published snapshot for its course and year.
func (r *CacheRepository) StorePublished(ctx context.Context, snapshot *models.TimetableSnapshot, rows []models.SnapshotAssignment) error {
	if r.client == nil || snapshot == nil {
		return nil
	}
	payload, err := json.Marshal(cachedSnapshot{Snapshot: snapshot, Assignments: rows})
	if err != nil {
		return fmt.Errorf("marshal published snapshot %s: %w", snapshot.ID, err)
	}
	key := publishedKey(snapshot.Course, snapshot.AcademicYear)
	if err := r.client.Set(ctx, key, payload, publishedSnapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// GetPublished loads the cached published snapshot for a course and year.
func (r *CacheRepository) GetPublished(ctx context.Context, course, academicYear string) (*models.TimetableSnapshot, []models.SnapshotAssignment, error) {
	if r.client == nil {
		return nil, nil, appErrors.ErrCacheMiss
	}
	key := publishedKey(course, academicYear)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil, appErrors.ErrCacheMiss
		}
		return nil, nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var cached cachedSnapshot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, nil, fmt.Errorf("unmarshal cached snapshot for %s: %w", key, err)
	}
	return cached.Snapshot, cached.Assignments, nil
}

// Invalidate drops the cached snapshot for a course and year.
func (r *CacheRepository) Invalidate(ctx context.Context, course, academicYear string) error {
	if r.client == nil {
		return nil
	}
	key := publishedKey(course, academicYear)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
