package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campus-backend/internal/models"
)

// UnlockService resolves which content item a passing attempt opens up and
// grows the student's unlocked set. Every operation is idempotent, so the
// worker can re-run it against attempt history at any time.
type UnlockService struct {
	courses  CourseStore
	unlocks  UnlockStore
	attempts AttemptStore
	pools    PoolStore
}

func NewUnlockService(courses CourseStore, unlocks UnlockStore, attempts AttemptStore, pools PoolStore) *UnlockService {
	return &UnlockService{
		courses:  courses,
		unlocks:  unlocks,
		attempts: attempts,
		pools:    pools,
	}
}

// ApplyForAttempt unlocks the successor of the pool's anchor, if there is
// one. No anchor or no successor is not an error.
func (s *UnlockService) ApplyForAttempt(ctx context.Context, attempt *models.Attempt, pool *models.Pool) error {
	if !attempt.Passed || !pool.UnlockNextContent {
		return nil
	}

	next, err := s.resolveNext(ctx, pool)
	if err != nil {
		return err
	}
	if next == uuid.Nil {
		return nil
	}

	if err := s.unlocks.Add(ctx, attempt.StudentID, pool.CourseID, next); err != nil {
		return fmt.Errorf("failed to record unlock: %w", err)
	}
	return nil
}

// resolveNext walks the anchor chain: an explicit after-video anchor wins,
// then the pool's own video, then its unit. A video's successor is the
// next video in its unit; a unit's successor is the next unit in the
// course. uuid.Nil means nothing to unlock.
func (s *UnlockService) resolveNext(ctx context.Context, pool *models.Pool) (uuid.UUID, error) {
	anchorVideo := pool.AfterVideoID
	if anchorVideo == nil {
		anchorVideo = pool.VideoID
	}

	if anchorVideo != nil {
		video, err := s.courses.GetVideo(ctx, *anchorVideo)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, nil
			}
			return uuid.Nil, err
		}
		next, err := s.courses.NextVideoInUnit(ctx, video.UnitID, video.Position)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, nil
			}
			return uuid.Nil, err
		}
		return next.ID, nil
	}

	if pool.UnitID != nil {
		unit, err := s.courses.GetUnit(ctx, *pool.UnitID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, nil
			}
			return uuid.Nil, err
		}
		next, err := s.courses.NextUnitInCourse(ctx, unit.CourseID, unit.Position)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, nil
			}
			return uuid.Nil, err
		}
		return next.ID, nil
	}

	return uuid.Nil, nil
}

// Reconcile re-derives the unlock for a previously graded attempt. Run by
// the worker for unlocks that failed on the submit path.
func (s *UnlockService) Reconcile(ctx context.Context, attemptID uuid.UUID) error {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	pool, err := s.pools.GetByID(ctx, attempt.PoolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	return s.ApplyForAttempt(ctx, attempt, pool)
}

func (s *UnlockService) ListForStudent(ctx context.Context, studentID, courseID uuid.UUID) ([]models.Unlock, error) {
	return s.unlocks.ListForStudent(ctx, studentID, courseID)
}
