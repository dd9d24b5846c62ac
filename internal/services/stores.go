package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"campus-backend/internal/models"
)

// Store interfaces are the slices of the repository layer the services
// consume. Keeping them here lets tests run the engine against in-memory
// fakes instead of Postgres.

type PoolStore interface {
	Create(ctx context.Context, p *models.Pool) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Pool, error)
	AddQuiz(ctx context.Context, poolID, quizID, addedBy uuid.UUID) (bool, error)
	RemoveQuiz(ctx context.Context, poolID, quizID uuid.UUID) (bool, error)
	Memberships(ctx context.Context, poolID uuid.UUID) ([]models.PoolMembership, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type QuizStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Quiz, error)
}

type CourseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	GetVideo(ctx context.Context, id uuid.UUID) (*models.Video, error)
	NextVideoInUnit(ctx context.Context, unitID uuid.UUID, position int) (*models.Video, error)
	NextUnitInCourse(ctx context.Context, courseID uuid.UUID, position int) (*models.Unit, error)
}

type AttemptStore interface {
	Create(ctx context.Context, a *models.Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attempt, error)
	GetInProgress(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error)
	GetPassed(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error)
	GetLatestSubmitted(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error)
	Submit(ctx context.Context, id uuid.UUID, score, maxScore int, percentage float64, passed bool, answersJSON json.RawMessage, timeSpentSeconds int, completedAt time.Time) (bool, error)
	ListSubmittedByPool(ctx context.Context, poolID uuid.UUID) ([]*models.Attempt, error)
}

type UnlockStore interface {
	Add(ctx context.Context, studentID, courseID, contentID uuid.UUID) error
	ListForStudent(ctx context.Context, studentID, courseID uuid.UUID) ([]models.Unlock, error)
}

// EventSink receives fire-and-forget side effects of the submit path:
// compliance events and unlock-retry tasks. The redis-backed EventQueue is
// the production implementation.
type EventSink interface {
	RecordAudit(ctx context.Context, event models.AuditEvent)
	EnqueueReconcile(ctx context.Context, attemptID uuid.UUID)
}
