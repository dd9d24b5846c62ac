package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campus-backend/internal/models"
)

// PoolService is the pool catalog: it owns pool definitions, quiz
// membership, and the flattened per-pool question view.
type PoolService struct {
	pools   PoolStore
	quizzes QuizStore
	courses CourseStore
	events  EventSink
}

func NewPoolService(pools PoolStore, quizzes QuizStore, courses CourseStore, events EventSink) *PoolService {
	return &PoolService{
		pools:   pools,
		quizzes: quizzes,
		courses: courses,
		events:  events,
	}
}

func (s *PoolService) Create(ctx context.Context, req models.CreatePoolRequest, createdBy uuid.UUID) (*models.Pool, error) {
	fieldErrors := make(map[string]string)
	if req.QuestionsPerAttempt < 1 {
		fieldErrors["questions_per_attempt"] = "Must be at least 1"
	}
	if req.PassingScorePercent < 0 || req.PassingScorePercent > 100 {
		fieldErrors["passing_score_percent"] = "Must be between 0 and 100"
	}
	if req.TimeLimitMinutes < 0 {
		fieldErrors["time_limit_minutes"] = "Must not be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Course not found"}
		}
		return nil, err
	}

	if err := s.validateAnchors(ctx, &req); err != nil {
		return nil, err
	}

	pool := &models.Pool{
		CourseID:            req.CourseID,
		UnitID:              req.UnitID,
		VideoID:             req.VideoID,
		AfterVideoID:        req.AfterVideoID,
		QuestionsPerAttempt: req.QuestionsPerAttempt,
		TimeLimitMinutes:    req.TimeLimitMinutes,
		PassingScorePercent: req.PassingScorePercent,
		UnlockNextContent:   req.UnlockNextContent,
		CreatedBy:           createdBy,
	}

	if err := s.pools.Create(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	s.events.RecordAudit(ctx, models.AuditEvent{
		ActorID:   createdBy,
		Action:    models.AuditPoolCreated,
		SubjectID: pool.ID,
	})
	return pool, nil
}

// validateAnchors checks that every referenced content item exists and
// belongs to the pool's course.
func (s *PoolService) validateAnchors(ctx context.Context, req *models.CreatePoolRequest) error {
	if req.UnitID != nil {
		unit, err := s.courses.GetUnit(ctx, *req.UnitID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &ValidationError{Fields: map[string]string{"unit_id": "Unit not found"}}
			}
			return err
		}
		if unit.CourseID != req.CourseID {
			return &ValidationError{Fields: map[string]string{"unit_id": "Unit belongs to another course"}}
		}
	}

	for field, id := range map[string]*uuid.UUID{
		"video_id":       req.VideoID,
		"after_video_id": req.AfterVideoID,
	} {
		if id == nil {
			continue
		}
		video, err := s.courses.GetVideo(ctx, *id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &ValidationError{Fields: map[string]string{field: "Video not found"}}
			}
			return err
		}
		unit, err := s.courses.GetUnit(ctx, video.UnitID)
		if err != nil {
			return err
		}
		if unit.CourseID != req.CourseID {
			return &ValidationError{Fields: map[string]string{field: "Video belongs to another course"}}
		}
	}
	return nil
}

func (s *PoolService) Get(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	pool, err := s.pools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Pool not found"}
		}
		return nil, err
	}
	return pool, nil
}

func (s *PoolService) ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Pool, error) {
	return s.pools.ListByCourse(ctx, courseID)
}

// AddQuiz appends a quiz to the pool and records the acting contributor.
// Open attempts keep grading against their snapshots; only future attempts
// see the new questions.
func (s *PoolService) AddQuiz(ctx context.Context, poolID, quizID, actorID uuid.UUID) error {
	if _, err := s.Get(ctx, poolID); err != nil {
		return err
	}
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Quiz not found"}
		}
		return err
	}

	added, err := s.pools.AddQuiz(ctx, poolID, quizID, actorID)
	if err != nil {
		return fmt.Errorf("failed to add quiz to pool: %w", err)
	}
	if !added {
		return &ConflictError{Message: "Quiz is already in this pool"}
	}

	s.events.RecordAudit(ctx, models.AuditEvent{
		ActorID:   actorID,
		Action:    models.AuditQuizAdded,
		SubjectID: poolID,
	})
	return nil
}

// RemoveQuiz detaches a quiz. Only the quiz's author or the pool's creator
// may remove it.
func (s *PoolService) RemoveQuiz(ctx context.Context, poolID, quizID, actorID uuid.UUID) error {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Quiz not found"}
		}
		return err
	}

	if actorID != quiz.AuthorID && actorID != pool.CreatedBy {
		return &ForbiddenError{Message: "Only the quiz author or pool creator can remove a quiz"}
	}

	removed, err := s.pools.RemoveQuiz(ctx, poolID, quizID)
	if err != nil {
		return fmt.Errorf("failed to remove quiz from pool: %w", err)
	}
	if !removed {
		return &NotFoundError{Message: "Quiz is not in this pool"}
	}

	s.events.RecordAudit(ctx, models.AuditEvent{
		ActorID:   actorID,
		Action:    models.AuditQuizRemoved,
		SubjectID: poolID,
	})
	return nil
}

func (s *PoolService) Deactivate(ctx context.Context, poolID, actorID uuid.UUID, actorRole string) error {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return err
	}
	if actorID != pool.CreatedBy && actorRole != models.RoleCoordinator {
		return &ForbiddenError{Message: "Only the pool creator or a coordinator can deactivate a pool"}
	}
	if err := s.pools.Deactivate(ctx, poolID); err != nil {
		return fmt.Errorf("failed to deactivate pool: %w", err)
	}

	s.events.RecordAudit(ctx, models.AuditEvent{
		ActorID:   actorID,
		Action:    models.AuditPoolDeactivated,
		SubjectID: poolID,
	})
	return nil
}

// Aggregate flattens all member quizzes into one question list, each entry
// tagged with its originating quiz and contributor.
func (s *PoolService) Aggregate(ctx context.Context, poolID uuid.UUID) ([]models.PoolQuestion, error) {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.quizzes.ListByIDs(ctx, pool.QuizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool quizzes: %w", err)
	}

	var questions []models.PoolQuestion
	for _, quiz := range quizzes {
		quizQuestions, err := quiz.Questions()
		if err != nil {
			return nil, fmt.Errorf("quiz %s has malformed questions: %w", quiz.ID, err)
		}
		for _, q := range quizQuestions {
			questions = append(questions, models.PoolQuestion{
				Question:      q,
				QuizID:        quiz.ID,
				ContributorID: quiz.AuthorID,
			})
		}
	}

	if len(questions) == 0 {
		return nil, &NotFoundError{Message: "Pool has no questions"}
	}
	return questions, nil
}
