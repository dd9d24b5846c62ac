package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campus-backend/internal/models"
	"campus-backend/internal/repository"
)

// aggregator is the read-side question source, implemented by PoolService.
type aggregator interface {
	Aggregate(ctx context.Context, poolID uuid.UUID) ([]models.PoolQuestion, error)
}

// unlocker applies the progressive-unlock rule after a passing attempt.
type unlocker interface {
	ApplyForAttempt(ctx context.Context, attempt *models.Attempt, pool *models.Pool) error
}

// AttemptService runs the attempt lifecycle: the eligibility state machine,
// randomized sampling with snapshotting, and server-side grading.
type AttemptService struct {
	pools    PoolStore
	attempts AttemptStore
	source   aggregator
	unlocks  unlocker
	events   EventSink
	cooldown time.Duration

	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewAttemptService(pools PoolStore, attempts AttemptStore, source aggregator, unlocks unlocker, events EventSink, cooldownHours int, rng *rand.Rand) *AttemptService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AttemptService{
		pools:    pools,
		attempts: attempts,
		source:   source,
		unlocks:  unlocks,
		events:   events,
		cooldown: time.Duration(cooldownHours) * time.Hour,
		now:      time.Now,
		rng:      rng,
	}
}

func (s *AttemptService) getActivePool(ctx context.Context, poolID uuid.UUID) (*models.Pool, error) {
	pool, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Pool not found"}
		}
		return nil, err
	}
	if !pool.IsActive {
		return nil, &NotFoundError{Message: "Pool is no longer active"}
	}
	return pool, nil
}

// StartOrResume is the sole entry point for handing a student an attempt.
// Per (student, pool) the lifecycle is:
//
//	no attempt -> in progress -> passed (terminal)
//	                          -> failed -> cooldown -> in progress (retry)
//
// The partial unique index on open attempts keeps the check-and-create
// race-free: the losing creator detects the unique violation and resumes
// the attempt the winner created.
func (s *AttemptService) StartOrResume(ctx context.Context, studentID, poolID uuid.UUID) (*models.Attempt, error) {
	pool, err := s.getActivePool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	for {
		if passed, err := s.attempts.GetPassed(ctx, poolID, studentID); err == nil {
			return nil, &AlreadyPassedError{Attempt: passed}
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		if open, err := s.attempts.GetInProgress(ctx, poolID, studentID); err == nil {
			return open, nil
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		if err := s.checkCooldown(ctx, poolID, studentID); err != nil {
			return nil, err
		}

		questions, err := s.source.Aggregate(ctx, poolID)
		if err != nil {
			return nil, err
		}

		snapshot := s.sample(questions, pool.QuestionsPerAttempt)
		snapshotJSON, err := json.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to encode question snapshot: %w", err)
		}

		attempt := &models.Attempt{
			PoolID:        poolID,
			StudentID:     studentID,
			QuestionsJSON: snapshotJSON,
		}
		if err := s.attempts.Create(ctx, attempt); err != nil {
			if repository.IsUniqueViolation(err) {
				// Lost a concurrent race. Usually the winner's attempt is
				// still open and gets resumed; if the winner already
				// submitted, re-run the eligibility checks against the new
				// state.
				if open, err := s.attempts.GetInProgress(ctx, poolID, studentID); err == nil {
					return open, nil
				} else if !errors.Is(err, pgx.ErrNoRows) {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("failed to create attempt: %w", err)
		}
		return attempt, nil
	}
}

// checkCooldown rejects a retry within the cooldown window after the most
// recent failed attempt.
func (s *AttemptService) checkCooldown(ctx context.Context, poolID, studentID uuid.UUID) error {
	latest, err := s.attempts.GetLatestSubmitted(ctx, poolID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if latest.Passed || latest.CompletedAt == nil {
		return nil
	}

	elapsed := s.now().Sub(*latest.CompletedAt)
	if elapsed < s.cooldown {
		remaining := int(math.Ceil((s.cooldown - elapsed).Hours()))
		return &CooldownActiveError{RemainingHours: remaining}
	}
	return nil
}

// sample draws min(n, len(questions)) unique questions with an unbiased
// shuffle and materializes immutable snapshots. A pool smaller than the
// configured attempt size just yields a smaller attempt.
func (s *AttemptService) sample(questions []models.PoolQuestion, n int) []models.QuestionSnapshot {
	s.mu.Lock()
	s.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	s.mu.Unlock()

	if n > len(questions) {
		n = len(questions)
	}

	snapshot := make([]models.QuestionSnapshot, 0, n)
	for _, q := range questions[:n] {
		snapshot = append(snapshot, models.QuestionSnapshot{
			QuestionID:    q.ID,
			QuizID:        q.QuizID,
			ContributorID: q.ContributorID,
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectIndex:  q.CorrectIndex,
			Points:        q.Points,
			Explanation:   q.Explanation,
		})
	}
	return snapshot
}

// Submit grades the student's open attempt strictly against its stored
// snapshot. The request contributes nothing but question ids and chosen
// options; answers naming unknown questions are ignored.
func (s *AttemptService) Submit(ctx context.Context, studentID, poolID uuid.UUID, req models.SubmitRequest) (*models.AttemptResult, error) {
	pool, err := s.getActivePool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if _, err := s.attempts.GetPassed(ctx, poolID, studentID); err == nil {
		return nil, &AlreadyPassedError{}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	attempt, err := s.attempts.GetInProgress(ctx, poolID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if cdErr := s.checkCooldown(ctx, poolID, studentID); cdErr != nil {
				return nil, cdErr
			}
			return nil, &NotFoundError{Message: "No attempt in progress for this pool"}
		}
		return nil, err
	}

	snapshot, err := attempt.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("attempt %s has malformed snapshot: %w", attempt.ID, err)
	}

	selected := make(map[uuid.UUID]int, len(req.Answers))
	for _, answer := range req.Answers {
		selected[answer.QuestionID] = answer.SelectedOption
	}

	score, maxScore := 0, 0
	for _, q := range snapshot {
		maxScore += q.Points
		if option, ok := selected[q.QuestionID]; ok && option == q.CorrectIndex {
			score += q.Points
		}
	}

	percentage := 0.0
	passed := false
	if maxScore > 0 {
		percentage = 100 * float64(score) / float64(maxScore)
		passed = percentage >= float64(pool.PassingScorePercent)
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	// The attempt record must be durable before any unlock mutation; a
	// crash between the two is recovered by the reconcile queue.
	completedAt := s.now()
	updated, err := s.attempts.Submit(ctx, attempt.ID, score, maxScore, percentage, passed, answersJSON, req.TimeSpentSeconds, completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to persist graded attempt: %w", err)
	}
	if !updated {
		// A concurrent submit landed first; its stored result stands.
		return nil, &ConflictError{Message: "Attempt has already been submitted"}
	}

	attempt.Score = score
	attempt.MaxScore = maxScore
	attempt.Percentage = percentage
	attempt.Passed = passed
	attempt.Status = models.AttemptSubmitted
	attempt.CompletedAt = &completedAt

	detail, _ := json.Marshal(map[string]any{"score": score, "max_score": maxScore, "passed": passed})
	s.events.RecordAudit(ctx, models.AuditEvent{
		ActorID:    studentID,
		Action:     models.AuditAttemptGraded,
		SubjectID:  attempt.ID,
		DetailJSON: detail,
	})

	if passed && pool.UnlockNextContent {
		if err := s.unlocks.ApplyForAttempt(ctx, attempt, pool); err != nil {
			// Non-fatal: the score stands, the worker retries the unlock.
			log.Printf("unlock failed for attempt %s, queued for reconciliation: %v", attempt.ID, err)
			s.events.EnqueueReconcile(ctx, attempt.ID)
		}
	}

	return &models.AttemptResult{
		AttemptID:   attempt.ID,
		Score:       score,
		MaxScore:    maxScore,
		Percentage:  percentage,
		Passed:      passed,
		CompletedAt: &completedAt,
	}, nil
}
