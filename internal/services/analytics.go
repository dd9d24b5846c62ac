package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campus-backend/internal/models"
)

// AnalyticsService computes pool statistics from stored attempts only; it
// never writes.
type AnalyticsService struct {
	pools    PoolStore
	quizzes  QuizStore
	attempts AttemptStore
}

func NewAnalyticsService(pools PoolStore, quizzes QuizStore, attempts AttemptStore) *AnalyticsService {
	return &AnalyticsService{
		pools:    pools,
		quizzes:  quizzes,
		attempts: attempts,
	}
}

func (s *AnalyticsService) PoolAnalytics(ctx context.Context, poolID uuid.UUID) (*models.PoolAnalytics, error) {
	pool, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Pool not found"}
		}
		return nil, err
	}

	attempts, err := s.attempts.ListSubmittedByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	analytics := &models.PoolAnalytics{PoolID: poolID}

	type tally struct {
		prompt    string
		correct   int
		incorrect int
	}
	tallies := make(map[uuid.UUID]*tally)
	var order []uuid.UUID
	sumPercentage := 0.0

	for _, attempt := range attempts {
		analytics.TotalAttempts++
		if attempt.Passed {
			analytics.PassedCount++
		}
		sumPercentage += attempt.Percentage

		snapshot, err := attempt.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("attempt %s has malformed snapshot: %w", attempt.ID, err)
		}

		var answers []models.Answer
		if len(attempt.AnswersJSON) > 0 {
			if err := json.Unmarshal(attempt.AnswersJSON, &answers); err != nil {
				return nil, fmt.Errorf("attempt %s has malformed answers: %w", attempt.ID, err)
			}
		}
		selected := make(map[uuid.UUID]int, len(answers))
		for _, a := range answers {
			selected[a.QuestionID] = a.SelectedOption
		}

		for _, q := range snapshot {
			t, ok := tallies[q.QuestionID]
			if !ok {
				t = &tally{prompt: q.Prompt}
				tallies[q.QuestionID] = t
				order = append(order, q.QuestionID)
			}
			if option, answered := selected[q.QuestionID]; answered && option == q.CorrectIndex {
				t.correct++
			} else {
				t.incorrect++
			}
		}
	}

	if analytics.TotalAttempts > 0 {
		analytics.PassRate = float64(analytics.PassedCount) / float64(analytics.TotalAttempts)
		analytics.MeanPercentage = sumPercentage / float64(analytics.TotalAttempts)
	}

	for _, id := range order {
		t := tallies[id]
		served := t.correct + t.incorrect
		accuracy := 0.0
		if served > 0 {
			accuracy = float64(t.correct) / float64(served)
		}
		analytics.Questions = append(analytics.Questions, models.QuestionStats{
			QuestionID: id,
			Prompt:     t.prompt,
			Correct:    t.correct,
			Incorrect:  t.incorrect,
			Accuracy:   accuracy,
		})
	}

	contributors, err := s.contributorStats(ctx, pool)
	if err != nil {
		return nil, err
	}
	analytics.Contributors = contributors

	return analytics, nil
}

// contributorStats counts each contributor's quizzes and questions in the
// pool's current membership.
func (s *AnalyticsService) contributorStats(ctx context.Context, pool *models.Pool) ([]models.ContributorStats, error) {
	quizzes, err := s.quizzes.ListByIDs(ctx, pool.QuizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool quizzes: %w", err)
	}

	byContributor := make(map[uuid.UUID]*models.ContributorStats)
	var order []uuid.UUID
	for _, quiz := range quizzes {
		stats, ok := byContributor[quiz.AuthorID]
		if !ok {
			stats = &models.ContributorStats{ContributorID: quiz.AuthorID}
			byContributor[quiz.AuthorID] = stats
			order = append(order, quiz.AuthorID)
		}
		stats.QuizCount++
		stats.QuestionCount += quiz.QuestionCount
	}

	result := make([]models.ContributorStats, 0, len(order))
	for _, id := range order {
		result = append(result, *byContributor[id])
	}
	return result, nil
}
