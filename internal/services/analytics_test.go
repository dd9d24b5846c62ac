package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"campus-backend/internal/models"
)

func TestPoolAnalytics_AggregatesSubmittedAttempts(t *testing.T) {
	questions := makeQuestions(4, 1)
	e := newEngine(t, questions, 4, 75, false)
	analytics := NewAnalyticsService(e.pools, e.quizzes, e.attempts)

	// Student one answers everything correctly and passes.
	passer := uuid.New()
	attempt, err := e.attemptSvc.StartOrResume(context.Background(), passer, e.pool.ID)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if _, err := e.attemptSvc.Submit(context.Background(), passer, e.pool.ID, models.SubmitRequest{
		Answers: correctAnswers(t, attempt),
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Student two gets half right and fails. The first question is answered
	// wrong, the second not at all.
	failer := uuid.New()
	attempt, err = e.attemptSvc.StartOrResume(context.Background(), failer, e.pool.ID)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	answers := correctAnswers(t, attempt)
	answers[0].SelectedOption = (answers[0].SelectedOption + 1) % 4
	answers = answers[:3]
	result, err := e.attemptSvc.Submit(context.Background(), failer, e.pool.ID, models.SubmitRequest{Answers: answers})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Passed || result.Percentage != 50 {
		t.Fatalf("expected 50%% fail, got %.1f%% passed=%v", result.Percentage, result.Passed)
	}

	// A third student with an open attempt must not count.
	if _, err := e.attemptSvc.StartOrResume(context.Background(), uuid.New(), e.pool.ID); err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}

	stats, err := analytics.PoolAnalytics(context.Background(), e.pool.ID)
	if err != nil {
		t.Fatalf("PoolAnalytics: %v", err)
	}

	if stats.TotalAttempts != 2 || stats.PassedCount != 1 {
		t.Fatalf("expected 2 submitted attempts with 1 pass, got %d/%d", stats.TotalAttempts, stats.PassedCount)
	}
	if stats.PassRate != 0.5 {
		t.Fatalf("expected pass rate 0.5, got %f", stats.PassRate)
	}
	if stats.MeanPercentage != 75 {
		t.Fatalf("expected mean percentage 75, got %f", stats.MeanPercentage)
	}

	if len(stats.Questions) != 4 {
		t.Fatalf("expected stats for all 4 questions, got %d", len(stats.Questions))
	}
	byID := make(map[uuid.UUID]models.QuestionStats)
	for _, q := range stats.Questions {
		byID[q.QuestionID] = q
	}

	snapshot, _ := attempt.Snapshot()
	// Wrong answer and missing answer both count against accuracy.
	for i, want := range []float64{0.5, 1, 1, 0.5} {
		q := byID[snapshot[i].QuestionID]
		if math.Abs(q.Accuracy-want) > 1e-9 {
			t.Errorf("question %d: expected accuracy %.2f, got %.2f", i, want, q.Accuracy)
		}
		if q.Correct+q.Incorrect != 2 {
			t.Errorf("question %d: expected 2 servings, got %d", i, q.Correct+q.Incorrect)
		}
	}
}

func TestPoolAnalytics_ContributorBreakdown(t *testing.T) {
	e := newEngine(t, makeQuestions(3, 1), 3, 70, false)
	analytics := NewAnalyticsService(e.pools, e.quizzes, e.attempts)

	// Second contributor adds two quizzes.
	other := uuid.New()
	for _, n := range []int{2, 4} {
		quiz := e.quizzes.put(other, makeQuestions(n, 1))
		if _, err := e.pools.AddQuiz(context.Background(), e.pool.ID, quiz.ID, other); err != nil {
			t.Fatalf("AddQuiz: %v", err)
		}
	}

	stats, err := analytics.PoolAnalytics(context.Background(), e.pool.ID)
	if err != nil {
		t.Fatalf("PoolAnalytics: %v", err)
	}
	if len(stats.Contributors) != 2 {
		t.Fatalf("expected 2 contributors, got %d", len(stats.Contributors))
	}

	byContributor := make(map[uuid.UUID]models.ContributorStats)
	for _, c := range stats.Contributors {
		byContributor[c.ContributorID] = c
	}
	if c := byContributor[e.contributor]; c.QuizCount != 1 || c.QuestionCount != 3 {
		t.Fatalf("expected 1 quiz / 3 questions for first contributor, got %d/%d", c.QuizCount, c.QuestionCount)
	}
	if c := byContributor[other]; c.QuizCount != 2 || c.QuestionCount != 6 {
		t.Fatalf("expected 2 quizzes / 6 questions for second contributor, got %d/%d", c.QuizCount, c.QuestionCount)
	}
}

func TestPoolAnalytics_NoAttempts(t *testing.T) {
	e := newEngine(t, makeQuestions(3, 1), 3, 70, false)
	analytics := NewAnalyticsService(e.pools, e.quizzes, e.attempts)

	stats, err := analytics.PoolAnalytics(context.Background(), e.pool.ID)
	if err != nil {
		t.Fatalf("PoolAnalytics: %v", err)
	}
	if stats.TotalAttempts != 0 || stats.PassRate != 0 || stats.MeanPercentage != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
	if len(stats.Questions) != 0 {
		t.Fatalf("expected no question stats, got %d", len(stats.Questions))
	}
}

func TestPoolAnalytics_UnknownPool(t *testing.T) {
	e := newEngine(t, makeQuestions(3, 1), 3, 70, false)
	analytics := NewAnalyticsService(e.pools, e.quizzes, e.attempts)

	_, err := analytics.PoolAnalytics(context.Background(), uuid.New())
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
