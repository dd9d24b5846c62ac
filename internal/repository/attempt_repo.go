package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-backend/internal/models"
)

type AttemptRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptRepo(pool *pgxpool.Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

const attemptColumns = `id, pool_id, student_id, questions_json, answers_json,
	score, max_score, percentage, passed, status, time_spent_seconds, started_at, completed_at`

func scanAttempt(row interface{ Scan(...any) error }) (*models.Attempt, error) {
	a := &models.Attempt{}
	err := row.Scan(
		&a.ID, &a.PoolID, &a.StudentID, &a.QuestionsJSON, &a.AnswersJSON,
		&a.Score, &a.MaxScore, &a.Percentage, &a.Passed, &a.Status,
		&a.TimeSpentSeconds, &a.StartedAt, &a.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new in-progress attempt. The partial unique indexes on
// (pool_id, student_id) make a concurrent duplicate insert fail with a
// unique violation; callers detect that with IsUniqueViolation and resume
// the attempt that won the race.
func (r *AttemptRepo) Create(ctx context.Context, a *models.Attempt) error {
	a.ID = uuid.New()
	a.Status = models.AttemptInProgress
	a.StartedAt = time.Now()
	if a.AnswersJSON == nil {
		a.AnswersJSON = json.RawMessage("[]")
	}

	query := `INSERT INTO pool_attempts (id, pool_id, student_id, questions_json, answers_json, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.PoolID, a.StudentID, a.QuestionsJSON, a.AnswersJSON, a.Status, a.StartedAt,
	)
	return err
}

func (r *AttemptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM pool_attempts WHERE id = $1`
	return scanAttempt(r.pool.QueryRow(ctx, query, id))
}

func (r *AttemptRepo) GetInProgress(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM pool_attempts
		WHERE pool_id = $1 AND student_id = $2 AND status = 'in_progress'`
	return scanAttempt(r.pool.QueryRow(ctx, query, poolID, studentID))
}

func (r *AttemptRepo) GetPassed(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM pool_attempts
		WHERE pool_id = $1 AND student_id = $2 AND passed`
	return scanAttempt(r.pool.QueryRow(ctx, query, poolID, studentID))
}

// GetLatestSubmitted returns the most recently completed attempt, used for
// cooldown checks after a failure.
func (r *AttemptRepo) GetLatestSubmitted(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM pool_attempts
		WHERE pool_id = $1 AND student_id = $2 AND status = 'submitted'
		ORDER BY completed_at DESC LIMIT 1`
	return scanAttempt(r.pool.QueryRow(ctx, query, poolID, studentID))
}

// Submit records the grading outcome and flips the attempt to submitted.
// The status guard makes the first write win: a concurrent submit of an
// already graded attempt updates nothing and returns false instead of
// overwriting a terminal record.
func (r *AttemptRepo) Submit(ctx context.Context, id uuid.UUID, score, maxScore int, percentage float64, passed bool, answersJSON json.RawMessage, timeSpentSeconds int, completedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pool_attempts
		 SET answers_json = $1, score = $2, max_score = $3, percentage = $4, passed = $5,
		     status = 'submitted', time_spent_seconds = $6, completed_at = $7
		 WHERE id = $8 AND status = 'in_progress'`,
		answersJSON, score, maxScore, percentage, passed, timeSpentSeconds, completedAt, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AttemptRepo) ListSubmittedByPool(ctx context.Context, poolID uuid.UUID) ([]*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM pool_attempts
		WHERE pool_id = $1 AND status = 'submitted' ORDER BY completed_at ASC`

	rows, err := r.pool.Query(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
