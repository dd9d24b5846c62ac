package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-backend/internal/models"
)

type PoolRepo struct {
	pool *pgxpool.Pool
}

func NewPoolRepo(pool *pgxpool.Pool) *PoolRepo {
	return &PoolRepo{pool: pool}
}

func (r *PoolRepo) Create(ctx context.Context, p *models.Pool) error {
	p.ID = uuid.New()
	p.IsActive = true

	query := `INSERT INTO quiz_pools
		(id, course_id, unit_id, video_id, after_video_id, questions_per_attempt,
		 time_limit_minutes, passing_score_percent, unlock_next_content, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		p.ID, p.CourseID, p.UnitID, p.VideoID, p.AfterVideoID, p.QuestionsPerAttempt,
		p.TimeLimitMinutes, p.PassingScorePercent, p.UnlockNextContent, p.IsActive, p.CreatedBy,
	).Scan(&p.CreatedAt)
}

func (r *PoolRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	p := &models.Pool{}
	query := `SELECT id, course_id, unit_id, video_id, after_video_id, questions_per_attempt,
		time_limit_minutes, passing_score_percent, unlock_next_content, is_active, created_by, created_at
		FROM quiz_pools WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CourseID, &p.UnitID, &p.VideoID, &p.AfterVideoID, &p.QuestionsPerAttempt,
		&p.TimeLimitMinutes, &p.PassingScorePercent, &p.UnlockNextContent, &p.IsActive,
		&p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	memberships, err := r.Memberships(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		p.QuizIDs = append(p.QuizIDs, m.QuizID)
	}
	return p, nil
}

func (r *PoolRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Pool, error) {
	query := `SELECT id, course_id, unit_id, video_id, after_video_id, questions_per_attempt,
		time_limit_minutes, passing_score_percent, unlock_next_content, is_active, created_by, created_at
		FROM quiz_pools WHERE course_id = $1 AND is_active ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []*models.Pool
	for rows.Next() {
		p := &models.Pool{}
		err := rows.Scan(
			&p.ID, &p.CourseID, &p.UnitID, &p.VideoID, &p.AfterVideoID, &p.QuestionsPerAttempt,
			&p.TimeLimitMinutes, &p.PassingScorePercent, &p.UnlockNextContent, &p.IsActive,
			&p.CreatedBy, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, nil
}

// AddQuiz appends a quiz to the pool's membership list. Returns false when
// the quiz is already a member; membership is a set, not a bag.
func (r *PoolRepo) AddQuiz(ctx context.Context, poolID, quizID, addedBy uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO pool_quizzes (pool_id, quiz_id, added_by)
		 VALUES ($1, $2, $3) ON CONFLICT (pool_id, quiz_id) DO NOTHING`,
		poolID, quizID, addedBy,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PoolRepo) RemoveQuiz(ctx context.Context, poolID, quizID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM pool_quizzes WHERE pool_id = $1 AND quiz_id = $2",
		poolID, quizID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PoolRepo) Memberships(ctx context.Context, poolID uuid.UUID) ([]models.PoolMembership, error) {
	query := `SELECT pool_id, quiz_id, added_by, added_at
		FROM pool_quizzes WHERE pool_id = $1 ORDER BY added_at ASC`

	rows, err := r.pool.Query(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []models.PoolMembership
	for rows.Next() {
		var m models.PoolMembership
		if err := rows.Scan(&m.PoolID, &m.QuizID, &m.AddedBy, &m.AddedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}

// Deactivate soft-deletes a pool. Attempts keep referencing it, so pools
// are never removed from the table.
func (r *PoolRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE quiz_pools SET is_active = FALSE WHERE id = $1", id)
	return err
}
