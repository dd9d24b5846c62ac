package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-backend/internal/models"
)

type UnlockRepo struct {
	pool *pgxpool.Pool
}

func NewUnlockRepo(pool *pgxpool.Pool) *UnlockRepo {
	return &UnlockRepo{pool: pool}
}

// Add grows the student's unlocked-content set for a course. Inserting an
// item that is already unlocked is a no-op, never an error.
func (r *UnlockRepo) Add(ctx context.Context, studentID, courseID, contentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO course_unlocks (student_id, course_id, content_id)
		 VALUES ($1, $2, $3) ON CONFLICT (student_id, course_id, content_id) DO NOTHING`,
		studentID, courseID, contentID,
	)
	return err
}

func (r *UnlockRepo) ListForStudent(ctx context.Context, studentID, courseID uuid.UUID) ([]models.Unlock, error) {
	query := `SELECT student_id, course_id, content_id, unlocked_at
		FROM course_unlocks WHERE student_id = $1 AND course_id = $2
		ORDER BY unlocked_at ASC`

	rows, err := r.pool.Query(ctx, query, studentID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocks []models.Unlock
	for rows.Next() {
		var u models.Unlock
		if err := rows.Scan(&u.StudentID, &u.CourseID, &u.ContentID, &u.UnlockedAt); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, u)
	}
	return unlocks, nil
}
