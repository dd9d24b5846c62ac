package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-backend/internal/models"
)

type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

func (r *QuizRepo) Create(ctx context.Context, q *models.Quiz) error {
	q.ID = uuid.New()
	if q.QuestionsJSON == nil {
		q.QuestionsJSON = json.RawMessage("[]")
	}

	query := `INSERT INTO quizzes (id, author_id, title, questions_json, question_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		q.ID, q.AuthorID, q.Title, q.QuestionsJSON, q.QuestionCount,
	).Scan(&q.CreatedAt)
}

func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	q := &models.Quiz{}
	query := `SELECT id, author_id, title, questions_json, question_count, created_at
		FROM quizzes WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.AuthorID, &q.Title, &q.QuestionsJSON, &q.QuestionCount, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuizRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Quiz, error) {
	query := `SELECT id, author_id, title, questions_json, question_count, created_at
		FROM quizzes WHERE author_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []*models.Quiz
	for rows.Next() {
		q := &models.Quiz{}
		err := rows.Scan(&q.ID, &q.AuthorID, &q.Title, &q.QuestionsJSON, &q.QuestionCount, &q.CreatedAt)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, nil
}

// ListByIDs loads quizzes preserving the order of the given ids.
func (r *QuizRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Quiz, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, author_id, title, questions_json, question_count, created_at
		FROM quizzes WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.Quiz, len(ids))
	for rows.Next() {
		q := &models.Quiz{}
		err := rows.Scan(&q.ID, &q.AuthorID, &q.Title, &q.QuestionsJSON, &q.QuestionCount, &q.CreatedAt)
		if err != nil {
			return nil, err
		}
		byID[q.ID] = q
	}

	quizzes := make([]*models.Quiz, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			quizzes = append(quizzes, q)
		}
	}
	return quizzes, nil
}

func (r *QuizRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	return err
}
