package models

import (
	"time"

	"github.com/google/uuid"
)

// Pool merges the questions of its member quizzes for randomized testing.
// At most one of UnitID / VideoID should be set; AfterVideoID additionally
// pins the unlock anchor to a specific video. Pools are never hard-deleted
// because attempts reference them; IsActive=false retires a pool.
type Pool struct {
	ID                  uuid.UUID   `json:"id"`
	CourseID            uuid.UUID   `json:"course_id"`
	UnitID              *uuid.UUID  `json:"unit_id"`
	VideoID             *uuid.UUID  `json:"video_id"`
	AfterVideoID        *uuid.UUID  `json:"after_video_id"`
	QuestionsPerAttempt int         `json:"questions_per_attempt"`
	TimeLimitMinutes    int         `json:"time_limit_minutes"`
	PassingScorePercent int         `json:"passing_score_percent"`
	UnlockNextContent   bool        `json:"unlock_next_content"`
	IsActive            bool        `json:"is_active"`
	CreatedBy           uuid.UUID   `json:"created_by"`
	CreatedAt           time.Time   `json:"created_at"`
	QuizIDs             []uuid.UUID `json:"quiz_ids"`
}

// PoolMembership records one quiz's membership in a pool and which
// contributor added it.
type PoolMembership struct {
	PoolID  uuid.UUID `json:"pool_id"`
	QuizID  uuid.UUID `json:"quiz_id"`
	AddedBy uuid.UUID `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

type CreatePoolRequest struct {
	CourseID            uuid.UUID  `json:"course_id"`
	UnitID              *uuid.UUID `json:"unit_id"`
	VideoID             *uuid.UUID `json:"video_id"`
	AfterVideoID        *uuid.UUID `json:"after_video_id"`
	QuestionsPerAttempt int        `json:"questions_per_attempt"`
	TimeLimitMinutes    int        `json:"time_limit_minutes"`
	PassingScorePercent int        `json:"passing_score_percent"`
	UnlockNextContent   bool       `json:"unlock_next_content"`
}

type AddQuizRequest struct {
	QuizID uuid.UUID `json:"quiz_id"`
}
