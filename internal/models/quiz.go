package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Quiz struct {
	ID            uuid.UUID       `json:"id"`
	AuthorID      uuid.UUID       `json:"author_id"`
	Title         string          `json:"title"`
	QuestionsJSON json.RawMessage `json:"questions"`
	QuestionCount int             `json:"question_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Question struct {
	ID           uuid.UUID `json:"id"`
	Prompt       string    `json:"prompt"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	Points       int       `json:"points"`
	Explanation  string    `json:"explanation,omitempty"`
}

// Questions decodes the stored question list.
func (q *Quiz) Questions() ([]Question, error) {
	var questions []Question
	if len(q.QuestionsJSON) == 0 {
		return questions, nil
	}
	if err := json.Unmarshal(q.QuestionsJSON, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// PoolQuestion is a question aggregated out of a pool's member quizzes,
// tagged with where it came from.
type PoolQuestion struct {
	Question
	QuizID        uuid.UUID `json:"quiz_id"`
	ContributorID uuid.UUID `json:"contributor_id"`
}

type CreateQuizRequest struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}
