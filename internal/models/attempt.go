package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"
)

// QuestionSnapshot is an immutable copy of a question as it existed when
// the attempt started. Grading reads only these rows; later edits to the
// live quiz never touch an open attempt.
type QuestionSnapshot struct {
	QuestionID    uuid.UUID `json:"question_id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	ContributorID uuid.UUID `json:"contributor_id"`
	Prompt        string    `json:"prompt"`
	Options       []string  `json:"options"`
	CorrectIndex  int       `json:"correct_index"`
	Points        int       `json:"points"`
	Explanation   string    `json:"explanation,omitempty"`
}

// StudentQuestion is the client-facing view of a snapshot with the
// correct-option index and explanation stripped.
type StudentQuestion struct {
	QuestionID uuid.UUID `json:"question_id"`
	Prompt     string    `json:"prompt"`
	Options    []string  `json:"options"`
}

type Attempt struct {
	ID               uuid.UUID       `json:"id"`
	PoolID           uuid.UUID       `json:"pool_id"`
	StudentID        uuid.UUID       `json:"student_id"`
	QuestionsJSON    json.RawMessage `json:"-"`
	AnswersJSON      json.RawMessage `json:"answers,omitempty"`
	Score            int             `json:"score"`
	MaxScore         int             `json:"max_score"`
	Percentage       float64         `json:"percentage"`
	Passed           bool            `json:"passed"`
	Status           string          `json:"status"`
	TimeSpentSeconds *int            `json:"time_spent_seconds"`
	StartedAt        time.Time       `json:"started_at"`
	CompletedAt      *time.Time      `json:"completed_at"`
}

// Snapshot decodes the attempt's embedded question copies.
func (a *Attempt) Snapshot() ([]QuestionSnapshot, error) {
	var snapshot []QuestionSnapshot
	if err := json.Unmarshal(a.QuestionsJSON, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// StudentQuestions returns the snapshot stripped of answer data.
func (a *Attempt) StudentQuestions() ([]StudentQuestion, error) {
	snapshot, err := a.Snapshot()
	if err != nil {
		return nil, err
	}
	questions := make([]StudentQuestion, 0, len(snapshot))
	for _, q := range snapshot {
		questions = append(questions, StudentQuestion{
			QuestionID: q.QuestionID,
			Prompt:     q.Prompt,
			Options:    q.Options,
		})
	}
	return questions, nil
}

type Answer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption int       `json:"selected_option"`
}

type SubmitRequest struct {
	Answers          []Answer `json:"answers"`
	TimeSpentSeconds int      `json:"time_spent"`
}

type AttemptResult struct {
	AttemptID   uuid.UUID  `json:"attempt_id"`
	Score       int        `json:"score"`
	MaxScore    int        `json:"max_score"`
	Percentage  float64    `json:"percentage"`
	Passed      bool       `json:"passed"`
	CompletedAt *time.Time `json:"completed_at"`
}
