package models

import "github.com/google/uuid"

type QuestionStats struct {
	QuestionID uuid.UUID `json:"question_id"`
	Prompt     string    `json:"prompt"`
	Correct    int       `json:"correct"`
	Incorrect  int       `json:"incorrect"`
	Accuracy   float64   `json:"accuracy"`
}

type ContributorStats struct {
	ContributorID uuid.UUID `json:"contributor_id"`
	QuizCount     int       `json:"quiz_count"`
	QuestionCount int       `json:"question_count"`
}

type PoolAnalytics struct {
	PoolID         uuid.UUID          `json:"pool_id"`
	TotalAttempts  int                `json:"total_attempts"`
	PassedCount    int                `json:"passed_count"`
	PassRate       float64            `json:"pass_rate"`
	MeanPercentage float64            `json:"mean_percentage"`
	Questions      []QuestionStats    `json:"questions"`
	Contributors   []ContributorStats `json:"contributors"`
}
