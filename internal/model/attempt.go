package model

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptCreated    AttemptStatus = "created"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

type QuestionAnswer struct {
	QuestionID       string `json:"question_id"`
	SelectedOptionID string `json:"selected_option_id"`
	IsCorrect        bool   `json:"is_correct"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
}

// swagger:model Attempt
type Attempt struct {
	DocumentBase
	UserID           string                              `gorm:"size:64;index;not null" json:"user_id"`
	QuizID           string                              `gorm:"size:64;index;not null" json:"quiz_id"`
	Answers          datatypes.JSONSlice[QuestionAnswer] `json:"answers"`
	ReviewLater      datatypes.JSONSlice[string]         `json:"review_later"`
	StartedAt        time.Time                           `gorm:"index;not null" json:"started_at"`
	CompletedAt      *time.Time                          `json:"completed_at"`
	TimeTakenSeconds int                                 `gorm:"not null" json:"time_taken_seconds"`
	Score            int                                 `gorm:"not null" json:"score"`
	MaxScore         int                                 `gorm:"not null" json:"max_score"`
	Percentage       float64                             `gorm:"not null" json:"percentage"`
	Status           AttemptStatus                       `gorm:"size:16;not null" json:"status"`
}

func (Attempt) TableName() string {
	return "attempts"
}
