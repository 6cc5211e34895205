package model

import "gorm.io/datatypes"

type QuizQuestionRef struct {
	QuestionID string `json:"question_id"`
	Order      int    `json:"order"`
}

// swagger:model Quiz
type Quiz struct {
	DocumentBase
	Title            string                               `gorm:"size:255;not null" json:"title"`
	Description      string                               `gorm:"type:text" json:"description"`
	Category         *Category                            `gorm:"size:32;index" json:"category"`
	Difficulty       *Difficulty                          `gorm:"size:16;index" json:"difficulty"`
	Tags             datatypes.JSONSlice[string]          `json:"tags"`
	TimeLimitMinutes *int                                 `json:"time_limit_minutes"`
	IsPublic         bool                                 `gorm:"index;not null" json:"is_public"`
	Questions        datatypes.JSONSlice[QuizQuestionRef] `json:"questions"`
	TotalQuestions   int                                  `gorm:"not null" json:"total_questions"`
	Active           bool                                 `gorm:"index;not null" json:"active"`
	CreatedBy        string                               `gorm:"size:64;index;not null" json:"created_by"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// SetQuestions replaces the question references and keeps TotalQuestions in step.
func (q *Quiz) SetQuestions(refs []QuizQuestionRef) {
	if refs == nil {
		refs = []QuizQuestionRef{}
	}
	q.Questions = refs
	q.TotalQuestions = len(refs)
}
