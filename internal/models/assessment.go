package models

import "time"

// Question is a questionnaire item scoped to one criterion of one alternative.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CriterionID   uint      `gorm:"not null;index" json:"criterion_id"`
	AlternativeID uint      `gorm:"not null;index" json:"alternative_id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName pins the questions table name.
func (Question) TableName() string {
	return "questions"
}

// Answer is one student's chosen sub-criterion for one question.
type Answer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"not null;uniqueIndex:idx_answers_natural_key" json:"student_id"`
	AlternativeID  uint      `gorm:"not null;uniqueIndex:idx_answers_natural_key" json:"alternative_id"`
	CriterionID    uint      `gorm:"not null;uniqueIndex:idx_answers_natural_key" json:"criterion_id"`
	QuestionID     uint      `gorm:"not null;uniqueIndex:idx_answers_natural_key" json:"question_id"`
	SubCriterionID uint      `gorm:"not null;index" json:"sub_criterion_id"`
	Value          float64   `gorm:"not null" json:"value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName pins the answers table name.
func (Answer) TableName() string {
	return "answers"
}

// ScoredAnswer is an answer joined with the alternative and criterion it belongs to.
// Value is read from the chosen sub-criterion so band edits apply to past answers.
type ScoredAnswer struct {
	AnswerID        uint
	AlternativeID   uint
	AlternativeCode string
	AlternativeName string
	CriterionID     uint
	CriterionCode   string
	QuestionID      uint
	SubCriterionID  uint
	Value           float64
}

// QuestionDetail is a question joined with its criterion and alternative labels.
type QuestionDetail struct {
	Question
	CriterionCode   string `json:"criterion_code"`
	CriterionName   string `json:"criterion_name"`
	AlternativeCode string `json:"alternative_code"`
	AlternativeName string `json:"alternative_name"`
}
