package models

import "time"

// Criterion is a weighted attribute alternatives are judged on.
type Criterion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Direction string    `gorm:"size:16;not null" json:"direction"`
	Weight    float64   `gorm:"not null;default:0" json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the criteria table name.
func (Criterion) TableName() string {
	return "criteria"
}

// SubCriterion is a named answer band with the numeric value an answer carries.
type SubCriterion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CriterionID uint      `gorm:"not null;uniqueIndex:idx_sub_criteria_value" json:"criterion_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Value       float64   `gorm:"not null;uniqueIndex:idx_sub_criteria_value" json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the sub-criteria table name.
func (SubCriterion) TableName() string {
	return "sub_criteria"
}
