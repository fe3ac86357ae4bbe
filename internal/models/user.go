package models

import "time"

// Role identifies what a user may do in the application.
type Role string

const (
	// RoleTeacher manages criteria, alternatives, questionnaires and student assessments.
	RoleTeacher Role = "teacher"
	// RoleStudent answers questionnaires and reads their own recommendations.
	RoleStudent Role = "student"
)

// User is an account that can sign in. Students own answers; teachers own configuration.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;index;not null" json:"role"`
	NIS          *string   `gorm:"column:nis;size:32;uniqueIndex" json:"nis,omitempty"`
	Gender       string    `gorm:"size:16" json:"gender,omitempty"`
	LoggedIn     bool      `gorm:"default:false" json:"logged_in"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName pins the users table name.
func (User) TableName() string {
	return "users"
}

// IsStudent reports whether the user answers questionnaires.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}
