package dto

import (
	"time"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// RegisterRequest captures self-service student registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	NIS      string `json:"nis" validate:"required,max=32"`
	Gender   string `json:"gender" validate:"required,max=16"`
}

// LoginRequest captures credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries an issued bearer token.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserCreateRequest captures account creation by a teacher.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
	NIS      string `json:"nis" validate:"omitempty,max=32"`
	Gender   string `json:"gender" validate:"omitempty,max=16"`
}

// UserUpdateRequest captures account edits by a teacher. An empty password keeps the current one.
type UserUpdateRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"omitempty,min=6,max=128"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
	NIS      string `json:"nis" validate:"omitempty,max=32"`
	Gender   string `json:"gender" validate:"omitempty,max=16"`
}

// UserListRequest filters account listings.
type UserListRequest struct {
	Page     int
	PageSize int
	Role     string
	Search   string
}

// UserListResponse wraps a paginated account listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// ProfileUpdateRequest captures edits a user makes to their own profile.
type ProfileUpdateRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Gender   string `json:"gender" validate:"omitempty,max=16"`
}

// PasswordChangeRequest captures a password change.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128"`
}

// UserResponse serializes an account without its password hash.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	NIS       string    `json:"nis,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	LoggedIn  bool      `json:"logged_in"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	response := UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Role:      string(user.Role),
		Gender:    user.Gender,
		LoggedIn:  user.LoggedIn,
		CreatedAt: user.CreatedAt,
	}
	if user.NIS != nil {
		response.NIS = *user.NIS
	}
	return response
}
