package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
)

// ErrWrongPassword indicates the current password did not match.
var ErrWrongPassword = errors.New("current password is incorrect")

// ProfileService lets any signed-in user read and edit their own account.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.UserResponse, error)
	Update(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req dto.PasswordChangeRequest) error
}

type profileService struct {
	users     repository.UserRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:     users,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *profileService) Update(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	req.Name = cleanText(s.sanitizer, req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Gender = cleanText(s.sanitizer, req.Gender)
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	taken, err := s.users.UsernameExists(ctx, req.Username, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if taken {
		return dto.UserResponse{}, ErrUsernameTaken
	}

	user, err := s.users.Update(ctx, userID, map[string]interface{}{
		"name":     req.Name,
		"username": req.Username,
		"gender":   req.Gender,
	})
	if err != nil {
		if isNotFound(err) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, Actor{ID: user.ID, Role: string(user.Role)}, "profile.updated", "user", user.ID, nil)
	return dto.NewUserResponse(user), nil
}

func (s *profileService) ChangePassword(ctx context.Context, userID uint, req dto.PasswordChangeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return err
	}

	recordActivity(ctx, s.activity, s.logger, Actor{ID: user.ID, Role: string(user.Role)}, "profile.password_changed", "user", user.ID, nil)
	return nil
}
