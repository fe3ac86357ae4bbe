package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
)

var (
	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrNISTaken indicates the student number is already registered.
	ErrNISTaken = errors.New("nis already registered")
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, role string) (string, time.Time, error)
}

// AuthService handles registration and sign-in.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, userID uint) error
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a student account. Teachers are created by other teachers.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	req.Name = cleanText(s.sanitizer, req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.NIS = strings.TrimSpace(req.NIS)
	req.Gender = cleanText(s.sanitizer, req.Gender)
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if err := ensureUniqueAccount(ctx, s.users, req.Username, req.NIS, 0); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	nis := req.NIS
	user := models.User{
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		NIS:          &nis,
		Gender:       req.Gender,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("failed to register student")
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, Actor{ID: user.ID, Role: string(user.Role)}, "user.registered", "user", user.ID, nil)
	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return dto.LoginResponse{}, err
	}

	updated, err := s.users.Update(ctx, user.ID, map[string]interface{}{"logged_in": true})
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to flag user as logged in")
		updated = user
	}

	recordActivity(ctx, s.activity, s.logger, Actor{ID: user.ID, Role: string(user.Role)}, "user.login", "user", user.ID, nil)
	return dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(updated),
	}, nil
}

// Logout clears the logged-in flag. Issued tokens stay valid until they expire.
func (s *authService) Logout(ctx context.Context, userID uint) error {
	user, err := s.users.Update(ctx, userID, map[string]interface{}{"logged_in": false})
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, Actor{ID: user.ID, Role: string(user.Role)}, "user.logout", "user", user.ID, nil)
	return nil
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func ensureUniqueAccount(ctx context.Context, users repository.UserRepository, username, nis string, excludeID uint) error {
	taken, err := users.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	if nis == "" {
		return nil
	}
	taken, err = users.NISExists(ctx, nis, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrNISTaken
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
