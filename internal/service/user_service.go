package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
)

// ErrCannotDeleteSelf indicates a teacher tried to remove their own account.
var ErrCannotDeleteSelf = errors.New("you cannot delete your own account")

// UserService lets teachers manage accounts.
type UserService interface {
	List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	EnsureTeacher(ctx context.Context, name, username, password string) (bool, error)
}

type userService struct {
	users     repository.UserRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewUserService constructs the user management service.
func NewUserService(users repository.UserRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error) {
	filter := repository.UserFilter{
		Pagination: repository.Pagination{Page: req.Page, PageSize: req.PageSize},
		Search:     strings.TrimSpace(req.Search),
	}
	if role := strings.ToLower(strings.TrimSpace(req.Role)); role != "" {
		filter.Role = models.Role(role)
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return dto.UserListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error) {
	req.Name = cleanText(s.sanitizer, req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	req.NIS = strings.TrimSpace(req.NIS)
	req.Gender = cleanText(s.sanitizer, req.Gender)
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	role := models.Role(req.Role)
	nis := nisFor(role, req.NIS)
	if err := ensureUniqueAccount(ctx, s.users, req.Username, derefString(nis), 0); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		NIS:          nis,
		Gender:       req.Gender,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("failed to create user")
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "user.created", "user", user.ID, map[string]interface{}{"role": string(user.Role)})
	return dto.NewUserResponse(user), nil
}

// Update edits an account. An empty password keeps the current hash.
func (s *userService) Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	req.Name = cleanText(s.sanitizer, req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	req.NIS = strings.TrimSpace(req.NIS)
	req.Gender = cleanText(s.sanitizer, req.Gender)
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		if isNotFound(err) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	role := models.Role(req.Role)
	nis := nisFor(role, req.NIS)
	if err := ensureUniqueAccount(ctx, s.users, req.Username, derefString(nis), id); err != nil {
		return dto.UserResponse{}, err
	}

	updates := map[string]interface{}{
		"name":     req.Name,
		"username": req.Username,
		"role":     role,
		"nis":      nis,
		"gender":   req.Gender,
	}
	if req.Password != "" {
		hash, err := hashPassword(req.Password)
		if err != nil {
			return dto.UserResponse{}, err
		}
		updates["password_hash"] = hash
	}

	user, err := s.users.Update(ctx, id, updates)
	if err != nil {
		if isNotFound(err) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "user.updated", "user", user.ID, map[string]interface{}{
		"role":             string(user.Role),
		"password_changed": req.Password != "",
	})
	return dto.NewUserResponse(user), nil
}

// Delete removes an account and the answers it owns.
func (s *userService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "user.deleted", "user", id, nil)
	return nil
}

// EnsureTeacher creates a first teacher account when none exists. It reports
// whether an account was created.
func (s *userService) EnsureTeacher(ctx context.Context, name, username, password string) (bool, error) {
	counts, err := s.users.CountByRole(ctx)
	if err != nil {
		return false, err
	}
	if counts[models.RoleTeacher] > 0 {
		return false, nil
	}

	if strings.TrimSpace(name) == "" {
		name = username
	}
	created, err := s.Create(ctx, Actor{Role: "system"}, dto.UserCreateRequest{
		Name:     name,
		Username: username,
		Password: password,
		Role:     string(models.RoleTeacher),
	})
	if err != nil {
		return false, err
	}

	s.logger.Info().Uint("user_id", created.ID).Str("username", created.Username).Msg("seeded initial teacher account")
	return true, nil
}

// nisFor keeps student numbers on student accounts only.
func nisFor(role models.Role, nis string) *string {
	if role != models.RoleStudent || nis == "" {
		return nil
	}
	value := nis
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
