package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
)

var (
	// ErrAlternativeNotFound indicates the study program does not exist.
	ErrAlternativeNotFound = errors.New("alternative not found")
	// ErrAlternativeDuplicate indicates the code or name is already taken.
	ErrAlternativeDuplicate = errors.New("alternative code or name already exists")
	// ErrAlternativeInUse indicates students already answered for the alternative.
	ErrAlternativeInUse = errors.New("alternative already has answers")
)

// AlternativeService manages the study programs being ranked.
type AlternativeService interface {
	List(ctx context.Context) ([]dto.AlternativeResponse, error)
	Get(ctx context.Context, id uint) (dto.AlternativeResponse, error)
	Create(ctx context.Context, actor Actor, req dto.AlternativeRequest) (dto.AlternativeResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.AlternativeRequest) (dto.AlternativeResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type alternativeService struct {
	repo      repository.AlternativeRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAlternativeService constructs the alternative service.
func NewAlternativeService(repo repository.AlternativeRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AlternativeService {
	return &alternativeService{
		repo:      repo,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "alternative_service").Logger(),
	}
}

func (s *alternativeService) List(ctx context.Context) ([]dto.AlternativeResponse, error) {
	alternatives, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AlternativeResponse, 0, len(alternatives))
	for _, alternative := range alternatives {
		responses = append(responses, dto.NewAlternativeResponse(alternative))
	}
	return responses, nil
}

func (s *alternativeService) Get(ctx context.Context, id uint) (dto.AlternativeResponse, error) {
	alternative, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.AlternativeResponse{}, ErrAlternativeNotFound
		}
		return dto.AlternativeResponse{}, err
	}
	return dto.NewAlternativeResponse(alternative), nil
}

func (s *alternativeService) Create(ctx context.Context, actor Actor, req dto.AlternativeRequest) (dto.AlternativeResponse, error) {
	if err := s.validate(ctx, 0, &req); err != nil {
		return dto.AlternativeResponse{}, err
	}

	model := models.Alternative{Code: req.Code, Name: req.Name}
	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("code", model.Code).Msg("failed to create alternative")
		return dto.AlternativeResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "alternative.created", "alternative", model.ID, map[string]interface{}{"code": model.Code})
	return dto.NewAlternativeResponse(model), nil
}

func (s *alternativeService) Update(ctx context.Context, actor Actor, id uint, req dto.AlternativeRequest) (dto.AlternativeResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.AlternativeResponse{}, ErrAlternativeNotFound
		}
		return dto.AlternativeResponse{}, err
	}

	if err := s.validate(ctx, id, &req); err != nil {
		return dto.AlternativeResponse{}, err
	}

	existing.Code = req.Code
	existing.Name = req.Name
	if err := s.repo.Update(ctx, &existing); err != nil {
		return dto.AlternativeResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "alternative.updated", "alternative", existing.ID, map[string]interface{}{"code": existing.Code})
	return dto.NewAlternativeResponse(existing), nil
}

func (s *alternativeService) Delete(ctx context.Context, actor Actor, id uint) error {
	alternative, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrAlternativeNotFound
		}
		return err
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrAlternativeInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrAlternativeNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "alternative.deleted", "alternative", id, map[string]interface{}{"code": alternative.Code})
	return nil
}

func (s *alternativeService) validate(ctx context.Context, excludeID uint, req *dto.AlternativeRequest) error {
	req.Code = cleanText(s.sanitizer, req.Code)
	req.Name = cleanText(s.sanitizer, req.Name)
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	codeTaken, err := s.repo.CodeExists(ctx, req.Code, excludeID)
	if err != nil {
		return err
	}
	nameTaken, err := s.repo.NameExists(ctx, req.Name, excludeID)
	if err != nil {
		return err
	}
	if codeTaken || nameTaken {
		return ErrAlternativeDuplicate
	}
	return nil
}
