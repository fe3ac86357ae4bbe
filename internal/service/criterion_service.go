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
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

const weightCeiling = 100.0

var (
	// ErrCriterionNotFound indicates the criterion does not exist.
	ErrCriterionNotFound = errors.New("criterion not found")
	// ErrCriterionDuplicate indicates the code or name is already taken.
	ErrCriterionDuplicate = errors.New("criterion code or name already exists")
	// ErrWeightLimitExceeded indicates the total weight would go above 100.
	ErrWeightLimitExceeded = errors.New("total criteria weight may not exceed 100")
	// ErrCriterionInUse indicates questions or answers still reference the criterion.
	ErrCriterionInUse = errors.New("criterion is still referenced by questions or answers")
)

// CriterionService manages the weighted criteria.
type CriterionService interface {
	List(ctx context.Context) ([]dto.CriterionResponse, error)
	Get(ctx context.Context, id uint) (dto.CriterionResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CriterionRequest) (dto.CriterionResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.CriterionRequest) (dto.CriterionResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type criterionService struct {
	repo      repository.CriterionRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCriterionService constructs the criterion service.
func NewCriterionService(repo repository.CriterionRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) CriterionService {
	return &criterionService{
		repo:      repo,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "criterion_service").Logger(),
	}
}

func (s *criterionService) List(ctx context.Context) ([]dto.CriterionResponse, error) {
	criteria, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CriterionResponse, 0, len(criteria))
	for _, criterion := range criteria {
		responses = append(responses, dto.NewCriterionResponse(criterion))
	}
	return responses, nil
}

func (s *criterionService) Get(ctx context.Context, id uint) (dto.CriterionResponse, error) {
	criterion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.CriterionResponse{}, ErrCriterionNotFound
		}
		return dto.CriterionResponse{}, err
	}
	return dto.NewCriterionResponse(criterion), nil
}

func (s *criterionService) Create(ctx context.Context, actor Actor, req dto.CriterionRequest) (dto.CriterionResponse, error) {
	model, err := s.prepare(ctx, 0, req)
	if err != nil {
		return dto.CriterionResponse{}, err
	}

	if err := s.repo.CreateWithinCeiling(ctx, &model, weightCeiling); err != nil {
		if errors.Is(err, repository.ErrWeightCeilingExceeded) {
			return dto.CriterionResponse{}, ErrWeightLimitExceeded
		}
		s.logger.Error().Err(err).Str("code", model.Code).Msg("failed to create criterion")
		return dto.CriterionResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "criterion.created", "criterion", model.ID, map[string]interface{}{
		"code":   model.Code,
		"weight": model.Weight,
	})
	return dto.NewCriterionResponse(model), nil
}

func (s *criterionService) Update(ctx context.Context, actor Actor, id uint, req dto.CriterionRequest) (dto.CriterionResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.CriterionResponse{}, ErrCriterionNotFound
		}
		return dto.CriterionResponse{}, err
	}

	model, err := s.prepare(ctx, id, req)
	if err != nil {
		return dto.CriterionResponse{}, err
	}
	existing.Code = model.Code
	existing.Name = model.Name
	existing.Direction = model.Direction
	existing.Weight = model.Weight

	if err := s.repo.UpdateWithinCeiling(ctx, &existing, weightCeiling); err != nil {
		if errors.Is(err, repository.ErrWeightCeilingExceeded) {
			return dto.CriterionResponse{}, ErrWeightLimitExceeded
		}
		if isNotFound(err) {
			return dto.CriterionResponse{}, ErrCriterionNotFound
		}
		return dto.CriterionResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "criterion.updated", "criterion", existing.ID, map[string]interface{}{
		"code":   existing.Code,
		"weight": existing.Weight,
	})
	return dto.NewCriterionResponse(existing), nil
}

func (s *criterionService) Delete(ctx context.Context, actor Actor, id uint) error {
	criterion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrCriterionNotFound
		}
		return err
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrCriterionInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCriterionNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "criterion.deleted", "criterion", id, map[string]interface{}{
		"code": criterion.Code,
	})
	return nil
}

// prepare validates a payload and enforces uniqueness and the weight ceiling.
// excludeID is the criterion being edited, or zero on create.
func (s *criterionService) prepare(ctx context.Context, excludeID uint, req dto.CriterionRequest) (models.Criterion, error) {
	req.Code = cleanText(s.sanitizer, req.Code)
	req.Name = cleanText(s.sanitizer, req.Name)
	if direction, ok := scoring.ParseDirection(req.Direction); ok {
		req.Direction = string(direction)
	}

	if err := s.validator.Struct(req); err != nil {
		return models.Criterion{}, err
	}

	codeTaken, err := s.repo.CodeExists(ctx, req.Code, excludeID)
	if err != nil {
		return models.Criterion{}, err
	}
	nameTaken, err := s.repo.NameExists(ctx, req.Name, excludeID)
	if err != nil {
		return models.Criterion{}, err
	}
	if codeTaken || nameTaken {
		return models.Criterion{}, ErrCriterionDuplicate
	}

	others, err := s.repo.SumWeights(ctx, excludeID)
	if err != nil {
		return models.Criterion{}, err
	}
	if others+req.Weight > weightCeiling+1e-9 {
		return models.Criterion{}, ErrWeightLimitExceeded
	}

	return models.Criterion{
		Code:      req.Code,
		Name:      req.Name,
		Direction: req.Direction,
		Weight:    req.Weight,
	}, nil
}
