package service

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
)

var (
	// ErrSubCriterionNotFound indicates the sub-criterion does not exist.
	ErrSubCriterionNotFound = errors.New("sub-criterion not found")
	// ErrSubCriterionDuplicate indicates the criterion already has a band with that value.
	ErrSubCriterionDuplicate = errors.New("sub-criterion value already exists for this criterion")
	// ErrSubCriterionInUse indicates answers still point at the sub-criterion.
	ErrSubCriterionInUse = errors.New("sub-criterion is still used by answers")
	// ErrInvalidValue indicates a non-finite numeric value.
	ErrInvalidValue = errors.New("value must be a finite number")
)

// SubCriterionService manages the answer bands of each criterion.
type SubCriterionService interface {
	List(ctx context.Context, criterionID uint) ([]dto.SubCriterionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubCriterionResponse, error)
	Create(ctx context.Context, actor Actor, req dto.SubCriterionRequest) (dto.SubCriterionResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.SubCriterionRequest) (dto.SubCriterionResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type subCriterionService struct {
	repo      repository.SubCriterionRepository
	criteria  repository.CriterionRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewSubCriterionService constructs the sub-criterion service.
func NewSubCriterionService(repo repository.SubCriterionRepository, criteria repository.CriterionRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) SubCriterionService {
	return &subCriterionService{
		repo:      repo,
		criteria:  criteria,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "sub_criterion_service").Logger(),
	}
}

// List returns every band, or only those of one criterion when criterionID is set.
func (s *subCriterionService) List(ctx context.Context, criterionID uint) ([]dto.SubCriterionResponse, error) {
	var filter *uint
	if criterionID > 0 {
		if _, err := s.criteria.GetByID(ctx, criterionID); err != nil {
			if isNotFound(err) {
				return nil, ErrCriterionNotFound
			}
			return nil, err
		}
		filter = &criterionID
	}

	subs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	criteria, err := s.criteria.List(ctx)
	if err != nil {
		return nil, err
	}
	parents := make(map[uint]*models.Criterion, len(criteria))
	for idx := range criteria {
		parents[criteria[idx].ID] = &criteria[idx]
	}

	responses := make([]dto.SubCriterionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, dto.NewSubCriterionResponse(sub, parents[sub.CriterionID]))
	}
	return responses, nil
}

func (s *subCriterionService) Get(ctx context.Context, id uint) (dto.SubCriterionResponse, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.SubCriterionResponse{}, ErrSubCriterionNotFound
		}
		return dto.SubCriterionResponse{}, err
	}

	parent, err := s.criteria.GetByID(ctx, sub.CriterionID)
	if err != nil && !isNotFound(err) {
		return dto.SubCriterionResponse{}, err
	}
	if err != nil {
		return dto.NewSubCriterionResponse(sub, nil), nil
	}
	return dto.NewSubCriterionResponse(sub, &parent), nil
}

func (s *subCriterionService) Create(ctx context.Context, actor Actor, req dto.SubCriterionRequest) (dto.SubCriterionResponse, error) {
	parent, err := s.validate(ctx, 0, &req)
	if err != nil {
		return dto.SubCriterionResponse{}, err
	}

	model := models.SubCriterion{CriterionID: req.CriterionID, Name: req.Name, Value: req.Value}
	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Uint("criterion_id", req.CriterionID).Msg("failed to create sub-criterion")
		return dto.SubCriterionResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "sub_criterion.created", "sub_criterion", model.ID, map[string]interface{}{
		"criterion_id": model.CriterionID,
		"value":        model.Value,
	})
	return dto.NewSubCriterionResponse(model, &parent), nil
}

func (s *subCriterionService) Update(ctx context.Context, actor Actor, id uint, req dto.SubCriterionRequest) (dto.SubCriterionResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.SubCriterionResponse{}, ErrSubCriterionNotFound
		}
		return dto.SubCriterionResponse{}, err
	}

	parent, err := s.validate(ctx, id, &req)
	if err != nil {
		return dto.SubCriterionResponse{}, err
	}

	// Answers carry the criterion they were given for; moving an answered band
	// would detach them from it.
	if req.CriterionID != existing.CriterionID {
		referenced, err := s.repo.IsReferenced(ctx, id)
		if err != nil {
			return dto.SubCriterionResponse{}, err
		}
		if referenced {
			return dto.SubCriterionResponse{}, ErrSubCriterionInUse
		}
	}

	existing.CriterionID = req.CriterionID
	existing.Name = req.Name
	existing.Value = req.Value
	if err := s.repo.Update(ctx, &existing); err != nil {
		return dto.SubCriterionResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "sub_criterion.updated", "sub_criterion", existing.ID, map[string]interface{}{
		"criterion_id": existing.CriterionID,
		"value":        existing.Value,
	})
	return dto.NewSubCriterionResponse(existing, &parent), nil
}

func (s *subCriterionService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrSubCriterionNotFound
		}
		return err
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrSubCriterionInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrSubCriterionNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "sub_criterion.deleted", "sub_criterion", id, nil)
	return nil
}

func (s *subCriterionService) validate(ctx context.Context, excludeID uint, req *dto.SubCriterionRequest) (models.Criterion, error) {
	req.Name = cleanText(s.sanitizer, req.Name)
	if err := s.validator.Struct(req); err != nil {
		return models.Criterion{}, err
	}
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		return models.Criterion{}, ErrInvalidValue
	}

	parent, err := s.criteria.GetByID(ctx, req.CriterionID)
	if err != nil {
		if isNotFound(err) {
			return models.Criterion{}, ErrCriterionNotFound
		}
		return models.Criterion{}, err
	}

	taken, err := s.repo.ValueExists(ctx, req.CriterionID, req.Value, excludeID)
	if err != nil {
		return models.Criterion{}, err
	}
	if taken {
		return models.Criterion{}, ErrSubCriterionDuplicate
	}

	return parent, nil
}
