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
	// ErrQuestionNotFound indicates the questionnaire item does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionDuplicate indicates the same text already exists for the criterion and alternative.
	ErrQuestionDuplicate = errors.New("question already exists for this criterion and alternative")
	// ErrQuestionInUse indicates an answered question cannot move to another criterion or alternative.
	ErrQuestionInUse = errors.New("question already has answers")
)

// QuestionService manages questionnaire items.
type QuestionService interface {
	List(ctx context.Context, req dto.QuestionListRequest) ([]dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	Create(ctx context.Context, actor Actor, req dto.QuestionRequest) (dto.QuestionResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.QuestionRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type questionService struct {
	repo         repository.QuestionRepository
	criteria     repository.CriterionRepository
	alternatives repository.AlternativeRepository
	activity     ActivityRecorder
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
}

// NewQuestionService constructs the question service.
func NewQuestionService(repo repository.QuestionRepository, criteria repository.CriterionRepository, alternatives repository.AlternativeRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:         repo,
		criteria:     criteria,
		alternatives: alternatives,
		activity:     activity,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) List(ctx context.Context, req dto.QuestionListRequest) ([]dto.QuestionResponse, error) {
	var filter repository.QuestionFilter
	if req.CriterionID > 0 {
		filter.CriterionID = &req.CriterionID
	}
	if req.AlternativeID > 0 {
		filter.AlternativeID = &req.AlternativeID
	}

	details, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, 0, len(details))
	for _, detail := range details {
		responses = append(responses, dto.NewQuestionResponse(detail))
	}
	return responses, nil
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	criterion, alternative, err := s.parents(ctx, question.CriterionID, question.AlternativeID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	return describeQuestion(question, criterion, alternative), nil
}

func (s *questionService) Create(ctx context.Context, actor Actor, req dto.QuestionRequest) (dto.QuestionResponse, error) {
	criterion, alternative, err := s.validate(ctx, 0, &req)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	model := models.Question{CriterionID: req.CriterionID, AlternativeID: req.AlternativeID, Text: req.Text}
	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Msg("failed to create question")
		return dto.QuestionResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "question.created", "question", model.ID, map[string]interface{}{
		"criterion_id":   model.CriterionID,
		"alternative_id": model.AlternativeID,
	})
	return describeQuestion(model, criterion, alternative), nil
}

func (s *questionService) Update(ctx context.Context, actor Actor, id uint, req dto.QuestionRequest) (dto.QuestionResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	criterion, alternative, err := s.validate(ctx, id, &req)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	if req.CriterionID != existing.CriterionID || req.AlternativeID != existing.AlternativeID {
		referenced, err := s.repo.IsReferenced(ctx, id)
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		if referenced {
			return dto.QuestionResponse{}, ErrQuestionInUse
		}
	}

	existing.CriterionID = req.CriterionID
	existing.AlternativeID = req.AlternativeID
	existing.Text = req.Text
	if err := s.repo.Update(ctx, &existing); err != nil {
		return dto.QuestionResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "question.updated", "question", existing.ID, map[string]interface{}{
		"criterion_id":   existing.CriterionID,
		"alternative_id": existing.AlternativeID,
	})
	return describeQuestion(existing, criterion, alternative), nil
}

// Delete removes the question together with the answers given to it.
func (s *questionService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrQuestionNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, "question.deleted", "question", id, nil)
	return nil
}

func (s *questionService) validate(ctx context.Context, excludeID uint, req *dto.QuestionRequest) (models.Criterion, models.Alternative, error) {
	req.Text = cleanText(s.sanitizer, req.Text)
	if err := s.validator.Struct(req); err != nil {
		return models.Criterion{}, models.Alternative{}, err
	}

	criterion, alternative, err := s.parents(ctx, req.CriterionID, req.AlternativeID)
	if err != nil {
		return models.Criterion{}, models.Alternative{}, err
	}

	taken, err := s.repo.TextExists(ctx, req.CriterionID, req.AlternativeID, req.Text, excludeID)
	if err != nil {
		return models.Criterion{}, models.Alternative{}, err
	}
	if taken {
		return models.Criterion{}, models.Alternative{}, ErrQuestionDuplicate
	}
	return criterion, alternative, nil
}

func (s *questionService) parents(ctx context.Context, criterionID, alternativeID uint) (models.Criterion, models.Alternative, error) {
	criterion, err := s.criteria.GetByID(ctx, criterionID)
	if err != nil {
		if isNotFound(err) {
			return models.Criterion{}, models.Alternative{}, ErrCriterionNotFound
		}
		return models.Criterion{}, models.Alternative{}, err
	}

	alternative, err := s.alternatives.GetByID(ctx, alternativeID)
	if err != nil {
		if isNotFound(err) {
			return models.Criterion{}, models.Alternative{}, ErrAlternativeNotFound
		}
		return models.Criterion{}, models.Alternative{}, err
	}
	return criterion, alternative, nil
}

func describeQuestion(question models.Question, criterion models.Criterion, alternative models.Alternative) dto.QuestionResponse {
	return dto.NewQuestionResponse(models.QuestionDetail{
		Question:        question,
		CriterionCode:   criterion.Code,
		CriterionName:   criterion.Name,
		AlternativeCode: alternative.Code,
		AlternativeName: alternative.Name,
	})
}
