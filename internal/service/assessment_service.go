package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/observability"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

const (
	// SaveModeUpsert keeps answers that are not part of the batch.
	SaveModeUpsert = "upsert"
	// SaveModeReplace drops every earlier answer for the alternatives in the batch.
	SaveModeReplace = "replace"
)

var (
	// ErrInvalidReference indicates an answer names a question or sub-criterion that
	// does not exist or does not belong together.
	ErrInvalidReference = errors.New("answer references an unknown or mismatched question or sub-criterion")
	// ErrAssessmentNotFound indicates the student has no answers for the alternative.
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// AssessmentService records and reads questionnaire answers. Teacher and student
// routes share it; the student is always passed explicitly.
type AssessmentService interface {
	ListStudents(ctx context.Context) ([]dto.StudentSummaryResponse, error)
	AlternativeStatus(ctx context.Context, studentID uint) ([]dto.AlternativeStatusResponse, error)
	Detail(ctx context.Context, studentID, alternativeID uint) (dto.AssessmentDetailResponse, error)
	Questionnaire(ctx context.Context, studentID, alternativeID uint) (dto.QuestionnaireResponse, error)
	SubCriteriaOptions(ctx context.Context, criterionID uint) ([]dto.SubCriterionOption, error)
	SaveForAlternative(ctx context.Context, actor Actor, studentID, alternativeID uint, req dto.SaveAnswersRequest) (dto.SaveAnswersResponse, error)
	SaveAll(ctx context.Context, actor Actor, studentID uint, req dto.SaveAnswersRequest) (dto.SaveAnswersResponse, error)
	DeleteForAlternative(ctx context.Context, actor Actor, studentID, alternativeID uint) error
}

// AssessmentRepositories groups the stores the assessment service reads and writes.
type AssessmentRepositories struct {
	Users        repository.UserRepository
	Criteria     repository.CriterionRepository
	SubCriteria  repository.SubCriterionRepository
	Alternatives repository.AlternativeRepository
	Questions    repository.QuestionRepository
	Answers      repository.AnswerRepository
}

type assessmentService struct {
	repos     AssessmentRepositories
	activity  ActivityRecorder
	events    EventPublisher
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAssessmentService constructs the assessment service. activity and events may be nil.
func NewAssessmentService(repos AssessmentRepositories, activity ActivityRecorder, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		repos:     repos,
		activity:  activity,
		events:    events,
		validator: validate,
		logger:    logger.With().Str("component", "assessment_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/spk-prodi-api/internal/service/assessment"),
	}
}

func (s *assessmentService) ListStudents(ctx context.Context) ([]dto.StudentSummaryResponse, error) {
	students, _, err := s.repos.Users.List(ctx, repository.UserFilter{Role: models.RoleStudent})
	if err != nil {
		return nil, err
	}

	assessed, err := s.repos.Users.ListAssessedStudents(ctx)
	if err != nil {
		return nil, err
	}
	withAnswers := make(map[uint]struct{}, len(assessed))
	for _, student := range assessed {
		withAnswers[student.ID] = struct{}{}
	}

	responses := make([]dto.StudentSummaryResponse, 0, len(students))
	for _, student := range students {
		_, ok := withAnswers[student.ID]
		summary := dto.StudentSummaryResponse{
			ID:       student.ID,
			Name:     student.Name,
			Username: student.Username,
			Gender:   student.Gender,
			Assessed: ok,
		}
		if student.NIS != nil {
			summary.NIS = *student.NIS
		}
		responses = append(responses, summary)
	}
	return responses, nil
}

func (s *assessmentService) AlternativeStatus(ctx context.Context, studentID uint) ([]dto.AlternativeStatusResponse, error) {
	if err := requireStudent(ctx, s.repos.Users, studentID); err != nil {
		return nil, err
	}

	alternatives, err := s.repos.Alternatives.List(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := s.repos.Questions.List(ctx, repository.QuestionFilter{})
	if err != nil {
		return nil, err
	}
	answered, err := s.repos.Answers.CountByAlternative(ctx, studentID)
	if err != nil {
		return nil, err
	}

	questionCounts := make(map[uint]int, len(alternatives))
	for _, question := range questions {
		questionCounts[question.AlternativeID]++
	}

	statuses := make([]dto.AlternativeStatusResponse, 0, len(alternatives))
	for _, alternative := range alternatives {
		total := questionCounts[alternative.ID]
		count := answered[alternative.ID]
		statuses = append(statuses, dto.AlternativeStatusResponse{
			AlternativeID: alternative.ID,
			Code:          alternative.Code,
			Name:          alternative.Name,
			QuestionCount: total,
			AnswerCount:   count,
			Completed:     total > 0 && count >= int64(total),
		})
	}
	return statuses, nil
}

// Detail groups the student's answers for one alternative by criterion. Each group
// carries the 2-decimal average of the chosen values and the band nearest to it.
func (s *assessmentService) Detail(ctx context.Context, studentID, alternativeID uint) (dto.AssessmentDetailResponse, error) {
	if err := requireStudent(ctx, s.repos.Users, studentID); err != nil {
		return dto.AssessmentDetailResponse{}, err
	}
	alternative, err := s.alternative(ctx, alternativeID)
	if err != nil {
		return dto.AssessmentDetailResponse{}, err
	}

	answers, err := s.repos.Answers.ListByStudentAlternative(ctx, studentID, alternativeID)
	if err != nil {
		return dto.AssessmentDetailResponse{}, err
	}
	if len(answers) == 0 {
		return dto.AssessmentDetailResponse{}, ErrAssessmentNotFound
	}

	criteria, err := s.repos.Criteria.List(ctx)
	if err != nil {
		return dto.AssessmentDetailResponse{}, err
	}
	subs, err := s.repos.SubCriteria.List(ctx, nil)
	if err != nil {
		return dto.AssessmentDetailResponse{}, err
	}
	questions, err := s.repos.Questions.List(ctx, repository.QuestionFilter{AlternativeID: &alternativeID})
	if err != nil {
		return dto.AssessmentDetailResponse{}, err
	}

	subByID := make(map[uint]models.SubCriterion, len(subs))
	bands := make(map[uint][]scoring.Band)
	for _, sub := range subs {
		subByID[sub.ID] = sub
		bands[sub.CriterionID] = append(bands[sub.CriterionID], scoring.Band{ID: sub.ID, Name: sub.Name, Value: sub.Value})
	}
	questionText := make(map[uint]string, len(questions))
	for _, question := range questions {
		questionText[question.ID] = question.Text
	}
	byCriterion := make(map[uint][]models.Answer)
	for _, answer := range answers {
		byCriterion[answer.CriterionID] = append(byCriterion[answer.CriterionID], answer)
	}

	response := dto.AssessmentDetailResponse{
		StudentID:   studentID,
		Alternative: dto.NewAlternativeResponse(alternative),
		Criteria:    make([]dto.CriterionAssessment, 0, len(byCriterion)),
	}
	for _, criterion := range criteria {
		group, ok := byCriterion[criterion.ID]
		if !ok {
			continue
		}

		item := dto.CriterionAssessment{
			CriterionID:   criterion.ID,
			CriterionCode: criterion.Code,
			CriterionName: criterion.Name,
			Direction:     criterion.Direction,
			Answers:       make([]dto.AnswerDetail, 0, len(group)),
		}
		sum := 0.0
		for _, answer := range group {
			sub := subByID[answer.SubCriterionID]
			value := answer.Value
			if sub.ID != 0 {
				value = sub.Value
			}
			sum += value
			item.Answers = append(item.Answers, dto.AnswerDetail{
				AnswerID:         answer.ID,
				QuestionID:       answer.QuestionID,
				Question:         questionText[answer.QuestionID],
				SubCriterionID:   answer.SubCriterionID,
				SubCriterionName: sub.Name,
				Value:            value,
			})
		}
		average := sum / float64(len(group))
		item.Average = scoring.Round(average, 2)
		if band, ok := scoring.NearestBand(average, bands[criterion.ID]); ok {
			item.Category = band.Name
		}
		response.Criteria = append(response.Criteria, item)
	}

	return response, nil
}

func (s *assessmentService) Questionnaire(ctx context.Context, studentID, alternativeID uint) (dto.QuestionnaireResponse, error) {
	if err := requireStudent(ctx, s.repos.Users, studentID); err != nil {
		return dto.QuestionnaireResponse{}, err
	}
	alternative, err := s.alternative(ctx, alternativeID)
	if err != nil {
		return dto.QuestionnaireResponse{}, err
	}

	questions, err := s.repos.Questions.List(ctx, repository.QuestionFilter{AlternativeID: &alternativeID})
	if err != nil {
		return dto.QuestionnaireResponse{}, err
	}
	subs, err := s.repos.SubCriteria.List(ctx, nil)
	if err != nil {
		return dto.QuestionnaireResponse{}, err
	}
	answers, err := s.repos.Answers.ListByStudentAlternative(ctx, studentID, alternativeID)
	if err != nil {
		return dto.QuestionnaireResponse{}, err
	}

	options := make(map[uint][]dto.SubCriterionOption)
	for _, sub := range subs {
		options[sub.CriterionID] = append(options[sub.CriterionID], dto.SubCriterionOption{ID: sub.ID, Name: sub.Name, Value: sub.Value})
	}
	selected := make(map[uint]uint, len(answers))
	for _, answer := range answers {
		selected[answer.QuestionID] = answer.SubCriterionID
	}

	response := dto.QuestionnaireResponse{
		Alternative: dto.NewAlternativeResponse(alternative),
		Items:       make([]dto.QuestionnaireItem, 0, len(questions)),
	}
	for _, question := range questions {
		item := dto.QuestionnaireItem{
			QuestionID:    question.ID,
			Text:          question.Text,
			CriterionID:   question.CriterionID,
			CriterionCode: question.CriterionCode,
			CriterionName: question.CriterionName,
			Options:       options[question.CriterionID],
		}
		if item.Options == nil {
			item.Options = []dto.SubCriterionOption{}
		}
		if subID, ok := selected[question.ID]; ok {
			id := subID
			item.SelectedSubCriterionID = &id
		}
		response.Items = append(response.Items, item)
	}
	return response, nil
}

func (s *assessmentService) SubCriteriaOptions(ctx context.Context, criterionID uint) ([]dto.SubCriterionOption, error) {
	if _, err := s.repos.Criteria.GetByID(ctx, criterionID); err != nil {
		if isNotFound(err) {
			return nil, ErrCriterionNotFound
		}
		return nil, err
	}

	subs, err := s.repos.SubCriteria.List(ctx, &criterionID)
	if err != nil {
		return nil, err
	}

	options := make([]dto.SubCriterionOption, 0, len(subs))
	for _, sub := range subs {
		options = append(options, dto.SubCriterionOption{ID: sub.ID, Name: sub.Name, Value: sub.Value})
	}
	return options, nil
}

// SaveForAlternative upserts answers for one alternative. Every item must belong
// to that alternative; answers outside the batch are kept.
func (s *assessmentService) SaveForAlternative(ctx context.Context, actor Actor, studentID, alternativeID uint, req dto.SaveAnswersRequest) (dto.SaveAnswersResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.save_alternative", trace.WithAttributes(
		attribute.Int("assessment.student_id", int(studentID)),
		attribute.Int("assessment.alternative_id", int(alternativeID)),
		attribute.Int("assessment.items", len(req.Answers)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.SaveAnswersResponse{}, err
	}
	if err := requireStudent(ctx, s.repos.Users, studentID); err != nil {
		return dto.SaveAnswersResponse{}, err
	}
	if _, err := s.alternative(ctx, alternativeID); err != nil {
		return dto.SaveAnswersResponse{}, err
	}

	answers, err := s.resolve(ctx, req.Answers, alternativeID)
	if err != nil {
		return dto.SaveAnswersResponse{}, err
	}

	if err := s.repos.Answers.SaveForAlternative(ctx, studentID, alternativeID, answers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save_answers_failed")
		s.logger.Error().Err(err).Uint("student_id", studentID).Uint("alternative_id", alternativeID).Msg("failed to save answers")
		return dto.SaveAnswersResponse{}, err
	}

	response := dto.SaveAnswersResponse{
		StudentID:    studentID,
		Alternatives: []uint{alternativeID},
		Saved:        len(answers),
		Mode:         SaveModeUpsert,
	}
	s.afterWrite(ctx, actor, response)
	return response, nil
}

// SaveAll replaces the student's answers for every alternative named by the batch.
func (s *assessmentService) SaveAll(ctx context.Context, actor Actor, studentID uint, req dto.SaveAnswersRequest) (dto.SaveAnswersResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.save_all", trace.WithAttributes(
		attribute.Int("assessment.student_id", int(studentID)),
		attribute.Int("assessment.items", len(req.Answers)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.SaveAnswersResponse{}, err
	}
	if err := requireStudent(ctx, s.repos.Users, studentID); err != nil {
		return dto.SaveAnswersResponse{}, err
	}

	answers, err := s.resolve(ctx, req.Answers, 0)
	if err != nil {
		return dto.SaveAnswersResponse{}, err
	}

	if err := s.repos.Answers.ReplaceAll(ctx, studentID, answers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace_answers_failed")
		s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to replace answers")
		return dto.SaveAnswersResponse{}, err
	}

	alternativeIDs := make([]uint, 0, len(answers))
	for _, answer := range answers {
		alternativeIDs = append(alternativeIDs, answer.AlternativeID)
	}

	response := dto.SaveAnswersResponse{
		StudentID:    studentID,
		Alternatives: uniqueUints(alternativeIDs),
		Saved:        len(answers),
		Mode:         SaveModeReplace,
	}
	s.afterWrite(ctx, actor, response)
	return response, nil
}

func (s *assessmentService) DeleteForAlternative(ctx context.Context, actor Actor, studentID, alternativeID uint) error {
	if err := requireStudent(ctx, s.repos.Users, studentID); err != nil {
		return err
	}
	if _, err := s.alternative(ctx, alternativeID); err != nil {
		return err
	}

	removed, err := s.repos.Answers.DeleteForAlternative(ctx, studentID, alternativeID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrAssessmentNotFound
	}

	recordActivity(ctx, s.activity, s.logger, actor, "assessment.deleted", "student", studentID, map[string]interface{}{
		"alternative_id": alternativeID,
		"answers":        removed,
	})
	return nil
}

// resolve turns request items into answer rows. When alternativeID is non-zero
// every question must belong to it. Values come from the chosen sub-criterion,
// which must belong to the question's criterion.
func (s *assessmentService) resolve(ctx context.Context, items []dto.AnswerItem, alternativeID uint) ([]models.Answer, error) {
	questionIDs := make([]uint, 0, len(items))
	subIDs := make([]uint, 0, len(items))
	for _, item := range items {
		questionIDs = append(questionIDs, item.QuestionID)
		subIDs = append(subIDs, item.SubCriterionID)
	}

	questions, err := s.repos.Questions.GetByIDs(ctx, uniqueUints(questionIDs))
	if err != nil {
		return nil, err
	}
	subs, err := s.repos.SubCriteria.GetByIDs(ctx, uniqueUints(subIDs))
	if err != nil {
		return nil, err
	}

	questionByID := make(map[uint]models.Question, len(questions))
	for _, question := range questions {
		questionByID[question.ID] = question
	}
	subByID := make(map[uint]models.SubCriterion, len(subs))
	for _, sub := range subs {
		subByID[sub.ID] = sub
	}

	seen := make(map[uint]struct{}, len(items))
	answers := make([]models.Answer, 0, len(items))
	for _, item := range items {
		question, ok := questionByID[item.QuestionID]
		if !ok {
			return nil, fmt.Errorf("question %d does not exist: %w", item.QuestionID, ErrInvalidReference)
		}
		if _, dup := seen[question.ID]; dup {
			return nil, fmt.Errorf("question %d answered twice: %w", question.ID, ErrInvalidReference)
		}
		seen[question.ID] = struct{}{}

		if alternativeID != 0 && question.AlternativeID != alternativeID {
			return nil, fmt.Errorf("question %d belongs to alternative %d: %w", question.ID, question.AlternativeID, ErrInvalidReference)
		}
		if item.AlternativeID != 0 && item.AlternativeID != question.AlternativeID {
			return nil, fmt.Errorf("question %d does not belong to alternative %d: %w", question.ID, item.AlternativeID, ErrInvalidReference)
		}

		sub, ok := subByID[item.SubCriterionID]
		if !ok {
			return nil, fmt.Errorf("sub-criterion %d does not exist: %w", item.SubCriterionID, ErrInvalidReference)
		}
		if sub.CriterionID != question.CriterionID {
			return nil, fmt.Errorf("sub-criterion %d does not belong to criterion %d: %w", sub.ID, question.CriterionID, ErrInvalidReference)
		}

		answers = append(answers, models.Answer{
			AlternativeID:  question.AlternativeID,
			CriterionID:    question.CriterionID,
			QuestionID:     question.ID,
			SubCriterionID: sub.ID,
			Value:          sub.Value,
		})
	}
	return answers, nil
}

func (s *assessmentService) afterWrite(ctx context.Context, actor Actor, result dto.SaveAnswersResponse) {
	observability.AssessmentsSaved().WithLabelValues(result.Mode).Inc()

	recordActivity(ctx, s.activity, s.logger, actor, "assessment.saved", "student", result.StudentID, map[string]interface{}{
		"alternatives": result.Alternatives,
		"answers":      result.Saved,
		"mode":         result.Mode,
	})

	if s.events != nil {
		s.events.AssessmentSaved(ctx, AssessmentSavedEvent{
			StudentID:    result.StudentID,
			Alternatives: result.Alternatives,
			Mode:         result.Mode,
			Answers:      result.Saved,
			ActorID:      actor.ID,
		})
	}
}

func (s *assessmentService) alternative(ctx context.Context, id uint) (models.Alternative, error) {
	alternative, err := s.repos.Alternatives.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Alternative{}, ErrAlternativeNotFound
		}
		return models.Alternative{}, err
	}
	return alternative, nil
}
