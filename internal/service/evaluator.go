package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/observability"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

var (
	// ErrStudentNotFound indicates the user does not exist or is not a student.
	ErrStudentNotFound = errors.New("student not found")
	// ErrCorruptAnswers indicates stored answers could not be scored.
	ErrCorruptAnswers = errors.New("stored answers contain non-numeric values")
)

// Evaluation is one scoring run for one student together with the rows it was computed from.
type Evaluation struct {
	StudentID    uint
	Criteria     []scoring.Criterion
	Alternatives []scoring.Alternative
	Answers      []scoring.Answer
	Result       scoring.Result
	Rounding     scoring.RoundingMode
}

// HasData reports whether the student has at least one scored answer.
func (e Evaluation) HasData() bool {
	return len(e.Answers) > 0
}

// ScoredAlternatives returns the alternatives that have at least one raw score,
// in catalogue order.
func (e Evaluation) ScoredAlternatives() []scoring.Alternative {
	scored := make([]scoring.Alternative, 0, len(e.Result.RawScores))
	for _, alternative := range e.Alternatives {
		if _, ok := e.Result.RawScores[alternative.ID]; ok {
			scored = append(scored, alternative)
		}
	}
	return scored
}

// Evaluator loads a student's snapshot and runs the scoring pipeline over it.
type Evaluator struct {
	users        repository.UserRepository
	criteria     repository.CriterionRepository
	alternatives repository.AlternativeRepository
	answers      repository.AnswerRepository
	rounding     scoring.RoundingMode
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewEvaluator constructs an evaluator.
func NewEvaluator(users repository.UserRepository, criteria repository.CriterionRepository, alternatives repository.AlternativeRepository, answers repository.AnswerRepository, rounding scoring.RoundingMode, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		users:        users,
		criteria:     criteria,
		alternatives: alternatives,
		answers:      answers,
		rounding:     rounding,
		logger:       logger.With().Str("component", "evaluator").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/spk-prodi-api/internal/service/evaluator"),
	}
}

// Rounding returns the configured weight rounding mode.
func (e *Evaluator) Rounding() scoring.RoundingMode {
	return e.rounding
}

// Criteria loads the configured criteria in scoring form. It does not need a student.
func (e *Evaluator) Criteria(ctx context.Context) ([]scoring.Criterion, error) {
	criteria, err := e.criteria.List(ctx)
	if err != nil {
		return nil, err
	}
	return toScoringCriteria(criteria), nil
}

// Evaluate scores every alternative for one student. view labels the duration metric.
func (e *Evaluator) Evaluate(ctx context.Context, studentID uint, view string) (Evaluation, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "scoring.evaluate", trace.WithAttributes(
		attribute.Int("scoring.student_id", int(studentID)),
		attribute.String("scoring.view", view),
		attribute.String("scoring.rounding", e.rounding.String()),
	))
	defer span.End()
	defer func() {
		observability.ScoringDuration().WithLabelValues(view).Observe(time.Since(start).Seconds())
	}()

	if err := e.requireStudent(ctx, studentID); err != nil {
		if !errors.Is(err, ErrStudentNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load_student_failed")
		}
		return Evaluation{}, err
	}

	criteria, err := e.criteria.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_criteria_failed")
		return Evaluation{}, err
	}

	alternatives, err := e.alternatives.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_alternatives_failed")
		return Evaluation{}, err
	}

	rows, err := e.answers.ListScoredByStudent(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_answers_failed")
		return Evaluation{}, err
	}

	evaluation := Evaluation{
		StudentID:    studentID,
		Criteria:     toScoringCriteria(criteria),
		Alternatives: toScoringAlternatives(alternatives),
		Answers:      toScoringAnswers(rows),
		Rounding:     e.rounding,
	}

	result, err := scoring.Compute(scoring.Snapshot{
		Criteria:     evaluation.Criteria,
		Alternatives: evaluation.Alternatives,
		Answers:      evaluation.Answers,
	}, scoring.WithRounding(e.rounding))
	if err != nil {
		e.logger.Error().Err(err).Uint("student_id", studentID).Msg("scoring pipeline rejected stored answers")
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute_failed")
		return Evaluation{}, fmt.Errorf("student %d: %w", studentID, ErrCorruptAnswers)
	}
	evaluation.Result = result

	span.SetAttributes(
		attribute.Int("scoring.answers", len(rows)),
		attribute.Int("scoring.ranked", result.Ranking.Count()),
	)
	return evaluation, nil
}

func (e *Evaluator) requireStudent(ctx context.Context, studentID uint) error {
	return requireStudent(ctx, e.users, studentID)
}

func requireStudent(ctx context.Context, users repository.UserRepository, studentID uint) error {
	if studentID == 0 {
		return ErrStudentNotFound
	}
	user, err := users.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return ErrStudentNotFound
		}
		return err
	}
	if !user.IsStudent() {
		return ErrStudentNotFound
	}
	return nil
}

func toScoringCriteria(criteria []models.Criterion) []scoring.Criterion {
	result := make([]scoring.Criterion, 0, len(criteria))
	for _, criterion := range criteria {
		direction, ok := scoring.ParseDirection(criterion.Direction)
		if !ok {
			direction = scoring.Direction(criterion.Direction)
		}
		result = append(result, scoring.Criterion{
			ID:        criterion.ID,
			Code:      criterion.Code,
			Name:      criterion.Name,
			Direction: direction,
			Weight:    criterion.Weight,
		})
	}
	return result
}

func toScoringAlternatives(alternatives []models.Alternative) []scoring.Alternative {
	result := make([]scoring.Alternative, 0, len(alternatives))
	for _, alternative := range alternatives {
		result = append(result, scoring.Alternative{ID: alternative.ID, Code: alternative.Code, Name: alternative.Name})
	}
	return result
}

func toScoringAnswers(rows []models.ScoredAnswer) []scoring.Answer {
	result := make([]scoring.Answer, 0, len(rows))
	for _, row := range rows {
		result = append(result, scoring.Answer{
			AlternativeID:  row.AlternativeID,
			CriterionID:    row.CriterionID,
			QuestionID:     row.QuestionID,
			SubCriterionID: row.SubCriterionID,
			Value:          row.Value,
		})
	}
	return result
}
