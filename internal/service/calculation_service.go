package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

// CalculationService exposes every intermediate table of the SAW computation.
type CalculationService interface {
	Criteria(ctx context.Context) ([]dto.CriterionHeader, error)
	CombinedCriteria(ctx context.Context) (dto.CombinedCriteriaResponse, error)
	CriterionWeight(ctx context.Context, id uint) (dto.WeightRowResponse, error)
	RawScores(ctx context.Context, studentID uint) (dto.ScoreTableResponse, error)
	Utilities(ctx context.Context, studentID uint) (dto.ScoreTableResponse, error)
	UtilityDetails(ctx context.Context, studentID uint) ([]dto.UtilityDetailResponse, error)
	FinalScores(ctx context.Context, studentID uint) (dto.ScoreTableResponse, error)
	Summary(ctx context.Context) (dto.CalculationSummaryResponse, error)
}

type calculationService struct {
	evaluator    *Evaluator
	alternatives repository.AlternativeRepository
	logger       zerolog.Logger
}

// NewCalculationService constructs the calculation service.
func NewCalculationService(evaluator *Evaluator, alternatives repository.AlternativeRepository, logger zerolog.Logger) CalculationService {
	return &calculationService{
		evaluator:    evaluator,
		alternatives: alternatives,
		logger:       logger.With().Str("component", "calculation_service").Logger(),
	}
}

func (s *calculationService) Criteria(ctx context.Context) ([]dto.CriterionHeader, error) {
	criteria, err := s.evaluator.Criteria(ctx)
	if err != nil {
		return nil, err
	}
	return criterionHeaders(criteria), nil
}

func (s *calculationService) CombinedCriteria(ctx context.Context) (dto.CombinedCriteriaResponse, error) {
	criteria, err := s.evaluator.Criteria(ctx)
	if err != nil {
		return dto.CombinedCriteriaResponse{}, err
	}

	rounding := scoring.WithRounding(s.evaluator.Rounding())
	rows := scoring.WeightRows(criteria, rounding)
	response := dto.CombinedCriteriaResponse{
		Rows:            make([]dto.WeightRowResponse, 0, len(rows)),
		TotalWeight:     scoring.Round(scoring.TotalWeight(criteria), 2),
		TotalNormalized: scoring.NormalizedTotal(criteria, rounding),
	}
	for _, row := range rows {
		response.Rows = append(response.Rows, dto.WeightRowResponse{
			CriterionHeader: criterionHeader(row.Criterion),
			Normalized:      row.Normalized,
		})
	}
	return response, nil
}

func (s *calculationService) CriterionWeight(ctx context.Context, id uint) (dto.WeightRowResponse, error) {
	criteria, err := s.evaluator.Criteria(ctx)
	if err != nil {
		return dto.WeightRowResponse{}, err
	}

	for _, row := range scoring.WeightRows(criteria, scoring.WithRounding(s.evaluator.Rounding())) {
		if row.Criterion.ID == id {
			return dto.WeightRowResponse{CriterionHeader: criterionHeader(row.Criterion), Normalized: row.Normalized}, nil
		}
	}
	return dto.WeightRowResponse{}, ErrCriterionNotFound
}

// RawScores returns the per-criterion answer averages rounded to 2 decimals.
func (s *calculationService) RawScores(ctx context.Context, studentID uint) (dto.ScoreTableResponse, error) {
	evaluation, err := s.evaluator.Evaluate(ctx, studentID, "raw_scores")
	if err != nil {
		return dto.ScoreTableResponse{}, err
	}

	rounded := evaluation.Result.RawScores.Rounded()
	return buildScoreTable(evaluation, func(alternativeID uint) (map[uint]float64, *float64) {
		return rounded[alternativeID], nil
	}), nil
}

func (s *calculationService) Utilities(ctx context.Context, studentID uint) (dto.ScoreTableResponse, error) {
	evaluation, err := s.evaluator.Evaluate(ctx, studentID, "utilities")
	if err != nil {
		return dto.ScoreTableResponse{}, err
	}

	return buildScoreTable(evaluation, func(alternativeID uint) (map[uint]float64, *float64) {
		return evaluation.Result.Utilities[alternativeID], nil
	}), nil
}

func (s *calculationService) UtilityDetails(ctx context.Context, studentID uint) ([]dto.UtilityDetailResponse, error) {
	evaluation, err := s.evaluator.Evaluate(ctx, studentID, "utility_details")
	if err != nil {
		return nil, err
	}

	details, err := scoring.UtilityDetails(evaluation.Answers, evaluation.Criteria)
	if err != nil {
		return nil, err
	}

	alternatives := make(map[uint]scoring.Alternative, len(evaluation.Alternatives))
	for _, alternative := range evaluation.Alternatives {
		alternatives[alternative.ID] = alternative
	}
	criteria := make(map[uint]scoring.Criterion, len(evaluation.Criteria))
	for _, criterion := range evaluation.Criteria {
		criteria[criterion.ID] = criterion
	}

	responses := make([]dto.UtilityDetailResponse, 0, len(details))
	for _, detail := range details {
		responses = append(responses, dto.UtilityDetailResponse{
			AlternativeID:   detail.AlternativeID,
			AlternativeCode: alternatives[detail.AlternativeID].Code,
			AlternativeName: alternatives[detail.AlternativeID].Name,
			CriterionID:     detail.CriterionID,
			CriterionCode:   criteria[detail.CriterionID].Code,
			Direction:       string(detail.Direction),
			Raw:             detail.Raw,
			Min:             detail.Min,
			Max:             detail.Max,
			Utility:         detail.Utility,
		})
	}
	return responses, nil
}

// FinalScores returns weighted contributions per criterion with the final score as the row total.
func (s *calculationService) FinalScores(ctx context.Context, studentID uint) (dto.ScoreTableResponse, error) {
	evaluation, err := s.evaluator.Evaluate(ctx, studentID, "final_scores")
	if err != nil {
		return dto.ScoreTableResponse{}, err
	}

	return buildScoreTable(evaluation, func(alternativeID uint) (map[uint]float64, *float64) {
		score, ok := evaluation.Result.Scores[alternativeID]
		if !ok {
			return evaluation.Result.Contributions[alternativeID], nil
		}
		return evaluation.Result.Contributions[alternativeID], &score
	}), nil
}

func (s *calculationService) Summary(ctx context.Context) (dto.CalculationSummaryResponse, error) {
	criteria, err := s.evaluator.Criteria(ctx)
	if err != nil {
		return dto.CalculationSummaryResponse{}, err
	}
	alternatives, err := s.alternatives.List(ctx)
	if err != nil {
		return dto.CalculationSummaryResponse{}, err
	}

	return dto.CalculationSummaryResponse{
		TotalCriteria:     len(criteria),
		TotalAlternatives: len(alternatives),
		TotalWeight:       scoring.Round(scoring.TotalWeight(criteria), 2),
		TotalNormalized:   scoring.NormalizedTotal(criteria, scoring.WithRounding(s.evaluator.Rounding())),
	}, nil
}

// buildScoreTable lays out one row per scored alternative with a cell per criterion.
// Missing values stay nil so clients can tell "no answers" from zero.
func buildScoreTable(evaluation Evaluation, values func(alternativeID uint) (map[uint]float64, *float64)) dto.ScoreTableResponse {
	alternatives := evaluation.ScoredAlternatives()
	table := dto.ScoreTableResponse{
		StudentID: evaluation.StudentID,
		Criteria:  criterionHeaders(evaluation.Criteria),
		Rows:      make([]dto.ScoreRow, 0, len(alternatives)),
	}

	for _, alternative := range alternatives {
		row, total := values(alternative.ID)
		cells := make([]dto.ScoreCell, 0, len(evaluation.Criteria))
		for _, criterion := range evaluation.Criteria {
			cell := dto.ScoreCell{CriterionID: criterion.ID, CriterionCode: criterion.Code}
			if value, ok := row[criterion.ID]; ok {
				v := value
				cell.Value = &v
			}
			cells = append(cells, cell)
		}
		table.Rows = append(table.Rows, dto.ScoreRow{
			AlternativeID: alternative.ID,
			Code:          alternative.Code,
			Name:          alternative.Name,
			Cells:         cells,
			Total:         total,
		})
	}
	return table
}

func criterionHeaders(criteria []scoring.Criterion) []dto.CriterionHeader {
	headers := make([]dto.CriterionHeader, 0, len(criteria))
	for _, criterion := range criteria {
		headers = append(headers, criterionHeader(criterion))
	}
	return headers
}

func criterionHeader(criterion scoring.Criterion) dto.CriterionHeader {
	return dto.CriterionHeader{
		ID:        criterion.ID,
		Code:      criterion.Code,
		Name:      criterion.Name,
		Direction: string(criterion.Direction),
		Weight:    criterion.Weight,
	}
}
