package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

var (
	// ErrRankingEmpty indicates the student has no scored alternatives.
	ErrRankingEmpty = errors.New("no ranking data for this student")
	// ErrInvalidRank indicates a rank below 1.
	ErrInvalidRank = errors.New("rank must be a positive integer")
	// ErrRankNotFound indicates a rank beyond the last ranked alternative.
	ErrRankNotFound = errors.New("rank not found")
)

// RankingService turns final scores into recommendations.
type RankingService interface {
	Table(ctx context.Context, studentID uint) (dto.RankingResponse, error)
	Ranking(ctx context.Context, studentID uint) (dto.RankingResponse, error)
	Top(ctx context.Context, studentID uint) (dto.RankingEntryResponse, error)
	ByRank(ctx context.Context, studentID uint, rank int) (dto.RankingEntryResponse, error)
	Total(ctx context.Context, studentID uint) (dto.RankingTotalResponse, error)
	HasData(ctx context.Context, studentID uint) (dto.RankingHasDataResponse, error)
	Stats(ctx context.Context, studentID uint) (dto.RankingStatsResponse, error)
}

type rankingService struct {
	evaluator *Evaluator
	logger    zerolog.Logger
}

// NewRankingService constructs the ranking service.
func NewRankingService(evaluator *Evaluator, logger zerolog.Logger) RankingService {
	return &rankingService{
		evaluator: evaluator,
		logger:    logger.With().Str("component", "ranking_service").Logger(),
	}
}

// Table is the ranking with a "Rank N" note on every entry.
func (s *rankingService) Table(ctx context.Context, studentID uint) (dto.RankingResponse, error) {
	ranking, err := s.rank(ctx, studentID, "ranking_table")
	if err != nil {
		return dto.RankingResponse{}, err
	}

	response := dto.RankingResponse{StudentID: studentID, Entries: make([]dto.RankingEntryResponse, 0, ranking.Count())}
	for _, entry := range ranking.Entries() {
		item := rankingEntry(entry)
		item.Note = fmt.Sprintf("Rank %d", entry.Rank)
		response.Entries = append(response.Entries, item)
	}
	return response, nil
}

func (s *rankingService) Ranking(ctx context.Context, studentID uint) (dto.RankingResponse, error) {
	ranking, err := s.rank(ctx, studentID, "ranking")
	if err != nil {
		return dto.RankingResponse{}, err
	}

	response := dto.RankingResponse{StudentID: studentID, Entries: make([]dto.RankingEntryResponse, 0, ranking.Count())}
	for _, entry := range ranking.Entries() {
		response.Entries = append(response.Entries, rankingEntry(entry))
	}
	return response, nil
}

func (s *rankingService) Top(ctx context.Context, studentID uint) (dto.RankingEntryResponse, error) {
	ranking, err := s.rank(ctx, studentID, "ranking_top")
	if err != nil {
		return dto.RankingEntryResponse{}, err
	}

	top, ok := ranking.Top()
	if !ok {
		return dto.RankingEntryResponse{}, ErrRankingEmpty
	}
	return rankingEntry(top), nil
}

func (s *rankingService) ByRank(ctx context.Context, studentID uint, rank int) (dto.RankingEntryResponse, error) {
	if rank <= 0 {
		return dto.RankingEntryResponse{}, ErrInvalidRank
	}

	ranking, err := s.rank(ctx, studentID, "ranking_by_rank")
	if err != nil {
		return dto.RankingEntryResponse{}, err
	}

	entry, ok := ranking.ByRank(rank)
	if !ok {
		return dto.RankingEntryResponse{}, ErrRankNotFound
	}
	return rankingEntry(entry), nil
}

func (s *rankingService) Total(ctx context.Context, studentID uint) (dto.RankingTotalResponse, error) {
	ranking, err := s.rank(ctx, studentID, "ranking_total")
	if err != nil {
		return dto.RankingTotalResponse{}, err
	}
	return dto.RankingTotalResponse{Total: ranking.Count()}, nil
}

func (s *rankingService) HasData(ctx context.Context, studentID uint) (dto.RankingHasDataResponse, error) {
	evaluation, err := s.evaluator.Evaluate(ctx, studentID, "ranking_has_data")
	if err != nil {
		return dto.RankingHasDataResponse{}, err
	}
	return dto.RankingHasDataResponse{HasData: evaluation.HasData()}, nil
}

func (s *rankingService) Stats(ctx context.Context, studentID uint) (dto.RankingStatsResponse, error) {
	ranking, err := s.rank(ctx, studentID, "ranking_stats")
	if err != nil {
		return dto.RankingStatsResponse{}, err
	}

	stats := ranking.Stats()
	return dto.RankingStatsResponse{Count: stats.Count, Max: stats.Max, Min: stats.Min, Mean: stats.Mean}, nil
}

func (s *rankingService) rank(ctx context.Context, studentID uint, view string) (scoring.Ranking, error) {
	evaluation, err := s.evaluator.Evaluate(ctx, studentID, view)
	if err != nil {
		return scoring.Ranking{}, err
	}
	return evaluation.Result.Ranking, nil
}

func rankingEntry(entry scoring.Entry) dto.RankingEntryResponse {
	return dto.RankingEntryResponse{
		Rank:          entry.Rank,
		AlternativeID: entry.AlternativeID,
		Code:          entry.Code,
		Name:          entry.Name,
		Score:         entry.Score,
	}
}
