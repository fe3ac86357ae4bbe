package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/handler"
	"github.com/noah-isme/spk-prodi-api/internal/router"
	"github.com/noah-isme/spk-prodi-api/internal/service"
)

type stubRankingService struct {
	service.RankingService

	entries   map[uint][]dto.RankingEntryResponse
	requested uint
}

func (s *stubRankingService) Top(_ context.Context, studentID uint) (dto.RankingEntryResponse, error) {
	s.requested = studentID
	entries := s.entries[studentID]
	if len(entries) == 0 {
		return dto.RankingEntryResponse{}, service.ErrRankingEmpty
	}
	return entries[0], nil
}

func (s *stubRankingService) ByRank(_ context.Context, studentID uint, rank int) (dto.RankingEntryResponse, error) {
	s.requested = studentID
	if rank < 1 {
		return dto.RankingEntryResponse{}, service.ErrInvalidRank
	}
	entries := s.entries[studentID]
	if rank > len(entries) {
		return dto.RankingEntryResponse{}, service.ErrRankNotFound
	}
	return entries[rank-1], nil
}

func (s *stubRankingService) Stats(_ context.Context, studentID uint) (dto.RankingStatsResponse, error) {
	s.requested = studentID
	return dto.RankingStatsResponse{Count: len(s.entries[studentID]), Max: 1, Min: 0, Mean: 0.5}, nil
}

func newRankingTestApp() (*stubRankingService, func(t *testing.T, path string, who *caller) (int, envelope)) {
	stub := &stubRankingService{entries: map[uint][]dto.RankingEntryResponse{
		7: {
			{Rank: 1, AlternativeID: 1, Code: "A1", Name: "Informatika", Score: 1, Note: "Rank 1"},
			{Rank: 2, AlternativeID: 2, Code: "A2", Name: "Kedokteran", Score: 0, Note: "Rank 2"},
		},
	}}
	app := newTestApp(router.Dependencies{
		RankingHandler: handler.NewRankingHandler(stub, &stubAssessmentService{}, zerolog.Nop()),
	})
	return stub, func(t *testing.T, path string, who *caller) (int, envelope) {
		resp, body := doRequest(t, app, http.MethodGet, path, nil, who)
		return resp.StatusCode, body
	}
}

func TestRankingHandlerStudentRoutes(t *testing.T) {
	stub, get := newRankingTestApp()

	status, body := get(t, "/api/v1/me/rankings/top", asStudent)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, asStudent.id, stub.requested)

	var top dto.RankingEntryResponse
	require.NoError(t, json.Unmarshal(body.Data, &top))
	require.Equal(t, "A1", top.Code)
	require.Equal(t, 1, top.Rank)

	status, _ = get(t, "/api/v1/me/rankings/rank/2", asStudent)
	require.Equal(t, http.StatusOK, status)

	status, _ = get(t, "/api/v1/me/rankings/rank/3", asStudent)
	require.Equal(t, http.StatusNotFound, status)

	status, body = get(t, "/api/v1/me/rankings/rank/abc", asStudent)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, service.ErrInvalidRank.Error(), body.Message)

	status, _ = get(t, "/api/v1/me/rankings/rank/0", asStudent)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = get(t, "/api/v1/me/rankings/stats", asTeacher)
	require.Equal(t, http.StatusForbidden, status)
}

func TestRankingHandlerTeacherRoutes(t *testing.T) {
	stub, get := newRankingTestApp()

	status, _ := get(t, "/api/v1/rankings/students/9/top", asTeacher)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, uint(9), stub.requested)

	status, body := get(t, "/api/v1/rankings/students/7/stats", asTeacher)
	require.Equal(t, http.StatusOK, status)
	var stats dto.RankingStatsResponse
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	require.Equal(t, 2, stats.Count)
	require.InDelta(t, 0.5, stats.Mean, 1e-9)

	status, body = get(t, "/api/v1/rankings/students", asTeacher)
	require.Equal(t, http.StatusOK, status)
	var students []dto.StudentSummaryResponse
	require.NoError(t, json.Unmarshal(body.Data, &students))
	require.Len(t, students, 1)

	status, _ = get(t, "/api/v1/rankings/students/0/top", asTeacher)
	require.Equal(t, http.StatusBadRequest, status)
}
