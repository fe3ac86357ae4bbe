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

type stubAssessmentService struct {
	service.AssessmentService

	savedStudent     uint
	savedAlternative uint
	savedActor       service.Actor
	saveErr          error
}

func (s *stubAssessmentService) ListStudents(context.Context) ([]dto.StudentSummaryResponse, error) {
	return []dto.StudentSummaryResponse{{ID: 7, Name: "Siswa", Username: "siswa"}}, nil
}

func (s *stubAssessmentService) Detail(_ context.Context, studentID, alternativeID uint) (dto.AssessmentDetailResponse, error) {
	return dto.AssessmentDetailResponse{}, service.ErrAssessmentNotFound
}

func (s *stubAssessmentService) SaveForAlternative(_ context.Context, actor service.Actor, studentID, alternativeID uint, req dto.SaveAnswersRequest) (dto.SaveAnswersResponse, error) {
	s.savedActor = actor
	s.savedStudent = studentID
	s.savedAlternative = alternativeID
	if s.saveErr != nil {
		return dto.SaveAnswersResponse{}, s.saveErr
	}
	return dto.SaveAnswersResponse{StudentID: studentID, Alternatives: []uint{alternativeID}, Saved: len(req.Answers), Mode: "alternative"}, nil
}

func (s *stubAssessmentService) SaveAll(_ context.Context, actor service.Actor, studentID uint, req dto.SaveAnswersRequest) (dto.SaveAnswersResponse, error) {
	s.savedActor = actor
	s.savedStudent = studentID
	return dto.SaveAnswersResponse{StudentID: studentID, Saved: len(req.Answers), Mode: "all"}, nil
}

func TestAssessmentHandlerTeacherAddressesStudentByPath(t *testing.T) {
	stub := &stubAssessmentService{}
	app := newTestApp(router.Dependencies{AssessmentHandler: handler.NewAssessmentHandler(stub, zerolog.Nop())})

	payload := dto.SaveAnswersRequest{Answers: []dto.AnswerItem{{QuestionID: 1, SubCriterionID: 2}}}
	resp, body := doRequest(t, app, http.MethodPut, "/api/v1/assessments/students/5/alternatives/3", payload, asTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), stub.savedStudent)
	require.Equal(t, uint(3), stub.savedAlternative)
	require.Equal(t, uint(1), stub.savedActor.ID)

	var result dto.SaveAnswersResponse
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Equal(t, 1, result.Saved)

	resp, _ = doRequest(t, app, http.MethodPut, "/api/v1/assessments/students/abc/alternatives/3", payload, asTeacher)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/assessments/students/5/alternatives/3", nil, asTeacher)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	stub.saveErr = service.ErrInvalidReference
	resp, _ = doRequest(t, app, http.MethodPut, "/api/v1/assessments/students/5/alternatives/3", payload, asTeacher)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAssessmentHandlerStudentActsOnSelf(t *testing.T) {
	stub := &stubAssessmentService{}
	app := newTestApp(router.Dependencies{AssessmentHandler: handler.NewAssessmentHandler(stub, zerolog.Nop())})

	payload := dto.SaveAnswersRequest{Answers: []dto.AnswerItem{
		{AlternativeID: 1, QuestionID: 1, SubCriterionID: 2},
		{AlternativeID: 2, QuestionID: 4, SubCriterionID: 3},
	}}
	resp, body := doRequest(t, app, http.MethodPut, "/api/v1/me/assessments", payload, asStudent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, asStudent.id, stub.savedStudent)

	var result dto.SaveAnswersResponse
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Equal(t, "all", result.Mode)
	require.Equal(t, 2, result.Saved)

	resp, _ = doRequest(t, app, http.MethodPut, "/api/v1/me/assessments", payload, asTeacher)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/assessments/students", nil, asStudent)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
