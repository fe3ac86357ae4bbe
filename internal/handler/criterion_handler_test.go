package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/handler"
	"github.com/noah-isme/spk-prodi-api/internal/router"
	"github.com/noah-isme/spk-prodi-api/internal/service"
)

type stubCriterionService struct {
	items     []dto.CriterionResponse
	createErr error
	deleteErr error
	lastActor service.Actor
	validate  *validator.Validate
}

func (s *stubCriterionService) List(context.Context) ([]dto.CriterionResponse, error) {
	return s.items, nil
}

func (s *stubCriterionService) Get(_ context.Context, id uint) (dto.CriterionResponse, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return dto.CriterionResponse{}, service.ErrCriterionNotFound
}

func (s *stubCriterionService) Create(_ context.Context, actor service.Actor, req dto.CriterionRequest) (dto.CriterionResponse, error) {
	s.lastActor = actor
	if err := s.validate.Struct(req); err != nil {
		return dto.CriterionResponse{}, err
	}
	if s.createErr != nil {
		return dto.CriterionResponse{}, s.createErr
	}
	return dto.CriterionResponse{ID: 9, Code: req.Code, Name: req.Name, Direction: req.Direction, Weight: req.Weight}, nil
}

func (s *stubCriterionService) Update(_ context.Context, actor service.Actor, id uint, req dto.CriterionRequest) (dto.CriterionResponse, error) {
	s.lastActor = actor
	return dto.CriterionResponse{ID: id, Code: req.Code, Name: req.Name, Direction: req.Direction, Weight: req.Weight}, nil
}

func (s *stubCriterionService) Delete(_ context.Context, actor service.Actor, id uint) error {
	s.lastActor = actor
	return s.deleteErr
}

func newCriterionApp(stub *stubCriterionService) *handler.CriterionHandler {
	if stub.validate == nil {
		stub.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return handler.NewCriterionHandler(stub, zerolog.Nop())
}

func TestCriterionHandlerRoleGuards(t *testing.T) {
	stub := &stubCriterionService{items: []dto.CriterionResponse{{ID: 1, Code: "K1", Name: "Minat", Direction: "Benefit", Weight: 60}}}
	app := newTestApp(router.Dependencies{CriterionHandler: newCriterionApp(stub)})

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/criteria", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/criteria", nil, asStudent)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/criteria", nil, asTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)

	var items []dto.CriterionResponse
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 1)
	require.Equal(t, "K1", items[0].Code)
}

func TestCriterionHandlerCreateMapsErrors(t *testing.T) {
	stub := &stubCriterionService{}
	app := newTestApp(router.Dependencies{CriterionHandler: newCriterionApp(stub)})

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/criteria", dto.CriterionRequest{Code: "K3", Name: "Prospek", Direction: "Benefit", Weight: 20}, asTeacher)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "criterion created", body.Message)
	require.Equal(t, uint(1), stub.lastActor.ID)
	require.Equal(t, "teacher", stub.lastActor.Role)

	resp, body = doRequest(t, app, http.MethodPost, "/api/v1/criteria", dto.CriterionRequest{Code: "K3", Direction: "Sideways", Weight: 20}, asTeacher)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "validation failed", body.Message)
	var details []map[string]string
	require.NoError(t, json.Unmarshal(body.Details, &details))
	require.Len(t, details, 2)

	stub.createErr = service.ErrWeightLimitExceeded
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/criteria", dto.CriterionRequest{Code: "K3", Name: "Prospek", Direction: "Benefit", Weight: 20}, asTeacher)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	stub.createErr = service.ErrCriterionDuplicate
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/criteria", dto.CriterionRequest{Code: "K1", Name: "Minat", Direction: "Benefit", Weight: 20}, asTeacher)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCriterionHandlerIdentifiers(t *testing.T) {
	stub := &stubCriterionService{deleteErr: service.ErrCriterionInUse}
	app := newTestApp(router.Dependencies{CriterionHandler: newCriterionApp(stub)})

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/criteria/abc", nil, asTeacher)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/criteria/42", nil, asTeacher)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/v1/criteria/1", nil, asTeacher)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}
