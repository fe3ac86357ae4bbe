package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/middleware"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

var (
	notFoundErrors = []error{
		service.ErrCriterionNotFound,
		service.ErrSubCriterionNotFound,
		service.ErrAlternativeNotFound,
		service.ErrQuestionNotFound,
		service.ErrStudentNotFound,
		service.ErrAssessmentNotFound,
		service.ErrUserNotFound,
		service.ErrRankingEmpty,
		service.ErrRankNotFound,
	}
	conflictErrors = []error{
		service.ErrCriterionDuplicate,
		service.ErrSubCriterionDuplicate,
		service.ErrAlternativeDuplicate,
		service.ErrQuestionDuplicate,
		service.ErrUsernameTaken,
		service.ErrNISTaken,
		service.ErrCriterionInUse,
		service.ErrSubCriterionInUse,
		service.ErrAlternativeInUse,
		service.ErrQuestionInUse,
	}
	unprocessableErrors = []error{
		service.ErrWeightLimitExceeded,
		service.ErrInvalidReference,
		service.ErrInvalidValue,
	}
	badRequestErrors = []error{
		service.ErrInvalidRank,
		service.ErrWrongPassword,
		service.ErrCannotDeleteSelf,
	}
)

// respondError maps service errors onto HTTP statuses. Anything unrecognised is
// logged and reported as failureMessage with a 500.
func respondError(c *fiber.Ctx, base zerolog.Logger, err error, failureMessage string) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case matchesAny(err, notFoundErrors):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case matchesAny(err, conflictErrors):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case matchesAny(err, unprocessableErrors):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case matchesAny(err, badRequestErrors):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(base, c).Error().Err(err).Str("path", c.Path()).Msg(failureMessage)
		return utils.SendError(c, fiber.StatusInternalServerError, failureMessage)
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationDetails(errs validator.ValidationErrors) []fiber.Map {
	details := make([]fiber.Map, 0, len(errs))
	for _, fieldErr := range errs {
		detail := fiber.Map{
			"field": fieldErr.Field(),
			"rule":  fieldErr.Tag(),
		}
		if param := fieldErr.Param(); param != "" {
			detail["param"] = param
		}
		details = append(details, detail)
	}
	return details
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// pageParams reads page and page_size, falling back to the camelCase pageSize.
func pageParams(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, err
	}
	if pageSize == 0 {
		if legacy, legacyErr := parseQueryInt(c, "pageSize"); legacyErr == nil {
			pageSize = legacy
		}
	}
	return page, pageSize, nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	id, role, _ := middleware.CurrentUser(c)
	return service.Actor{ID: id, Role: role}
}

// studentScope resolves which student a request is about.
type studentScope func(c *fiber.Ctx) (uint, error)

var errNotAuthenticated = errors.New("authentication required")

// studentFromParam reads the student from the :studentId path segment (teacher routes).
func studentFromParam(c *fiber.Ctx) (uint, error) {
	return parseUintParam(c, "studentId")
}

// studentFromToken uses the authenticated caller as the student (student routes).
func studentFromToken(c *fiber.Ctx) (uint, error) {
	id, _, ok := middleware.CurrentUser(c)
	if !ok {
		return 0, errNotAuthenticated
	}
	return id, nil
}

// withStudent resolves the student for fn, answering 400 or 401 when it cannot.
func withStudent(scope studentScope, fn func(c *fiber.Ctx, studentID uint) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		studentID, err := scope(c)
		if err != nil {
			if errors.Is(err, errNotAuthenticated) {
				return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
			}
			return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
		}
		return fn(c, studentID)
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
