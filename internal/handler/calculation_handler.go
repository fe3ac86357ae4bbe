package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// CalculationHandler exposes the intermediate SAW tables.
type CalculationHandler struct {
	service service.CalculationService
	logger  zerolog.Logger
}

// NewCalculationHandler constructs a calculation handler.
func NewCalculationHandler(service service.CalculationService, logger zerolog.Logger) *CalculationHandler {
	return &CalculationHandler{
		service: service,
		logger:  logger.With().Str("component", "calculation_handler").Logger(),
	}
}

// RegisterTeacher wires the weight tables and /students/:studentId/... score tables.
func (h *CalculationHandler) RegisterTeacher(router fiber.Router) {
	h.registerWeights(router)
	h.registerScoped(router.Group("/students/:studentId"), studentFromParam)
}

// RegisterStudent wires the weight tables and the caller's own score tables.
func (h *CalculationHandler) RegisterStudent(router fiber.Router) {
	h.registerWeights(router)
	h.registerScoped(router, studentFromToken)
}

func (h *CalculationHandler) registerWeights(router fiber.Router) {
	router.Get("/criteria", h.criteria)
	router.Get("/weights", h.weights)
	router.Get("/weights/:criterionId", h.weight)
	router.Get("/summary", h.summary)
}

func (h *CalculationHandler) registerScoped(router fiber.Router, scope studentScope) {
	router.Get("/raw-scores", withStudent(scope, h.rawScores))
	router.Get("/utilities", withStudent(scope, h.utilities))
	router.Get("/utility-details", withStudent(scope, h.utilityDetails))
	router.Get("/final-scores", withStudent(scope, h.finalScores))
}

func (h *CalculationHandler) criteria(c *fiber.Ctx) error {
	criteria, err := h.service.Criteria(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to load criteria")
	}
	return utils.SendSuccess(c, "criteria retrieved", criteria)
}

func (h *CalculationHandler) weights(c *fiber.Ctx) error {
	weights, err := h.service.CombinedCriteria(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to normalize weights")
	}
	return utils.SendSuccess(c, "weights retrieved", weights)
}

func (h *CalculationHandler) weight(c *fiber.Ctx) error {
	criterionID, err := parseUintParam(c, "criterionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	weight, err := h.service.CriterionWeight(c.UserContext(), criterionID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to normalize weight")
	}
	return utils.SendSuccess(c, "weight retrieved", weight)
}

func (h *CalculationHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to summarise calculation")
	}
	return utils.SendSuccess(c, "calculation summary retrieved", summary)
}

func (h *CalculationHandler) rawScores(c *fiber.Ctx, studentID uint) error {
	table, err := h.service.RawScores(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute raw scores")
	}
	return utils.SendSuccess(c, "raw scores retrieved", table)
}

func (h *CalculationHandler) utilities(c *fiber.Ctx, studentID uint) error {
	table, err := h.service.Utilities(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute utilities")
	}
	return utils.SendSuccess(c, "utilities retrieved", table)
}

func (h *CalculationHandler) utilityDetails(c *fiber.Ctx, studentID uint) error {
	details, err := h.service.UtilityDetails(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute utility details")
	}
	return utils.SendSuccess(c, "utility details retrieved", details)
}

func (h *CalculationHandler) finalScores(c *fiber.Ctx, studentID uint) error {
	table, err := h.service.FinalScores(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute final scores")
	}
	return utils.SendSuccess(c, "final scores retrieved", table)
}
