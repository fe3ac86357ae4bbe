package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// CriterionHandler exposes criteria management for teachers.
type CriterionHandler struct {
	service service.CriterionService
	logger  zerolog.Logger
}

// NewCriterionHandler constructs a criterion handler.
func NewCriterionHandler(service service.CriterionService, logger zerolog.Logger) *CriterionHandler {
	return &CriterionHandler{
		service: service,
		logger:  logger.With().Str("component", "criterion_handler").Logger(),
	}
}

// Register wires criterion routes.
func (h *CriterionHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CriterionHandler) list(c *fiber.Ctx) error {
	criteria, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list criteria")
	}
	return utils.SendSuccess(c, "criteria retrieved", criteria)
}

func (h *CriterionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	criterion, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch criterion")
	}
	return utils.SendSuccess(c, "criterion retrieved", criterion)
}

func (h *CriterionHandler) create(c *fiber.Ctx) error {
	var payload dto.CriterionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	criterion, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create criterion")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "criterion created", criterion)
}

func (h *CriterionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CriterionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	criterion, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update criterion")
	}
	return utils.SendSuccess(c, "criterion updated", criterion)
}

func (h *CriterionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete criterion")
	}
	return utils.SendSuccess(c, "criterion deleted", fiber.Map{"id": id})
}
