package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// AlternativeHandler exposes the study program catalogue.
type AlternativeHandler struct {
	service service.AlternativeService
	logger  zerolog.Logger
}

// NewAlternativeHandler constructs an alternative handler.
func NewAlternativeHandler(service service.AlternativeService, logger zerolog.Logger) *AlternativeHandler {
	return &AlternativeHandler{
		service: service,
		logger:  logger.With().Str("component", "alternative_handler").Logger(),
	}
}

// Register wires alternative routes.
func (h *AlternativeHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AlternativeHandler) list(c *fiber.Ctx) error {
	alternatives, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list alternatives")
	}
	return utils.SendSuccess(c, "alternatives retrieved", alternatives)
}

func (h *AlternativeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	alternative, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch alternative")
	}
	return utils.SendSuccess(c, "alternative retrieved", alternative)
}

func (h *AlternativeHandler) create(c *fiber.Ctx) error {
	var payload dto.AlternativeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	alternative, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create alternative")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "alternative created", alternative)
}

func (h *AlternativeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AlternativeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	alternative, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update alternative")
	}
	return utils.SendSuccess(c, "alternative updated", alternative)
}

func (h *AlternativeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete alternative")
	}
	return utils.SendSuccess(c, "alternative deleted", fiber.Map{"id": id})
}
