package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// SubCriterionHandler exposes the answer bands of each criterion.
type SubCriterionHandler struct {
	service service.SubCriterionService
	logger  zerolog.Logger
}

// NewSubCriterionHandler constructs a sub-criterion handler.
func NewSubCriterionHandler(service service.SubCriterionService, logger zerolog.Logger) *SubCriterionHandler {
	return &SubCriterionHandler{
		service: service,
		logger:  logger.With().Str("component", "sub_criterion_handler").Logger(),
	}
}

// Register wires sub-criterion routes. GET / accepts ?criterion_id= to narrow the list.
func (h *SubCriterionHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *SubCriterionHandler) list(c *fiber.Ctx) error {
	criterionID, err := parseQueryUint(c, "criterion_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid criterion_id")
	}

	bands, err := h.service.List(c.UserContext(), criterionID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list sub-criteria")
	}
	return utils.SendSuccess(c, "sub-criteria retrieved", bands)
}

func (h *SubCriterionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	band, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch sub-criterion")
	}
	return utils.SendSuccess(c, "sub-criterion retrieved", band)
}

func (h *SubCriterionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubCriterionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	band, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create sub-criterion")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "sub-criterion created", band)
}

func (h *SubCriterionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubCriterionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	band, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update sub-criterion")
	}
	return utils.SendSuccess(c, "sub-criterion updated", band)
}

func (h *SubCriterionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete sub-criterion")
	}
	return utils.SendSuccess(c, "sub-criterion deleted", fiber.Map{"id": id})
}
