package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/middleware"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// ProfileHandler lets any signed-in user manage their own account.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register wires profile routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	signedIn := middleware.AuthOptions{RequireUser: true}
	router.Get("/me", middleware.WithAuth(h.get, signedIn))
	router.Put("/me", middleware.WithAuth(h.update, signedIn))
	router.Put("/me/password", middleware.WithAuth(h.changePassword, signedIn))
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	profile, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load profile")
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.service.Update(c.UserContext(), userID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update profile")
	}
	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) changePassword(c *fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.PasswordChangeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ChangePassword(c.UserContext(), userID, payload); err != nil {
		return respondError(c, h.logger, err, "failed to change password")
	}
	return utils.SendSuccess(c, "password changed", nil)
}
