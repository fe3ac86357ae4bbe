package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/middleware"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// AuthHandler exposes registration and sign-in.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes. loginLimiter guards POST /login and protect guards
// the routes that need a bearer token; either may be nil.
func (h *AuthHandler) Register(router fiber.Router, loginLimiter, protect fiber.Handler) {
	router.Post("/register", h.register)
	router.Post("/login", chain(loginLimiter, h.login)...)
	signedIn := middleware.AuthOptions{RequireUser: true}
	router.Get("/me", chain(protect, middleware.WithAuth(h.me, signedIn))...)
	router.Post("/logout", chain(protect, middleware.WithAuth(h.logout, signedIn))...)
}

func chain(guard fiber.Handler, handler fiber.Handler) []fiber.Handler {
	if guard == nil {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{guard, handler}
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration successful", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to sign in")
	}

	requestLogger(h.logger, c).Info().Uint("user_id", result.User.ID).Str("role", result.User.Role).Msg("user signed in")
	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	user, err := h.service.Me(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load account")
	}
	return utils.SendSuccess(c, "account retrieved", user)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.service.Logout(c.UserContext(), userID); err != nil {
		return respondError(c, h.logger, err, "failed to sign out")
	}
	return utils.SendSuccess(c, "logout successful", nil)
}
