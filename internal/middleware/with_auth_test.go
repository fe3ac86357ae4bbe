package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/middleware"
	"github.com/noah-isme/spk-prodi-api/internal/token"
)

func withCaller(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func TestWithAuthStudentRole(t *testing.T) {
	app := fiber.New()
	app.Use(withCaller(10, "Student"))
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestWithAuthTeacherRoleDeniesStudent(t *testing.T) {
	app := fiber.New()
	app.Use(withCaller(10, "student"))
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestWithAuthAnyRequiresUserWhenAsked(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny, RequireUser: true}))

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuthAnyAllowsAnonymousByDefault(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny}))

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedSetsCaller(t *testing.T) {
	manager := token.NewManager("secret", time.Hour, "spk")
	signed, _, err := manager.Issue(7, "Teacher")
	require.NoError(t, err)

	var (
		userID uint
		role   string
		found  bool
	)
	app := fiber.New()
	app.Use(middleware.JWTProtected(manager))
	app.Get("/", func(c *fiber.Ctx) error {
		userID, role, found = middleware.CurrentUser(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp := perform(t, app, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, found)
	require.Equal(t, uint(7), userID)
	require.Equal(t, "teacher", role)
}

func TestJWTProtectedRejectsBadHeaders(t *testing.T) {
	manager := token.NewManager("secret", time.Hour, "spk")
	app := fiber.New()
	app.Use(middleware.JWTProtected(manager))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer nope"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := perform(t, app, req)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestCorrelationIDEchoesIncomingHeader(t *testing.T) {
	var seen string
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		seen = middleware.CorrelationIDFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	resp := perform(t, app, req)
	require.Equal(t, "abc-123", resp.Header.Get("X-Correlation-ID"))
	require.Equal(t, "abc-123", seen)

	resp = perform(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}

func TestRateLimitRejectsBurst(t *testing.T) {
	app := fiber.New()
	app.Post("/login", middleware.RateLimit("login", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp := perform(t, app, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp := perform(t, app, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func perform(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
