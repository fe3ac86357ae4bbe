package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

func guardedApp(guard fiber.Handler, userID interface{}, role interface{}) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != nil {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Use(guard)
	app.Get("/criteria", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireTeacherAcceptsMixedCaseRole(t *testing.T) {
	app := guardedApp(RequireTeacher(), uint(1), " Teacher ")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/criteria", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireTeacherAcceptsModelRole(t *testing.T) {
	app := guardedApp(RequireTeacher(), uint(1), models.RoleTeacher)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/criteria", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireTeacherRejectsStudent(t *testing.T) {
	app := guardedApp(RequireTeacher(), uint(2), "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/criteria", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "restricted to teacher accounts", body.Message)
}

func TestRequireRoleListsEveryAllowedRole(t *testing.T) {
	app := guardedApp(RequireRole("student", "teacher", "Teacher"), uint(3), "guest")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/criteria", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "restricted to student or teacher accounts", body.Message)
}

func TestRequireStudentRejectsAnonymous(t *testing.T) {
	app := guardedApp(RequireStudent(), nil, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/criteria", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
