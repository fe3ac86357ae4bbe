package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/config"
	"github.com/noah-isme/spk-prodi-api/internal/router"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

// fakeAuth stands in for the JWT middleware: X-Test-User and X-Test-Role become
// the authenticated caller.
func fakeAuth(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("user_id", uint(id))
		c.Locals("user_role", c.Get("X-Test-Role"))
	}
	return c.Next()
}

func newTestApp(deps router.Dependencies) *fiber.App {
	app := fiber.New()
	if deps.JWTMiddleware == nil {
		deps.JWTMiddleware = fakeAuth
	}
	deps.DisableMetrics = true
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test", ScoringRounding: "early"}, deps)
	return app
}

type caller struct {
	id   uint
	role string
}

var (
	asTeacher = &caller{id: 1, role: "teacher"}
	asStudent = &caller{id: 7, role: "student"}
)

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, who *caller) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if who != nil {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(who.id), 10))
		req.Header.Set("X-Test-Role", who.role)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}
