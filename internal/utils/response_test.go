package utils_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

func TestEnvelopes(t *testing.T) {
	cases := []struct {
		name    string
		reply   func(c *fiber.Ctx) error
		status  int
		success bool
		message string
		keys    []string
		absent  []string
	}{
		{
			name: "ok with pagination meta",
			reply: func(c *fiber.Ctx) error {
				return utils.OK(c, []string{"A1", "A2"}, "", fiber.Map{"page": 1, "total_items": 2})
			},
			status:  fiber.StatusOK,
			success: true,
			message: "success",
			keys:    []string{"data", "meta"},
			absent:  []string{"details"},
		},
		{
			name: "created",
			reply: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "criterion created", fiber.Map{"code": "K1"})
			},
			status:  fiber.StatusCreated,
			success: true,
			message: "criterion created",
			keys:    []string{"data"},
			absent:  []string{"meta", "details"},
		},
		{
			name: "validation failure",
			reply: func(c *fiber.Ctx) error {
				return utils.Fail(c, fiber.StatusBadRequest, "validation failed", []fiber.Map{{"field": "weight", "rule": "lte"}})
			},
			status:  fiber.StatusBadRequest,
			success: false,
			message: "validation failed",
			keys:    []string{"details"},
			absent:  []string{"data", "meta"},
		},
		{
			name: "error with default message",
			reply: func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusNotFound, "")
			},
			status:  fiber.StatusNotFound,
			success: false,
			message: "error",
			absent:  []string{"data", "meta", "details"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", tc.reply)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tc.status, resp.StatusCode)

			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			require.Equal(t, tc.success, payload["success"])
			require.Equal(t, tc.message, payload["message"])
			for _, key := range tc.keys {
				require.Contains(t, payload, key)
			}
			for _, key := range tc.absent {
				require.NotContains(t, payload, key)
			}
		})
	}
}

func TestValidationDetailsKeepOrder(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", []fiber.Map{
			{"field": "code", "rule": "required"},
			{"field": "direction", "rule": "oneof", "param": "Benefit Cost"},
		})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload struct {
		Details []map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Details, 2)
	require.Equal(t, "code", payload.Details[0]["field"])
	require.Equal(t, "Benefit Cost", payload.Details[1]["param"])
}
