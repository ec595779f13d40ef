package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func identityApp(userLocal, deviceLocal interface{}) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", func(ctx *fiber.Ctx) error {
		ctx.Locals("user_id", userLocal)
		ctx.Locals("device_id", deviceLocal)
		userId, deviceId, err := identity(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(fiber.Map{"user_id": userId, "device_id": deviceId})
	})
	return app
}

func TestIdentityResolvesLocals(t *testing.T) {
	app := identityApp(uuid.NewString(), uuid.NewString())

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestIdentityRejectsMalformedLocals(t *testing.T) {
	cases := map[string]*fiber.App{
		"missing claims": identityApp(nil, nil),
		"non-string":     identityApp(42, true),
		"not uuids":      identityApp("someone", "somewhere"),
		"missing device": identityApp(uuid.NewString(), nil),
	}

	for name, app := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
		assert.NoError(t, err, name)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}
