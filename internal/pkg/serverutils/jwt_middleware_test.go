package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})
	return app
}

func TestJwtMiddlewareAcceptsCompleteClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newProtectedApp()

	token := signToken(t, "test-secret", jwt.MapClaims{
		"user_id":   "3b9f2a51-58dc-4f1d-9f2e-6f9f64a1c111",
		"device_id": "9d3e1c42-7a6b-4f0d-8a3b-2c1d5e6f7a22",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJwtMiddlewareRejectsMissingIdentityClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newProtectedApp()

	// Correctly signed, but the token carries no usable identity.
	for name, claims := range map[string]jwt.MapClaims{
		"no device id":     {"user_id": "3b9f2a51-58dc-4f1d-9f2e-6f9f64a1c111", "exp": time.Now().Add(time.Hour).Unix()},
		"no user id":       {"device_id": "9d3e1c42-7a6b-4f0d-8a3b-2c1d5e6f7a22", "exp": time.Now().Add(time.Hour).Unix()},
		"non-string claim": {"user_id": 42, "device_id": true, "exp": time.Now().Add(time.Hour).Unix()},
	} {
		token := signToken(t, "test-secret", claims)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		assert.NoError(t, err, name)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestJwtMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newProtectedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
