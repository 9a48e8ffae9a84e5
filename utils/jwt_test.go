package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTGenerationAndValidation(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	token, err := GenerateJWT("user-1", "sup@example.com", "supplier", "sup-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sup@example.com", claims.Email)
	assert.Equal(t, "supplier", claims.Role)
	assert.Equal(t, "sup-1", claims.SupplierID)
}

func TestValidateJWTRejectsForeignSignature(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = ValidateJWT(tokenString)
	assert.Error(t, err)
}

func TestValidateJWTRequiresRole(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateJWT(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestAuthMiddlewareAndRequireRole(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	app := fiber.New()
	app.Get("/admin", AuthMiddleware, RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})

	adminToken, err := GenerateJWT("admin-1", "admin@example.com", "admin", "")
	require.NoError(t, err)
	supplierToken, err := GenerateJWT("user-2", "sup@example.com", "supplier", "sup-2")
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "missing header", header: "", expectedStatus: 401},
		{name: "malformed header", header: "Token abc", expectedStatus: 401},
		{name: "invalid token", header: "Bearer abc", expectedStatus: 401},
		{name: "supplier forbidden", header: "Bearer " + supplierToken, expectedStatus: 403},
		{name: "admin allowed", header: "Bearer " + adminToken, expectedStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
