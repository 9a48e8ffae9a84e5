package utils

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const defaultJWTSecret = "auction-secret-key-change-in-production"

var (
	jwtMu     sync.RWMutex
	jwtSecret = []byte(defaultJWTSecret)
	jwtTTL    = 15 * time.Minute
)

// Claims is the access token payload.
type Claims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	SupplierID string `json:"supplier_id,omitempty"`
	jwt.RegisteredClaims
}

// ConfigureJWT sets the signing secret and token lifetime used by GenerateJWT
// and ValidateJWT.
func ConfigureJWT(secret string, ttl time.Duration) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if ttl > 0 {
		jwtTTL = ttl
	}
}

func signingConfig() ([]byte, time.Duration) {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtSecret, jwtTTL
}

// GenerateJWT creates an access token for the user.
func GenerateJWT(userID, email, role, supplierID string) (string, error) {
	secret, ttl := signingConfig()
	now := time.Now()

	claims := &Claims{
		UserID:     userID,
		Email:      email,
		Role:       role,
		SupplierID: supplierID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateJWT parses and verifies an access token.
func ValidateJWT(tokenString string) (*Claims, error) {
	secret, _ := signingConfig()

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithLeeway(30*time.Second))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.UserID == "" || claims.Role == "" {
			return nil, jwt.ErrTokenMalformed
		}
		return claims, nil
	}

	return nil, jwt.ErrTokenMalformed
}

// AuthMiddleware validates the bearer token and stores the principal in Locals.
func AuthMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(401).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return c.Status(401).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	claims, err := ValidateJWT(tokenParts[1])
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return c.Status(401).JSON(fiber.Map{
				"error": "Token expired",
				"code":  "TOKEN_EXPIRED",
			})
		}
		return c.Status(401).JSON(fiber.Map{
			"error": "Invalid token",
		})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("role", claims.Role)
	c.Locals("supplier_id", claims.SupplierID)

	return c.Next()
}

// RequireRole rejects requests whose principal does not hold one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}
