package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func JWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-key-change-in-production"
	}
	return secret
}

// AuthMiddleware verifies the bearer token and stores the caller's identity
// in locals. Browsers cannot set headers on EventSource or websocket
// connections, so a ?token= query parameter is accepted as a fallback.
func AuthMiddleware(c *fiber.Ctx) error {
	tokenStr := ""
	if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenStr = auth[7:]
	}
	if tokenStr == "" {
		tokenStr = c.Query("token")
	}
	if tokenStr == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing token"})
	}

	token, err := jwt.ParseWithClaims(tokenStr, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(JWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
	}

	claims := token.Claims.(*jwt.MapClaims)
	userID, ok := (*claims)["user_id"].(float64)
	if !ok || userID <= 0 {
		return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
	}
	wsID, _ := (*claims)["ws_id"].(float64)
	fullname, _ := (*claims)["fullname"].(string)

	c.Locals("user_id", int64(userID))
	c.Locals("ws_id", int64(wsID))
	c.Locals("fullname", fullname)

	return c.Next()
}
