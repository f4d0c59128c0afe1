package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const RoleAdmin = "admin"

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or malformed JWT"})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired JWT"})
}

// Claims returns the verified token claims, or nil outside a Protected route.
func Claims(c *fiber.Ctx) jwt.MapClaims {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	return claims
}

func Role(c *fiber.Ctx) string {
	role, _ := Claims(c)["role"].(string)
	return role
}

func requireRole(role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": message})
		}
		return c.Next()
	}
}

func AdminRequired() fiber.Handler {
	return requireRole(RoleAdmin, "Forbidden: Admin access required")
}
