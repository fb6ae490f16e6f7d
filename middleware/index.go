package middleware

import (
	"crypto/subtle"
	"errors"
	"strconv"

	"resto_manager/config"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// Tenant resolves the restaurant scope of a request from the X-Restaurant-Id
// header. Every /api/v1 route runs inside exactly one tenant.
func Tenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-Restaurant-Id")
		if raw == "" {
			return utils.ErrorResponse(c, 400, "Missing restaurant", errors.New("X-Restaurant-Id header required"))
		}
		id64, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id64 == 0 {
			return utils.ErrorResponse(c, 400, "Invalid restaurant", errors.New("X-Restaurant-Id must be a positive integer"))
		}
		c.Locals("restaurantId", uint(id64))
		return c.Next()
	}
}

// InternalOnly guards the service-to-service surface with a shared secret.
func InternalOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := config.Config("INTERNAL_SHARED_SECRET")
		given := c.Get("X-Internal-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
			return utils.ErrorResponse(c, 401, "Unauthorized", errors.New("invalid internal secret"))
		}
		return c.Next()
	}
}
