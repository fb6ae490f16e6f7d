package validate

import (
	"encoding/json"
	"errors"
	"fmt"

	"resto_manager/model"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateIntent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateIntentInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid input %s", err.Error()),
			})
		}

		if err := validate.Struct(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		// cart goes into a jsonb column, so it has to at least parse
		if !json.Valid([]byte(input.Cart)) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cart must be valid JSON", errors.New("invalid cart"))
		}

		c.Locals("input", input)
		return c.Next()
	}
}
