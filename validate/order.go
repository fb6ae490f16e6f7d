package validate

import (
	"errors"
	"fmt"

	"resto_manager/model"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateOrderInput
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

		// each line references a menu item or a combo, never both
		for i, item := range input.Items {
			hasMenuItem := item.MenuItemId != nil && *item.MenuItemId > 0
			hasCombo := item.ComboId != nil && *item.ComboId > 0
			if hasMenuItem == hasCombo {
				return utils.ErrorResponse(c, fiber.StatusBadRequest,
					fmt.Sprintf("Item %d must reference exactly one of menuItemId or comboId", i),
					errors.New("ambiguous order line"))
			}
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func UpdateOrderState() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateOrderStateInput
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

		c.Locals("input", input)
		return c.Next()
	}
}
