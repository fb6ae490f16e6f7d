package handler

import (
	"resto_manager/model"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateIntent stages a checkout. Re-submitting for the same mesa replaces
// the pending intent rather than stacking a new one.
func CreateIntent(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateIntentInput)

	intent, apiErr := Intents.CreateOrReplace(restaurantId(c), input)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, intent)
}

func GetIntent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(uint)

	intent, apiErr := Intents.Get(restaurantId(c), id)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, intent)
}

func AbandonIntent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(uint)

	intent, apiErr := Intents.Abandon(restaurantId(c), id)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, intent)
}

func ExpireIntent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(uint)

	intent, apiErr := Intents.Expire(restaurantId(c), id)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, intent)
}
