package handler

import (
	"errors"
	"fmt"

	"resto_manager/config"
	"resto_manager/helper"
	"resto_manager/model"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
)

type orderPaidCallback struct {
	RestaurantId uint `json:"restaurantId" validate:"required,gt=0"`
	OrderId      uint `json:"orderId" validate:"required,gt=0"`
}

// InternalOrderPaid is the billing service's callback: idempotently assert an
// order is paid and re-announce it to the kitchen display.
func InternalOrderPaid(c *fiber.Ctx) error {
	var input orderPaidCallback
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input", err)
	}
	if input.RestaurantId == 0 || input.OrderId == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input",
			errors.New("restaurantId and orderId are required"))
	}

	pedido, apiErr := Orders.ReassertPaid(input.RestaurantId, input.OrderId)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"orderId": pedido.ID,
		"status":  pedido.Status,
	})
}

type issueTokenInput struct {
	RestaurantId uint   `json:"restaurantId"`
	Kind         string `json:"kind"`
}

// IssueKDSToken mints a websocket token. Only the internal surface can call
// it; displays and service apps receive the token out of band.
func IssueKDSToken(c *fiber.Ctx) error {
	var input issueTokenInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input", err)
	}
	if input.RestaurantId == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input",
			errors.New("restaurantId is required"))
	}
	if input.Kind == "" {
		input.Kind = model.TokenKindService
	}

	token, err := helper.IssueKDSToken(input.RestaurantId, input.Kind)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Could not issue token", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"kind":  input.Kind,
	})
}

// TableQR renders the mesa's menu link as a printable QR PNG.
func TableQR(c *fiber.Ctx) error {
	mesaId := c.Locals("inputId").(uint)

	mesa, err := Orders.Orders.FindMesa(restaurantId(c), mesaId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Mesa not found", err)
	}

	content := fmt.Sprintf("%s/m/%s", config.Config("APP_URL"), mesa.Codigo)
	png, err := utils.GenerateQRCode(content, 512)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "QR generation failed", err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
