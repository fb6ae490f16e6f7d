package handler

import (
	"time"

	"resto_manager/model"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateOrder places an order. A retry with the same idempotency key answers
// 200 with the original order instead of creating a second one.
func CreateOrder(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateOrderInput)
	restId := restaurantId(c)

	pedido, created, apiErr := Orders.CreateOrder(restId, input)
	if apiErr != nil {
		return apiError(c, apiErr)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return utils.SuccessResponse(c, status, fiber.Map{
		"orderId":          pedido.ID,
		"status":           pedido.Status,
		"total":            pedido.Total,
		"amountMinorUnits": utils.ToMinorUnits(pedido.Total),
		"currency":         "PEN",
		"created":          created,
	})
}

// UpdateOrderState anulls an order from the floor, or marks it paid for cash.
func UpdateOrderState(c *fiber.Ctx) error {
	input := c.Locals("input").(model.UpdateOrderStateInput)
	orderId := c.Locals("inputId").(uint)

	pedido, apiErr := Orders.Transition(restaurantId(c), orderId, input.State)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, pedido)
}

// GetOrder returns the order with its recorded payment events.
func GetOrder(c *fiber.Ctx) error {
	orderId := c.Locals("inputId").(uint)
	restId := restaurantId(c)

	pedido, apiErr := Orders.GetOrder(restId, orderId)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	pagos, err := Webhooks.Payments.FindByOrder(restId, orderId)
	if err != nil {
		pagos = nil
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"order": pedido,
		"pagos": pagos,
	})
}

// GetOrders lists the active orders of the recent service window.
func GetOrders(c *fiber.Ctx) error {
	views, apiErr := Orders.Snapshot(restaurantId(c), 12*time.Hour)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, views)
}
