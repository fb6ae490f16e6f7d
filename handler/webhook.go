package handler

import (
	"strconv"

	"resto_manager/model"

	"github.com/gofiber/fiber/v2"
)

// PaymentWebhook acks every provider delivery with 200 and reconciles in the
// background. A non-200 here only buys a retry storm; a malformed or
// unprocessable event is logged, never bounced.
func PaymentWebhook(c *fiber.Ctx) error {
	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())

	provider := c.Query("provider", model.ProviderMercadoPago)

	var restaurantHint uint
	if v, err := strconv.ParseUint(c.Query("restaurantId"), 10, 64); err == nil {
		restaurantHint = uint(v)
	}

	queryType := c.Query("type", c.Query("topic"))
	queryId := c.Query("data.id", c.Query("id"))

	go Webhooks.Handle(raw, provider, restaurantHint, queryType, queryId)

	return c.SendStatus(fiber.StatusOK)
}
