package handler

import (
	"resto_manager/gateway"
	"resto_manager/repository"
	"resto_manager/service"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var (
	Orders      *service.OrderService
	Intents     *service.IntentService
	Webhooks    *service.WebhookService
	MP          *gateway.MercadoPago
	CQ          *gateway.Culqi
	Creds       repository.CredentialRepository
	RedisClient *redis.Client
)

// Setup wires the handler package's collaborators once at startup.
func Setup(
	orders *service.OrderService,
	intents *service.IntentService,
	webhooks *service.WebhookService,
	mp *gateway.MercadoPago,
	cq *gateway.Culqi,
	creds repository.CredentialRepository,
	rdb *redis.Client,
) {
	Orders = orders
	Intents = intents
	Webhooks = webhooks
	MP = mp
	CQ = cq
	Creds = creds
	RedisClient = rdb
}

func apiError(c *fiber.Ctx, apiErr *service.ApiError) error {
	if apiErr.Data != nil {
		return utils.ErrorResponseWithData(c, apiErr.StatusCode, apiErr.Message, apiErr.Data)
	}
	return utils.ErrorResponse(c, apiErr.StatusCode, apiErr.Message, apiErr.Err)
}

func restaurantId(c *fiber.Ctx) uint {
	id, _ := c.Locals("restaurantId").(uint)
	return id
}
