package router

import (
	"resto_manager/handler"
	"resto_manager/middleware"
	"resto_manager/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	pedidos := v1.Group("/pedidos", middleware.Tenant())
	pedidos.Get("/", handler.GetOrders)
	pedidos.Post("/", validate.CreateOrder(), handler.CreateOrder)
	pedidos.Get("/:pedidoId", validate.GetById("pedidoId"), handler.GetOrder)
	pedidos.Patch("/:pedidoId", validate.GetById("pedidoId"), validate.UpdateOrderState(), handler.UpdateOrderState)

	intents := v1.Group("/checkout-intents", middleware.Tenant())
	intents.Post("/", validate.CreateIntent(), handler.CreateIntent)
	intents.Get("/:intentId", validate.GetById("intentId"), handler.GetIntent)
	intents.Post("/:intentId/abandon", validate.GetById("intentId"), handler.AbandonIntent)
	intents.Post("/:intentId/expire", validate.GetById("intentId"), handler.ExpireIntent)

	pagos := v1.Group("/pagos", middleware.Tenant())
	pagos.Post("/preference", validate.CreatePreference(), handler.CreatePreference)
	pagos.Post("/charge", validate.CreateCharge(), handler.CreateCharge)

	mesas := v1.Group("/mesas", middleware.Tenant())
	mesas.Get("/:mesaId/qr", validate.GetById("mesaId"), handler.TableQR)

	// token carries the tenant; browsers cannot set headers on a ws upgrade
	v1.Get("/kds/ws", websocket.New(handler.KDSWebsocket))

	app.Post("/webhooks/payment", handler.PaymentWebhook)

	internal := app.Group("/internal", middleware.InternalOnly())
	internal.Post("/kds/order-paid", handler.InternalOrderPaid)
	internal.Post("/kds/token", handler.IssueKDSToken)
}
