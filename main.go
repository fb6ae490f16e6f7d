package main

import (
	"log"

	"resto_manager/config"
	"resto_manager/database"
	"resto_manager/gateway"
	"resto_manager/handler"
	"resto_manager/helper"
	"resto_manager/logger"
	"resto_manager/model"
	"resto_manager/notify"
	"resto_manager/repository"
	"resto_manager/router"
	"resto_manager/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	zlog := logger.Init(config.ConfigOr("APP_ENV", "development"))
	defer zlog.Sync()

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.ConfigOr("CORS_ORIGINS", "http://localhost:5173"),
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization, Accept, X-Restaurant-Id, X-Device-Session-Id",
	}))

	database.ConnectDB()

	var rdb *redis.Client
	var notifier notify.Notifier = notify.NoopNotifier{}
	var dedup notify.DedupGuard = notify.NewMemoryDedup()
	if addr := config.Config("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		notifier = notify.NewRedisNotifier(rdb, zlog)
		dedup = notify.NewRedisDedup(rdb, zlog)
	}

	orderRepo := repository.NewOrderRepository(database.DB)
	paymentRepo := repository.NewPaymentRepository(database.DB)
	intentRepo := repository.NewIntentRepository(database.DB)
	credRepo := repository.NewCredentialRepository(database.DB)

	receipts := &helper.GomailReceipt{Log: zlog}
	orders := service.NewOrderService(orderRepo, notifier, receipts, zlog)
	intents := service.NewIntentService(intentRepo, orderRepo, zlog)

	mp := gateway.NewMercadoPago()
	cq := gateway.NewCulqi()

	webhooks := &service.WebhookService{
		Payments: paymentRepo,
		Creds:    credRepo,
		Orders:   orders,
		Fetchers: map[string]service.PaymentFetcher{
			model.ProviderMercadoPago: mp,
			model.ProviderCulqi:       cq,
		},
		Dedup:    dedup,
		Billing: notify.NewHTTPBilling(
			config.Config("BILLING_NOTIFY_URL"),
			config.Config("INTERNAL_SHARED_SECRET"),
			zlog,
		),
		Log: zlog,
	}

	handler.Setup(orders, intents, webhooks, mp, cq, credRepo, rdb)

	helper.StartIntentSweeper(intents)
	defer helper.StopIntentSweeper()
	helper.StartRetentionScheduler(intents)
	defer helper.StopRetentionScheduler()

	router.SetupRoutes(app)
	log.Fatal(app.Listen(":8003"))
}
