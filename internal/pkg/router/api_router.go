package router

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/tradekart/tradekart/app/controllers"
	"github.com/tradekart/tradekart/internal/pkg/checkout"
	"github.com/tradekart/tradekart/internal/pkg/database"
	"github.com/tradekart/tradekart/internal/pkg/env"
	"github.com/tradekart/tradekart/internal/pkg/payments"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	db := database.GetDB()
	checkoutService := checkout.NewServiceFromDB(db)
	paymentService := payments.NewServiceFromDB(db)

	cartController := controllers.NewCartController(checkoutService)
	orderController := controllers.NewOrderController(checkoutService)
	paymentController := controllers.NewPaymentController(paymentService)
	webhookController := controllers.NewWebhookController(paymentService)

	// Rate limit state lives in Redis so all instances share one budget.
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:     120,
		Storage: newLimiterStorage(),
	}))

	api.Post("/cart/items", cartController.HandleAddItem)
	api.Get("/cart", cartController.HandleGetCart)

	api.Post("/checkout", orderController.HandleCheckout)

	// Static order routes must register before the :id wildcard.
	api.Get("/orders/daily", orderController.HandleDailyOrders)
	api.Get("/orders/profit/daily", orderController.HandleDailyProfit)
	api.Get("/orders", orderController.HandleListOrders)
	api.Get("/orders/:id", orderController.HandleGetOrder)

	api.Post("/payment/3ds/callback", paymentController.HandleThreeDSCallback)
	api.Post("/payment/webhook", webhookController.HandlePaymentWebhook)
	api.Post("/payment/:orderId/init", paymentController.HandleInitPayment)
	api.Get("/payment/:orderId", paymentController.HandleGetPayment)
}

func newLimiterStorage() *redisstorage.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host: env.GetEnv("CACHE_HOST", "localhost"),
		Port: port,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
