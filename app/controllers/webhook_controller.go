package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradekart/tradekart/internal/pkg/payments"
)

// WebhookController receives processor notifications.
type WebhookController struct {
	payments *payments.Service
}

func NewWebhookController(svc *payments.Service) *WebhookController {
	return &WebhookController{payments: svc}
}

// HandlePaymentWebhook processes one processor delivery. Duplicates return
// 200 like first deliveries so the processor stops redelivering; only a bad
// signature or an unparseable body is rejected.
func (wc *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	// Fiber reuses the request buffer after the handler returns, while the
	// webhook row outlives it. Copy before handing the body on.
	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())

	result, err := wc.payments.ProcessWebhook(c.Context(), raw, c.Get("x-iyzi-signature"))
	if err != nil {
		return jsonError(c, err)
	}

	// Duplicates answer the same as first deliveries so the processor stops
	// redelivering either way.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "processed",
		"paymentId": result.PaymentID,
	})
}
