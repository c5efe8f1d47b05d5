package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradekart/tradekart/internal/pkg/payments"
)

// PaymentController serves the 3DS payment endpoints.
type PaymentController struct {
	payments *payments.Service
}

func NewPaymentController(svc *payments.Service) *PaymentController {
	return &PaymentController{payments: svc}
}

// HandleInitPayment starts the 3DS flow for an order and returns the
// challenge content the client must render.
func (pc *PaymentController) HandleInitPayment(c *fiber.Ctx) error {
	result, err := pc.payments.InitPayment(c.Context(), c.Params("orderId"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// HandleGetPayment returns the payment attached to an order.
func (pc *PaymentController) HandleGetPayment(c *fiber.Ctx) error {
	payment, err := pc.payments.GetByOrderUUID(c.Params("orderId"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(payment)
}

// HandleThreeDSCallback is the browser return leg of the 3DS challenge. The
// processor posts form fields; paymentId correlates back to our payment row.
// Replays of a completed challenge return the recorded terminal state.
func (pc *PaymentController) HandleThreeDSCallback(c *fiber.Ctx) error {
	paymentID := c.FormValue("paymentId", c.Query("paymentId"))
	if paymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "paymentId is required"})
	}
	conversationData := c.FormValue("conversationData", c.Query("conversationData"))

	result, err := pc.payments.AuthorizePayment(c.Context(), paymentID, conversationData)
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
