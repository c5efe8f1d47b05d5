package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradekart/tradekart/internal/pkg/checkout"
)

// OrderController serves checkout and order queries.
type OrderController struct {
	checkout *checkout.Service
}

func NewOrderController(svc *checkout.Service) *OrderController {
	return &OrderController{checkout: svc}
}

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	BillingAddress  string `json:"billingAddress"`
}

// HandleCheckout converts the caller's cart into an order. The Idempotency-Key
// header is mandatory; replaying a key yields 409 without side effects.
func (oc *OrderController) HandleCheckout(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}

	var req checkoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
		}
	}

	order, err := oc.checkout.Checkout(ownerID, c.Get("Idempotency-Key"), checkout.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	}, c.Body())
	if err != nil {
		return jsonError(c, err)
	}

	invalidateCartCache(ownerID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"orderId":     order.UUID,
		"totalAmount": order.TotalAmount,
		"currency":    order.Currency,
		"status":      order.Status,
		"items":       order.Items,
	})
}

// HandleGetOrder returns one order by its public id.
func (oc *OrderController) HandleGetOrder(c *fiber.Ctx) error {
	order, err := oc.checkout.GetOrder(c.Params("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(order)
}

// HandleListOrders returns the caller's orders, newest first.
func (oc *OrderController) HandleListOrders(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}

	orders, err := oc.checkout.ListOrders(ownerID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(orders)
}

// HandleDailyOrders returns today's order report.
func (oc *OrderController) HandleDailyOrders(c *fiber.Ctx) error {
	report, err := oc.checkout.DailyOrders()
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// HandleDailyProfit returns today's derived profit report.
func (oc *OrderController) HandleDailyProfit(c *fiber.Ctx) error {
	report, err := oc.checkout.DailyProfit()
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}
