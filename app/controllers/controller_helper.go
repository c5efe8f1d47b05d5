package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tradekart/tradekart/internal/pkg/checkout"
	"github.com/tradekart/tradekart/internal/pkg/payments"
)

// OwnerID extracts the calling user's id from the X-User-Id header set by the
// gateway. Authentication itself happens upstream; an empty header is treated
// as an unidentified caller.
func OwnerID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get("X-User-Id"))
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// jsonError maps service errors onto HTTP statuses. Unknown errors become an
// opaque 500 so internal details never leak to clients.
func jsonError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, checkout.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, checkout.ErrEmptyCart):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, checkout.ErrDuplicateRequest):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, payments.ErrOrderNotFound),
		errors.Is(err, payments.ErrPaymentNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		status = fiber.StatusNotFound
		message = "not found"
	case errors.Is(err, payments.ErrPaymentExists):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, payments.ErrInvalidSignature):
		status = fiber.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, payments.ErrInvalidPayload):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, payments.ErrPaymentInit), errors.Is(err, payments.ErrUpstream):
		status = fiber.StatusBadGateway
		message = err.Error()
	}

	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// requireOwner rejects requests without an X-User-Id header. When it returns
// false the 401 response has already been written.
func requireOwner(c *fiber.Ctx) (string, bool) {
	ownerID := OwnerID(c)
	if ownerID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "X-User-Id header is required"})
		return "", false
	}
	return ownerID, true
}
