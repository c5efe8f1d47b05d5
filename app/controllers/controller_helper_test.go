package controllers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tradekart/tradekart/internal/pkg/checkout"
	"github.com/tradekart/tradekart/internal/pkg/payments"
)

func TestJsonErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", checkout.ErrValidation, fiber.StatusBadRequest},
		{"empty cart", checkout.ErrEmptyCart, fiber.StatusBadRequest},
		{"duplicate checkout", checkout.ErrDuplicateRequest, fiber.StatusConflict},
		{"order not found", payments.ErrOrderNotFound, fiber.StatusNotFound},
		{"payment not found", payments.ErrPaymentNotFound, fiber.StatusNotFound},
		{"record not found", gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{"payment exists", payments.ErrPaymentExists, fiber.StatusConflict},
		{"invalid signature", payments.ErrInvalidSignature, fiber.StatusUnauthorized},
		{"invalid payload", payments.ErrInvalidPayload, fiber.StatusBadRequest},
		{"init failed", payments.ErrPaymentInit, fiber.StatusBadGateway},
		{"upstream down", payments.ErrUpstream, fiber.StatusBadGateway},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return jsonError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestOwnerIDFromHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(OwnerID(c))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-User-Id", "  owner-1  ")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireOwnerRejectsMissingHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if _, ok := requireOwner(c); !ok {
			return nil
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
