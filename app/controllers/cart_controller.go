package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/tradekart/tradekart/app/models"
	"github.com/tradekart/tradekart/internal/pkg/cache"
	"github.com/tradekart/tradekart/internal/pkg/checkout"
)

const cartCacheTTL = 2 * time.Minute

// CartController serves the cart endpoints.
type CartController struct {
	checkout *checkout.Service
}

func NewCartController(svc *checkout.Service) *CartController {
	return &CartController{checkout: svc}
}

type addItemRequest struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// HandleAddItem merges a product into the caller's cart.
func (cc *CartController) HandleAddItem(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	cart, err := cc.checkout.AddItem(ownerID, checkout.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return jsonError(c, err)
	}

	invalidateCartCache(ownerID)

	return c.Status(fiber.StatusOK).JSON(cartResponse(cart))
}

// HandleGetCart returns the caller's cart, served from the Redis cache when
// fresh. An empty cart is created lazily and returned with a zero total.
func (cc *CartController) HandleGetCart(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}

	if cached, err := cache.Get(cartCacheKey(ownerID)); err == nil && cached != "" {
		var cart models.Cart
		if err := json.Unmarshal([]byte(cached), &cart); err == nil {
			return c.Status(fiber.StatusOK).JSON(cartResponse(&cart))
		}
	}

	cart, err := cc.checkout.GetCart(ownerID)
	if err != nil {
		return jsonError(c, err)
	}

	if payload, err := json.Marshal(cart); err == nil {
		if err := cache.Set(cartCacheKey(ownerID), payload, cartCacheTTL); err != nil {
			log.Printf("Failed to cache cart for owner %s: %v", ownerID, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(cartResponse(cart))
}

func cartResponse(cart *models.Cart) fiber.Map {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return fiber.Map{
		"cartId":      cart.UUID,
		"currency":    cart.Currency,
		"totalAmount": cart.TotalAmount,
		"itemCount":   cart.ItemCount(),
		"items":       items,
	}
}

func cartCacheKey(ownerID string) string {
	return fmt.Sprintf("cart:%s", ownerID)
}

// invalidateCartCache drops the cached cart after a mutation. Cache errors
// only cost freshness, never correctness, so they are logged and ignored.
func invalidateCartCache(ownerID string) {
	if err := cache.Delete(cartCacheKey(ownerID)); err != nil {
		log.Printf("Failed to invalidate cart cache for owner %s: %v", ownerID, err)
	}
}
