package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradekart/tradekart/app/models"
	"github.com/tradekart/tradekart/app/repository"
	"github.com/tradekart/tradekart/internal/pkg/env"
	"github.com/tradekart/tradekart/internal/pkg/events"
	"github.com/tradekart/tradekart/internal/pkg/metrics"
	"github.com/tradekart/tradekart/internal/pkg/profile"
)

// BuyerProvider resolves buyer details for the processor request.
type BuyerProvider interface {
	GetBuyer(ctx context.Context, ownerID string) profile.BuyerDetails
}

// Service drives the payment lifecycle: 3DS initialization, authorization
// from both the browser redirect and the webhook path, and the terminal
// state machine.
type Service struct {
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	webhooks  repository.WebhookEventRepository
	processor ProcessorClient
	buyers    BuyerProvider
	emitter   events.Emitter

	callbackURL   string
	webhookSecret string
}

// NewService creates a payment service from injected dependencies.
func NewService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	webhookRepo repository.WebhookEventRepository,
	processor ProcessorClient,
	buyers BuyerProvider,
	emitter events.Emitter,
	callbackURL, webhookSecret string,
) *Service {
	return &Service{
		payments:      paymentRepo,
		orders:        orderRepo,
		webhooks:      webhookRepo,
		processor:     processor,
		buyers:        buyers,
		emitter:       emitter,
		callbackURL:   callbackURL,
		webhookSecret: webhookSecret,
	}
}

// NewServiceFromDB creates a payment service from a GORM DB handle, the env
// configuration and the global emitter.
func NewServiceFromDB(db *gorm.DB) *Service {
	repos := repository.NewRepositories(db)
	return NewService(
		repos.Payment,
		repos.Order,
		repos.WebhookEvent,
		NewClientFromEnv(),
		profile.NewClientFromEnv(),
		events.GetEmitter(),
		env.GetEnv("PROCESSOR_CALLBACK_URL", "http://localhost:4000/api/payment/3ds/callback"),
		env.GetEnv("PROCESSOR_WEBHOOK_SECRET", ""),
	)
}

// InitPayment starts the 3DS flow for an order. The payment row is written
// in PENDING_3DS before the outbound call; if the processor call then fails,
// the row is deliberately left in place for later reconciliation instead of
// being rolled back or retried.
func (s *Service) InitPayment(ctx context.Context, orderUUID string) (*InitResult, error) {
	order, err := s.orders.GetByUUID(orderUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if _, err := s.payments.GetByOrderUUID(order.UUID); err == nil {
		return nil, ErrPaymentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversationID := fmt.Sprintf("conv-%s-%d", order.UUID, time.Now().UnixMilli())

	payment := &models.Payment{
		OrderID:        order.ID,
		OrderUUID:      order.UUID,
		Status:         models.PaymentStatusPending3DS,
		Price:          order.TotalAmount,
		PaidPrice:      order.TotalAmount,
		Currency:       order.Currency,
		Installment:    1,
		ConversationID: conversationID,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}

	req := s.buildInitRequest(ctx, order, conversationID)
	resp, err := s.processor.Initialize3DS(ctx, req)
	if err != nil {
		log.Printf("3DS init failed for order %s (payment %s kept in PENDING_3DS): %v", order.UUID, payment.UUID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentInit, err)
	}

	if resp.PaymentID != "" {
		if err := s.payments.SetProcessorIDs(payment.ID, resp.PaymentID, conversationID); err != nil {
			return nil, err
		}
	}
	metrics.PaymentsInitialized.Inc()

	return &InitResult{
		PaymentUUID:     payment.UUID,
		ConversationID:  conversationID,
		RedirectContent: resp.ThreeDSHTMLContent,
		Status:          resp.Status,
	}, nil
}

// AuthorizePayment completes the 3DS flow after the browser challenge. It is
// reachable from the redirect callback and from the webhook path for the
// same payment, so it must tolerate a second invocation: a payment already
// in a terminal state is returned as-is without another processor call.
func (s *Service) AuthorizePayment(ctx context.Context, processorPaymentID, conversationData string) (*AuthorizationResult, error) {
	payment, err := s.payments.GetByProcessorPaymentID(processorPaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.IsTerminal() {
		log.Printf("Ignoring authorize for payment %s already in %s", payment.UUID, payment.Status)
		return resultFromPayment(payment), nil
	}

	resp, err := s.processor.Authorize3DS(ctx, &ThreeDSAuthRequest{
		Locale:           "tr",
		ConversationID:   payment.ConversationID,
		PaymentID:        processorPaymentID,
		ConversationData: conversationData,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return s.applyAuthorization(payment, AuthorizationOutcome{
		Succeeded:       strings.EqualFold(resp.Status, "success"),
		PaidPrice:       resp.PaidPrice,
		AuthCode:        resp.AuthCode,
		FraudStatus:     resp.FraudStatus,
		ErrorCode:       resp.ErrorCode,
		ErrorMessage:    resp.ErrorMessage,
		CardFamily:      resp.CardFamily,
		CardAssociation: resp.CardAssociation,
		CardType:        resp.CardType,
	})
}

// GetByOrderUUID returns the payment for an order.
func (s *Service) GetByOrderUUID(orderUUID string) (*models.Payment, error) {
	payment, err := s.payments.GetByOrderUUID(orderUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// AuthorizationOutcome is the processor's verdict, normalized across the
// synchronous authorize response and the webhook payload.
type AuthorizationOutcome struct {
	Succeeded       bool
	PaidPrice       decimal.Decimal
	AuthCode        string
	FraudStatus     string
	ErrorCode       string
	ErrorMessage    string
	CardFamily      string
	CardAssociation string
	CardType        string
}

// applyAuthorization writes the terminal transition and, when this call won
// the compare-and-swap, publishes PaymentSucceeded and confirms the order.
// The CAS is the single at-most-once guard shared by the redirect and the
// webhook path; losing it means another delivery already applied the
// transition, which is logged and ignored.
func (s *Service) applyAuthorization(payment *models.Payment, outcome AuthorizationOutcome) (*AuthorizationResult, error) {
	status := models.PaymentStatusFailed
	if outcome.Succeeded {
		status = models.PaymentStatusSucceeded
	}

	applied, err := s.payments.CompleteAuthorization(payment.ID, repository.PaymentAuthorizationUpdate{
		Status:          status,
		PaidPrice:       outcome.PaidPrice,
		AuthCode:        outcome.AuthCode,
		FraudStatus:     outcome.FraudStatus,
		ErrorCode:       outcome.ErrorCode,
		ErrorMessage:    outcome.ErrorMessage,
		CardFamily:      outcome.CardFamily,
		CardAssociation: outcome.CardAssociation,
		CardType:        outcome.CardType,
	})
	if err != nil {
		return nil, err
	}

	if !applied {
		log.Printf("Ignoring duplicate authorization for payment %s", payment.UUID)
		current, err := s.payments.GetByProcessorPaymentID(payment.ProcessorPaymentID)
		if err != nil {
			return nil, err
		}
		return resultFromPayment(current), nil
	}

	payment.Status = status
	payment.PaidPrice = outcome.PaidPrice
	payment.AuthCode = outcome.AuthCode
	payment.FraudStatus = outcome.FraudStatus
	payment.ErrorCode = outcome.ErrorCode
	payment.ErrorMessage = outcome.ErrorMessage
	payment.CardFamily = outcome.CardFamily
	payment.CardAssociation = outcome.CardAssociation
	payment.CardType = outcome.CardType

	if status == models.PaymentStatusSucceeded {
		metrics.PaymentsSucceeded.Inc()
		s.confirmOrder(payment)
		s.publishPaymentSucceeded(payment)
	} else {
		metrics.PaymentsFailed.Inc()
	}

	return resultFromPayment(payment), nil
}

// confirmOrder advances the order to CONFIRMED when its payment succeeds.
func (s *Service) confirmOrder(payment *models.Payment) {
	applied, err := s.orders.UpdateStatus(payment.OrderID, models.OrderStatusPending, models.OrderStatusConfirmed)
	if err != nil {
		log.Printf("Failed to confirm order %s after payment %s: %v", payment.OrderUUID, payment.UUID, err)
		return
	}
	if !applied {
		log.Printf("Order %s not in PENDING, leaving status untouched", payment.OrderUUID)
	}
}

func (s *Service) publishPaymentSucceeded(payment *models.Payment) {
	err := s.emitter.EmitPaymentSucceeded(events.PaymentSucceededEvent{
		OrderID:         payment.OrderUUID,
		ConversationID:  payment.ConversationID,
		PaymentID:       payment.ProcessorPaymentID,
		PaidPrice:       payment.PaidPrice,
		Currency:        payment.Currency,
		Installment:     payment.Installment,
		CardFamily:      payment.CardFamily,
		CardAssociation: payment.CardAssociation,
		CardType:        payment.CardType,
		AuthCode:        payment.AuthCode,
		Timestamp:       time.Now().UTC(),
		Status:          models.PaymentStatusSucceeded,
	})
	if err != nil {
		// The payment is committed either way; consumers catch up through
		// the processor's webhook redelivery or a manual replay.
		log.Printf("Failed to publish PaymentSucceeded for order %s: %v", payment.OrderUUID, err)
	}
}

func (s *Service) buildInitRequest(ctx context.Context, order *models.Order, conversationID string) *ThreeDSInitRequest {
	buyer := s.buyers.GetBuyer(ctx, order.OwnerID)

	basketItems := make([]BasketItem, 0, len(order.Items))
	for _, item := range order.Items {
		basketItems = append(basketItems, BasketItem{
			ID:        item.ProductID,
			Name:      item.Name,
			Category1: "General",
			Category2: "Products",
			ItemType:  "PHYSICAL",
			Price:     item.TotalPrice.StringFixed(2),
		})
	}

	shipping := order.ShippingAddress
	if shipping == "" {
		shipping = buyer.Address
	}
	billing := order.BillingAddress
	if billing == "" {
		billing = buyer.Address
	}
	contactName := buyer.FirstName + " " + buyer.LastName

	return &ThreeDSInitRequest{
		Locale:         "tr",
		ConversationID: conversationID,
		Price:          order.TotalAmount,
		PaidPrice:      order.TotalAmount,
		Currency:       order.Currency,
		Installment:    1,
		BasketID:       "basket-" + order.UUID,
		PaymentChannel: "WEB",
		PaymentGroup:   "PRODUCT",
		PaymentSource:  "DEFAULT",
		Buyer: Buyer{
			ID:                  order.OwnerID,
			Name:                buyer.FirstName,
			Surname:             buyer.LastName,
			IdentityNumber:      buyer.IdentityNumber,
			Email:               buyer.Email,
			GsmNumber:           buyer.Phone,
			RegistrationDate:    "2024-01-01",
			LastLoginDate:       time.Now().UTC().Format("2006-01-02"),
			RegistrationAddress: buyer.Address,
			City:                buyer.City,
			Country:             buyer.Country,
			ZipCode:             buyer.ZipCode,
			IP:                  "127.0.0.1",
		},
		ShippingAddress: Address{
			Address:     shipping,
			ZipCode:     buyer.ZipCode,
			ContactName: contactName,
			City:        buyer.City,
			Country:     buyer.Country,
		},
		BillingAddress: Address{
			Address:     billing,
			ZipCode:     buyer.ZipCode,
			ContactName: contactName,
			City:        buyer.City,
			Country:     buyer.Country,
		},
		BasketItems: basketItems,
		CallbackURL: s.callbackURL,
	}
}

func resultFromPayment(p *models.Payment) *AuthorizationResult {
	return &AuthorizationResult{
		PaymentUUID:        p.UUID,
		OrderUUID:          p.OrderUUID,
		ProcessorPaymentID: p.ProcessorPaymentID,
		ConversationID:     p.ConversationID,
		Status:             p.Status,
		PaidPrice:          p.PaidPrice,
		Currency:           p.Currency,
		AuthCode:           p.AuthCode,
		ErrorCode:          p.ErrorCode,
		ErrorMessage:       p.ErrorMessage,
	}
}
