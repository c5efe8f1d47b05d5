package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/tradekart/tradekart/app/models"
	"github.com/tradekart/tradekart/internal/pkg/metrics"
)

// WebhookResult reports how a delivery was handled.
type WebhookResult struct {
	Duplicate bool
	PaymentID string
	Status    string
}

// ProcessWebhook handles one processor delivery. The order is strict:
// signature verification on the raw body, then parsing, then the dedup
// insert, then the state transition. An invalid signature persists nothing.
// Redeliveries of a recorded event return success without re-applying.
func (s *Service) ProcessWebhook(ctx context.Context, payload []byte, signatureHeader string) (*WebhookResult, error) {
	if !VerifyWebhookSignature(payload, signatureHeader, s.webhookSecret) {
		metrics.WebhooksReceived.WithLabelValues(metrics.WebhookOutcomeInvalidSignature).Inc()
		return nil, ErrInvalidSignature
	}

	var body WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		metrics.WebhooksReceived.WithLabelValues(metrics.WebhookOutcomeInvalidPayload).Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if body.PaymentID == "" {
		metrics.WebhooksReceived.WithLabelValues(metrics.WebhookOutcomeInvalidPayload).Inc()
		return nil, fmt.Errorf("%w: missing paymentId", ErrInvalidPayload)
	}

	event := &models.WebhookEvent{
		Provider:           models.PaymentProviderIyzico,
		EventType:          "payment",
		ProcessorPaymentID: body.PaymentID,
		ConversationID:     body.ConversationID,
		PayloadJSON:        string(payload),
		Signature:          strings.TrimSpace(signatureHeader),
		Verified:           true,
	}

	created, stored, err := s.webhooks.CreateIfNotExists(event)
	if err != nil {
		return nil, err
	}
	if !created {
		metrics.WebhooksReceived.WithLabelValues(metrics.WebhookOutcomeDuplicate).Inc()
		log.Printf("Ignoring duplicate webhook for processor payment %s (event %d)", body.PaymentID, stored.ID)
		return &WebhookResult{Duplicate: true, PaymentID: body.PaymentID}, nil
	}

	result := s.applyWebhook(&body)

	if err := s.webhooks.MarkProcessed(event.ID, result.note); err != nil {
		log.Printf("Failed to mark webhook event %d processed: %v", event.ID, err)
	}

	metrics.WebhooksReceived.WithLabelValues(metrics.WebhookOutcomeProcessed).Inc()
	return &WebhookResult{PaymentID: body.PaymentID, Status: result.status}, nil
}

type webhookApplication struct {
	status string
	note   string
}

// applyWebhook maps the delivery onto the payment state machine. Unknown
// payments and payments already in a terminal state are recorded as a note
// on the event, not surfaced as errors: the processor would otherwise keep
// redelivering a webhook we can never act on.
func (s *Service) applyWebhook(body *WebhookPayload) webhookApplication {
	payment, err := s.payments.GetByProcessorPaymentID(body.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Webhook for unknown processor payment %s", body.PaymentID)
			return webhookApplication{note: "no matching payment"}
		}
		return webhookApplication{note: "lookup failed: " + err.Error()}
	}

	if payment.IsTerminal() {
		return webhookApplication{status: payment.Status, note: "payment already " + payment.Status}
	}

	result, err := s.applyAuthorization(payment, AuthorizationOutcome{
		Succeeded:       strings.EqualFold(body.PaymentStatus, "success"),
		PaidPrice:       body.PaidPrice,
		AuthCode:        body.AuthCode,
		FraudStatus:     body.FraudStatus,
		ErrorCode:       body.ErrorCode,
		ErrorMessage:    body.ErrorMessage,
		CardFamily:      body.CardFamily,
		CardAssociation: body.CardAssociation,
		CardType:        body.CardType,
	})
	if err != nil {
		log.Printf("Failed to apply webhook for payment %s: %v", payment.UUID, err)
		return webhookApplication{note: "apply failed: " + err.Error()}
	}
	return webhookApplication{status: result.Status}
}
