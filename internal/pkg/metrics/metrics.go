package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business counters exposed on /metrics.
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradekart_orders_created_total",
		Help: "Number of orders created from accepted checkouts",
	})

	CheckoutDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradekart_checkout_duplicates_total",
		Help: "Number of checkouts rejected for a reused idempotency key",
	})

	PaymentsInitialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradekart_payments_initialized_total",
		Help: "Number of 3DS payment initializations",
	})

	PaymentsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradekart_payments_succeeded_total",
		Help: "Number of payments that reached SUCCEEDED",
	})

	PaymentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradekart_payments_failed_total",
		Help: "Number of payments that reached FAILED",
	})

	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradekart_webhooks_received_total",
		Help: "Number of processor webhooks received, by outcome",
	}, []string{"outcome"})
)

// Webhook outcome label values.
const (
	WebhookOutcomeProcessed        = "processed"
	WebhookOutcomeDuplicate        = "duplicate"
	WebhookOutcomeInvalidSignature = "invalid_signature"
	WebhookOutcomeInvalidPayload   = "invalid_payload"
)
