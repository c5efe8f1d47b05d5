package payments

import "errors"

var (
	// ErrOrderNotFound is returned when the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrPaymentNotFound is returned when no payment matches the processor
	// correlation id. Reachable from unauthenticated-looking callbacks, so it
	// maps to 404 rather than 500.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentExists is returned when an init is attempted for an order
	// that already has its payment row. At most one payment exists per order.
	ErrPaymentExists = errors.New("payment already exists for order")

	// ErrPaymentInit is returned when the outbound init call fails. The
	// payment row stays in PENDING_3DS: the processor may have received the
	// request despite the client-side error, and a blind retry risks a
	// double charge.
	ErrPaymentInit = errors.New("payment initialization failed")

	// ErrUpstream is returned when the processor is unreachable or returns
	// garbage on the authorization path.
	ErrUpstream = errors.New("payment processor unreachable")

	// ErrInvalidSignature is returned for webhook deliveries whose HMAC does
	// not match. Nothing is persisted in that case.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidPayload is returned when a verified webhook body cannot be
	// parsed into the expected shape.
	ErrInvalidPayload = errors.New("invalid webhook payload")
)
