package checkout

import "errors"

var (
	// ErrValidation marks rejected input (bad quantity, missing fields,
	// missing idempotency key).
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCart is returned when a checkout finds no items to order.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrDuplicateRequest is returned when the idempotency key was already
	// accepted. The original request's effects stand; nothing is rerun.
	ErrDuplicateRequest = errors.New("idempotency key already used")
)
