package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy for the payment flow. Handlers map these onto HTTP codes;
// validation, state-conflict and fraud errors carry the specific reason
// because the mobile client surfaces the message verbatim.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("signature verification failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("order not found or unauthorized access")
	ErrStateConflict      = errors.New("operation not allowed for current order status")
	ErrRetryExhausted     = errors.New("maximum retry attempts exceeded")
	ErrGateway            = errors.New("payment gateway unavailable")
)

// FraudBlockedError is returned when the risk engine rejects a COD or
// risk-gated order. Reason is the exact human-readable cause of rejection.
type FraudBlockedError struct {
	Reason string
}

func (e *FraudBlockedError) Error() string {
	return fmt.Sprintf("order blocked: %s", e.Reason)
}

// PaymentExpired is the single comparison rule for logical payment expiry,
// shared by lazy status reads and the optional active sweeper so both agree.
func PaymentExpired(timeoutAt *time.Time, now time.Time) bool {
	return timeoutAt != nil && now.After(*timeoutAt)
}
