package domain

import "fmt"

// PaymentMethod is the closed set of supported payment methods.
type PaymentMethod string

const (
	MethodUPI    PaymentMethod = "upi"
	MethodCOD    PaymentMethod = "cod"
	MethodCard   PaymentMethod = "card"
	MethodWallet PaymentMethod = "wallet"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodUPI, MethodCOD, MethodCard, MethodWallet:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w: payment method %q not supported", ErrValidation, s)
}

// Electronic reports whether the method settles through the gateway
// (everything except cash on delivery).
func (m PaymentMethod) Electronic() bool { return m != MethodCOD }

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderProcessing     OrderStatus = "processing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// PaymentStatus is the payment lifecycle state of an order.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "payment_processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "payment_failed"
	PaymentTimeout    PaymentStatus = "payment_timeout"
	PaymentRefunded   PaymentStatus = "refunded"
)

// CanTransitPayment reports whether from → to is a legal payment-status
// transition. New states must be added here so they cannot silently fall
// through a transition site.
func CanTransitPayment(from, to PaymentStatus) bool {
	switch from {
	case PaymentPending:
		return to == PaymentProcessing || to == PaymentCompleted || to == PaymentFailed || to == PaymentTimeout
	case PaymentProcessing:
		return to == PaymentCompleted || to == PaymentFailed || to == PaymentTimeout
	case PaymentFailed, PaymentTimeout:
		return to == PaymentProcessing
	case PaymentCompleted:
		return to == PaymentRefunded
	case PaymentRefunded:
		return false
	}
	return false
}

// Retryable reports whether a payment in this state may be retried.
func (s PaymentStatus) Retryable() bool {
	return s == PaymentFailed || s == PaymentTimeout
}

// Terminal reports whether the payment lifecycle is finished.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentRefunded
}

// GatewayOrderStatus is the state of a single gateway payment attempt.
type GatewayOrderStatus string

const (
	GatewayCreated GatewayOrderStatus = "created"
	GatewayPaid    GatewayOrderStatus = "paid"
	GatewayFailed  GatewayOrderStatus = "failed"
)

// UPIApp identifies the client app a UPI intent URL targets.
type UPIApp string

const (
	UPIAppGooglePay UPIApp = "googlepay"
	UPIAppPhonePe   UPIApp = "phonepe"
	UPIAppPaytm     UPIApp = "paytm"
	UPIAppOther     UPIApp = "other"
)

// Webhook event types emitted by the gateway.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// Audit severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)
