package gateway

import "context"

// CreateOrderRequest asks the gateway to open an order for one payment
// attempt. Amount is paise.
type CreateOrderRequest struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is the gateway's view of a payment attempt.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
}

// Client is the payment gateway surface the orchestrator talks to. The live
// implementation calls Razorpay; the mock runs in-process.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	// VerifyPaymentSignature checks the signature a client submits after
	// checkout completes.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	// VerifyWebhookSignature checks the signature over a raw webhook body.
	VerifyWebhookSignature(payload []byte, signature string) bool
}
