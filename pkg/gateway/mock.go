package gateway

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"dayliz/config"
	"dayliz/internal/security"
)

// Payment outcome statuses returned by SimulatePayment.
const (
	MockCaptured = "captured"
	MockFailed   = "failed"
)

// SimulatedPayment is the result of one simulated checkout. Captured
// payments carry a signature valid against the mock key secret, so the
// regular verification path exercises the real HMAC check.
type SimulatedPayment struct {
	PaymentID        string `json:"payment_id,omitempty"`
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	AmountPaise      int64  `json:"amount"`
	FeePaise         int64  `json:"fee,omitempty"`
	TaxPaise         int64  `json:"tax,omitempty"`
	Bank             string `json:"bank,omitempty"`
	VPA              string `json:"vpa,omitempty"`
	Signature        string `json:"signature,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// MockGateway simulates Razorpay in-process: realistic ids, configurable
// failure rates by method and amount, and signatures produced with the same
// secret the verifier checks against. All state is instance-local and
// mutex-guarded so parallel tests never share orders.
type MockGateway struct {
	mu       sync.Mutex
	orders   map[string]Order
	payments map[string]SimulatedPayment
	rng      *rand.Rand
	verifier *security.Verifier
}

func NewMockGateway(cfg *config.GatewayConfig) *MockGateway {
	return NewMockGatewayWithSeed(cfg, time.Now().UnixNano())
}

// NewMockGatewayWithSeed fixes the random source, for deterministic tests.
func NewMockGatewayWithSeed(cfg *config.GatewayConfig, seed int64) *MockGateway {
	return &MockGateway{
		orders:   make(map[string]Order),
		payments: make(map[string]SimulatedPayment),
		rng:      rand.New(rand.NewSource(seed)),
		verifier: security.NewVerifier(cfg.KeySecret),
	}
}

func (g *MockGateway) CreateOrder(_ context.Context, req CreateOrderRequest) (*Order, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	order := Order{
		ID:          "order_mock_" + g.hexID(),
		AmountPaise: req.AmountPaise,
		Currency:    currency,
		Receipt:     req.Receipt,
		Status:      "created",
	}
	g.orders[order.ID] = order
	return &order, nil
}

func (g *MockGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.verifier.VerifyPayment(orderID, paymentID, signature)
}

func (g *MockGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return g.verifier.VerifyWebhook(payload, signature)
}

var mockBanks = []string{"HDFC", "ICICI", "SBIN", "AXIS", "KKBK"}
var mockVPAHandles = []string{"okhdfcbank", "okicici", "oksbi", "ybl", "paytm"}

var baseSuccessRates = map[string]float64{
	"upi":        0.95,
	"card":       0.90,
	"netbanking": 0.85,
	"wallet":     0.92,
}

var mockFailures = map[string][]struct{ code, desc string }{
	"upi": {
		{"BAD_REQUEST_ERROR", "Payment cancelled by user"},
		{"BAD_REQUEST_ERROR", "Invalid UPI PIN"},
		{"GATEWAY_ERROR", "UPI app timed out"},
		{"BAD_REQUEST_ERROR", "Insufficient balance in linked account"},
	},
	"card": {
		{"BAD_REQUEST_ERROR", "Card declined by issuing bank"},
		{"BAD_REQUEST_ERROR", "Card expired or invalid"},
		{"GATEWAY_ERROR", "3D Secure authentication failed"},
	},
	"netbanking": {
		{"GATEWAY_ERROR", "Bank server unavailable"},
		{"BAD_REQUEST_ERROR", "Netbanking session expired"},
	},
	"wallet": {
		{"BAD_REQUEST_ERROR", "Insufficient wallet balance"},
		{"GATEWAY_ERROR", "Wallet provider unavailable"},
	},
}

// SimulatePayment resolves a mock order to captured or failed. Success rates
// drop for larger amounts, mirroring real-world decline behavior.
func (g *MockGateway) SimulatePayment(orderID, method string) (*SimulatedPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	mo, ok := g.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("mock gateway: unknown order %q", orderID)
	}
	if mo.Status != "created" {
		return nil, fmt.Errorf("mock gateway: order %q already %s", orderID, mo.Status)
	}

	rate, ok := baseSuccessRates[method]
	if !ok {
		rate = 0.90
	}
	switch {
	case mo.AmountPaise > 10_000_00:
		rate *= 0.8
	case mo.AmountPaise > 5_000_00:
		rate *= 0.9
	}

	result := SimulatedPayment{
		OrderID:     orderID,
		Method:      method,
		AmountPaise: mo.AmountPaise,
	}

	if g.rng.Float64() < rate {
		result.PaymentID = "pay_mock_" + g.hexID()
		result.Status = MockCaptured
		// 2% processing fee plus 18% GST on the fee.
		result.FeePaise = mo.AmountPaise * 2 / 100
		result.TaxPaise = result.FeePaise * 18 / 100
		result.Signature = g.verifier.SignPayment(orderID, result.PaymentID)
		switch method {
		case "upi":
			result.VPA = fmt.Sprintf("user%03d@%s", g.rng.Intn(1000), mockVPAHandles[g.rng.Intn(len(mockVPAHandles))])
		case "card", "netbanking":
			result.Bank = mockBanks[g.rng.Intn(len(mockBanks))]
		}
		mo.Status = "paid"
		g.payments[result.PaymentID] = result
	} else {
		result.Status = MockFailed
		failures := mockFailures[method]
		if len(failures) == 0 {
			failures = mockFailures["card"]
		}
		f := failures[g.rng.Intn(len(failures))]
		result.ErrorCode = f.code
		result.ErrorDescription = f.desc
		mo.Status = "failed"
	}
	g.orders[orderID] = mo
	log.Printf("[MOCK-GW] simulate order=%s method=%s status=%s", orderID, method, result.Status)
	return &result, nil
}

// Payment returns a previously simulated captured payment.
func (g *MockGateway) Payment(paymentID string) (SimulatedPayment, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.payments[paymentID]
	return p, ok
}

func (g *MockGateway) hexID() string {
	b := make([]byte, 6)
	g.rng.Read(b)
	return hex.EncodeToString(b)
}
