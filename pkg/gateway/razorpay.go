package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dayliz/config"
	"dayliz/internal/security"
)

// RazorpayClient talks to the live Razorpay Orders API using basic auth.
type RazorpayClient struct {
	cfg      *config.GatewayConfig
	http     *http.Client
	verifier *security.Verifier
	webhook  *security.Verifier
}

func NewRazorpayClient(cfg *config.GatewayConfig) *RazorpayClient {
	webhookSecret := cfg.WebhookSecret
	if webhookSecret == "" {
		webhookSecret = cfg.KeySecret
	}
	return &RazorpayClient{
		cfg:      cfg,
		http:     &http.Client{Timeout: 15 * time.Second},
		verifier: security.NewVerifier(cfg.KeySecret),
		webhook:  security.NewVerifier(webhookSecret),
	}
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.AmountPaise,
		Currency: currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr razorpayError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay create order: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("razorpay create order: status %d", resp.StatusCode)
	}

	var out razorpayOrderResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("razorpay create order: decode response: %w", err)
	}
	return &Order{
		ID:          out.ID,
		AmountPaise: out.Amount,
		Currency:    out.Currency,
		Receipt:     out.Receipt,
		Status:      out.Status,
	}, nil
}

func (c *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return c.verifier.VerifyPayment(orderID, paymentID, signature)
}

func (c *RazorpayClient) VerifyWebhookSignature(payload []byte, signature string) bool {
	return c.webhook.VerifyWebhook(payload, signature)
}
