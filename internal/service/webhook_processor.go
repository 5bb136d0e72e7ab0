package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"dayliz/internal/domain"
	"dayliz/pkg/gateway"
)

// WebhookProcessor applies gateway webhook events. Signature failures are
// the only rejection; everything after a valid signature is acknowledged so
// the gateway stops redelivering, with unknown orders and duplicate events
// logged and audited rather than erroring.
type WebhookProcessor struct {
	gateway      gateway.Client
	orchestrator *PaymentOrchestrator
	audit        AuditSink
}

func NewWebhookProcessor(gw gateway.Client, orchestrator *PaymentOrchestrator, audit AuditSink) *WebhookProcessor {
	return &WebhookProcessor{gateway: gw, orchestrator: orchestrator, audit: audit}
}

// webhookEnvelope is the Razorpay event shape. Only the payment entity's id
// and order_id are needed; everything else is passed through to the audit
// trail.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				ErrorCode        string `json:"error_code"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Process handles one webhook delivery. The raw body must be the exact bytes
// received, since the signature covers them.
func (p *WebhookProcessor) Process(ctx context.Context, body []byte, signature, ip, userAgent string) error {
	if !p.gateway.VerifyWebhookSignature(body, signature) {
		p.audit.Record(nil, "", nil, "webhook_signature_failed", domain.SeverityWarning, ip, userAgent, nil)
		return domain.ErrUnauthorized
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// the signature checked out, so this came from the gateway;
		// rejecting would only trigger redelivery of the same bytes
		log.Printf("[WEBHOOK] malformed body: %v", err)
		p.audit.Record(nil, "", nil, "webhook_malformed", domain.SeverityWarning, ip, userAgent, map[string]string{
			"error": err.Error(),
		})
		return nil
	}

	entity := env.Payload.Payment.Entity
	switch env.Event {
	case domain.EventPaymentCaptured:
		return p.applyCaptured(ctx, entity.OrderID, entity.ID, ip, userAgent)
	case domain.EventPaymentFailed:
		return p.applyFailed(ctx, entity.OrderID, entity.ErrorDescription, ip, userAgent)
	default:
		log.Printf("[WEBHOOK] ignoring event %q", env.Event)
		return nil
	}
}

func (p *WebhookProcessor) applyCaptured(ctx context.Context, gatewayOrderID, paymentID, ip, userAgent string) error {
	if gatewayOrderID == "" || paymentID == "" {
		log.Printf("[WEBHOOK] captured event missing payment identifiers")
		p.audit.Record(nil, "", nil, "webhook_malformed", domain.SeverityWarning, ip, userAgent, nil)
		return nil
	}
	_, err := p.orchestrator.ApplyVerifiedPayment(ctx, gatewayOrderID, paymentID, "webhook", ip, userAgent)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		// an order we never created: ack so the gateway stops retrying, but
		// keep a trail for reconciliation
		log.Printf("[WEBHOOK] captured event for unknown order %q payment %q", gatewayOrderID, paymentID)
		p.audit.Record(nil, "", &gatewayOrderID, "webhook_unknown_order", domain.SeverityWarning, ip, userAgent, map[string]string{
			"payment_id": paymentID,
		})
		return nil
	case errors.Is(err, domain.ErrStateConflict):
		// attempt already settled; redelivery or a lost race, both fine
		return nil
	default:
		return err
	}
}

func (p *WebhookProcessor) applyFailed(ctx context.Context, gatewayOrderID, reason, ip, userAgent string) error {
	if gatewayOrderID == "" {
		log.Printf("[WEBHOOK] failed event missing order identifier")
		p.audit.Record(nil, "", nil, "webhook_malformed", domain.SeverityWarning, ip, userAgent, nil)
		return nil
	}
	if reason == "" {
		reason = "payment failed at gateway"
	}
	err := p.orchestrator.FailAttempt(ctx, gatewayOrderID, reason, ip, userAgent)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("[WEBHOOK] failed event for unknown order %q", gatewayOrderID)
		p.audit.Record(nil, "", &gatewayOrderID, "webhook_unknown_order", domain.SeverityWarning, ip, userAgent, map[string]string{
			"reason": reason,
		})
		return nil
	}
	return err
}
