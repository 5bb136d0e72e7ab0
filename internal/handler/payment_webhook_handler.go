package handler

import (
	"errors"
	"io"
	"net/http"

	"dayliz/internal/domain"
	"dayliz/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentWebhookHandler struct {
	processor *service.WebhookProcessor
}

func NewPaymentWebhookHandler(processor *service.WebhookProcessor) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{processor: processor}
}

// HandleWebhook receives gateway events. The body must stay raw because the
// signature covers the exact bytes. An invalid signature is the only 4xx;
// every verified event is answered 200 so the gateway does not redeliver.
func (h *PaymentWebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}
	signature := c.GetHeader("X-Razorpay-Signature")

	err = h.processor.Process(c.Request.Context(), body, signature, c.ClientIP(), c.Request.UserAgent())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
	}
}
