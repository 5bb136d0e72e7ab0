package handler

import (
	"errors"
	"net/http"

	"dayliz/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP. Fraud rejections
// carry the exact reason because the mobile client shows it verbatim.
func respondError(c *gin.Context, err error) {
	var fraudErr *domain.FraudBlockedError
	switch {
	case errors.As(err, &fraudErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": fraudErr.Reason})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment signature"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRetryExhausted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
