package repository

import (
	"encoding/json"
	"log"

	"dayliz/internal/models"

	"gorm.io/gorm"
)

// AuditRepo writes the append-only payment event trail. There is no update
// or delete path on purpose.
type AuditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Record marshals the payload and writes the entry, logging instead of
// failing the caller: an audit write must never abort a payment operation.
func (r *AuditRepo) Record(userID *uint, orderID string, gatewayOrderID *string, eventType, severity, ip, userAgent string, payload any) {
	body := ""
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			body = string(b)
		}
	}
	entry := &models.AuditLog{
		UserID:         userID,
		OrderID:        orderID,
		GatewayOrderID: gatewayOrderID,
		EventType:      eventType,
		Payload:        body,
		Severity:       severity,
		IP:             ip,
		UserAgent:      userAgent,
	}
	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("[AUDIT] write failed event=%s order=%s: %v", eventType, orderID, err)
	}
}
