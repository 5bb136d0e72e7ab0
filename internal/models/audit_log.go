package models

import "time"

// AuditLog is the append-only payment event trail (RBI compliance). Rows are
// never updated or deleted; every state-affecting action writes one.
type AuditLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         *uint     `gorm:"index" json:"user_id"`
	OrderID        string    `gorm:"size:36;index" json:"order_id"`
	GatewayOrderID *string   `gorm:"size:64;index" json:"gateway_order_id"`
	EventType      string    `gorm:"size:100;not null;index" json:"event_type"`
	Payload        string    `gorm:"type:text" json:"payload"` // JSON
	Severity       string    `gorm:"size:10;not null;default:'info'" json:"severity"`
	IP             string    `gorm:"size:45" json:"ip"`
	UserAgent      string    `gorm:"size:512" json:"user_agent"`
	CreatedAt      time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
