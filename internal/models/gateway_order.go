package models

import (
	"time"

	"dayliz/internal/domain"
)

// GatewayOrder is one gateway-side payment attempt, correlated 1:1 with a
// remote order at the payment provider. Retries create a new row; the Order
// keeps only the latest gateway_order_id. Never deleted.
type GatewayOrder struct {
	ID             uint                      `gorm:"primaryKey" json:"id"`
	GatewayOrderID string                    `gorm:"size:64;uniqueIndex;not null" json:"gateway_order_id"`
	OrderID        string                    `gorm:"size:36;not null;index" json:"order_id"`
	UserID         uint                      `gorm:"not null;index" json:"user_id"`
	AmountPaise    int64                     `gorm:"not null" json:"amount_paise"`
	Currency       string                    `gorm:"size:3;default:'INR'" json:"currency"`
	Status         domain.GatewayOrderStatus `gorm:"size:10;not null;index" json:"status"`
	UPIApp         domain.UPIApp             `gorm:"size:20" json:"upi_app,omitempty"`
	PaymentID      *string                   `gorm:"size:64" json:"payment_id"`
	FailureReason  string                    `gorm:"size:255" json:"failure_reason,omitempty"`
	TimeoutAt      time.Time                 `json:"timeout_at"`
	IP             string                    `gorm:"size:45" json:"-"`
	UserAgent      string                    `gorm:"size:512" json:"-"`
	VerifiedAt     *time.Time                `json:"verified_at"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

func (GatewayOrder) TableName() string {
	return "gateway_orders"
}
