package models

import (
	"time"

	"dayliz/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is the internal order record. Payment state transitions only through
// the orchestrator / webhook processor; amounts are stored in paise.
type Order struct {
	ID                string               `gorm:"primaryKey;size:36" json:"id"`
	UserID            uint                 `gorm:"not null;index" json:"user_id"`
	TotalPaise        int64                `gorm:"not null" json:"total_paise"`
	Currency          string               `gorm:"size:3;default:'INR'" json:"currency"`
	Status            domain.OrderStatus   `gorm:"size:20;not null;index" json:"status"`
	PaymentMethod     domain.PaymentMethod `gorm:"size:10;not null" json:"payment_method"`
	PaymentStatus     domain.PaymentStatus `gorm:"size:20;not null;index" json:"payment_status"`
	PaymentRetryCount int                  `gorm:"not null;default:0" json:"payment_retry_count"`
	PaymentTimeoutAt  *time.Time           `json:"payment_timeout_at"`
	GatewayOrderID    *string              `gorm:"size:64;index" json:"gateway_order_id"`
	GatewayPaymentID  *string              `gorm:"size:64" json:"gateway_payment_id"`
	ShippingAddressID *uint                `json:"shipping_address_id"`
	UPIApp            domain.UPIApp        `gorm:"size:20" json:"upi_app,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`

	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// OrderItem snapshots a product line at purchase time.
type OrderItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OrderID    string `gorm:"size:36;not null;index" json:"order_id"`
	ProductID  string `gorm:"size:36;not null" json:"product_id"`
	Name       string `gorm:"size:255;not null" json:"name"`
	ImageURL   string `gorm:"size:512" json:"image_url"`
	Quantity   int    `gorm:"not null" json:"quantity"`
	PricePaise int64  `gorm:"not null" json:"price_paise"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
