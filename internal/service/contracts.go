package service

import (
	"time"

	"dayliz/internal/domain"
	"dayliz/internal/models"
)

// Storage contracts the services depend on. The gorm repositories satisfy
// them in production; tests plug in fakes.

type OrderStore interface {
	Create(order *models.Order) error
	FindForUser(orderID string, userID uint) (*models.Order, error)
	SetProcessing(orderID string, from domain.PaymentStatus, gatewayOrderID string, upiApp domain.UPIApp, timeoutAt time.Time) error
	CompletePayment(orderID, paymentID string) error
	FailPayment(orderID string, to domain.PaymentStatus) error
	IncrementRetry(orderID string, max int) error
	ConfirmCOD(orderID string) error
	CancelUnpaid(orderID string, paymentStatus domain.PaymentStatus) error
	ExpireStalePayments(now time.Time) (int64, error)
	CompletedPaiseSince(userID uint, since time.Time) (int64, error)
}

type GatewayOrderStore interface {
	Create(g *models.GatewayOrder) error
	FindByGatewayOrderID(gatewayOrderID string) (*models.GatewayOrder, error)
	MarkPaid(gatewayOrderID, paymentID string, verifiedAt time.Time) error
	MarkFailed(gatewayOrderID, reason string) error
}

type AddressStore interface {
	FindForUser(id, userID uint) (*models.Address, error)
}

type UserStore interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
}

// AuditSink records payment events; implementations must never fail the
// calling operation.
type AuditSink interface {
	Record(userID *uint, orderID string, gatewayOrderID *string, eventType, severity, ip, userAgent string, payload any)
}

// StatusNotifier pushes payment status changes to connected clients. Nil or
// no-op when the websocket hub is not wired.
type StatusNotifier interface {
	NotifyPaymentStatus(userID uint, event any)
}

type noopNotifier struct{}

func (noopNotifier) NotifyPaymentStatus(uint, any) {}
