package repository

import (
	"context"
	"errors"
	"time"

	"dayliz/internal/domain"
	"dayliz/internal/fraud"
	"dayliz/internal/models"

	"gorm.io/gorm"
)

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *OrderRepo) FindForUser(orderID string, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("ShippingAddress").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// SetProcessing moves the order into payment_processing and attaches the new
// gateway attempt. Conditional on the current status so a concurrent
// transition loses cleanly. The UPI app is written too, since a retry may
// switch it.
func (r *OrderRepo) SetProcessing(orderID string, from domain.PaymentStatus, gatewayOrderID string, upiApp domain.UPIApp, timeoutAt time.Time) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Updates(map[string]any{
			"payment_status":     domain.PaymentProcessing,
			"gateway_order_id":   gatewayOrderID,
			"gateway_payment_id": nil,
			"upi_app":            upiApp,
			"payment_timeout_at": timeoutAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// CompletePayment records the verified payment and flips the order to
// processing. Conditional on payment_processing; returns ErrStateConflict if
// another path already settled the order.
func (r *OrderRepo) CompletePayment(orderID, paymentID string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, domain.PaymentProcessing).
		Updates(map[string]any{
			"payment_status":     domain.PaymentCompleted,
			"status":             domain.OrderProcessing,
			"gateway_payment_id": paymentID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// FailPayment moves a processing payment to failed or timeout.
func (r *OrderRepo) FailPayment(orderID string, to domain.PaymentStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, domain.PaymentProcessing).
		Update("payment_status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// IncrementRetry bumps the retry counter only while it is below max, so the
// cap holds under concurrent retry requests.
func (r *OrderRepo) IncrementRetry(orderID string, max int) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_retry_count < ? AND payment_status IN ?",
			orderID, max, []domain.PaymentStatus{domain.PaymentFailed, domain.PaymentTimeout}).
		Update("payment_retry_count", gorm.Expr("payment_retry_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRetryExhausted
	}
	return nil
}

// CancelUnpaid flips a not-yet-paid order to cancelled. Conditional on the
// payment not having completed, so a settled order can never be cancelled
// through this path.
func (r *OrderRepo) CancelUnpaid(orderID string, paymentStatus domain.PaymentStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status NOT IN ?", orderID,
			[]domain.PaymentStatus{domain.PaymentCompleted, domain.PaymentRefunded}).
		Updates(map[string]any{
			"status":         domain.OrderCancelled,
			"payment_status": paymentStatus,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// ConfirmCOD switches a still-unpaid order to cash on delivery and confirms
// it. Conditional on pending so a paid or processing order cannot be
// converted.
func (r *OrderRepo) ConfirmCOD(orderID string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, domain.PaymentPending).
		Updates(map[string]any{
			"payment_method": domain.MethodCOD,
			"status":         domain.OrderProcessing,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// ExpireStalePayments times out every processing payment whose window has
// passed. Returns the number of orders expired.
func (r *OrderRepo) ExpireStalePayments(now time.Time) (int64, error) {
	res := r.db.Model(&models.Order{}).
		Where("payment_status = ? AND payment_timeout_at IS NOT NULL AND payment_timeout_at < ?",
			domain.PaymentProcessing, now).
		Update("payment_status", domain.PaymentTimeout)
	return res.RowsAffected, res.Error
}

// CompletedPaiseSince sums the user's settled spend since the cutoff, for the
// daily cap check.
func (r *OrderRepo) CompletedPaiseSince(userID uint, since time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND payment_status = ? AND created_at >= ?", userID, domain.PaymentCompleted, since).
		Select("COALESCE(SUM(total_paise), 0)").
		Scan(&total).Error
	return total, err
}

// --- fraud.HistoryProvider ---

func (r *OrderRepo) AverageOrderPaise(ctx context.Context, userID uint) (int64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND payment_status = ?", userID, domain.PaymentCompleted).
		Select("COALESCE(AVG(total_paise), 0)").
		Scan(&avg).Error
	return int64(avg), err
}

func (r *OrderRepo) RecentTransactions(ctx context.Context, userID uint, since time.Time) ([]fraud.TxnSummary, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Select("total_paise", "created_at").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	txns := make([]fraud.TxnSummary, 0, len(rows))
	for _, o := range rows {
		txns = append(txns, fraud.TxnSummary{AmountPaise: o.TotalPaise, CreatedAt: o.CreatedAt})
	}
	return txns, nil
}

func (r *OrderRepo) AccountAgeDays(ctx context.Context, userID uint, now time.Time) (int, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return 0, err
	}
	return user.AccountAgeDays(now), nil
}

func (r *OrderRepo) TotalOrders(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *OrderRepo) RecentFailedPayments(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND payment_status IN ? AND updated_at >= ?",
			userID, []domain.PaymentStatus{domain.PaymentFailed, domain.PaymentTimeout}, since).
		Count(&count).Error
	return count, err
}

func (r *OrderRepo) CODReturnRate(ctx context.Context, userID uint) (float64, error) {
	var total, returned int64
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND payment_method = ?", userID, domain.MethodCOD)
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND payment_method = ? AND status = ?",
			userID, domain.MethodCOD, domain.OrderCancelled).
		Count(&returned).Error
	if err != nil {
		return 0, err
	}
	return float64(returned) / float64(total), nil
}

func (r *OrderRepo) LastTransactionAt(ctx context.Context, userID uint) (*time.Time, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Select("created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order.CreatedAt, nil
}
