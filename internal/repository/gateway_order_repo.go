package repository

import (
	"errors"
	"time"

	"dayliz/internal/domain"
	"dayliz/internal/models"

	"gorm.io/gorm"
)

type GatewayOrderRepo struct {
	db *gorm.DB
}

func NewGatewayOrderRepo(db *gorm.DB) *GatewayOrderRepo {
	return &GatewayOrderRepo{db: db}
}

func (r *GatewayOrderRepo) Create(g *models.GatewayOrder) error {
	return r.db.Create(g).Error
}

func (r *GatewayOrderRepo) FindByGatewayOrderID(gatewayOrderID string) (*models.GatewayOrder, error) {
	var g models.GatewayOrder
	if err := r.db.Where("gateway_order_id = ?", gatewayOrderID).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// MarkPaid settles the attempt exactly once: the conditional update only
// matches while the attempt is still in created, so a duplicate verification
// (webhook racing the client callback) reports ErrStateConflict instead of
// double-applying.
func (r *GatewayOrderRepo) MarkPaid(gatewayOrderID, paymentID string, verifiedAt time.Time) error {
	res := r.db.Model(&models.GatewayOrder{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, domain.GatewayCreated).
		Updates(map[string]any{
			"status":      domain.GatewayPaid,
			"payment_id":  paymentID,
			"verified_at": verifiedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// MarkFailed closes the attempt with a reason. Same CAS discipline as MarkPaid.
func (r *GatewayOrderRepo) MarkFailed(gatewayOrderID, reason string) error {
	res := r.db.Model(&models.GatewayOrder{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, domain.GatewayCreated).
		Updates(map[string]any{
			"status":         domain.GatewayFailed,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}
