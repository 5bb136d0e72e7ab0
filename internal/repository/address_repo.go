package repository

import (
	"errors"

	"dayliz/internal/domain"
	"dayliz/internal/models"

	"gorm.io/gorm"
)

type AddressRepo struct {
	db *gorm.DB
}

func NewAddressRepo(db *gorm.DB) *AddressRepo {
	return &AddressRepo{db: db}
}

func (r *AddressRepo) Create(addr *models.Address) error {
	return r.db.Create(addr).Error
}

// FindForUser returns the address only if it belongs to the user.
func (r *AddressRepo) FindForUser(id, userID uint) (*models.Address, error) {
	var addr models.Address
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &addr, nil
}

func (r *AddressRepo) ListByUser(userID uint) ([]models.Address, error) {
	var addrs []models.Address
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&addrs).Error
	return addrs, err
}
