package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

var pincodeRe = regexp.MustCompile(`^\d{6}$`)

type Address struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Street    string         `gorm:"size:255" json:"street"`
	City      string         `gorm:"size:100" json:"city"`
	State     string         `gorm:"size:100" json:"state"`
	Pincode   string         `gorm:"size:6" json:"pincode"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

// ValidIndian reports whether the address is fully specified in Indian
// format: street, city, state and a 6-digit pincode.
func (a *Address) ValidIndian() bool {
	if a == nil {
		return false
	}
	for _, f := range []string{a.Street, a.City, a.State, a.Pincode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return pincodeRe.MatchString(a.Pincode)
}

// ValidPincode reports whether s is a well-formed Indian pincode.
func ValidPincode(s string) bool {
	return pincodeRe.MatchString(s)
}
