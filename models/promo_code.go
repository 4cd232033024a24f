package models

import "time"

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PromoCode is a discount rule. Codes are stored uppercase. "No expiration"
// is a far-future EndsAt rather than a nullable column; UsageLimit 0 means
// unlimited. For percentage codes DiscountValue is 0-100 and MaxDiscount
// (pence) caps the computed discount; for fixed codes DiscountValue is the
// discount in pence.
type PromoCode struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DiscountType   string    `gorm:"type:varchar(16);not null" json:"discount_type"`
	DiscountValue  int64     `gorm:"not null" json:"discount_value"`
	MinOrderAmount int64     `gorm:"not null;default:0" json:"min_order_amount"`
	MaxDiscount    int64     `gorm:"not null;default:0" json:"max_discount"`
	StartsAt       time.Time `gorm:"not null" json:"starts_at"`
	EndsAt         time.Time `gorm:"not null" json:"ends_at"`
	UsageLimit     int       `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount      int       `gorm:"not null;default:0" json:"used_count"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
