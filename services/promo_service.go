package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// PromoService validates promo codes and redeems them. Validation never
// mutates the usage counter; RedeemTx increments it exactly once as part
// of the capture transaction.
type PromoService struct {
	db *gorm.DB
}

func NewPromoService(db *gorm.DB) *PromoService {
	return &PromoService{db: db}
}

// PromoResult is the outcome of a validation call.
type PromoResult struct {
	Valid    bool   `json:"valid"`
	Message  string `json:"message"`
	Discount int64  `json:"discount"`
	Code     string `json:"code,omitempty"`
}

// Validate checks a code against the current subtotal. Checks short-circuit:
// the first failing rule decides the message.
func (ps *PromoService) Validate(code string, subtotal int64) PromoResult {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var promo models.PromoCode
	if err := ps.db.Where("code = ?", normalized).First(&promo).Error; err != nil {
		return PromoResult{Message: "Promo code not found"}
	}

	if !promo.Active {
		return PromoResult{Message: "This promo code is no longer active"}
	}

	now := time.Now().UTC()
	if now.Before(promo.StartsAt) {
		return PromoResult{Message: "This promo code is not valid yet"}
	}
	if now.After(promo.EndsAt) {
		return PromoResult{Message: "This promo code has expired"}
	}

	if subtotal < promo.MinOrderAmount {
		return PromoResult{Message: fmt.Sprintf("Minimum order of %s required for this code",
			utils.FormatPence(promo.MinOrderAmount))}
	}

	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return PromoResult{Message: "This promo code has reached its usage limit"}
	}

	discount := Discount(&promo, subtotal)
	return PromoResult{
		Valid:    true,
		Message:  fmt.Sprintf("Code applied: %s off", utils.FormatPence(discount)),
		Discount: discount,
		Code:     promo.Code,
	}
}

// Discount computes the discount a promo grants on a subtotal. Percentage
// discounts round half-up and are clamped to MaxDiscount when set; fixed
// discounts apply verbatim. Never negative, never more than the subtotal.
func Discount(p *models.PromoCode, subtotal int64) int64 {
	var d int64
	switch p.DiscountType {
	case models.DiscountTypePercentage:
		d = RoundHalfUp(float64(subtotal) * float64(p.DiscountValue) / 100)
		if p.MaxDiscount > 0 && d > p.MaxDiscount {
			d = p.MaxDiscount
		}
	case models.DiscountTypeFixed:
		d = p.DiscountValue
	}
	if d < 0 {
		d = 0
	}
	if d > subtotal {
		d = subtotal
	}
	return d
}

// ErrPromoExhausted is returned by RedeemTx when the usage limit has been
// reached between validation and redemption.
var ErrPromoExhausted = errors.New("promo code usage limit reached")

// RedeemTx increments used_count within the caller's transaction. The
// WHERE clause makes the increment a compare-and-swap so two concurrent
// captures cannot exceed the limit.
func (ps *PromoService) RedeemTx(tx *gorm.DB, code string) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	res := tx.Model(&models.PromoCode{}).
		Where("code = ? AND (usage_limit = 0 OR used_count < usage_limit)", normalized).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to redeem promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPromoExhausted
	}
	return nil
}
