package services

import (
	"math"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/models"
)

// Breakdown is the fee breakdown for an order, all values in pence.
type Breakdown struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Tip         int64 `json:"tip"`
	ServiceFee  int64 `json:"service_fee"`
	Total       int64 `json:"total"`
}

// CalculatePricing computes the fee breakdown for a pre-validated subtotal.
// The delivery fee applies only below the free-delivery threshold; the tip
// is rounded half-up to the nearest penny. ServiceFee is reserved and
// currently always zero.
func CalculatePricing(subtotal int64, fulfilment string, tipPercent float64, s config.Settings) Breakdown {
	var deliveryFee int64
	if fulfilment == models.FulfilmentDelivery && subtotal < s.FreeDeliveryOver {
		deliveryFee = s.DeliveryFee
	}

	tip := RoundHalfUp(float64(subtotal) * tipPercent / 100)

	var serviceFee int64

	return Breakdown{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Tip:         tip,
		ServiceFee:  serviceFee,
		Total:       subtotal + deliveryFee + tip + serviceFee,
	}
}

// ValidTipPercent reports whether p is one of the configured tip options.
func ValidTipPercent(p float64, s config.Settings) bool {
	for _, opt := range s.TipPercents {
		if opt == p {
			return true
		}
	}
	return false
}

// RoundHalfUp rounds to the nearest integer with ties rounding up.
// Inputs are non-negative money amounts.
func RoundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
