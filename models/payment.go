package models

import "time"

// Payment statuses. authorized is the only non-terminal state.
const (
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusVoided     = "voided"
	PaymentStatusFailed     = "failed"
)

// Payment is one payment attempt for an order (1:1 in practice). It is
// created after a successful gateway authorization and updated by capture
// or void calls, or by the gateway's webhook.
type Payment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	OrderID    uint       `gorm:"not null;uniqueIndex" json:"order_id"`
	Gateway    string     `gorm:"type:varchar(32);not null" json:"gateway"`
	Reference  string     `gorm:"type:varchar(128);index;not null" json:"reference"` // gateway transaction id
	Status     string     `gorm:"type:varchar(16);not null;default:'authorized'" json:"status"`
	Amount     int64      `gorm:"not null" json:"amount"`
	Currency   string     `gorm:"type:varchar(3);not null" json:"currency"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}
