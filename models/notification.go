package models

import "time"

const (
	NotificationKindConfirmation = "confirmation"
	NotificationKindRejection    = "rejection"

	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification records the outcome of a best-effort customer notification.
// Dispatch never fails the operation that triggered it; the row is the
// observable result.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Channel   string    `gorm:"type:varchar(16);not null;default:'email'" json:"channel"`
	Kind      string    `gorm:"type:varchar(16);not null" json:"kind"`
	Recipient string    `gorm:"type:varchar(255)" json:"recipient"`
	Status    string    `gorm:"type:varchar(16);not null" json:"status"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
