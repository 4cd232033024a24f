package services

import (
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// Notifier dispatches customer notifications. Dispatch is fire-and-forget:
// the returned record states what happened, but a failed send never fails
// the operation that triggered it.
type Notifier interface {
	Send(order *models.Order, kind string) models.Notification
}

// RecordingNotifier persists every dispatch outcome as a Notification row.
// The actual email delivery is handled by an external relay; here the row
// and the log line are the observable result.
type RecordingNotifier struct {
	db *gorm.DB
}

func NewRecordingNotifier(db *gorm.DB) *RecordingNotifier {
	return &RecordingNotifier{db: db}
}

func (n *RecordingNotifier) Send(order *models.Order, kind string) models.Notification {
	notif := models.Notification{
		OrderID:   order.ID,
		Channel:   "email",
		Kind:      kind,
		Recipient: order.CustomerEmail,
		Status:    models.NotificationStatusSent,
	}

	if order.CustomerEmail == "" {
		notif.Status = models.NotificationStatusFailed
		notif.Detail = "no recipient email on order"
	}

	if err := n.db.Create(&notif).Error; err != nil {
		// Still best-effort: the order transition already happened.
		utils.ErrorLogger.Printf("failed to record %s notification for order %d: %v", kind, order.ID, err)
		notif.Status = models.NotificationStatusFailed
		notif.Detail = err.Error()
		return notif
	}

	utils.InfoLogger.Printf("order %d: %s notification to %q recorded as %s",
		order.ID, kind, order.CustomerEmail, notif.Status)
	return notif
}
