package models

import "time"

// Order statuses. An order is created in payment_authorized once the
// gateway has reserved the funds; completed is reserved for a future
// "handed to customer" step and no transition currently produces it.
const (
	OrderStatusPaymentAuthorized = "payment_authorized"
	OrderStatusCaptured          = "captured"
	OrderStatusRejected          = "rejected"
	OrderStatusCompleted         = "completed"
)

const (
	FulfilmentPickup   = "pickup"
	FulfilmentDelivery = "delivery"
)

// Order is one customer purchase attempt. All monetary fields are pence.
// Total = Subtotal - Discount + DeliveryFee + Tip + ServiceFee.
type Order struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	Status    string `gorm:"type:varchar(32);not null;default:'payment_authorized'" json:"status"`

	Fulfilment    string `gorm:"type:varchar(16);not null" json:"fulfilment"`
	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(32);not null" json:"customer_phone"`
	CustomerEmail string `gorm:"type:varchar(255)" json:"customer_email"`

	// Delivery address, empty for pickup orders
	AddressLine1    string `gorm:"type:varchar(255)" json:"address_line1,omitempty"`
	AddressCity     string `gorm:"type:varchar(128)" json:"address_city,omitempty"`
	AddressPostcode string `gorm:"type:varchar(16)" json:"address_postcode,omitempty"`

	SlotStart *time.Time `json:"slot_start,omitempty"`
	SlotEnd   *time.Time `json:"slot_end,omitempty"`

	Subtotal    int64  `gorm:"not null" json:"subtotal"`
	Discount    int64  `gorm:"not null;default:0" json:"discount"`
	DeliveryFee int64  `gorm:"not null;default:0" json:"delivery_fee"`
	Tip         int64  `gorm:"not null;default:0" json:"tip"`
	ServiceFee  int64  `gorm:"not null;default:0" json:"service_fee"`
	Total       int64  `gorm:"not null" json:"total"`
	Currency    string `gorm:"type:varchar(3);not null" json:"currency"`
	PromoCode   string `gorm:"type:varchar(64)" json:"promo_code,omitempty"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	Payment    *Payment    `gorm:"foreignKey:OrderID" json:"payment,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
