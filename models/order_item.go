package models

import "time"

// OrderItem is an immutable snapshot of what was ordered: name, unit price
// and add-ons are copied from the catalog at order time so later catalog
// edits never alter historical orders. UnitPrice includes chosen add-ons.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Order     Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID uint      `gorm:"not null" json:"product_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Addons    string    `gorm:"type:text" json:"addons"` // JSON array of add-on names
	Allergens string    `gorm:"type:text" json:"allergens"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
