package models

import "time"

// Product is a catalog entry. A product needs at least one variant to be
// orderable. Managed exclusively through the admin surface.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(128);not null;index" json:"category"`
	Popular     bool      `gorm:"not null;default:false" json:"popular"`
	Allergens   string    `gorm:"type:text" json:"allergens"`
	Variants    []Variant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	Addons      []Addon   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"addons"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// Variant is a purchasable size/preparation of a product, price in pence.
type Variant struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(128);not null" json:"name"`
	Price     int64  `gorm:"not null" json:"price"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

// Addon is an optional extra for a product, price in pence.
type Addon struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(128);not null" json:"name"`
	Price     int64  `gorm:"not null" json:"price"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}
