package database

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// SeedCatalog loads the products into an empty catalog so a fresh install
// has something to sell. Existing data is never touched.
func SeedCatalog(db *gorm.DB, products []models.Product) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to inspect catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range products {
		// Let the database assign ids; the fixture ids only matter for the
		// static menu.
		p := products[i]
		p.ID = 0
		for j := range p.Variants {
			p.Variants[j].ID = 0
			p.Variants[j].ProductID = 0
		}
		for j := range p.Addons {
			p.Addons[j].ID = 0
			p.Addons[j].ProductID = 0
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	utils.InfoLogger.Printf("seeded catalog with %d products", len(products))
	return nil
}

// SeedAdmin creates the first super_admin account when none exist, ending
// the env-password migration period.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.AdminUser{
		Email:        email,
		PasswordHash: string(hashed),
		Role:         models.RoleSuperAdmin,
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	utils.InfoLogger.Printf("seeded super_admin account %s", email)
	return nil
}

// ResetOrders removes all order data: orders, items, payments and
// notification history. This is the only path that deletes orders.
func ResetOrders(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Notification{},
			&models.Payment{},
			&models.OrderItem{},
			&models.Order{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
		}
		return nil
	})
}
