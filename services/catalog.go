package services

import (
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// MenuCategory groups products for the storefront menu.
type MenuCategory struct {
	Name     string           `json:"name"`
	Products []models.Product `json:"products"`
}

// CatalogProvider serves the storefront menu. Selected once at startup:
// either the database catalog or the static fixture, never a per-request
// fallback decision buried in the read path.
type CatalogProvider interface {
	Menu() ([]MenuCategory, error)
}

// NewCatalogProvider picks the provider from settings.
func NewCatalogProvider(db *gorm.DB, s config.Settings) CatalogProvider {
	if s.MenuSource == "static" {
		return &StaticCatalog{}
	}
	return &GormCatalog{db: db, fallback: &StaticCatalog{}}
}

// GormCatalog reads the menu from the database. Read failures degrade to
// the static fixture so the storefront stays browsable when the store is
// down; the error is logged, not surfaced.
type GormCatalog struct {
	db       *gorm.DB
	fallback *StaticCatalog
}

func (gc *GormCatalog) Menu() ([]MenuCategory, error) {
	var products []models.Product
	err := gc.db.
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Preload("Addons", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Order("category asc, id asc").
		Find(&products).Error
	if err != nil {
		utils.ErrorLogger.Printf("catalog read failed, serving static menu: %v", err)
		return gc.fallback.Menu()
	}
	return groupByCategory(products), nil
}

func groupByCategory(products []models.Product) []MenuCategory {
	var categories []MenuCategory
	index := make(map[string]int)
	for _, p := range products {
		if len(p.Variants) == 0 {
			continue // not orderable without a variant
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(categories)
			index[p.Category] = i
			categories = append(categories, MenuCategory{Name: p.Category})
		}
		categories[i].Products = append(categories[i].Products, p)
	}
	return categories
}

// StaticCatalog is the fixture menu used when the database is disabled or
// unreachable. Prices in pence.
type StaticCatalog struct{}

func (sc *StaticCatalog) Menu() ([]MenuCategory, error) {
	return groupByCategory(StaticProducts()), nil
}

// StaticProducts returns the fixture catalog. Also used to seed an empty
// database.
func StaticProducts() []models.Product {
	return []models.Product{
		{
			ID: 1, Name: "Crispy Squid", Slug: "crispy-squid", Category: "Starters",
			Description: "Lightly battered squid with garlic aioli", Allergens: "molluscs, gluten, egg",
			Variants: []models.Variant{{ID: 1, ProductID: 1, Name: "Regular", Price: 695}},
		},
		{
			ID: 2, Name: "Halloumi Fries", Slug: "halloumi-fries", Category: "Starters", Popular: true,
			Description: "With sweet chilli jam", Allergens: "milk",
			Variants: []models.Variant{{ID: 2, ProductID: 2, Name: "Regular", Price: 595}},
		},
		{
			ID: 3, Name: "Wood-fired Margherita", Slug: "margherita", Category: "Mains", Popular: true,
			Description: "San Marzano tomato, fior di latte, basil", Allergens: "gluten, milk",
			Variants: []models.Variant{
				{ID: 3, ProductID: 3, Name: "10 inch", Price: 895},
				{ID: 4, ProductID: 3, Name: "12 inch", Price: 1095},
			},
			Addons: []models.Addon{
				{ID: 1, ProductID: 3, Name: "Extra mozzarella", Price: 150},
				{ID: 2, ProductID: 3, Name: "Nduja", Price: 200},
			},
		},
		{
			ID: 4, Name: "Chargrilled Chicken Burger", Slug: "chicken-burger", Category: "Mains",
			Description: "Brioche bun, slaw, house mayo", Allergens: "gluten, egg, milk",
			Variants: []models.Variant{{ID: 5, ProductID: 4, Name: "Regular", Price: 1150}},
			Addons:   []models.Addon{{ID: 3, ProductID: 4, Name: "Smoked bacon", Price: 175}},
		},
		{
			ID: 5, Name: "Sticky Toffee Pudding", Slug: "sticky-toffee", Category: "Desserts",
			Description: "Butterscotch sauce, vanilla ice cream", Allergens: "gluten, milk, egg",
			Variants: []models.Variant{{ID: 6, ProductID: 5, Name: "Regular", Price: 550}},
		},
	}
}
