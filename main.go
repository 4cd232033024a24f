package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/database"
	"github.com/oakhurst-kitchen/ordering-backend/middlewares"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/router"
	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	settings := config.Load()
	if settings.JWTSecret == "" {
		utils.ErrorLogger.Fatal("JWT_SECRET must be set")
	}
	utils.InitJWT(settings.JWTSecret)

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	if err := database.SeedCatalog(db, services.StaticProducts()); err != nil {
		utils.ErrorLogger.Printf("catalog seed failed: %v", err)
	}
	if err := database.SeedAdmin(db, os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD")); err != nil {
		utils.ErrorLogger.Printf("admin seed failed: %v", err)
	}

	gateway := services.NewGatewayService(settings)
	promos := services.NewPromoService(db)
	notifier := services.NewRecordingNotifier(db)
	orders := services.NewOrderService(db, settings, gateway, promos, notifier)
	catalog := services.NewCatalogProvider(db, settings)
	auth := services.SelectAuthenticator(db, settings)

	r := router.SetupRouter(router.Deps{
		DB:       db,
		Settings: settings,
		Catalog:  catalog,
		Gateway:  gateway,
		Promos:   promos,
		Orders:   orders,
		Auth:     auth,
	})

	// 50 requests/second per IP across the public surface
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.AdminUser{},
		&models.Product{},
		&models.Variant{},
		&models.Addon{},
		&models.PromoCode{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Notification{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
