package router

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/controllers"
	"github.com/oakhurst-kitchen/ordering-backend/middlewares"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/services"
)

// Deps carries everything the routes need, constructed once in main.
type Deps struct {
	DB       *gorm.DB
	Settings config.Settings
	Catalog  services.CatalogProvider
	Gateway  *services.GatewayService
	Promos   *services.PromoService
	Orders   *services.OrderService
	Auth     services.Authenticator
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())

	menuCtrl := controllers.NewMenuController(d.Catalog)
	storefrontCtrl := controllers.NewStorefrontController(d.Settings)
	promoCtrl := controllers.NewPromoController(d.DB, d.Promos)
	orderCtrl := controllers.NewOrderController(d.DB, d.Orders)
	paymentCtrl := controllers.NewPaymentController(d.Gateway, d.Orders)
	adminCtrl := controllers.NewAdminController(d.DB, d.Auth, d.Orders)
	productCtrl := controllers.NewProductController(d.DB)
	adminUserCtrl := controllers.NewAdminUserController(d.DB)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/menu", menuCtrl.GetMenu)
	r.GET("/delivery/check", storefrontCtrl.CheckPostcode)
	r.GET("/slots", storefrontCtrl.GetSlots)
	r.POST("/promo/validate", promoCtrl.ValidatePromo)

	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	// Gateway callback, secured by HMAC signature rather than a session
	r.POST("/payments/webhook", paymentCtrl.HandleWebhook)

	login := r.Group("/")
	login.Use(middlewares.NewStrictRateLimiter())
	{
		login.POST("/admin/login", adminCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/password", adminCtrl.ChangePassword)

	// ORDERS (staff and up)
	auth.GET("/orders", adminCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", adminCtrl.GetOrder)
	auth.POST("/orders/:order_id/accept", adminCtrl.AcceptOrder)
	auth.POST("/orders/:order_id/reject", adminCtrl.RejectOrder)

	// CATALOG (admin and up)
	catalog := auth.Group("/")
	catalog.Use(middlewares.RequireRole(models.RoleAdmin))
	{
		catalog.POST("/products", productCtrl.CreateProduct)
		catalog.GET("/products", productCtrl.GetAllProducts)
		catalog.GET("/products/:product_id", productCtrl.GetProductByID)
		catalog.PATCH("/products/:product_id", productCtrl.UpdateProduct)
		catalog.DELETE("/products/:product_id", productCtrl.DeleteProduct)

		catalog.POST("/promos", promoCtrl.CreatePromo)
		catalog.GET("/promos", promoCtrl.GetAllPromos)
		catalog.PATCH("/promos/:promo_id", promoCtrl.UpdatePromo)
		catalog.DELETE("/promos/:promo_id", promoCtrl.DeletePromo)
	}

	// ACCOUNTS + housekeeping (super_admin only)
	super := auth.Group("/")
	super.Use(middlewares.RequireRole(models.RoleSuperAdmin))
	{
		super.POST("/users", adminUserCtrl.CreateAdminUser)
		super.GET("/users", adminUserCtrl.GetAllAdminUsers)
		super.PATCH("/users/:admin_id", adminUserCtrl.UpdateAdminUser)
		super.DELETE("/users/:admin_id", adminUserCtrl.DeleteAdminUser)

		super.POST("/orders/reset", adminCtrl.ResetOrders)
	}

	return r
}
