package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/database"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// AdminController covers login, the order dashboard and housekeeping.
type AdminController struct {
	DB     *gorm.DB
	Auth   services.Authenticator
	Orders *services.OrderService
}

func NewAdminController(db *gorm.DB, auth services.Authenticator, orders *services.OrderService) *AdminController {
	return &AdminController{DB: db, Auth: auth, Orders: orders}
}

// Login -> session token for the admin surface.
func (ac *AdminController) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"` // email or username
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := ac.Auth.Authenticate(req.Identifier, req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(session.AdminID, session.Subject, session.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("admin login: %s (role=%s)", session.Subject, session.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"role":  session.Role,
	})
}

// ChangePassword -> update the logged-in operator's password.
func (ac *AdminController) ChangePassword(c *gin.Context) {
	adminID, _ := c.Get("admin_id")
	id, ok := adminID.(uint)
	if !ok || id == 0 {
		utils.RespondError(c, http.StatusForbidden, errors.New("env-password sessions cannot change a password; create an admin account"))
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var admin models.AdminUser
	if err := ac.DB.First(&admin, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("admin account not found"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrInvalidCredentials)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ac.DB.Model(&admin).Update("password_hash", string(hashed)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password changed", nil)
}

// GetAllOrders -> order list, optionally filtered by status.
func (ac *AdminController) GetAllOrders(c *gin.Context) {
	query := ac.DB.Preload("OrderItems").Preload("Payment").Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders", orders)
}

// GetOrder -> one order with items, payment and notification history.
func (ac *AdminController) GetOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	var order models.Order
	if err := ac.DB.Preload("OrderItems").Preload("Payment").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	var notifications []models.Notification
	ac.DB.Where("order_id = ?", order.ID).Order("created_at asc").Find(&notifications)

	utils.RespondJSON(c, http.StatusOK, "Order detail", gin.H{
		"order":         order,
		"notifications": notifications,
	})
}

// AcceptOrder -> payment_authorized => captured.
func (ac *AdminController) AcceptOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	order, err := ac.Orders.Accept(c.Request.Context(), uint(id))
	if err != nil {
		ac.respondTransitionError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order accepted", order)
}

// RejectOrder -> payment_authorized => rejected, voiding best-effort.
func (ac *AdminController) RejectOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	order, err := ac.Orders.Reject(c.Request.Context(), uint(id))
	if err != nil {
		ac.respondTransitionError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order rejected", order)
}

func (ac *AdminController) respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrAlreadyAccepted), errors.Is(err, services.ErrOrderRejected):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusBadGateway, err)
	}
}

// ResetOrders -> the only deletion path for orders. super_admin only.
func (ac *AdminController) ResetOrders(c *gin.Context) {
	if err := database.ResetOrders(ac.DB); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.Println("order data reset by admin")
	utils.RespondJSON(c, http.StatusOK, "All order data removed", nil)
}
