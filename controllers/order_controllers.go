package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

// CreateOrder -> checkout submission. Creates the order, authorizes and
// auto-captures the card. Authorization failures surface to the customer
// and leave nothing behind.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Checkout(c.Request.Context(), req)
	if err != nil {
		var ve *services.ValidationError
		var declined *services.CardDeclinedError
		switch {
		case errors.As(err, &ve):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.As(err, &declined):
			utils.RespondError(c, http.StatusPaymentRequired, err)
		default:
			utils.RespondError(c, http.StatusBadGateway, err)
		}
		return
	}

	gatewayRef := ""
	if order.Payment != nil {
		gatewayRef = order.Payment.Reference
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", gin.H{
		"order_id":  order.ID,
		"reference": order.Reference,
		"gateway":   gatewayRef,
		"status":    order.Status,
		"total":     order.Total,
	})
}

// GetOrderByID -> order detail with items and payment.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("Payment").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
