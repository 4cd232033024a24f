package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

type PromoController struct {
	DB     *gorm.DB
	Promos *services.PromoService
}

func NewPromoController(db *gorm.DB, promos *services.PromoService) *PromoController {
	return &PromoController{DB: db, Promos: promos}
}

// ValidatePromo -> {valid, message, discount}. Never mutates the usage
// counter; redemption happens on capture.
func (pc *PromoController) ValidatePromo(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required"`
		Subtotal int64  `json:"subtotal" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := pc.Promos.Validate(req.Code, req.Subtotal)
	utils.RespondJSON(c, http.StatusOK, "Promo validation", result)
}

// ---- admin CRUD ----

type promoPayload struct {
	Code           string     `json:"code" binding:"required"`
	DiscountType   string     `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue  int64      `json:"discount_value" binding:"required,min=0"`
	MinOrderAmount int64      `json:"min_order_amount"`
	MaxDiscount    int64      `json:"max_discount"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
	UsageLimit     int        `json:"usage_limit"`
	Active         *bool      `json:"active"`
}

func (p *promoPayload) validate() error {
	if p.DiscountType == models.DiscountTypePercentage && p.DiscountValue > 100 {
		return errors.New("percentage discount must be between 0 and 100")
	}
	return nil
}

// farFuture stands in for "no expiration".
var farFuture = time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC)

func (pc *PromoController) CreatePromo(c *gin.Context) {
	var req promoPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo := models.PromoCode{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxDiscount:    req.MaxDiscount,
		StartsAt:       time.Now().UTC(),
		EndsAt:         farFuture,
		UsageLimit:     req.UsageLimit,
		Active:         true,
	}
	if req.StartsAt != nil {
		promo.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		promo.EndsAt = req.EndsAt.UTC()
	}
	if req.Active != nil {
		promo.Active = *req.Active
	}

	if err := pc.DB.Create(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Promo code created", promo)
}

func (pc *PromoController) GetAllPromos(c *gin.Context) {
	var promos []models.PromoCode
	if err := pc.DB.Order("created_at desc").Find(&promos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promo codes", promos)
}

func (pc *PromoController) UpdatePromo(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("promo_id"))

	var promo models.PromoCode
	if err := pc.DB.First(&promo, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("promo code not found"))
		return
	}

	var req promoPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	promo.DiscountType = req.DiscountType
	promo.DiscountValue = req.DiscountValue
	promo.MinOrderAmount = req.MinOrderAmount
	promo.MaxDiscount = req.MaxDiscount
	promo.UsageLimit = req.UsageLimit
	if req.StartsAt != nil {
		promo.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		promo.EndsAt = req.EndsAt.UTC()
	}
	if req.Active != nil {
		promo.Active = *req.Active
	}

	if err := pc.DB.Save(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promo code updated", promo)
}

func (pc *PromoController) DeletePromo(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("promo_id"))

	res := pc.DB.Delete(&models.PromoCode{}, id)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("promo code not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promo code deleted", gin.H{"promo_id": id})
}
