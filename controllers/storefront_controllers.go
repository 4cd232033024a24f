package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// StorefrontController serves the small read-only helpers the checkout
// page needs: postcode serviceability and collection slots.
type StorefrontController struct {
	Settings config.Settings
	Now      func() time.Time // injectable clock for slot tests
}

func NewStorefrontController(settings config.Settings) *StorefrontController {
	return &StorefrontController{
		Settings: settings,
		Now:      time.Now,
	}
}

// CheckPostcode -> availability, fee and ETA for a postcode.
func (sc *StorefrontController) CheckPostcode(c *gin.Context) {
	postcode := c.Query("postcode")
	if postcode == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("postcode query parameter is required"))
		return
	}

	check := services.CheckPostcode(postcode, sc.Settings)
	utils.RespondJSON(c, http.StatusOK, "Delivery check", check)
}

// GetSlots -> bookable time slots from now.
func (sc *StorefrontController) GetSlots(c *gin.Context) {
	slots := services.GenerateSlots(sc.Now(), sc.Settings)
	utils.RespondJSON(c, http.StatusOK, "Available slots", slots)
}
