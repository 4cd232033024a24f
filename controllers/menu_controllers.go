package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

type MenuController struct {
	Catalog services.CatalogProvider
}

func NewMenuController(catalog services.CatalogProvider) *MenuController {
	return &MenuController{Catalog: catalog}
}

// GetMenu -> category-grouped product list with variants and add-ons.
func (mc *MenuController) GetMenu(c *gin.Context) {
	menu, err := mc.Catalog.Menu()
	if err != nil {
		utils.RespondError(c, http.StatusServiceUnavailable, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", menu)
}
