package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

type productPayload struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Popular     bool   `json:"popular"`
	Allergens   string `json:"allergens"`
	Variants    []struct {
		Name  string `json:"name" binding:"required"`
		Price int64  `json:"price" binding:"required,min=0"`
	} `json:"variants" binding:"required,min=1"`
	Addons []struct {
		Name  string `json:"name" binding:"required"`
		Price int64  `json:"price" binding:"min=0"`
	} `json:"addons"`
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product := models.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Popular:     req.Popular,
		Allergens:   req.Allergens,
	}
	if product.Slug == "" {
		product.Slug = slugify(req.Name)
	}
	for i, v := range req.Variants {
		product.Variants = append(product.Variants, models.Variant{Name: v.Name, Price: v.Price, Position: i})
	}
	for i, a := range req.Addons {
		product.Addons = append(product.Addons, models.Addon{Name: a.Name, Price: a.Price, Position: i})
	}

	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

func (pc *ProductController) GetAllProducts(c *gin.Context) {
	var products []models.Product
	err := pc.DB.
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Preload("Addons", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Order("category asc, id asc").
		Find(&products).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Products", products)
}

func (pc *ProductController) GetProductByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("product_id"))

	var product models.Product
	if err := pc.DB.Preload("Variants").Preload("Addons").First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

// UpdateProduct replaces the product and its variant/add-on collections.
// Existing orders keep their snapshots, so replacing is safe.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("product_id"))

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}

	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		product.Name = req.Name
		product.Description = req.Description
		product.Category = req.Category
		product.Popular = req.Popular
		product.Allergens = req.Allergens
		if req.Slug != "" {
			product.Slug = req.Slug
		}
		if err := tx.Save(&product).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Addon{}).Error; err != nil {
			return err
		}

		for i, v := range req.Variants {
			if err := tx.Create(&models.Variant{ProductID: product.ID, Name: v.Name, Price: v.Price, Position: i}).Error; err != nil {
				return err
			}
		}
		for i, a := range req.Addons {
			if err := tx.Create(&models.Addon{ProductID: product.ID, Name: a.Name, Price: a.Price, Position: i}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pc.DB.Preload("Variants").Preload("Addons").First(&product, product.ID)
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("product_id"))

	res := pc.DB.Select("Variants", "Addons").Delete(&models.Product{ID: uint(id)})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product deleted", gin.H{"product_id": id})
}
