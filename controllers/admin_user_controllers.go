package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// AdminUserController is the operator-account CRUD, super_admin only.
type AdminUserController struct {
	DB *gorm.DB
}

func NewAdminUserController(db *gorm.DB) *AdminUserController {
	return &AdminUserController{DB: db}
}

func (uc *AdminUserController) CreateAdminUser(c *gin.Context) {
	var req struct {
		Email    string  `json:"email" binding:"required,email"`
		Username *string `json:"username"`
		Password string  `json:"password" binding:"required,min=8"`
		Role     string  `json:"role" binding:"required,oneof=super_admin admin staff"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	admin := models.AdminUser{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashed),
		Role:         req.Role,
		Active:       true,
	}
	if err := uc.DB.Create(&admin).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("admin account created: %s (role=%s)", admin.Email, admin.Role)
	utils.RespondJSON(c, http.StatusCreated, "Admin account created", admin)
}

func (uc *AdminUserController) GetAllAdminUsers(c *gin.Context) {
	var admins []models.AdminUser
	if err := uc.DB.Order("id asc").Find(&admins).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admin accounts", admins)
}

func (uc *AdminUserController) UpdateAdminUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("admin_id"))

	var admin models.AdminUser
	if err := uc.DB.First(&admin, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("admin account not found"))
		return
	}

	var req struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
		Active   *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Email != nil {
		admin.Email = *req.Email
	}
	if req.Username != nil {
		admin.Username = req.Username
	}
	if req.Role != nil {
		switch *req.Role {
		case models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff:
			admin.Role = *req.Role
		default:
			utils.RespondError(c, http.StatusBadRequest, errors.New("unknown role"))
			return
		}
	}
	if req.Active != nil {
		admin.Active = *req.Active
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		admin.PasswordHash = string(hashed)
	}

	if err := uc.DB.Save(&admin).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admin account updated", admin)
}

func (uc *AdminUserController) DeleteAdminUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("admin_id"))

	res := uc.DB.Delete(&models.AdminUser{}, id)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("admin account not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admin account deleted", gin.H{"admin_id": id})
}
