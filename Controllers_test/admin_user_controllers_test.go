package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/controllers"
	"github.com/oakhurst-kitchen/ordering-backend/models"
)

func setupAdminUserRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	userCtrl := controllers.NewAdminUserController(db)
	router.POST("/users", userCtrl.CreateAdminUser)
	router.GET("/users", userCtrl.GetAllAdminUsers)
	router.PATCH("/users/:admin_id", userCtrl.UpdateAdminUser)
	router.DELETE("/users/:admin_id", userCtrl.DeleteAdminUser)
	return router
}

func TestAdminUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	router := setupAdminUserRouter(db)

	payload := map[string]interface{}{
		"email":    "chef@example.com",
		"password": "hunter2-long",
		"role":     "staff",
	}
	payloadBytes, err := json.Marshal(payload)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", "/users", bytes.NewBuffer(payloadBytes))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	adminID := int(data["id"].(float64))
	assert.NotContains(t, w.Body.String(), "password_hash", "hash never serialized")

	// Promote to admin and deactivate
	url := "/users/" + strconv.Itoa(adminID)
	active := false
	update := map[string]interface{}{"role": "admin", "active": active}
	payloadBytes, _ = json.Marshal(update)
	req, _ = http.NewRequest("PATCH", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.AdminUser
	require.NoError(t, db.First(&stored, adminID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.False(t, stored.Active)

	// List
	req, _ = http.NewRequest("GET", "/users", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"].([]interface{}), 1)

	// Delete
	req, _ = http.NewRequest("DELETE", url, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("DELETE", url, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAdminUserValidation(t *testing.T) {
	db := setupTestDB(t)
	router := setupAdminUserRouter(db)

	post := func(payload map[string]interface{}) int {
		payloadBytes, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", "/users", bytes.NewBuffer(payloadBytes))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("bad role", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post(map[string]interface{}{
			"email": "a@example.com", "password": "hunter2-long", "role": "owner",
		}))
	})

	t.Run("short password", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post(map[string]interface{}{
			"email": "a@example.com", "password": "short", "role": "staff",
		}))
	})

	t.Run("bad email", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post(map[string]interface{}{
			"email": "not-an-email", "password": "hunter2-long", "role": "staff",
		}))
	})
}
