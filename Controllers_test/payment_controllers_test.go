package Controllers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/controllers"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/services"
)

func setupWebhookRouter(db *gorm.DB) *gin.Engine {
	s := testSettings()
	gateway := services.NewGatewayService(s)
	orders := services.NewOrderService(db, s, gateway, services.NewPromoService(db), services.NewRecordingNotifier(db))

	router := gin.New()
	paymentCtrl := controllers.NewPaymentController(gateway, orders)
	router.POST("/payments/webhook", paymentCtrl.HandleWebhook)
	return router
}

func signWebhook(payload []byte) string {
	mac := hmac.New(sha256.New, []byte("whsec_test"))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(controllers.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// seedAuthorizedOrder inserts an order frozen mid-lifecycle, as if the
// auto-capture after checkout had failed.
func seedAuthorizedOrder(t *testing.T, db *gorm.DB, reference string) models.Order {
	t.Helper()
	order := models.Order{
		Reference:     "ord-" + reference,
		Status:        models.OrderStatusPaymentAuthorized,
		Fulfilment:    models.FulfilmentPickup,
		CustomerName:  "Ada Smith",
		CustomerPhone: "07700900123",
		CustomerEmail: "ada@example.com",
		Subtotal:      2190,
		Total:         2190,
		Currency:      "GBP",
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.Payment{
		OrderID:   order.ID,
		Gateway:   "cardlink",
		Reference: reference,
		Status:    models.PaymentStatusAuthorized,
		Amount:    2190,
		Currency:  "GBP",
	}).Error)
	return order
}

func TestWebhookSignatureGate(t *testing.T) {
	db := setupTestDB(t)
	router := setupWebhookRouter(db)
	payload := []byte(`{"reference":"ch_hook_1","status":"captured"}`)

	t.Run("missing signature", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, postWebhook(router, payload, "").Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte("not-the-secret"))
		mac.Write(payload)
		sig := hex.EncodeToString(mac.Sum(nil))
		assert.Equal(t, http.StatusUnauthorized, postWebhook(router, payload, sig).Code)
	})

	t.Run("signature over a different body", func(t *testing.T) {
		sig := signWebhook([]byte(`{"reference":"ch_other"}`))
		assert.Equal(t, http.StatusUnauthorized, postWebhook(router, payload, sig).Code)
	})
}

func TestWebhookProcessing(t *testing.T) {
	db := setupTestDB(t)
	router := setupWebhookRouter(db)
	order := seedAuthorizedOrder(t, db, "ch_hook_1")

	payload := []byte(`{"reference":"ch_hook_1","status":"settlement"}`)
	w := postWebhook(router, payload, signWebhook(payload))
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusCaptured, stored.Status)

	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.Equal(t, models.PaymentStatusCaptured, payment.Status)

	t.Run("duplicate delivery is acknowledged", func(t *testing.T) {
		w := postWebhook(router, payload, signWebhook(payload))
		assert.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
		assert.EqualValues(t, 1, count, "one confirmation despite two deliveries")
	})
}

func TestWebhookFailureReport(t *testing.T) {
	db := setupTestDB(t)
	router := setupWebhookRouter(db)
	order := seedAuthorizedOrder(t, db, "ch_hook_2")

	payload := []byte(`{"reference":"ch_hook_2","status":"declined"}`)
	w := postWebhook(router, payload, signWebhook(payload))
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusRejected, stored.Status)
}

func TestWebhookErrors(t *testing.T) {
	db := setupTestDB(t)
	router := setupWebhookRouter(db)

	t.Run("malformed payload", func(t *testing.T) {
		payload := []byte(`{`)
		assert.Equal(t, http.StatusBadRequest, postWebhook(router, payload, signWebhook(payload)).Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		payload := []byte(`{"reference":"ch_hook_1","status":"pending"}`)
		assert.Equal(t, http.StatusBadRequest, postWebhook(router, payload, signWebhook(payload)).Code)
	})

	t.Run("unknown reference", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"reference": "ch_unknown", "status": "captured"})
		assert.Equal(t, http.StatusNotFound, postWebhook(router, payload, signWebhook(payload)).Code)
	})
}
