package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/router"
	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	utils.InitJWT("integration-secret")
	os.Exit(m.Run())
}

// TestOrderingEndToEnd walks the main customer + admin flow:
//  1. browse the menu and check the delivery postcode
//  2. validate a promo code against the cart subtotal
//  3. checkout with a card -> authorized and auto-captured
//  4. admin logs in and sees the order on the dashboard
//  5. the gateway re-states the capture via webhook -> no-op
//  6. a second order is rejected by the admin
func TestOrderingEndToEnd(t *testing.T) {
	gatewaySrv := fakeGatewayServer()
	defer gatewaySrv.Close()

	db, settings := setupIntegrationDB(gatewaySrv.URL)
	r := setupIntegrationRouter(db, settings)

	checkMenuAndDelivery(t, r)
	validatePromoTest(t, r)

	orderID := checkoutTest(t, r)

	token := adminLoginTest(t, r)
	dashboardTest(t, r, token, orderID)

	duplicateWebhookTest(t, r, db, orderID)
	rejectOrderTest(t, r, db, token)
}

// fakeGatewayServer approves every charge and echoes a fixed reference.
func fakeGatewayServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"approved":  true,
			"reference": "ch_e2e_1",
		})
	}))
}

func setupIntegrationDB(gatewayURL string) (*gorm.DB, config.Settings) {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.AdminUser{},
		&models.Product{},
		&models.Variant{},
		&models.Addon{},
		&models.PromoCode{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	settings := config.Settings{
		Currency:             "GBP",
		OpeningTime:          "17:00",
		ClosingTime:          "23:30",
		MinPrepMinutes:       30,
		SlotMinutes:          15,
		DeliveryFee:          299,
		FreeDeliveryOver:     2500,
		DeliveryOutwardCodes: []string{"TW18", "TW19", "TW15"},
		DeliveryETA:          "45-60 minutes",
		PickupETA:            "20-30 minutes",
		TipPercents:          []float64{0, 5, 10, 12.5},
		GatewayName:          "cardlink",
		GatewayBaseURL:       gatewayURL,
		GatewaySecretKey:     "sk_test_abc",
		GatewayWebhookSecret: "whsec_e2e",
		MenuSource:           "db",
	}

	// seed: one pizza at £15.00, an operator account and a promo
	db.Create(&models.Product{
		Name:     "Wood-fired Margherita",
		Slug:     "margherita",
		Category: "Mains",
		Variants: []models.Variant{{Name: "12 inch", Price: 1500}},
	})

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	db.Create(&models.AdminUser{
		Email:        "admin@example.com",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleSuperAdmin,
		Active:       true,
	})

	db.Create(&models.PromoCode{
		Code:          "WELCOME10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		MaxDiscount:   500,
		StartsAt:      time.Now().UTC().Add(-time.Hour),
		EndsAt:        time.Now().UTC().Add(24 * time.Hour),
		UsageLimit:    100,
		Active:        true,
	})

	return db, settings
}

func setupIntegrationRouter(db *gorm.DB, settings config.Settings) *gin.Engine {
	gateway := services.NewGatewayService(settings)
	promos := services.NewPromoService(db)
	orders := services.NewOrderService(db, settings, gateway, promos, services.NewRecordingNotifier(db))

	return router.SetupRouter(router.Deps{
		DB:       db,
		Settings: settings,
		Catalog:  services.NewCatalogProvider(db, settings),
		Gateway:  gateway,
		Promos:   promos,
		Orders:   orders,
		Auth:     services.SelectAuthenticator(db, settings),
	})
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(r *gin.Engine, method, url string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, wantCode int, step string) apiResponse {
	t.Helper()
	if w.Code != wantCode {
		t.Fatalf("%s: expected %d, got %d, body=%s", step, wantCode, w.Code, w.Body.String())
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s: bad response body: %v", step, err)
	}
	return resp
}

func checkMenuAndDelivery(t *testing.T, r *gin.Engine) {
	resp := parseResponse(t, doJSON(r, http.MethodGet, "/menu", nil, ""), http.StatusOK, "menu")
	var categories []struct {
		Name string `json:"name"`
	}
	json.Unmarshal(resp.Data, &categories)
	if len(categories) != 1 || categories[0].Name != "Mains" {
		t.Fatalf("menu: unexpected categories %+v", categories)
	}

	resp = parseResponse(t, doJSON(r, http.MethodGet, "/delivery/check?postcode=TW18%204PD", nil, ""),
		http.StatusOK, "delivery check")
	var check struct {
		Available bool `json:"available"`
	}
	json.Unmarshal(resp.Data, &check)
	if !check.Available {
		t.Fatalf("delivery check: TW18 4PD should be serviceable")
	}
}

func validatePromoTest(t *testing.T, r *gin.Engine) {
	payload := map[string]interface{}{"code": "WELCOME10", "subtotal": 3000}
	resp := parseResponse(t, doJSON(r, http.MethodPost, "/promo/validate", payload, ""),
		http.StatusOK, "promo validate")

	var result struct {
		Valid    bool  `json:"valid"`
		Discount int64 `json:"discount"`
	}
	json.Unmarshal(resp.Data, &result)
	if !result.Valid || result.Discount != 300 {
		t.Fatalf("promo validate: want valid with 300 off, got %+v", result)
	}
}

// checkoutTest places a delivery order: 2 x 1500 = 3000 subtotal, free
// delivery over 2500, 10% tip => 3300 total, auto-captured.
func checkoutTest(t *testing.T, r *gin.Engine) uint {
	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": 1, "variant_id": 1, "quantity": 2},
		},
		"fulfilment":       "delivery",
		"customer_name":    "Ada Smith",
		"customer_phone":   "07700900123",
		"customer_email":   "ada@example.com",
		"address_line1":    "1 High Street",
		"address_city":     "Staines",
		"address_postcode": "TW18 4PD",
		"tip_percent":      10,
		"card": map[string]interface{}{
			"number":       "4242424242424242",
			"expiry_month": "12",
			"expiry_year":  "2030",
			"cvc":          "123",
		},
	}

	resp := parseResponse(t, doJSON(r, http.MethodPost, "/orders", payload, ""),
		http.StatusCreated, "checkout")

	var data struct {
		OrderID uint   `json:"order_id"`
		Status  string `json:"status"`
		Total   int64  `json:"total"`
	}
	json.Unmarshal(resp.Data, &data)
	if data.Status != models.OrderStatusCaptured {
		t.Fatalf("checkout: want captured, got %s", data.Status)
	}
	if data.Total != 3300 {
		t.Fatalf("checkout: want total 3300, got %d", data.Total)
	}
	return data.OrderID
}

func adminLoginTest(t *testing.T, r *gin.Engine) string {
	payload := map[string]string{"identifier": "admin@example.com", "password": "secret123"}
	resp := parseResponse(t, doJSON(r, http.MethodPost, "/admin/login", payload, ""),
		http.StatusOK, "admin login")

	var data struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Data, &data)
	if data.Token == "" {
		t.Fatalf("admin login: empty token")
	}
	return data.Token
}

func dashboardTest(t *testing.T, r *gin.Engine, token string, orderID uint) {
	resp := parseResponse(t, doJSON(r, http.MethodGet, "/admin/orders", nil, token),
		http.StatusOK, "dashboard list")

	var orders []struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	json.Unmarshal(resp.Data, &orders)
	if len(orders) != 1 || orders[0].ID != orderID || orders[0].Status != models.OrderStatusCaptured {
		t.Fatalf("dashboard: unexpected orders %+v", orders)
	}

	// accepting an already-captured order must conflict, not re-capture
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/admin/orders/%d/accept", orderID), nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("accept captured order: want 409, got %d", w.Code)
	}
}

func duplicateWebhookTest(t *testing.T, r *gin.Engine, db *gorm.DB, orderID uint) {
	payload := []byte(`{"reference":"ch_e2e_1","status":"settlement"}`)
	mac := hmac.New(sha256.New, []byte("whsec_e2e"))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gateway-Signature", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate webhook: want 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Notification{}).Where("order_id = ?", orderID).Count(&count)
	if count != 1 {
		t.Fatalf("duplicate webhook: want exactly 1 notification, got %d", count)
	}
}

// rejectOrderTest freezes a second order in payment_authorized (as if its
// auto-capture had failed) and has the admin reject it.
func rejectOrderTest(t *testing.T, r *gin.Engine, db *gorm.DB, token string) {
	order := models.Order{
		Reference:     "ord-e2e-2",
		Status:        models.OrderStatusPaymentAuthorized,
		Fulfilment:    models.FulfilmentPickup,
		CustomerName:  "Grace Jones",
		CustomerPhone: "07700900456",
		CustomerEmail: "grace@example.com",
		Subtotal:      1500,
		Total:         1500,
		Currency:      "GBP",
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed second order: %v", err)
	}
	if err := db.Create(&models.Payment{
		OrderID:   order.ID,
		Gateway:   "cardlink",
		Reference: "ch_e2e_2",
		Status:    models.PaymentStatusAuthorized,
		Amount:    1500,
		Currency:  "GBP",
	}).Error; err != nil {
		t.Fatalf("seed second payment: %v", err)
	}

	resp := parseResponse(t, doJSON(r, http.MethodPost, fmt.Sprintf("/admin/orders/%d/reject", order.ID), nil, token),
		http.StatusOK, "reject order")

	var data struct {
		Status  string          `json:"status"`
		Payment *models.Payment `json:"payment"`
	}
	json.Unmarshal(resp.Data, &data)
	if data.Status != models.OrderStatusRejected {
		t.Fatalf("reject: want rejected, got %s", data.Status)
	}
	if data.Payment == nil || data.Payment.Status != models.PaymentStatusVoided {
		t.Fatalf("reject: payment should be voided, got %+v", data.Payment)
	}

	var notif models.Notification
	if err := db.Where("order_id = ? AND kind = ?", order.ID, models.NotificationKindRejection).
		First(&notif).Error; err != nil {
		t.Fatalf("reject: no rejection notification recorded")
	}
}
