package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyAccepted = errors.New("order already accepted")
	ErrOrderRejected   = errors.New("order has been rejected")
)

// ValidationError marks checkout input problems so the handler can answer
// with a 400 instead of a 500.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func errValidation(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// CardDeclinedError is an expected gateway outcome, not a system failure.
type CardDeclinedError struct {
	Reason string
}

func (e *CardDeclinedError) Error() string {
	if e.Reason == "" {
		return "card was declined"
	}
	return "card was declined: " + e.Reason
}

// OrderService drives the order/payment lifecycle:
//
//	payment_authorized -> captured   (auto-capture, admin accept, webhook)
//	payment_authorized -> rejected   (admin reject, gateway void/failure)
//
// Every transition is a compare-and-swap on the current status, so a
// duplicate webhook or a webhook racing an admin action degenerates to a
// no-op instead of a double transition or a double notification.
type OrderService struct {
	db       *gorm.DB
	settings config.Settings
	gateway  *GatewayService
	promos   *PromoService
	notifier Notifier
}

func NewOrderService(db *gorm.DB, settings config.Settings, gateway *GatewayService, promos *PromoService, notifier Notifier) *OrderService {
	return &OrderService{
		db:       db,
		settings: settings,
		gateway:  gateway,
		promos:   promos,
		notifier: notifier,
	}
}

// CheckoutItem is one cart line: a variant of a product plus chosen add-ons.
type CheckoutItem struct {
	ProductID uint   `json:"product_id" binding:"required"`
	VariantID uint   `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	AddonIDs  []uint `json:"addon_ids"`
}

// CheckoutRequest is the full checkout submission.
type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items" binding:"required"`
	Fulfilment    string         `json:"fulfilment" binding:"required"`
	CustomerName  string         `json:"customer_name" binding:"required"`
	CustomerPhone string         `json:"customer_phone" binding:"required"`
	CustomerEmail string         `json:"customer_email"`

	AddressLine1    string `json:"address_line1"`
	AddressCity     string `json:"address_city"`
	AddressPostcode string `json:"address_postcode"`

	SlotStart *time.Time `json:"slot_start"`

	TipPercent float64 `json:"tip_percent"`
	PromoCode  string  `json:"promo_code"`

	Card Card `json:"card" binding:"required"`
}

// Checkout validates the submission, prices it, persists the order and
// drives it through authorize + immediate capture. An authorization
// failure deletes the partially-created order; a capture failure leaves
// the order validly authorized for later reconciliation.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	if err := s.validateCheckout(&req); err != nil {
		return nil, err
	}

	order, err := s.buildOrder(&req)
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Only the authorization gets a bounded wait; the customer is waiting
	// on this response.
	authCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res, err := s.gateway.Authorize(authCtx, order.Reference, order.Total, order.Currency, req.Card)
	if err != nil {
		s.deleteOrder(order)
		return nil, fmt.Errorf("payment authorization failed: %w", err)
	}
	if !res.Approved {
		s.deleteOrder(order)
		return nil, &CardDeclinedError{Reason: res.Reason}
	}

	payment := models.Payment{
		OrderID:   order.ID,
		Gateway:   s.gateway.config.Name,
		Reference: res.Reference,
		Status:    models.PaymentStatusAuthorized,
		Amount:    order.Total,
		Currency:  order.Currency,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		if _, voidErr := s.gateway.Void(ctx, res.Reference); voidErr != nil {
			utils.ErrorLogger.Printf("void after persistence failure also failed for %s: %v", res.Reference, voidErr)
		}
		s.deleteOrder(order)
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	order.Payment = &payment

	// Immediate auto-capture. Failure here is non-fatal: the order stays
	// payment_authorized and an admin action or webhook settles it later.
	capRes, capErr := s.gateway.Capture(ctx, res.Reference, order.Total)
	if capErr != nil || !capRes.Approved {
		reason := ""
		if capErr != nil {
			reason = capErr.Error()
		} else {
			reason = capRes.Reason
		}
		utils.ErrorLogger.Printf("capture failed for order %d (ref %s), left authorized: %s", order.ID, res.Reference, reason)
		return order, nil
	}

	changed, err := s.markCaptured(order.ID)
	if err != nil {
		utils.ErrorLogger.Printf("failed to record capture for order %d: %v", order.ID, err)
		return order, nil
	}
	if changed {
		s.reload(order)
		s.notifier.Send(order, models.NotificationKindConfirmation)
	}
	return order, nil
}

func (s *OrderService) validateCheckout(req *CheckoutRequest) error {
	if len(req.Items) == 0 {
		return errValidation("cart is empty")
	}

	switch req.Fulfilment {
	case models.FulfilmentPickup:
	case models.FulfilmentDelivery:
		if req.AddressLine1 == "" || req.AddressPostcode == "" {
			return errValidation("delivery orders need an address and postcode")
		}
		if check := CheckPostcode(req.AddressPostcode, s.settings); !check.Available {
			return errValidation("%s", check.Message)
		}
	default:
		return errValidation("fulfilment must be pickup or delivery")
	}

	if !ValidTipPercent(req.TipPercent, s.settings) {
		return errValidation("tip percent %v is not offered", req.TipPercent)
	}

	if req.SlotStart != nil && req.SlotStart.Before(time.Now()) {
		return errValidation("requested time slot is in the past")
	}

	return nil
}

// buildOrder snapshots catalog prices and names into an order with the
// promo discount folded in. Nothing is persisted here.
func (s *OrderService) buildOrder(req *CheckoutRequest) (*models.Order, error) {
	var subtotal int64
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		var product models.Product
		err := s.db.Preload("Variants").Preload("Addons").First(&product, line.ProductID).Error
		if err != nil {
			return nil, errValidation("unknown product %d", line.ProductID)
		}

		var variant *models.Variant
		for i := range product.Variants {
			if product.Variants[i].ID == line.VariantID {
				variant = &product.Variants[i]
				break
			}
		}
		if variant == nil {
			return nil, errValidation("product %q has no such variant", product.Name)
		}

		unitPrice := variant.Price
		addonNames := make([]string, 0, len(line.AddonIDs))
		for _, addonID := range line.AddonIDs {
			found := false
			for _, addon := range product.Addons {
				if addon.ID == addonID {
					unitPrice += addon.Price
					addonNames = append(addonNames, addon.Name)
					found = true
					break
				}
			}
			if !found {
				return nil, errValidation("product %q has no such add-on", product.Name)
			}
		}

		name := product.Name
		if len(product.Variants) > 1 {
			name = fmt.Sprintf("%s (%s)", product.Name, variant.Name)
		}

		addonsJSON, _ := json.Marshal(addonNames)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  line.Quantity,
			Addons:    string(addonsJSON),
			Allergens: product.Allergens,
		})
		subtotal += unitPrice * int64(line.Quantity)
	}

	var discount int64
	promoCode := ""
	if code := strings.TrimSpace(req.PromoCode); code != "" {
		result := s.promos.Validate(code, subtotal)
		if !result.Valid {
			return nil, errValidation("%s", result.Message)
		}
		discount = result.Discount
		promoCode = result.Code
	}

	pricing := CalculatePricing(subtotal-discount, req.Fulfilment, req.TipPercent, s.settings)

	order := &models.Order{
		Reference:       uuid.NewString(),
		Status:          models.OrderStatusPaymentAuthorized,
		Fulfilment:      req.Fulfilment,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		AddressLine1:    req.AddressLine1,
		AddressCity:     req.AddressCity,
		AddressPostcode: req.AddressPostcode,
		Subtotal:        subtotal,
		Discount:        discount,
		DeliveryFee:     pricing.DeliveryFee,
		Tip:             pricing.Tip,
		ServiceFee:      pricing.ServiceFee,
		Total:           pricing.Total,
		Currency:        s.settings.Currency,
		PromoCode:       promoCode,
		OrderItems:      items,
	}

	if req.SlotStart != nil {
		start := req.SlotStart.UTC()
		end := start.Add(time.Duration(s.settings.SlotMinutes) * time.Minute)
		order.SlotStart = &start
		order.SlotEnd = &end
	}

	return order, nil
}

// Accept moves a payment_authorized order to captured, capturing the
// payment at the gateway first if it is still only authorized.
func (s *OrderService) Accept(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.getWithPayment(orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case models.OrderStatusCaptured:
		return nil, ErrAlreadyAccepted
	case models.OrderStatusRejected:
		return nil, ErrOrderRejected
	}

	if order.Payment != nil && order.Payment.Status == models.PaymentStatusAuthorized {
		res, err := s.gateway.Capture(ctx, order.Payment.Reference, order.Payment.Amount)
		if err != nil {
			return nil, fmt.Errorf("gateway capture failed: %w", err)
		}
		if !res.Approved {
			return nil, fmt.Errorf("gateway refused capture: %s", res.Reason)
		}
	}

	changed, err := s.markCaptured(order.ID)
	if err != nil {
		return nil, err
	}
	s.reload(order)
	if changed {
		s.notifier.Send(order, models.NotificationKindConfirmation)
	}
	return order, nil
}

// Reject voids the authorization best-effort and moves the order to
// rejected. A failed void is logged and swallowed: the authorization
// lapses at the gateway on its own.
func (s *OrderService) Reject(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.getWithPayment(orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case models.OrderStatusRejected:
		return order, nil // repeat reject is a no-op
	case models.OrderStatusCaptured:
		return nil, ErrAlreadyAccepted
	}

	voided := false
	if order.Payment != nil && order.Payment.Status == models.PaymentStatusAuthorized {
		res, err := s.gateway.Void(ctx, order.Payment.Reference)
		if err != nil || !res.Approved {
			utils.ErrorLogger.Printf("void failed for order %d, authorization will lapse at the gateway: %v", order.ID, err)
		} else {
			voided = true
		}
	}

	paymentStatus := ""
	if voided {
		paymentStatus = models.PaymentStatusVoided
	}
	changed, err := s.markRejected(order.ID, paymentStatus)
	if err != nil {
		return nil, err
	}
	s.reload(order)
	if changed {
		s.notifier.Send(order, models.NotificationKindRejection)
	}
	return order, nil
}

// HandleWebhook applies a gateway-reported status to the matching payment
// and its order. Reports that re-state the current status are no-ops.
func (s *OrderService) HandleWebhook(event WebhookEvent) error {
	var payment models.Payment
	if err := s.db.Where("reference = ?", event.Reference).First(&payment).Error; err != nil {
		return ErrPaymentNotFound
	}

	var changed bool
	var err error
	var kind string

	switch event.Status {
	case models.PaymentStatusCaptured:
		changed, err = s.markCaptured(payment.OrderID)
		kind = models.NotificationKindConfirmation
	case models.PaymentStatusVoided, models.PaymentStatusFailed:
		changed, err = s.markRejected(payment.OrderID, event.Status)
		kind = models.NotificationKindRejection
	default:
		return fmt.Errorf("unhandled webhook status %q", event.Status)
	}
	if err != nil {
		return err
	}

	if changed {
		var order models.Order
		if err := s.db.Preload("OrderItems").First(&order, payment.OrderID).Error; err == nil {
			s.notifier.Send(&order, kind)
		}
	}
	return nil
}

// markCaptured is the single path into the captured state. The CAS on the
// order status serializes racing callers (auto-capture, admin accept,
// webhook): exactly one of them observes changed=true, redeems the promo
// and triggers the notification.
func (s *OrderService) markCaptured(orderID uint) (bool, error) {
	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return ErrOrderNotFound
		}

		switch order.Status {
		case models.OrderStatusCaptured:
			return nil // already there, no-op
		case models.OrderStatusRejected:
			return ErrOrderRejected
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPaymentAuthorized).
			Update("status", models.OrderStatusCaptured)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // lost the race to a concurrent transition
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", orderID, models.PaymentStatusAuthorized).
			Updates(map[string]interface{}{"status": models.PaymentStatusCaptured, "captured_at": now}).Error; err != nil {
			return err
		}

		if order.PromoCode != "" {
			if err := s.promos.RedeemTx(tx, order.PromoCode); err != nil {
				if !errors.Is(err, ErrPromoExhausted) {
					return err
				}
				// The customer already paid the discounted price; honour
				// the order and leave the counter at its limit.
				utils.ErrorLogger.Printf("promo %s exhausted before capture of order %d", order.PromoCode, orderID)
			}
		}

		changed = true
		return nil
	})
	return changed, err
}

// markRejected moves the order to rejected; when paymentStatus is set the
// payment row follows (voided after a successful void, failed from a
// webhook). Same CAS no-op semantics as markCaptured.
func (s *OrderService) markRejected(orderID uint, paymentStatus string) (bool, error) {
	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPaymentAuthorized).
			Update("status", models.OrderStatusRejected)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if paymentStatus != "" {
			if err := tx.Model(&models.Payment{}).
				Where("order_id = ? AND status = ?", orderID, models.PaymentStatusAuthorized).
				Update("status", paymentStatus).Error; err != nil {
				return err
			}
		}

		changed = true
		return nil
	})
	return changed, err
}

func (s *OrderService) getWithPayment(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("OrderItems").Preload("Payment").First(&order, orderID).Error; err != nil {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

func (s *OrderService) reload(order *models.Order) {
	var fresh models.Order
	if err := s.db.Preload("OrderItems").Preload("Payment").First(&fresh, order.ID).Error; err == nil {
		*order = fresh
	}
}

// deleteOrder is the compensating action for a failed authorization: the
// partially-created rows must not be left behind.
func (s *OrderService) deleteOrder(order *models.Order) {
	if err := s.db.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		utils.ErrorLogger.Printf("failed to clean up items of order %d: %v", order.ID, err)
	}
	if err := s.db.Delete(&models.Order{}, order.ID).Error; err != nil {
		utils.ErrorLogger.Printf("failed to clean up order %d: %v", order.ID, err)
	}
}
