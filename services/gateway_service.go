package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/models"
)

// GatewayConfig holds the card gateway credentials and endpoint.
type GatewayConfig struct {
	Name          string
	BaseURL       string
	SecretKey     string
	WebhookSecret string
}

// GatewayService wraps the card gateway's HTTP API: authorize, capture,
// void, plus webhook signature verification and parsing. Expected failure
// modes (declined card) come back as results; transport errors and
// malformed responses are errors for the caller to compensate.
type GatewayService struct {
	config     GatewayConfig
	httpClient *http.Client
}

func NewGatewayService(s config.Settings) *GatewayService {
	return &GatewayService{
		config: GatewayConfig{
			Name:          s.GatewayName,
			BaseURL:       s.GatewayBaseURL,
			SecretKey:     s.GatewaySecretKey,
			WebhookSecret: s.GatewayWebhookSecret,
		},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Card carries raw card details through to the gateway. Never persisted.
type Card struct {
	Number      string `json:"number" binding:"required"`
	ExpiryMonth string `json:"expiry_month" binding:"required"`
	ExpiryYear  string `json:"expiry_year" binding:"required"`
	CVC         string `json:"cvc" binding:"required"`
	HolderName  string `json:"holder_name"`
}

// ChargeResult is the gateway's answer to a charge operation.
type ChargeResult struct {
	Approved  bool
	Reference string
	Reason    string
}

// Authorize reserves funds on the card without capturing them.
func (gs *GatewayService) Authorize(ctx context.Context, reference string, amount int64, currency string, card Card) (*ChargeResult, error) {
	payload := map[string]interface{}{
		"reference": reference,
		"amount":    amount,
		"currency":  currency,
		"capture":   false,
		"card": map[string]interface{}{
			"number":       card.Number,
			"expiry_month": card.ExpiryMonth,
			"expiry_year":  card.ExpiryYear,
			"cvc":          card.CVC,
			"holder_name":  card.HolderName,
		},
	}
	return gs.charge(ctx, "/v1/charges", payload)
}

// Capture converts an authorization into an actual charge.
func (gs *GatewayService) Capture(ctx context.Context, reference string, amount int64) (*ChargeResult, error) {
	payload := map[string]interface{}{
		"amount": amount,
	}
	return gs.charge(ctx, fmt.Sprintf("/v1/charges/%s/capture", reference), payload)
}

// Void cancels an authorization before capture.
func (gs *GatewayService) Void(ctx context.Context, reference string) (*ChargeResult, error) {
	return gs.charge(ctx, fmt.Sprintf("/v1/charges/%s/void", reference), map[string]interface{}{})
}

type gatewayResponse struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

func (gs *GatewayService) charge(ctx context.Context, path string, payload map[string]interface{}) (*ChargeResult, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gs.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(gs.config.SecretKey+":")))

	resp, err := gs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(body))
	}

	var gr gatewayResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("malformed gateway response: %w", err)
	}
	if gr.Error != "" {
		return nil, fmt.Errorf("gateway error: %s", gr.Error)
	}

	return &ChargeResult{
		Approved:  gr.Approved,
		Reference: gr.Reference,
		Reason:    gr.Reason,
	}, nil
}

// VerifySignature checks the hex HMAC-SHA256 signature over the raw webhook
// payload. A missing secret or signature is a verification failure, never
// an implicit pass.
func (gs *GatewayService) VerifySignature(payload []byte, signature string) bool {
	if gs.config.WebhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(gs.config.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(expected)
	return hmac.Equal(sig, want)
}

// WebhookEvent is a gateway-originated status report for a known charge.
type WebhookEvent struct {
	Reference string
	Status    string // models.PaymentStatus*
}

// ParseWebhook decodes a webhook payload and maps the gateway's status
// vocabulary onto payment statuses.
func (gs *GatewayService) ParseWebhook(payload []byte) (*WebhookEvent, error) {
	var body struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if body.Reference == "" {
		return nil, errors.New("webhook payload missing reference")
	}

	status := mapGatewayStatus(body.Status)
	if status == "" {
		return nil, fmt.Errorf("unknown gateway status %q", body.Status)
	}

	return &WebhookEvent{Reference: body.Reference, Status: status}, nil
}

func mapGatewayStatus(status string) string {
	switch status {
	case "captured", "capture", "settlement", "settled":
		return models.PaymentStatusCaptured
	case "voided", "void", "cancel", "cancelled":
		return models.PaymentStatusVoided
	case "failed", "failure", "declined", "expired":
		return models.PaymentStatusFailed
	default:
		return ""
	}
}
