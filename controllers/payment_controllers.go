package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oakhurst-kitchen/ordering-backend/services"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// SignatureHeader carries the gateway's HMAC over the raw webhook body.
const SignatureHeader = "X-Gateway-Signature"

type PaymentController struct {
	Gateway *services.GatewayService
	Orders  *services.OrderService
}

func NewPaymentController(gateway *services.GatewayService, orders *services.OrderService) *PaymentController {
	return &PaymentController{Gateway: gateway, Orders: orders}
}

// HandleWebhook -> inbound status report from the gateway. The signature
// is verified over the raw body before anything is parsed; duplicates are
// acknowledged without re-applying the transition.
func (pc *PaymentController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unreadable webhook body"))
		return
	}

	if !pc.Gateway.VerifySignature(payload, c.GetHeader(SignatureHeader)) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid webhook signature"))
		return
	}

	event, err := pc.Gateway.ParseWebhook(payload)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := pc.Orders.HandleWebhook(*event); err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Webhook processed", nil)
}
