package handlers

import (
	"errors"
	"io"
	"net/http"

	"wheelhouse/services/payment"
	"wheelhouse/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

type PaymentHandler struct {
	Webhooks *payment.WebhookProcessor
}

func NewPaymentHandler(webhooks *payment.WebhookProcessor) *PaymentHandler {
	return &PaymentHandler{Webhooks: webhooks}
}

// StripeWebhookHandler handles POST /payments/webhook.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	logger := getLogger(c)
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "could not read webhook body")
		return
	}

	err = h.Webhooks.Process(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payment.ErrInvalidSignature) {
		logger.Warn("Stripe webhook rejected", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid signature")
		return
	}
	if err != nil {
		logger.Error("Stripe webhook failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "webhook processing failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
