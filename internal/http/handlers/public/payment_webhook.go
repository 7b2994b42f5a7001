package public

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/payment"

	"github.com/gin-gonic/gin"
)

const (
	callbackLogValueLimit = 256
	webhookBodyLimit      = 1 << 20
)

var errWebhookBodyTooLarge = errors.New("webhook body too large")

// StripeWebhook Stripe webhook 回调
func (h *Handler) StripeWebhook(c *gin.Context) {
	h.handlePaymentWebhook(c, constants.PaymentFlowStripe, "Stripe-Signature")
}

// MercadoPagoWebhook Mercado Pago 通知回调
func (h *Handler) MercadoPagoWebhook(c *gin.Context) {
	h.handlePaymentWebhook(c, constants.PaymentFlowMercadoPago, "X-Signature")
}

// AsaasWebhook Asaas 回调
func (h *Handler) AsaasWebhook(c *gin.Context) {
	h.handlePaymentWebhook(c, constants.PaymentFlowAsaas, "")
}

func (h *Handler) handlePaymentWebhook(c *gin.Context, gateway, signatureHeader string) {
	log := requestLog(c)
	body, err := readWebhookBody(c.Request.Body)
	if errors.Is(err, errWebhookBodyTooLarge) {
		log.Warnw("payment_webhook_body_too_large", "gateway", gateway, "limit", webhookBodyLimit)
		respondError(c, response.CodePayloadTooLarge, "error.payload_too_large", err)
		return
	}
	if err != nil {
		log.Warnw("payment_webhook_body_read_failed", "gateway", gateway, "error", err)
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	// 回调体含付款人邮箱等个人信息，只记录摘要
	fields := []interface{}{
		"gateway", gateway,
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"body_sha256", bodyDigest(body),
	}
	if signatureHeader != "" {
		fields = append(fields, "signature", truncateCallbackLogValue(c.GetHeader(signatureHeader)))
	}
	log.Infow("payment_webhook_received", fields...)

	outcome, err := h.PaymentWebhookService.Handle(c.Request.Context(), gateway, payment.WebhookRequest{
		Headers: flattenHeaders(c),
		Query:   flattenQuery(c),
		Body:    body,
	})
	if err != nil {
		log.Warnw("payment_webhook_handle_failed", "gateway", gateway, "error", err)
		respondPaymentWebhookError(c, err)
		return
	}

	log.Infow("payment_webhook_processed",
		"gateway", gateway,
		"event_id", outcome.EventID,
		"event_type", outcome.EventType,
		"updated", outcome.Updated,
		"duplicate", outcome.Duplicate,
		"status", outcome.Status,
		"commission_id", outcome.CommissionID,
	)
	response.Success(c, outcome)
}

func flattenHeaders(c *gin.Context) map[string]string {
	headers := make(map[string]string, len(c.Request.Header))
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}
	return headers
}

func flattenQuery(c *gin.Context) map[string]string {
	raw := c.Request.URL.Query()
	query := make(map[string]string, len(raw))
	for key, values := range raw {
		if len(values) == 0 {
			continue
		}
		query[key] = values[0]
	}
	return query
}

func truncateCallbackLogValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) <= callbackLogValueLimit {
		return raw
	}
	return raw[:callbackLogValueLimit] + "...(truncated)"
}

// readWebhookBody 多读一个字节用于判断是否超限，超限时不截断处理
func readWebhookBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, webhookBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(body) > webhookBodyLimit {
		return nil, fmt.Errorf("%w: limit %d bytes", errWebhookBodyTooLarge, webhookBodyLimit)
	}
	return body, nil
}

func bodyDigest(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:8])
}
