package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// NotifyResult makes the outcome of a best-effort notification explicit
// instead of a swallowed exception.
type NotifyResult int

const (
	NotifySent NotifyResult = iota
	NotifySkipped
	NotifyFailed
)

func (r NotifyResult) String() string {
	switch r {
	case NotifySent:
		return "sent"
	case NotifySkipped:
		return "skipped"
	default:
		return "failed"
	}
}

type BillingNotice struct {
	RestaurantId      uint      `json:"restaurantId"`
	OrderId           uint      `json:"orderId"`
	ProviderPaymentId string    `json:"providerPaymentId"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	PaidAt            time.Time `json:"paidAt"`
}

// BillingNotifier informs the external billing service that an order is paid.
// Delivery is fire-and-forget: a failure is logged with enough context for an
// operator to replay via the internal KDS callback, never retried here.
type BillingNotifier interface {
	OrderPaid(ctx context.Context, notice BillingNotice) NotifyResult
}

type HTTPBilling struct {
	url    string
	secret string
	http   *http.Client
	log    *zap.Logger
}

func NewHTTPBilling(url, secret string, log *zap.Logger) *HTTPBilling {
	return &HTTPBilling{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

func (b *HTTPBilling) OrderPaid(ctx context.Context, notice BillingNotice) NotifyResult {
	if b.url == "" {
		return NotifySkipped
	}

	payload, err := json.Marshal(notice)
	if err != nil {
		b.log.Error("billing notice marshal failed", zap.Error(err))
		return NotifyFailed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		b.log.Error("billing request build failed", zap.Error(err))
		return NotifyFailed
	}
	req.Header.Set("Content-Type", "application/json")
	if b.secret != "" {
		req.Header.Set("X-Internal-Secret", b.secret)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		b.log.Error("billing notification failed",
			zap.Uint("order_id", notice.OrderId),
			zap.String("provider_payment_id", notice.ProviderPaymentId),
			zap.Error(err))
		return NotifyFailed
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b.log.Error("billing service rejected notification",
			zap.Uint("order_id", notice.OrderId),
			zap.String("provider_payment_id", notice.ProviderPaymentId),
			zap.Int("status", resp.StatusCode))
		return NotifyFailed
	}
	return NotifySent
}

// NoopBilling reports every notification as skipped.
type NoopBilling struct{}

func (NoopBilling) OrderPaid(context.Context, BillingNotice) NotifyResult { return NotifySkipped }
