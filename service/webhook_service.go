package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resto_manager/gateway"
	"resto_manager/model"
	"resto_manager/notify"
	"resto_manager/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const billingDedupTTL = 10 * time.Minute

// PaymentFetcher fetches the authoritative payment resource from a provider.
type PaymentFetcher interface {
	GetPayment(token, id string) (*gateway.PaymentInfo, error)
}

// WebhookService reconciles provider webhooks against local orders. Every
// step is replay-safe: the payment unique constraint makes recording
// idempotent, the transition guard makes the paid upgrade exactly-once, and
// the dedup guard keeps the billing notification at-most-once.
type WebhookService struct {
	Payments repository.PaymentRepository
	Creds    repository.CredentialRepository
	Orders   *OrderService
	// Fetchers maps a provider name to its client; a webhook for a provider
	// with no fetcher is acked and logged, never sent to the wrong API.
	Fetchers map[string]PaymentFetcher
	Dedup    notify.DedupGuard
	Billing  notify.BillingNotifier
	Log      *zap.Logger
}

type webhookPayload struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		Id json.Number `json:"id"`
	} `json:"data"`
}

// ParseWebhook extracts the event type and provider payment id from a raw
// webhook body, with the provider's query-parameter variant as fallback.
func ParseWebhook(raw []byte, queryType, queryId string) (string, string) {
	var payload webhookPayload
	_ = json.Unmarshal(raw, &payload)

	eventType := payload.Type
	if eventType == "" {
		eventType = payload.Action
	}
	if eventType == "" {
		eventType = queryType
	}

	paymentId := payload.Data.Id.String()
	if paymentId == "" {
		paymentId = queryId
	}
	return eventType, paymentId
}

// Handle processes one inbound webhook. It never fails upward: the HTTP
// handler always answers 200 to stop provider retry storms, so every failure
// here is logged for async remediation instead of propagated.
func (s *WebhookService) Handle(raw []byte, provider string, restaurantHint uint, queryType, queryId string) {
	// per-delivery trace id; the provider's own delivery ids are not unique
	// across retries
	log := s.Log.With(zap.String("delivery_id", uuid.NewString()))

	eventType, paymentId := ParseWebhook(raw, queryType, queryId)

	if !strings.Contains(eventType, "payment") || paymentId == "" {
		log.Debug("ignoring non-payment webhook",
			zap.String("provider", provider),
			zap.String("type", eventType))
		return
	}

	info, err := s.fetchWithFallback(provider, restaurantHint, paymentId)
	if err != nil {
		log.Error("failed to fetch payment from provider",
			zap.String("provider", provider),
			zap.String("payment_id", paymentId),
			zap.Error(err))
		return
	}

	restaurantId := restaurantHint
	if restaurantId == 0 {
		restaurantId = metaUint(info.Metadata, "restaurant_id")
	}
	if restaurantId == 0 {
		log.Error("webhook payment has no tenant hint",
			zap.String("provider", provider),
			zap.String("payment_id", paymentId))
		return
	}

	s.Settle(restaurantId, provider, info)
}

// Settle records a fetched payment idempotently and drives the order's paid
// transition plus the single downstream billing notification. Shared by the
// webhook path and the direct-charge path.
func (s *WebhookService) Settle(restaurantId uint, provider string, info *gateway.PaymentInfo) {
	orderId := DeriveOrderId(info)

	pago := model.Pago{
		RestaurantId:    restaurantId,
		Provider:        provider,
		ProviderEventId: &info.Id,
		Amount:          info.Amount,
		Currency:        info.Currency,
		Method:          info.Method,
		Status:          info.Status,
		RawPayload:      info.Raw,
	}
	if orderId != 0 {
		pago.PedidoId = &orderId
		pago.ProviderOrderId = info.ExternalReference
	}
	if pago.Currency == "" {
		pago.Currency = "PEN"
	}

	recorded, err := s.Payments.RecordIfNew(&pago)
	if err != nil {
		s.Log.Error("failed to record payment",
			zap.String("provider", provider),
			zap.String("payment_id", info.Id),
			zap.Error(err))
		return
	}
	if !recorded {
		if prior, ferr := s.Payments.FindByProviderEvent(restaurantId, provider, info.Id); ferr == nil {
			s.Log.Info("duplicate provider event replayed",
				zap.String("provider", provider),
				zap.String("payment_id", info.Id),
				zap.Uint("pago_id", prior.ID))
		}
	}

	if !gateway.IsSuccessStatus(info.Status) {
		s.Log.Info("payment recorded without order transition",
			zap.String("provider", provider),
			zap.String("payment_id", info.Id),
			zap.String("status", info.Status))
		return
	}
	if orderId == 0 {
		s.Log.Warn("successful payment could not be matched to an order",
			zap.String("provider", provider),
			zap.String("payment_id", info.Id),
			zap.String("external_reference", info.ExternalReference))
		return
	}

	pedido, _, err := s.Orders.PaidFromPayment(restaurantId, orderId)
	if err != nil {
		s.Log.Error("failed to mark order paid",
			zap.Uint("order_id", orderId),
			zap.String("payment_id", info.Id),
			zap.Error(err))
		return
	}
	if pedido == nil || pedido.Status != model.OrderPaid {
		return
	}

	// At-most-once billing notification within the dedup window. The guard
	// is an optimization; a rapid duplicate webhook is the case it covers.
	if !s.Dedup.FirstSeen("billing:"+provider+":"+info.Id, billingDedupTTL) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	result := s.Billing.OrderPaid(ctx, notify.BillingNotice{
		RestaurantId:      restaurantId,
		OrderId:           orderId,
		ProviderPaymentId: info.Id,
		Amount:            info.Amount,
		Currency:          pago.Currency,
		PaidAt:            time.Now(),
	})
	s.Log.Info("billing notification finished",
		zap.Uint("order_id", orderId),
		zap.String("payment_id", info.Id),
		zap.String("result", result.String()))
}

// fetchWithFallback fetches the payment from the hinted provider's own API
// with the tenant-scoped token, retrying with the environment-level token
// when the tenant token is missing or rejected.
func (s *WebhookService) fetchWithFallback(provider string, restaurantHint uint, paymentId string) (*gateway.PaymentInfo, error) {
	fetcher, ok := s.Fetchers[provider]
	if !ok {
		return nil, fmt.Errorf("no payment fetcher for provider %q", provider)
	}

	envToken := gateway.EnvToken(provider)

	token := envToken
	if restaurantHint != 0 {
		if resolved, err := gateway.ResolveToken(s.Creds, restaurantHint, provider); err == nil {
			token = resolved
		}
	}
	if token == "" {
		return nil, gateway.ErrNoCredentials
	}

	info, err := fetcher.GetPayment(token, paymentId)
	if err == nil {
		return info, nil
	}

	var upstream *gateway.UpstreamError
	if errors.As(err, &upstream) && token != envToken && envToken != "" {
		switch upstream.Status {
		case 401, 403, 404:
			return fetcher.GetPayment(envToken, paymentId)
		}
	}
	return nil, err
}

// DeriveOrderId resolves the internal order id from payment metadata,
// falling back to the external-reference field ("pedido-<id>" or a bare id).
func DeriveOrderId(info *gateway.PaymentInfo) uint {
	if id := metaUint(info.Metadata, "order_id"); id != 0 {
		return id
	}
	ref := strings.TrimPrefix(info.ExternalReference, "pedido-")
	return parseUint(ref)
}

func metaUint(meta map[string]string, key string) uint {
	if meta == nil {
		return 0
	}
	return parseUint(meta[key])
}

func parseUint(s string) uint {
	if s == "" {
		return 0
	}
	// provider metadata round-trips numbers as floats ("12" comes back "12",
	// but defensively accept "12.0")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return uint(f)
}
