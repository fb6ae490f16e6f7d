package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"resto_manager/gateway"
	"resto_manager/model"
	"resto_manager/notify"
	"resto_manager/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPaymentRepo struct {
	mu    sync.Mutex
	pagos map[string]*model.Pago
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{pagos: make(map[string]*model.Pago)}
}

func paymentKey(restaurantId uint, provider, eventId string) string {
	return fmt.Sprintf("%d|%s|%s", restaurantId, provider, eventId)
}

func (m *memPaymentRepo) RecordIfNew(pago *model.Pago) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	eventId := ""
	if pago.ProviderEventId != nil {
		eventId = *pago.ProviderEventId
	}
	key := paymentKey(pago.RestaurantId, pago.Provider, eventId)
	if _, ok := m.pagos[key]; ok {
		return false, nil
	}
	m.pagos[key] = pago
	return true, nil
}

func (m *memPaymentRepo) FindByProviderEvent(restaurantId uint, provider, eventId string) (*model.Pago, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pago, ok := m.pagos[paymentKey(restaurantId, provider, eventId)]; ok {
		return pago, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memPaymentRepo) FindByOrder(restaurantId, pedidoId uint) ([]model.Pago, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Pago
	for _, p := range m.pagos {
		if p.RestaurantId == restaurantId && p.PedidoId != nil && *p.PedidoId == pedidoId {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pagos)
}

type stubCreds struct {
	cred *model.RestaurantCredential
}

func (s *stubCreds) Find(uint, string) (*model.RestaurantCredential, error) {
	if s.cred == nil {
		return nil, repository.ErrNotFound
	}
	return s.cred, nil
}

type stubFetcher struct {
	mu      sync.Mutex
	info    *gateway.PaymentInfo
	calls   int
	byToken map[string]*gateway.PaymentInfo
}

func (f *stubFetcher) GetPayment(token, id string) (*gateway.PaymentInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.byToken != nil {
		if info, ok := f.byToken[token]; ok {
			return info, nil
		}
		return nil, &gateway.UpstreamError{Status: 401, Body: "bad token"}
	}
	return f.info, nil
}

type recordingBilling struct {
	mu      sync.Mutex
	notices []notify.BillingNotice
}

func (b *recordingBilling) OrderPaid(_ context.Context, notice notify.BillingNotice) notify.NotifyResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, notice)
	return notify.NotifySent
}

func (b *recordingBilling) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notices)
}

func newWebhookFixture(t *testing.T) (*WebhookService, *memPaymentRepo, *countingNotifier, *recordingBilling) {
	t.Helper()

	repo := newMemOrderRepo()
	repo.mesas[1] = model.Mesa{DTO: model.DTO{ID: 1}, RestaurantId: 1, Label: "Mesa 1"}
	repo.catalog[10] = 15.00
	notifier := &countingNotifier{}
	orders := NewOrderService(repo, notifier, nil, zap.NewNop())

	payments := newMemPaymentRepo()
	billing := &recordingBilling{}
	ws := &WebhookService{
		Payments: payments,
		Creds:    &stubCreds{cred: &model.RestaurantCredential{AccessToken: "tenant-token"}},
		Orders:   orders,
		Fetchers: map[string]PaymentFetcher{
			model.ProviderMercadoPago: &stubFetcher{},
			model.ProviderCulqi:       &stubFetcher{},
		},
		Dedup:   notify.NewMemoryDedup(),
		Billing: billing,
		Log:     zap.NewNop(),
	}
	return ws, payments, notifier, billing
}

func fetcherStub(ws *WebhookService, provider string) *stubFetcher {
	return ws.Fetchers[provider].(*stubFetcher)
}

func approvedInfo(paymentId string, orderId uint) *gateway.PaymentInfo {
	return &gateway.PaymentInfo{
		Id:                paymentId,
		Status:            "approved",
		Amount:            30.00,
		Currency:          "PEN",
		ExternalReference: fmt.Sprintf("pedido-%d", orderId),
	}
}

func TestSettleMarksOrderPaidOnce(t *testing.T) {
	ws, payments, notifier, billing := newWebhookFixture(t)

	pedido, _, apiErr := ws.Orders.CreateOrder(1, orderInput(1, "wh-1"))
	require.Nil(t, apiErr)

	info := approvedInfo("mp-100", pedido.ID)

	// duplicate deliveries of the same provider event
	ws.Settle(1, model.ProviderMercadoPago, info)
	ws.Settle(1, model.ProviderMercadoPago, info)
	ws.Settle(1, model.ProviderMercadoPago, info)

	current, apiErr := ws.Orders.GetOrder(1, pedido.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.OrderPaid, current.Status)

	assert.Equal(t, 1, payments.count(), "one pago row per provider event")
	assert.Equal(t, 1, notifier.paid, "one kds broadcast")
	assert.Equal(t, 1, billing.count(), "one billing notification")
}

func TestSettleNonSuccessNeverPaysOrder(t *testing.T) {
	ws, payments, notifier, billing := newWebhookFixture(t)

	pedido, _, apiErr := ws.Orders.CreateOrder(1, orderInput(1, "wh-2"))
	require.Nil(t, apiErr)

	info := approvedInfo("mp-200", pedido.ID)
	info.Status = "rejected"
	ws.Settle(1, model.ProviderMercadoPago, info)

	current, apiErr := ws.Orders.GetOrder(1, pedido.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.OrderPendingPayment, current.Status)

	// the event is still recorded for audit
	assert.Equal(t, 1, payments.count())
	assert.Equal(t, 0, notifier.paid)
	assert.Equal(t, 0, billing.count())
}

func TestHandleIgnoresNonPaymentEvents(t *testing.T) {
	ws, payments, _, _ := newWebhookFixture(t)
	fetcher := fetcherStub(ws, model.ProviderMercadoPago)

	ws.Handle([]byte(`{"type":"merchant_order","data":{"id":"123"}}`), model.ProviderMercadoPago, 1, "", "")
	ws.Handle([]byte(`{}`), model.ProviderMercadoPago, 1, "", "")

	assert.Equal(t, 0, fetcher.calls)
	assert.Equal(t, 0, payments.count())
}

func TestHandleFetchesAndSettles(t *testing.T) {
	ws, payments, _, _ := newWebhookFixture(t)

	pedido, _, apiErr := ws.Orders.CreateOrder(1, orderInput(1, "wh-4"))
	require.Nil(t, apiErr)

	fetcherStub(ws, model.ProviderMercadoPago).info = approvedInfo("mp-400", pedido.ID)

	ws.Handle([]byte(`{"type":"payment","data":{"id":"mp-400"}}`), model.ProviderMercadoPago, 1, "", "")

	current, apiErr := ws.Orders.GetOrder(1, pedido.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.OrderPaid, current.Status)
	assert.Equal(t, 1, payments.count())
}

func TestHandleQueryParamVariant(t *testing.T) {
	ws, payments, _, _ := newWebhookFixture(t)

	pedido, _, apiErr := ws.Orders.CreateOrder(1, orderInput(1, "wh-5"))
	require.Nil(t, apiErr)

	fetcherStub(ws, model.ProviderMercadoPago).info = approvedInfo("mp-500", pedido.ID)

	// the IPN form: everything in the query string, empty body
	ws.Handle(nil, model.ProviderMercadoPago, 1, "payment", "mp-500")

	assert.Equal(t, 1, payments.count())
}

func TestHandleFallsBackToEnvToken(t *testing.T) {
	t.Setenv("MP_ACCESS_TOKEN", "env-token")

	ws, payments, _, _ := newWebhookFixture(t)

	pedido, _, apiErr := ws.Orders.CreateOrder(1, orderInput(1, "wh-6"))
	require.Nil(t, apiErr)

	// tenant token is rejected upstream, env token works
	ws.Fetchers[model.ProviderMercadoPago] = &stubFetcher{byToken: map[string]*gateway.PaymentInfo{
		"env-token": approvedInfo("mp-600", pedido.ID),
	}}

	ws.Handle([]byte(`{"type":"payment","data":{"id":"mp-600"}}`), model.ProviderMercadoPago, 1, "", "")

	assert.Equal(t, 1, payments.count())
	current, apiErr := ws.Orders.GetOrder(1, pedido.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.OrderPaid, current.Status)
}

func TestHandleFetchesFromHintedProvider(t *testing.T) {
	ws, payments, _, _ := newWebhookFixture(t)

	pedido, _, apiErr := ws.Orders.CreateOrder(1, orderInput(1, "wh-7"))
	require.Nil(t, apiErr)

	info := approvedInfo("chr_700", pedido.ID)
	info.Status = "paid"
	fetcherStub(ws, model.ProviderCulqi).info = info

	ws.Handle([]byte(`{"type":"payment","data":{"id":"chr_700"}}`), model.ProviderCulqi, 1, "", "")

	// the culqi event never touches the mercadopago client
	assert.Equal(t, 0, fetcherStub(ws, model.ProviderMercadoPago).calls)
	assert.Equal(t, 1, fetcherStub(ws, model.ProviderCulqi).calls)
	assert.Equal(t, 1, payments.count())

	current, apiErr := ws.Orders.GetOrder(1, pedido.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.OrderPaid, current.Status)
}

func TestHandleUnknownProviderIsDropped(t *testing.T) {
	ws, payments, _, _ := newWebhookFixture(t)

	ws.Handle([]byte(`{"type":"payment","data":{"id":"x-1"}}`), "stripe", 1, "", "")

	assert.Equal(t, 0, fetcherStub(ws, model.ProviderMercadoPago).calls)
	assert.Equal(t, 0, fetcherStub(ws, model.ProviderCulqi).calls)
	assert.Equal(t, 0, payments.count())
}

func TestSettleUnmatchedPaymentIsRecorded(t *testing.T) {
	ws, payments, notifier, billing := newWebhookFixture(t)

	info := approvedInfo("mp-700", 0)
	info.ExternalReference = "something-else"
	ws.Settle(1, model.ProviderMercadoPago, info)

	assert.Equal(t, 1, payments.count())
	assert.Equal(t, 0, notifier.paid)
	assert.Equal(t, 0, billing.count())
}

func TestDeriveOrderId(t *testing.T) {
	assert.Equal(t, uint(7), DeriveOrderId(&gateway.PaymentInfo{
		Metadata: map[string]string{"order_id": "7"},
	}))
	// provider metadata numbers round-trip as floats
	assert.Equal(t, uint(7), DeriveOrderId(&gateway.PaymentInfo{
		Metadata: map[string]string{"order_id": "7.0"},
	}))
	assert.Equal(t, uint(12), DeriveOrderId(&gateway.PaymentInfo{
		ExternalReference: "pedido-12",
	}))
	assert.Equal(t, uint(0), DeriveOrderId(&gateway.PaymentInfo{
		ExternalReference: "order-12x",
	}))
}

func TestParseWebhook(t *testing.T) {
	eventType, id := ParseWebhook([]byte(`{"type":"payment","data":{"id":123}}`), "", "")
	assert.Equal(t, "payment", eventType)
	assert.Equal(t, "123", id)

	eventType, id = ParseWebhook([]byte(`{"action":"payment.updated","data":{"id":"abc"}}`), "", "")
	assert.Equal(t, "payment.updated", eventType)
	assert.Equal(t, "abc", id)

	eventType, id = ParseWebhook(nil, "payment", "456")
	assert.Equal(t, "payment", eventType)
	assert.Equal(t, "456", id)
}
