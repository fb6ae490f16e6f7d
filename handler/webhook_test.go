package handler

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"resto_manager/gateway"
	"resto_manager/model"
	"resto_manager/notify"
	"resto_manager/repository"
	"resto_manager/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noCreds struct{}

func (noCreds) Find(uint, string) (*model.RestaurantCredential, error) {
	return nil, repository.ErrNotFound
}

type failingFetcher struct{}

func (failingFetcher) GetPayment(token, id string) (*gateway.PaymentInfo, error) {
	return nil, &gateway.UpstreamError{Status: 500, Body: "unavailable"}
}

func webhookTestApp() *fiber.App {
	Webhooks = &service.WebhookService{
		Creds: noCreds{},
		Fetchers: map[string]service.PaymentFetcher{
			model.ProviderMercadoPago: failingFetcher{},
			model.ProviderCulqi:       failingFetcher{},
		},
		Dedup:   notify.NewMemoryDedup(),
		Billing: notify.NoopBilling{},
		Log:     zap.NewNop(),
	}

	app := fiber.New()
	app.Post("/webhooks/payment", PaymentWebhook)
	return app
}

// The webhook endpoint acks 200 no matter what arrives; anything else only
// triggers provider retry storms.
func TestPaymentWebhookAlwaysAcks(t *testing.T) {
	app := webhookTestApp()

	bodies := [][]byte{
		nil,
		[]byte(`not json at all`),
		[]byte(`{}`),
		[]byte(`{"type":"merchant_order","data":{"id":"1"}}`),
		[]byte(`{"type":"payment"}`),
		[]byte(`{"type":"payment","data":{"id":"999"}}`),
	}
	for _, body := range bodies {
		req := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
}

func TestPaymentWebhookAcksQueryVariant(t *testing.T) {
	app := webhookTestApp()

	req := httptest.NewRequest("POST", "/webhooks/payment?provider=mercadopago&restaurantId=1&topic=payment&id=123", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

// A provider we never registered a client for is still acked; processing
// drops it instead of querying some other provider's API.
func TestPaymentWebhookAcksUnknownProvider(t *testing.T) {
	app := webhookTestApp()

	req := httptest.NewRequest("POST", "/webhooks/payment?provider=stripe&topic=payment&id=9", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
