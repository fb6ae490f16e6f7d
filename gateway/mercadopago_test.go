package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMercadoPagoGetPaymentNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/123", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		// the provider returns the id as a JSON number and metadata
		// numbers as floats
		w.Write([]byte(`{
			"id": 123,
			"status": "approved",
			"transaction_amount": 30.5,
			"currency_id": "PEN",
			"payment_type_id": "credit_card",
			"external_reference": "pedido-7",
			"metadata": {"order_id": 7, "restaurant_id": 1}
		}`))
	}))
	defer srv.Close()

	t.Setenv("MP_BASE_URL", srv.URL)
	mp := NewMercadoPago()

	info, err := mp.GetPayment("test-token", "123")
	require.NoError(t, err)
	assert.Equal(t, "123", info.Id)
	assert.Equal(t, "approved", info.Status)
	assert.InDelta(t, 30.5, info.Amount, 1e-9)
	assert.Equal(t, "PEN", info.Currency)
	assert.Equal(t, "pedido-7", info.ExternalReference)
	assert.Equal(t, "7", info.Metadata["order_id"])
}

func TestMercadoPagoCreatePaymentSendsIdempotencyHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "idem-1", r.Header.Get("X-Idempotency-Key"))
		assert.Equal(t, "device-9", r.Header.Get("X-meli-session-id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pedido-7", body["external_reference"])

		w.Write([]byte(`{"id": 555, "status": "approved"}`))
	}))
	defer srv.Close()

	t.Setenv("MP_BASE_URL", srv.URL)
	mp := NewMercadoPago()

	res, err := mp.CreatePayment("tok", MPPaymentRequest{
		TransactionAmount: 30.00,
		Token:             "card-token",
		Installments:      1,
		ExternalReference: "pedido-7",
	}, "idem-1", "device-9")
	require.NoError(t, err)
	assert.Equal(t, "555", res.ProviderPaymentId)
	assert.Equal(t, "approved", res.Status)
}

func TestMercadoPagoCreatePreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		w.Write([]byte(`{"id": "pref-1", "init_point": "https://mp.example/checkout"}`))
	}))
	defer srv.Close()

	t.Setenv("MP_BASE_URL", srv.URL)
	mp := NewMercadoPago()

	pref, err := mp.CreatePreference("tok", MPPreferenceRequest{
		Items:             []MPPreferenceItem{{Title: "Ceviche", Quantity: 2, UnitPrice: 15.00}},
		ExternalReference: "pedido-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.Id)
	assert.Equal(t, "https://mp.example/checkout", pref.InitPoint)
}

func TestMercadoPagoUpstreamErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	t.Setenv("MP_BASE_URL", srv.URL)
	mp := NewMercadoPago()

	_, err := mp.GetPayment("bad", "1")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Contains(t, upstream.Body, "invalid token")
}
