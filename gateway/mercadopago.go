package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"resto_manager/config"
)

// MercadoPago client for the wallet/card provider: preference-based redirect
// checkout, direct payment creation and payment fetch. Tokens are passed per
// call so the reconciler can retry with the environment fallback token.
type MercadoPago struct {
	baseURL string
	http    *http.Client
}

func NewMercadoPago() *MercadoPago {
	return &MercadoPago{
		baseURL: config.ConfigOr("MP_BASE_URL", "https://api.mercadopago.com"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type MPPreferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type MPPreferenceRequest struct {
	Items             []MPPreferenceItem `json:"items"`
	ExternalReference string             `json:"external_reference"`
	NotificationURL   string             `json:"notification_url,omitempty"`
	Metadata          map[string]string  `json:"metadata,omitempty"`
}

type MPPreferenceResponse struct {
	Id               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type MPPayer struct {
	Email string `json:"email"`
}

type MPPaymentRequest struct {
	TransactionAmount float64           `json:"transaction_amount"`
	Token             string            `json:"token,omitempty"`
	Description       string            `json:"description"`
	Installments      int               `json:"installments"`
	PaymentMethodId   string            `json:"payment_method_id,omitempty"`
	Payer             MPPayer           `json:"payer"`
	ExternalReference string            `json:"external_reference"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type mpPaymentResponse struct {
	Id                json.Number    `json:"id"`
	Status            string         `json:"status"`
	TransactionAmount float64        `json:"transaction_amount"`
	CurrencyId        string         `json:"currency_id"`
	PaymentTypeId     string         `json:"payment_type_id"`
	ExternalReference string         `json:"external_reference"`
	Metadata          map[string]any `json:"metadata"`
}

// CreatePreference builds a redirect-checkout preference.
func (mp *MercadoPago) CreatePreference(token string, req MPPreferenceRequest) (*MPPreferenceResponse, error) {
	body, err := mp.post(token, "/checkout/preferences", req, "", "")
	if err != nil {
		return nil, err
	}
	var out MPPreferenceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment performs a direct charge. The idempotency key and the device
// fingerprint header materially reduce provider-side duplicate-charge risk.
func (mp *MercadoPago) CreatePayment(token string, req MPPaymentRequest, idemKey, deviceId string) (*ChargeResult, error) {
	body, err := mp.post(token, "/v1/payments", req, idemKey, deviceId)
	if err != nil {
		return nil, err
	}
	var out mpPaymentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &ChargeResult{
		ProviderPaymentId: out.Id.String(),
		Status:            out.Status,
		Raw:               string(body),
	}, nil
}

// GetPayment fetches the authoritative payment resource for reconciliation.
func (mp *MercadoPago) GetPayment(token, id string) (*PaymentInfo, error) {
	httpReq, err := http.NewRequest(http.MethodGet, mp.baseURL+"/v1/payments/"+id, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := mp.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var raw mpPaymentResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	meta := make(map[string]string, len(raw.Metadata))
	for k, v := range raw.Metadata {
		meta[k] = fmt.Sprintf("%v", v)
	}
	return &PaymentInfo{
		Id:                raw.Id.String(),
		Status:            raw.Status,
		Amount:            raw.TransactionAmount,
		Currency:          raw.CurrencyId,
		Method:            raw.PaymentTypeId,
		ExternalReference: raw.ExternalReference,
		Metadata:          meta,
		Raw:               string(body),
	}, nil
}

func (mp *MercadoPago) post(token, path string, payload any, idemKey, deviceId string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequest(http.MethodPost, mp.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if idemKey != "" {
		httpReq.Header.Set("X-Idempotency-Key", idemKey)
	}
	if deviceId != "" {
		httpReq.Header.Set("X-meli-session-id", deviceId)
	}

	resp, err := mp.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
