package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"resto_manager/config"
)

// Culqi client for the card provider: direct server-side charge with a
// client-collected payment token. Amounts are in minor units (céntimos).
type Culqi struct {
	baseURL string
	http    *http.Client
}

func NewCulqi() *Culqi {
	return &Culqi{
		baseURL: config.ConfigOr("CULQI_BASE_URL", "https://api.culqi.com/v2"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type CulqiChargeRequest struct {
	Amount       int64             `json:"amount"`
	CurrencyCode string            `json:"currency_code"`
	Email        string            `json:"email"`
	SourceId     string            `json:"source_id"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type culqiChargeResponse struct {
	Id           string            `json:"id"`
	Amount       int64             `json:"amount"`
	CurrencyCode string            `json:"currency_code"`
	Metadata     map[string]string `json:"metadata"`
	Outcome      struct {
		Type string `json:"type"`
	} `json:"outcome"`
	Source struct {
		Type string `json:"type"`
	} `json:"source"`
}

func culqiStatus(outcomeType string) string {
	if outcomeType == "venta_exitosa" || outcomeType == "charge_ok" {
		return "paid"
	}
	return "failed"
}

// CreateCharge attempts the charge. A charge_ok outcome is normalized to the
// shared "paid" success status.
func (cq *Culqi) CreateCharge(secretKey string, req CulqiChargeRequest, idemKey string) (*ChargeResult, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequest(http.MethodPost, cq.baseURL+"/charges", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+secretKey)
	if idemKey != "" {
		httpReq.Header.Set("X-Idempotency-Key", idemKey)
	}

	resp, err := cq.http.Do(httpReq)
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

	var out culqiChargeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &ChargeResult{
		ProviderPaymentId: out.Id,
		Status:            culqiStatus(out.Outcome.Type),
		Raw:               string(body),
	}, nil
}

// GetPayment fetches a charge back for reconciliation, normalized to the
// shared payment shape. Amounts come back in céntimos.
func (cq *Culqi) GetPayment(secretKey, id string) (*PaymentInfo, error) {
	httpReq, err := http.NewRequest(http.MethodGet, cq.baseURL+"/charges/"+id, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+secretKey)

	resp, err := cq.http.Do(httpReq)
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

	var raw culqiChargeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &PaymentInfo{
		Id:       raw.Id,
		Status:   culqiStatus(raw.Outcome.Type),
		Amount:   float64(raw.Amount) / 100,
		Currency: raw.CurrencyCode,
		Method:   raw.Source.Type,
		Metadata: raw.Metadata,
		Raw:      string(body),
	}, nil
}
