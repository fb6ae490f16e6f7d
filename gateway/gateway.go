package gateway

import (
	"errors"
	"fmt"

	"resto_manager/config"
	"resto_manager/model"
	"resto_manager/repository"

	"gorm.io/gorm"
)

// UpstreamError is the normalized shape of a provider non-2xx response. The
// status and body pass through to callers so the client can fall back to
// another payment method.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Body)
}

// ChargeResult is the provider-agnostic outcome of a charge attempt.
type ChargeResult struct {
	ProviderPaymentId string `json:"providerPaymentId"`
	Status            string `json:"status"`
	Raw               string `json:"-"`
}

// PaymentInfo is the normalized authoritative payment resource fetched back
// from a provider during reconciliation.
type PaymentInfo struct {
	Id                string
	Status            string
	Amount            float64
	Currency          string
	Method            string
	ExternalReference string
	Metadata          map[string]string
	Raw               string
}

// IsSuccessStatus reports whether a provider payment status confirms money
// was captured. Anything else is stored for audit but never pays an order.
func IsSuccessStatus(status string) bool {
	switch status {
	case "approved", "paid", "succeeded":
		return true
	}
	return false
}

var ErrNoCredentials = errors.New("no usable payment credentials for tenant")

// ResolveToken returns the tenant's access token for a provider, falling back
// to the environment-level token when the tenant has no credential row.
func ResolveToken(creds repository.CredentialRepository, restaurantId uint, provider string) (string, error) {
	cred, err := creds.Find(restaurantId, provider)
	if err == nil && cred.AccessToken != "" {
		return cred.AccessToken, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if token := EnvToken(provider); token != "" {
		return token, nil
	}
	return "", ErrNoCredentials
}

// EnvToken is the environment-level fallback credential for a provider.
func EnvToken(provider string) string {
	switch provider {
	case model.ProviderMercadoPago:
		return config.Config("MP_ACCESS_TOKEN")
	case model.ProviderCulqi:
		return config.Config("CULQI_SECRET_KEY")
	}
	return ""
}
