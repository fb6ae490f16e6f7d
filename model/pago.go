package model

// Pago is one provider payment event reconciled against a local order. The
// unique index on (restaurant, provider, provider_event_id) is what makes
// duplicate webhooks a storage-level no-op; NULL event ids are exempt.
type Pago struct {
	DTO
	RestaurantId    uint    `gorm:"not null;uniqueIndex:ux_pago_evento,priority:1" json:"restaurantId"`
	PedidoId        *uint   `gorm:"index" json:"pedidoId,omitempty"`
	Provider        string  `gorm:"size:30;not null;uniqueIndex:ux_pago_evento,priority:2" json:"provider"`
	ProviderEventId *string `gorm:"size:80;uniqueIndex:ux_pago_evento,priority:3" json:"providerEventId,omitempty"`
	ProviderOrderId string  `gorm:"size:80" json:"providerOrderId,omitempty"`
	Amount          float64 `json:"amount"`
	Currency        string  `gorm:"size:8;default:PEN" json:"currency"`
	Method          string  `gorm:"size:30" json:"method,omitempty"`
	Status          string  `gorm:"size:30" json:"status"`
	RawPayload      string  `gorm:"type:text" json:"-"` // provider response kept for audit/replay
}

func (Pago) TableName() string { return "pagos" }

const (
	ProviderMercadoPago = "mercadopago"
	ProviderCulqi       = "culqi"
)

type CreatePreferenceInput struct {
	OrderId uint `json:"orderId" validate:"required,gt=0"`
}

type CreateChargeInput struct {
	OrderId         uint   `json:"orderId" validate:"required,gt=0"`
	Provider        string `json:"provider" validate:"required,oneof=mercadopago culqi"`
	Token           string `json:"token" validate:"required"` // client-collected card/source token
	Email           string `json:"email" validate:"omitempty,email"`
	Installments    int    `json:"installments" validate:"omitempty,gte=1"`
	PaymentMethodId string `json:"paymentMethodId"`
}
