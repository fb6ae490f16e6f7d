package model

import "time"

const (
	IntentPending   = "pending"
	IntentAbandoned = "abandoned"
	IntentExpired   = "expired"
)

// CheckoutIntent is the short-lived staging record a client creates before a
// payment attempt. At most one pending intent per (restaurant, mesa); the
// partial unique index enforces it, not an application lock. Takeaway intents
// carry no mesa id and therefore never collide.
type CheckoutIntent struct {
	DTO
	RestaurantId uint      `gorm:"not null;index:ux_intent_pending,unique,where:status = 'pending',priority:1" json:"restaurantId"`
	MesaId       *uint     `gorm:"index:ux_intent_pending,unique,where:status = 'pending',priority:2" json:"mesaId,omitempty"`
	OrderType    string    `gorm:"size:20;default:table" json:"orderType"`
	Amount       float64   `json:"amount"`
	Cart         string    `gorm:"type:jsonb" json:"cart"` // opaque client snapshot
	Note         string    `json:"note,omitempty"`
	Status       string    `gorm:"size:20;default:pending" json:"status"`
	ExpiresAt    time.Time `gorm:"index" json:"expiresAt"`
}

func (CheckoutIntent) TableName() string { return "checkout_intents" }

// Expired reports whether a still-pending intent is past its deadline.
// Expiry is checked at read time; the sweep job only persists it.
func (ci CheckoutIntent) Expired(now time.Time) bool {
	return ci.Status == IntentPending && now.After(ci.ExpiresAt)
}

type CreateIntentInput struct {
	MesaId    *uint   `json:"table"`
	OrderType string  `json:"orderType" validate:"omitempty,oneof=table takeaway"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Cart      string  `json:"cart" validate:"required"`
	Note      string  `json:"note" validate:"max=500"`
}
