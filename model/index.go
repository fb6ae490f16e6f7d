package model

import "time"

type DTO struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Token kinds for KDS subscribers. The kind is decided once at issuance and
// carried in the claim, never guessed at verification time.
const (
	TokenKindAdmin   = "admin"
	TokenKindService = "service"
	TokenKindClient  = "client"
)

type TokenClaim struct {
	RestaurantId uint   `json:"restaurantId"`
	Kind         string `json:"kind"`
}
