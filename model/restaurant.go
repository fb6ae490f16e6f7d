package model

type Restaurant struct {
	DTO
	Name         string `gorm:"size:120;not null" json:"name"`
	BillingEmail string `json:"billingEmail,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"isActive"`
}

// RestaurantCredential holds per-tenant PSP credentials. When a tenant has no
// row for a provider the environment-level token is used instead.
type RestaurantCredential struct {
	DTO
	RestaurantId uint   `gorm:"not null;uniqueIndex:ux_cred_provider,priority:1" json:"restaurantId"`
	Provider     string `gorm:"size:30;not null;uniqueIndex:ux_cred_provider,priority:2" json:"provider"`
	AccessToken  string `gorm:"not null" json:"-"`
	PublicKey    string `json:"publicKey,omitempty"`
}
