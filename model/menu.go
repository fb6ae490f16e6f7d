package model

// Catalog entities. CRUD for these lives in the admin service; this backend
// only reads them as the price authority during order creation.

type MenuItem struct {
	DTO
	RestaurantId uint    `gorm:"not null;index" json:"restaurantId"`
	Name         string  `gorm:"size:120;not null" json:"name"`
	Price        float64 `gorm:"not null" json:"price"`
	IsActive     bool    `gorm:"default:true" json:"isActive"`
}

type Combo struct {
	DTO
	RestaurantId uint         `gorm:"not null;index" json:"restaurantId"`
	Name         string       `gorm:"size:120;not null" json:"name"`
	Price        float64      `gorm:"not null" json:"price"`
	IsActive     bool         `gorm:"default:true" json:"isActive"`
	Groups       []ComboGroup `gorm:"foreignKey:ComboId" json:"groups,omitempty"`
}

type ComboGroup struct {
	DTO
	ComboId  uint             `gorm:"not null;index" json:"comboId"`
	Name     string           `gorm:"size:60;not null" json:"name"`
	Position int              `json:"position"`
	Items    []ComboGroupItem `gorm:"foreignKey:ComboGroupId" json:"items,omitempty"`
}

type ComboGroupItem struct {
	DTO
	ComboGroupId uint      `gorm:"not null;index" json:"comboGroupId"`
	MenuItemId   uint      `gorm:"not null" json:"menuItemId"`
	MenuItem     *MenuItem `json:"menuItem,omitempty"`
}

// Legacy combos configured before groups existed expose two fixed slots.
const (
	ComboSlotStarter = "starter"
	ComboSlotMain    = "main"
)
