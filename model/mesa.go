package model

// Mesa is a physical table. Every restaurant also gets one pseudo-mesa with
// IsTakeaway set; orders placed through it carry no mesa id and skip the
// one-active-ticket rule.
type Mesa struct {
	DTO
	RestaurantId uint   `gorm:"not null;index" json:"restaurantId"`
	Label        string `gorm:"size:40;not null" json:"label"`
	Codigo       string `gorm:"unique;size:20" json:"codigo"`
	IsTakeaway   bool   `gorm:"default:false" json:"isTakeaway"`
}
