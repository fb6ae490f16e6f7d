package repository

import (
	"resto_manager/model"

	"gorm.io/gorm"
)

type CredentialRepository interface {
	Find(restaurantId uint, provider string) (*model.RestaurantCredential, error)
}

type GormCredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) Find(restaurantId uint, provider string) (*model.RestaurantCredential, error) {
	var cred model.RestaurantCredential
	err := r.db.Where("restaurant_id = ? AND provider = ?", restaurantId, provider).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}
