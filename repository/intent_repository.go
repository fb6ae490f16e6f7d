package repository

import (
	"time"

	"resto_manager/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IntentRepository interface {
	// CreateOrReplace upserts on the partial unique pending-per-mesa index:
	// a resubmission for the same table overwrites amount/cart/note instead
	// of creating a second pending intent. Takeaway intents always insert.
	CreateOrReplace(intent *model.CheckoutIntent) (*model.CheckoutIntent, error)
	FindByID(restaurantId, id uint) (*model.CheckoutIntent, error)
	// MarkStatus is a guarded update: only rows still in `from` move to
	// `to`. A guard miss returns ErrGuardFailed, not an error state.
	MarkStatus(restaurantId, id uint, from, to string) (*model.CheckoutIntent, error)
	ExpireOverdue(now time.Time) (int64, error)
	PurgeStale(before time.Time) (int64, error)
}

type GormIntentRepository struct {
	db *gorm.DB
}

func NewIntentRepository(db *gorm.DB) *GormIntentRepository {
	return &GormIntentRepository{db: db}
}

func (r *GormIntentRepository) CreateOrReplace(intent *model.CheckoutIntent) (*model.CheckoutIntent, error) {
	if intent.MesaId == nil {
		if err := r.db.Create(intent).Error; err != nil {
			return nil, err
		}
		return intent, nil
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "restaurant_id"}, {Name: "mesa_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Eq{Column: clause.Column{Name: "status"}, Value: model.IntentPending}}},
		DoUpdates:   clause.AssignmentColumns([]string{"amount", "cart", "note", "expires_at", "updated_at"}),
	}).Create(intent)
	if res.Error != nil {
		return nil, res.Error
	}

	// Re-read: on conflict gorm leaves the in-memory struct with the id of
	// the failed insert, not the surviving row.
	var current model.CheckoutIntent
	err := r.db.
		Where("restaurant_id = ? AND mesa_id = ? AND status = ?",
			intent.RestaurantId, *intent.MesaId, model.IntentPending).
		First(&current).Error
	if err != nil {
		return nil, err
	}
	return &current, nil
}

func (r *GormIntentRepository) FindByID(restaurantId, id uint) (*model.CheckoutIntent, error) {
	var intent model.CheckoutIntent
	err := r.db.Where("id = ? AND restaurant_id = ?", id, restaurantId).First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *GormIntentRepository) MarkStatus(restaurantId, id uint, from, to string) (*model.CheckoutIntent, error) {
	res := r.db.Model(&model.CheckoutIntent{}).
		Where("id = ? AND restaurant_id = ? AND status = ?", id, restaurantId, from).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrGuardFailed
	}
	return r.FindByID(restaurantId, id)
}

func (r *GormIntentRepository) ExpireOverdue(now time.Time) (int64, error) {
	res := r.db.Model(&model.CheckoutIntent{}).
		Where("status = ? AND expires_at < ?", model.IntentPending, now).
		Update("status", model.IntentExpired)
	return res.RowsAffected, res.Error
}

func (r *GormIntentRepository) PurgeStale(before time.Time) (int64, error) {
	res := r.db.
		Where("status <> ? AND updated_at < ?", model.IntentPending, before).
		Delete(&model.CheckoutIntent{})
	return res.RowsAffected, res.Error
}
