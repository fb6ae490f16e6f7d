package repository

import (
	"resto_manager/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository owns pago rows. RecordIfNew is the replay-safety anchor
// of the reconciler: a duplicate provider event id is a storage no-op.
type PaymentRepository interface {
	// RecordIfNew inserts the payment unless one with the same
	// (restaurant, provider, provider_event_id) already exists. Returns
	// true when a new row was written.
	RecordIfNew(pago *model.Pago) (bool, error)
	FindByProviderEvent(restaurantId uint, provider, eventId string) (*model.Pago, error)
	FindByOrder(restaurantId, pedidoId uint) ([]model.Pago, error)
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) RecordIfNew(pago *model.Pago) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "restaurant_id"}, {Name: "provider"}, {Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(pago)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormPaymentRepository) FindByProviderEvent(restaurantId uint, provider, eventId string) (*model.Pago, error) {
	var pago model.Pago
	err := r.db.
		Where("restaurant_id = ? AND provider = ? AND provider_event_id = ?", restaurantId, provider, eventId).
		First(&pago).Error
	if err != nil {
		return nil, err
	}
	return &pago, nil
}

func (r *GormPaymentRepository) FindByOrder(restaurantId, pedidoId uint) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.
		Where("restaurant_id = ? AND pedido_id = ?", restaurantId, pedidoId).
		Order("created_at asc").
		Find(&pagos).Error
	if err != nil {
		return nil, err
	}
	return pagos, nil
}
