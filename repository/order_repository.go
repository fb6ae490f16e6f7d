package repository

import (
	"errors"
	"fmt"
	"time"

	"resto_manager/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateOrderParams struct {
	RestaurantId   uint
	Mesa           *model.Mesa
	IdempotencyKey string
	Note           string
	Billing        *model.BillingInput
	Items          []model.OrderItemInput
}

// OrderRepository owns order and order-line rows. Create and Transition are
// each atomic: a failure rolls back everything the call touched.
type OrderRepository interface {
	FindMesa(restaurantId, mesaId uint) (*model.Mesa, error)
	// Create performs the idempotent order creation of the ledger. The bool
	// result is false when an existing order for the same key was returned.
	Create(params CreateOrderParams) (*model.Pedido, bool, error)
	FindByID(restaurantId, id uint) (*model.Pedido, error)
	FindByIdempotencyKey(restaurantId uint, key string) (*model.Pedido, error)
	FindActiveByMesa(restaurantId, mesaId uint) (*model.Pedido, error)
	// Transition moves an order between states under a row-level write lock.
	Transition(restaurantId, id uint, target string) (*model.Pedido, error)
	RecentActive(restaurantId uint, since time.Time) ([]model.Pedido, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindMesa(restaurantId, mesaId uint) (*model.Mesa, error) {
	var mesa model.Mesa
	if err := r.db.Where("id = ? AND restaurant_id = ?", mesaId, restaurantId).First(&mesa).Error; err != nil {
		return nil, err
	}
	return &mesa, nil
}

func (r *GormOrderRepository) Create(params CreateOrderParams) (*model.Pedido, bool, error) {
	var pedido *model.Pedido
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var mesaId *uint
		orderType := model.OrderTypeTakeaway
		if params.Mesa != nil && !params.Mesa.IsTakeaway {
			mesaId = &params.Mesa.ID
			orderType = model.OrderTypeTable

			// One active ticket per table: a new order supersedes any other
			// pending one on the same mesa.
			if err := tx.Model(&model.Pedido{}).
				Where("restaurant_id = ? AND mesa_id = ? AND status = ? AND idempotency_key <> ?",
					params.RestaurantId, params.Mesa.ID, model.OrderPendingPayment, params.IdempotencyKey).
				Updates(map[string]any{"status": model.OrderAnulled, "anulled_at": time.Now()}).Error; err != nil {
				return err
			}
		}

		row := model.Pedido{
			RestaurantId:   params.RestaurantId,
			MesaId:         mesaId,
			OrderType:      orderType,
			Status:         model.OrderPendingPayment,
			IdempotencyKey: params.IdempotencyKey,
			Note:           params.Note,
		}
		if params.Billing != nil {
			row.BillingName = params.Billing.Name
			row.BillingEmail = params.Billing.Email
			row.BillingTaxId = params.Billing.TaxId
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "idempotency_key"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected == 1

		if !created {
			// A row for this key already exists: return it as the winner.
			existing, err := r.findByKeyTx(tx, params.RestaurantId, params.IdempotencyKey)
			if err != nil {
				return err
			}
			if len(existing.Detalles) > 0 {
				// True retry of a fully processed request: nothing to redo.
				pedido = existing
				return nil
			}
			// Header exists but a previous attempt died before writing
			// lines; resume population on the existing row.
			row = *existing
		}

		total, err := insertLines(tx, &row, params.Items)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Pedido{}).Where("id = ?", row.ID).Update("total", total).Error; err != nil {
			return err
		}

		full, err := r.findByIDTx(tx, params.RestaurantId, row.ID)
		if err != nil {
			return err
		}
		pedido = full
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return pedido, created, nil
}

// insertLines resolves authoritative unit prices from the catalog, writes the
// lines and combo selections, and returns the exact total. Client-submitted
// prices are never trusted.
func insertLines(tx *gorm.DB, pedido *model.Pedido, items []model.OrderItemInput) (float64, error) {
	var total float64
	for _, item := range items {
		det := model.PedidoDetalle{
			RestaurantId: pedido.RestaurantId,
			PedidoId:     pedido.ID,
			Quantity:     item.Quantity,
		}

		var combo *model.Combo
		switch {
		case item.MenuItemId != nil && item.ComboId == nil:
			var mi model.MenuItem
			if err := tx.Where("id = ? AND restaurant_id = ? AND is_active = true",
				*item.MenuItemId, pedido.RestaurantId).First(&mi).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return 0, fmt.Errorf("%w: menu item %d", ErrCatalog, *item.MenuItemId)
				}
				return 0, err
			}
			det.MenuItemId = item.MenuItemId
			det.UnitPrice = mi.Price
		case item.ComboId != nil && item.MenuItemId == nil:
			var cb model.Combo
			if err := tx.Preload("Groups", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
				Preload("Groups.Items").
				Where("id = ? AND restaurant_id = ? AND is_active = true",
					*item.ComboId, pedido.RestaurantId).First(&cb).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return 0, fmt.Errorf("%w: combo %d", ErrCatalog, *item.ComboId)
				}
				return 0, err
			}
			combo = &cb
			det.ComboId = item.ComboId
			det.UnitPrice = cb.Price
		default:
			return 0, fmt.Errorf("%w: line must reference a menu item or a combo", ErrCatalog)
		}

		if err := tx.Create(&det).Error; err != nil {
			return 0, err
		}

		if combo != nil {
			selections, err := resolveComboSelections(combo, item.Selections)
			if err != nil {
				return 0, err
			}
			for _, sel := range selections {
				sel.PedidoDetalleId = det.ID
				if err := tx.Create(&sel).Error; err != nil {
					return 0, err
				}
			}
		}

		total += det.LineTotal()
	}
	return total, nil
}

// resolveComboSelections validates chosen sub-items against the combo's
// configured groups. When the client sends no explicit group selection the
// two legacy slots (starter, main) are filled from the first two groups.
func resolveComboSelections(combo *model.Combo, chosen []model.ComboSelectionInput) ([]model.PedidoDetalleComboItem, error) {
	groupByID := make(map[uint]*model.ComboGroup, len(combo.Groups))
	for i := range combo.Groups {
		groupByID[combo.Groups[i].ID] = &combo.Groups[i]
	}

	var out []model.PedidoDetalleComboItem
	for _, sel := range chosen {
		if sel.GroupId != nil {
			group, ok := groupByID[*sel.GroupId]
			if !ok {
				return nil, fmt.Errorf("%w: combo %d has no group %d", ErrCatalog, combo.ID, *sel.GroupId)
			}
			if !groupHasItem(group, sel.MenuItemId) {
				return nil, fmt.Errorf("%w: item %d not allowed in group %q", ErrCatalog, sel.MenuItemId, group.Name)
			}
			out = append(out, model.PedidoDetalleComboItem{
				ComboGroupId: sel.GroupId,
				MenuItemId:   sel.MenuItemId,
				Slot:         group.Name,
			})
			continue
		}

		// Legacy clients: no group ids, positional starter/main slots.
		slot := sel.Slot
		if slot == "" {
			slot = model.ComboSlotStarter
			if len(out) > 0 {
				slot = model.ComboSlotMain
			}
		}
		if slot != model.ComboSlotStarter && slot != model.ComboSlotMain {
			return nil, fmt.Errorf("%w: unknown combo slot %q", ErrCatalog, slot)
		}
		item := model.PedidoDetalleComboItem{MenuItemId: sel.MenuItemId, Slot: slot}
		if idx := legacySlotIndex(slot); idx < len(combo.Groups) {
			item.ComboGroupId = &combo.Groups[idx].ID
		}
		out = append(out, item)
	}
	return out, nil
}

func groupHasItem(group *model.ComboGroup, menuItemId uint) bool {
	for _, gi := range group.Items {
		if gi.MenuItemId == menuItemId {
			return true
		}
	}
	return false
}

func legacySlotIndex(slot string) int {
	if slot == model.ComboSlotMain {
		return 1
	}
	return 0
}

func (r *GormOrderRepository) findByIDTx(tx *gorm.DB, restaurantId, id uint) (*model.Pedido, error) {
	var pedido model.Pedido
	err := tx.
		Preload("Mesa").
		Preload("Detalles").
		Preload("Detalles.MenuItem").
		Preload("Detalles.Combo").
		Preload("Detalles.ComboItems").
		Where("id = ? AND restaurant_id = ?", id, restaurantId).
		First(&pedido).Error
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (r *GormOrderRepository) findByKeyTx(tx *gorm.DB, restaurantId uint, key string) (*model.Pedido, error) {
	var pedido model.Pedido
	err := tx.
		Preload("Mesa").
		Preload("Detalles").
		Preload("Detalles.ComboItems").
		Where("restaurant_id = ? AND idempotency_key = ?", restaurantId, key).
		First(&pedido).Error
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (r *GormOrderRepository) FindByID(restaurantId, id uint) (*model.Pedido, error) {
	return r.findByIDTx(r.db, restaurantId, id)
}

func (r *GormOrderRepository) FindByIdempotencyKey(restaurantId uint, key string) (*model.Pedido, error) {
	return r.findByKeyTx(r.db, restaurantId, key)
}

func (r *GormOrderRepository) FindActiveByMesa(restaurantId, mesaId uint) (*model.Pedido, error) {
	var pedido model.Pedido
	err := r.db.
		Where("restaurant_id = ? AND mesa_id = ? AND status = ?", restaurantId, mesaId, model.OrderPendingPayment).
		First(&pedido).Error
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (r *GormOrderRepository) Transition(restaurantId, id uint, target string) (*model.Pedido, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pedido model.Pedido
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND restaurant_id = ?", id, restaurantId).
			First(&pedido).Error; err != nil {
			return err
		}

		if !model.CanTransition(pedido.Status, target) {
			return ErrIllegalTransition
		}

		now := time.Now()
		updates := map[string]any{"status": target}
		switch target {
		case model.OrderPaid:
			updates["paid_at"] = &now
		case model.OrderAnulled:
			updates["anulled_at"] = &now
		}
		return tx.Model(&pedido).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(restaurantId, id)
}

func (r *GormOrderRepository) RecentActive(restaurantId uint, since time.Time) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.
		Preload("Mesa").
		Preload("Detalles").
		Preload("Detalles.MenuItem").
		Preload("Detalles.Combo").
		Where("restaurant_id = ? AND status <> ? AND created_at >= ?",
			restaurantId, model.OrderAnulled, since).
		Order("created_at desc").
		Find(&pedidos).Error
	if err != nil {
		return nil, err
	}
	return pedidos, nil
}
