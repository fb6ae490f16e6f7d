package service

import (
	"errors"
	"time"

	"resto_manager/model"
	"resto_manager/notify"
	"resto_manager/repository"

	"go.uber.org/zap"
)

// ReceiptSender mails an order receipt. Implementations are best-effort.
type ReceiptSender interface {
	SendReceipt(pedido *model.Pedido)
}

// OrderService is the order ledger: idempotent creation and guarded state
// transitions, plus the best-effort side effects of a paid order.
type OrderService struct {
	Orders   repository.OrderRepository
	Notifier notify.Notifier
	Receipts ReceiptSender
	Log      *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, notifier notify.Notifier, receipts ReceiptSender, log *zap.Logger) *OrderService {
	return &OrderService{Orders: orders, Notifier: notifier, Receipts: receipts, Log: log}
}

// CreateOrder creates an order exactly once per (tenant, idempotency key).
// The bool result reports whether a new order row was written; a legitimate
// retry returns the existing order with created=false.
func (s *OrderService) CreateOrder(restaurantId uint, in model.CreateOrderInput) (*model.Pedido, bool, *ApiError) {
	if len(in.Items) == 0 {
		return nil, false, Validation("order must contain at least one item")
	}

	mesa, err := s.Orders.FindMesa(restaurantId, in.MesaId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, NotFound("mesa not found for this restaurant")
		}
		return nil, false, Internal("failed to load mesa", err)
	}

	pedido, created, err := s.Orders.Create(repository.CreateOrderParams{
		RestaurantId:   restaurantId,
		Mesa:           mesa,
		IdempotencyKey: in.IdempotencyKey,
		Note:           in.Note,
		Billing:        in.Billing,
		Items:          in.Items,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCatalog):
			return nil, false, Validation(err.Error())
		case errors.Is(err, repository.ErrDuplicate):
			return s.recoverCreateRace(restaurantId, mesa, in.IdempotencyKey)
		default:
			s.Log.Error("order creation failed",
				zap.Uint("restaurant_id", restaurantId),
				zap.String("idempotency_key", in.IdempotencyKey),
				zap.Error(err))
			return nil, false, Internal("failed to create order", err)
		}
	}

	if created {
		s.Notifier.OrderCreated(restaurantId, BuildOrderView(pedido))
	}
	return pedido, created, nil
}

// recoverCreateRace handles the loser side of a unique-constraint race. A
// retry with the same key re-reads the winning row and returns it as a
// success; a different key colliding on the one-active-ticket-per-mesa index
// surfaces the busy order as a conflict.
func (s *OrderService) recoverCreateRace(restaurantId uint, mesa *model.Mesa, key string) (*model.Pedido, bool, *ApiError) {
	if winner, err := s.Orders.FindByIdempotencyKey(restaurantId, key); err == nil {
		return winner, false, nil
	}
	if busy, err := s.Orders.FindActiveByMesa(restaurantId, mesa.ID); err == nil {
		return nil, false, ConflictData("mesa already has an active order", map[string]any{"orderId": busy.ID})
	}
	return nil, false, Internal("order creation race could not be resolved", repository.ErrDuplicate)
}

// Transition moves an order between states. Terminal states reject any
// further attempt with a conflict.
func (s *OrderService) Transition(restaurantId, id uint, target string) (*model.Pedido, *ApiError) {
	pedido, err := s.Orders.Transition(restaurantId, id, target)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, NotFound("order not found")
		case errors.Is(err, repository.ErrIllegalTransition):
			return nil, Conflict("order state does not allow this transition")
		default:
			s.Log.Error("order transition failed",
				zap.Uint("order_id", id),
				zap.String("target", target),
				zap.Error(err))
			return nil, Internal("failed to update order", err)
		}
	}

	if target == model.OrderPaid {
		s.afterPaid(pedido)
	}
	return pedido, nil
}

// PaidFromPayment upgrades a still-pending order to paid on behalf of the
// reconciler. A replay against an already-paid order is reported as not
// transitioned, without error; any other terminal state is left alone.
func (s *OrderService) PaidFromPayment(restaurantId, orderId uint) (*model.Pedido, bool, error) {
	pedido, err := s.Orders.Transition(restaurantId, orderId, model.OrderPaid)
	if err == nil {
		s.afterPaid(pedido)
		return pedido, true, nil
	}
	if !errors.Is(err, repository.ErrIllegalTransition) {
		return nil, false, err
	}

	current, ferr := s.Orders.FindByID(restaurantId, orderId)
	if ferr != nil {
		return nil, false, ferr
	}
	if current.Status == model.OrderPaid {
		return current, false, nil
	}
	s.Log.Warn("payment confirmed for an order no longer payable",
		zap.Uint("order_id", orderId),
		zap.String("status", current.Status))
	return current, false, nil
}

// ReassertPaid serves the internal billing callback: it idempotently ensures
// the order is paid and re-broadcasts to the kitchen display.
func (s *OrderService) ReassertPaid(restaurantId, orderId uint) (*model.Pedido, *ApiError) {
	pedido, err := s.Orders.FindByID(restaurantId, orderId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("order not found")
		}
		return nil, Internal("failed to load order", err)
	}

	switch pedido.Status {
	case model.OrderPendingPayment:
		return s.Transition(restaurantId, orderId, model.OrderPaid)
	case model.OrderPaid:
		s.Notifier.OrderPaid(restaurantId, BuildOrderView(pedido))
		return pedido, nil
	default:
		return nil, Conflict("order is anulled and cannot be paid")
	}
}

func (s *OrderService) GetOrder(restaurantId, id uint) (*model.Pedido, *ApiError) {
	pedido, err := s.Orders.FindByID(restaurantId, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("order not found")
		}
		return nil, Internal("failed to load order", err)
	}
	return pedido, nil
}

// Snapshot returns the non-anulled orders of the recent window as KDS views,
// so a freshly connected display is not empty.
func (s *OrderService) Snapshot(restaurantId uint, window time.Duration) ([]notify.OrderView, *ApiError) {
	pedidos, err := s.Orders.RecentActive(restaurantId, time.Now().Add(-window))
	if err != nil {
		return nil, Internal("failed to load recent orders", err)
	}
	views := make([]notify.OrderView, 0, len(pedidos))
	for i := range pedidos {
		views = append(views, BuildOrderView(&pedidos[i]))
	}
	return views, nil
}

func (s *OrderService) afterPaid(pedido *model.Pedido) {
	s.Notifier.OrderPaid(pedido.RestaurantId, BuildOrderView(pedido))
	if s.Receipts != nil && pedido.BillingEmail != "" {
		go s.Receipts.SendReceipt(pedido)
	}
}
