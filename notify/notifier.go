package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event names on the KDS channel.
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrdersSnapshot = "orders.snapshot"
)

type OrderViewItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderView is what the kitchen display renders for one order.
type OrderView struct {
	OrderId   uint            `json:"orderId"`
	Number    string          `json:"number"`
	MesaLabel string          `json:"mesa,omitempty"`
	OrderType string          `json:"orderType"`
	Items     []OrderViewItem `json:"items"`
	Total     float64         `json:"total"`
	Status    string          `json:"status"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Notifier broadcasts order lifecycle events to a tenant's subscribers. The
// kitchen display is a convenience channel, not the system of record, so
// implementations swallow delivery failures.
type Notifier interface {
	OrderCreated(restaurantId uint, view OrderView)
	OrderPaid(restaurantId uint, view OrderView)
}

// Channel is the redis pubsub channel for one tenant's KDS room.
func Channel(restaurantId uint) string {
	return fmt.Sprintf("kds:%d", restaurantId)
}

// RedisNotifier publishes events to the tenant channel so every server
// instance fans out to its local websocket connections.
type RedisNotifier struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisNotifier(rdb *redis.Client, log *zap.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, log: log}
}

func (n *RedisNotifier) OrderCreated(restaurantId uint, view OrderView) {
	n.publish(restaurantId, EventOrderCreated, view)
}

func (n *RedisNotifier) OrderPaid(restaurantId uint, view OrderView) {
	n.publish(restaurantId, EventOrderPaid, view)
}

func (n *RedisNotifier) publish(restaurantId uint, event string, view OrderView) {
	payload, err := json.Marshal(Event{Event: event, Data: view})
	if err != nil {
		n.log.Warn("kds event marshal failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.rdb.Publish(ctx, Channel(restaurantId), payload).Err(); err != nil {
		n.log.Warn("kds broadcast failed",
			zap.Uint("restaurant_id", restaurantId),
			zap.String("event", event),
			zap.Error(err))
	}
}

// NoopNotifier drops everything. Used in tests and when redis is absent.
type NoopNotifier struct{}

func (NoopNotifier) OrderCreated(uint, OrderView) {}
func (NoopNotifier) OrderPaid(uint, OrderView)    {}
