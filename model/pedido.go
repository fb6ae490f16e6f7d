package model

import "time"

// Order states. pending_payment is the only non-terminal state; the
// reconciler is the sole writer of the pending_payment -> paid upgrade.
const (
	OrderPendingPayment = "pending_payment"
	OrderPaid           = "paid"
	OrderAnulled        = "anulled"
)

const (
	OrderTypeTable    = "table"
	OrderTypeTakeaway = "takeaway"
)

type Pedido struct {
	DTO
	RestaurantId   uint            `gorm:"not null;uniqueIndex:ux_pedido_idem,priority:1;index:ux_pedido_mesa_activa,unique,where:status = 'pending_payment',priority:1" json:"restaurantId"`
	MesaId         *uint           `gorm:"index:ux_pedido_mesa_activa,unique,where:status = 'pending_payment',priority:2" json:"mesaId,omitempty"`
	Mesa           *Mesa           `json:"mesa,omitempty"`
	OrderType      string          `gorm:"size:20;default:table" json:"orderType"`
	Total          float64         `json:"total"`
	Status         string          `gorm:"size:30;default:pending_payment" json:"status"`
	IdempotencyKey string          `gorm:"size:80;not null;uniqueIndex:ux_pedido_idem,priority:2" json:"idempotencyKey"`
	Note           string          `json:"note,omitempty"`
	BillingName    string          `json:"billingName,omitempty"`
	BillingEmail   string          `json:"billingEmail,omitempty"`
	BillingTaxId   string          `json:"billingTaxId,omitempty"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
	AnulledAt      *time.Time      `json:"anulledAt,omitempty"`
	Detalles       []PedidoDetalle `gorm:"foreignKey:PedidoId" json:"detalles,omitempty"`
}

func (Pedido) TableName() string { return "pedidos" }

// CanTransition reports whether an order may move from one state to another.
// Terminal states never transition again.
func CanTransition(from, to string) bool {
	if from != OrderPendingPayment {
		return false
	}
	return to == OrderPaid || to == OrderAnulled
}

type PedidoDetalle struct {
	DTO
	RestaurantId uint                     `gorm:"not null;index" json:"restaurantId"`
	PedidoId     uint                     `gorm:"not null;index" json:"pedidoId"`
	MenuItemId   *uint                    `json:"menuItemId,omitempty"`
	MenuItem     *MenuItem                `json:"menuItem,omitempty"`
	ComboId      *uint                    `json:"comboId,omitempty"`
	Combo        *Combo                   `json:"combo,omitempty"`
	Quantity     int                      `gorm:"not null" json:"quantity"`
	UnitPrice    float64                  `gorm:"not null" json:"unitPrice"` // price snapshot at order time, never recomputed
	ComboItems   []PedidoDetalleComboItem `gorm:"foreignKey:PedidoDetalleId" json:"comboItems,omitempty"`
}

func (PedidoDetalle) TableName() string { return "pedido_detalle" }

type PedidoDetalleComboItem struct {
	DTO
	PedidoDetalleId uint   `gorm:"not null;index" json:"pedidoDetalleId"`
	ComboGroupId    *uint  `json:"comboGroupId,omitempty"`
	MenuItemId      uint   `gorm:"not null" json:"menuItemId"`
	Slot            string `gorm:"size:60" json:"slot"`
}

func (PedidoDetalleComboItem) TableName() string { return "pedido_detalle_combo_items" }

// LineTotal is quantity x unit price for one line.
func (d PedidoDetalle) LineTotal() float64 {
	return float64(d.Quantity) * d.UnitPrice
}

// SumDetalles is the authoritative order total: the exact sum of its lines.
func SumDetalles(detalles []PedidoDetalle) float64 {
	var total float64
	for _, d := range detalles {
		total += d.LineTotal()
	}
	return total
}

// --- request shapes ---

type ComboSelectionInput struct {
	GroupId    *uint  `json:"groupId"`
	MenuItemId uint   `json:"menuItemId" validate:"required,gt=0"`
	Slot       string `json:"slot"`
}

type OrderItemInput struct {
	MenuItemId *uint                 `json:"menuItemId"`
	ComboId    *uint                 `json:"comboId"`
	Quantity   int                   `json:"qty" validate:"required,gt=0"`
	Selections []ComboSelectionInput `json:"selections" validate:"dive"`
}

type BillingInput struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	TaxId string `json:"taxId"`
}

type CreateOrderInput struct {
	MesaId         uint             `json:"table" validate:"required,gt=0"`
	Items          []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey string           `json:"idempotencyKey" validate:"required,max=80"`
	Note           string           `json:"note" validate:"max=500"`
	Billing        *BillingInput    `json:"billing"`
}

type UpdateOrderStateInput struct {
	State string `json:"state" validate:"required,oneof=paid anulled"`
}
