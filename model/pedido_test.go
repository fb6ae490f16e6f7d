package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(OrderPendingPayment, OrderPaid))
	assert.True(t, CanTransition(OrderPendingPayment, OrderAnulled))

	// terminal states never move again
	assert.False(t, CanTransition(OrderPaid, OrderAnulled))
	assert.False(t, CanTransition(OrderPaid, OrderPendingPayment))
	assert.False(t, CanTransition(OrderAnulled, OrderPaid))

	assert.False(t, CanTransition(OrderPendingPayment, OrderPendingPayment))
	assert.False(t, CanTransition(OrderPendingPayment, "refunded"))
}

func TestSumDetalles(t *testing.T) {
	detalles := []PedidoDetalle{
		{Quantity: 2, UnitPrice: 15.00},
		{Quantity: 1, UnitPrice: 8.50},
	}
	assert.InDelta(t, 38.50, SumDetalles(detalles), 1e-9)
	assert.Equal(t, 0.0, SumDetalles(nil))
}

func TestLineTotal(t *testing.T) {
	d := PedidoDetalle{Quantity: 3, UnitPrice: 12.90}
	assert.InDelta(t, 38.70, d.LineTotal(), 1e-9)
}
