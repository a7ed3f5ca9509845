package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotals(t *testing.T) {
	t.Parallel()

	keyboard := &Product{ID: 1, Price: decimal.RequireFromString("100.00")}
	cable := &Product{ID: 2, Price: decimal.RequireFromString("9.99")}

	cart := Cart{Items: []CartItem{
		{ProductID: 1, Quantity: 2, Product: keyboard},
		{ProductID: 2, Quantity: 3, Product: cable},
		{ProductID: 3, Quantity: 1},
	}}

	assert.True(t, decimal.RequireFromString("229.97").Equal(cart.TotalAmount()))
	assert.Equal(t, 6, cart.ItemCount())
	assert.Equal(t, []uint{1, 2, 3}, cart.ProductIDs())
	assert.False(t, cart.IsEmpty())
	assert.True(t, Cart{}.TotalAmount().IsZero())
}

func TestProductSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		size     string
		want     []string
		required bool
	}{
		{name: "none", size: "", want: nil, required: false},
		{name: "blank", size: "  ", want: nil, required: false},
		{name: "list", size: "S, M ,L", want: []string{"S", "M", "L"}, required: true},
		{name: "single", size: "42", want: []string{"42"}, required: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := Product{Size: tt.size}
			assert.Equal(t, tt.want, p.Sizes())
			assert.Equal(t, tt.required, p.RequiresSize())
		})
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, StatusShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestOrderItemsTotal(t *testing.T) {
	t.Parallel()

	o := Order{Items: []OrderItem{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.50")},
	}}
	assert.True(t, decimal.RequireFromString("200.50").Equal(o.ItemsTotal()))
}
