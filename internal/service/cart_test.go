package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCartService_GetCart_CreatesOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.Cart.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, first.IsEmpty())

	second, err := env.Cart.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, env.count(t, &models.Cart{}))

	_, err = env.Cart.GetCart(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCartService_AddToCart_MergesSameLine(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Keyboard", "100", 10)

	env.add(t, "user-1", p, 2)
	item, err := env.Cart.AddToCart(ctx, "user-1", transport.AddToCartRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	cart, err := env.Cart.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "500", cart.TotalAmount().String())

	assert.Equal(t, []string{"cart_item_added", "cart_item_added"}, env.Events.Types(events.TopicCart))
}

func TestCartService_AddToCart_ZeroQuantityMeansOne(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	p := env.product(t, "Mouse", "25", 3)

	item, err := env.Cart.AddToCart(context.Background(), "user-1", transport.AddToCartRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestCartService_AddToCart_Rejections(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	shirt := env.productSized(t, "Shirt", "30", 5, "S,M,L")
	mug := env.product(t, "Mug", "8", 2)

	tests := []struct {
		name string
		req  transport.AddToCartRequest
		err  error
	}{
		{name: "missing product id", req: transport.AddToCartRequest{Quantity: 1}, err: ErrValidation},
		{name: "negative quantity", req: transport.AddToCartRequest{ProductID: mug.ID, Quantity: -1}, err: ErrValidation},
		{name: "unknown product", req: transport.AddToCartRequest{ProductID: 9999, Quantity: 1}, err: ErrNotFound},
		{name: "size required", req: transport.AddToCartRequest{ProductID: shirt.ID, Quantity: 1}, err: ErrValidation},
		{name: "size not offered", req: transport.AddToCartRequest{ProductID: shirt.ID, Quantity: 1, Size: "XXL"}, err: ErrValidation},
		{name: "over stock", req: transport.AddToCartRequest{ProductID: mug.ID, Quantity: 3}, err: ErrInsufficientStock},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Cart.AddToCart(context.Background(), "user-1", tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	cart, err := env.Cart.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_AddToCart_SizesAreSeparateLines(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	shirt := env.productSized(t, "Shirt", "30", 10, "S,M,L")

	_, err := env.Cart.AddToCart(ctx, "user-1", transport.AddToCartRequest{ProductID: shirt.ID, Quantity: 1, Size: "m"})
	require.NoError(t, err)
	_, err = env.Cart.AddToCart(ctx, "user-1", transport.AddToCartRequest{ProductID: shirt.ID, Quantity: 2, Size: "L"})
	require.NoError(t, err)
	_, err = env.Cart.AddToCart(ctx, "user-1", transport.AddToCartRequest{ProductID: shirt.ID, Quantity: 1, Size: "M"})
	require.NoError(t, err)

	cart, err := env.Cart.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "M", cart.Items[0].Size)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "L", cart.Items[1].Size)
	assert.Equal(t, 4, cart.ItemCount())
}

func TestCartService_UpdateQuantity(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Lamp", "40", 4)
	env.add(t, "user-1", p, 1)

	cart, err := env.Cart.GetCart(ctx, "user-1")
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	item, err := env.Cart.UpdateQuantity(ctx, "user-1", itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	_, err = env.Cart.UpdateQuantity(ctx, "user-1", itemID, 5)
	var se *StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Lamp", se.ProductName)

	_, err = env.Cart.UpdateQuantity(ctx, "user-1", itemID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Cart.UpdateQuantity(ctx, "user-2", itemID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_RemoveAndCount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.product(t, "A", "1", 10)
	b := env.product(t, "B", "2", 10)
	env.add(t, "user-1", a, 2)
	env.add(t, "user-1", b, 3)

	n, err := env.Cart.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	cart, err := env.Cart.GetCart(ctx, "user-1")
	require.NoError(t, err)

	assert.ErrorIs(t, env.Cart.RemoveItem(ctx, "user-2", cart.Items[0].ID), ErrNotFound)
	require.NoError(t, env.Cart.RemoveItem(ctx, "user-1", cart.Items[0].ID))

	n, err = env.Cart.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, env.Cart.Clear(ctx, "user-1"))
	n, err = env.Cart.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = env.Cart.Count(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartService_ConcurrentGetCart_SingleCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	const N = 50
	ids := make(map[uint]struct{})
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			cart, err := env.Cart.GetCart(ctx, "user-1")
			if err != nil {
				return err
			}
			mu.Lock()
			ids[cart.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Len(t, ids, 1)
	assert.EqualValues(t, 1, env.count(t, &models.Cart{}))
}

func TestCartService_ConcurrentAdd_NoLostIncrements(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	p := env.product(t, "Cable", "5", 1000)

	const N = 40
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := env.Cart.AddToCart(ctx, "user-1", transport.AddToCartRequest{ProductID: p.ID, Quantity: 1})
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	cart, err := env.Cart.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, N, cart.Items[0].Quantity)
	assert.EqualValues(t, 1, env.count(t, &models.CartItem{}))
}
