package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/draft"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type testEnv struct {
	Repo     *repo.GormRepo
	Events   *events.Recorder
	Drafts   *draft.MemoryStore
	Catalog  *CatalogService
	Cart     *CartService
	Checkout *CheckoutService
	Orders   *OrderService
	Category models.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	rec := &events.Recorder{}
	drafts := draft.NewMemoryStore(time.Minute)
	carts := &CartService{Repo: r, Events: rec}

	env := &testEnv{
		Repo:    r,
		Events:  rec,
		Drafts:  drafts,
		Catalog: &CatalogService{Repo: r, Events: rec},
		Cart:    carts,
		Checkout: &CheckoutService{
			Carts:   carts,
			Repo:    r,
			Drafts:  drafts,
			Gateway: payment.StubGateway{},
			Events:  rec,
		},
		Orders: &OrderService{Repo: r, Events: rec},
	}

	env.Category = models.Category{Name: "Electronics"}
	require.NoError(t, gdb.Create(&env.Category).Error)
	return env
}

func (env *testEnv) product(t *testing.T, name, price string, stock int) models.Product {
	t.Helper()
	return env.productSized(t, name, price, stock, "")
}

func (env *testEnv) productSized(t *testing.T, name, price string, stock int, size string) models.Product {
	t.Helper()

	p := models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Size:       size,
		CategoryID: env.Category.ID,
	}
	require.NoError(t, env.Repo.DB.Create(&p).Error)
	return p
}

func (env *testEnv) stock(t *testing.T, id uint) int {
	t.Helper()

	var p models.Product
	require.NoError(t, env.Repo.DB.First(&p, id).Error)
	return p.Stock
}

func (env *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, env.Repo.DB.Model(model).Count(&n).Error)
	return n
}

func (env *testEnv) add(t *testing.T, userID string, p models.Product, qty int) {
	t.Helper()

	_, err := env.Cart.AddToCart(context.Background(), userID, transport.AddToCartRequest{ProductID: p.ID, Quantity: qty})
	require.NoError(t, err)
}

func validAddress() transport.AddressForm {
	return transport.AddressForm{Address: "221B Baker Street, London", Phone: "+441234567", Note: "leave at the door"}
}

func validCard() transport.PaymentForm {
	return transport.PaymentForm{
		CardHolderName: "Ada Lovelace",
		CardNumber:     "4111 1111 1111 1111",
		ExpiryDate:     "12/29",
		CVV:            "123",
	}
}
