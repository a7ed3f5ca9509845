package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
)

const apiPrefix = "/api/v1"

type Deps struct {
	Catalog  *CatalogHTTP
	Cart     *CartHTTP
	Checkout *CheckoutHTTP
	Orders   *OrderHTTP

	JWTSecret []byte
	// AuthClient is optional; without it expired tokens are rejected instead of refreshed.
	AuthClient    auth.Refresher
	SecureCookies bool
	SessionTTL    time.Duration

	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authMW := auth.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient, d.SecureCookies)
	csrfMW := csrf.Middleware(csrf.Config{Secure: d.SecureCookies})

	api := e.Group(apiPrefix)

	api.GET("/categories", d.Catalog.ListCategories)
	api.GET("/categories/:id", d.Catalog.GetCategory)

	products := api.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)

	cart := api.Group("/cart", authMW.RequireAuth, csrfMW)
	cart.GET("", d.Cart.GetCart)
	cart.DELETE("", d.Cart.Clear)
	cart.GET("/count", d.Cart.Count)
	cart.POST("/items", d.Cart.AddToCart)
	cart.PATCH("/items/:id", d.Cart.UpdateItem)
	cart.DELETE("/items/:id", d.Cart.RemoveItem)

	checkout := api.Group("/checkout", authMW.RequireAuth, session.Middleware(d.SessionTTL, d.SecureCookies), csrfMW)
	checkout.GET("/address", d.Checkout.AddressStep)
	checkout.POST("/address", d.Checkout.SubmitAddress)
	checkout.GET("/payment", d.Checkout.PaymentStep)
	checkout.POST("/payment", d.Checkout.SubmitPayment)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.Orders.ListMyOrders)
	orders.GET("/:id", d.Orders.GetMyOrder)

	admin := api.Group("/admin", authMW.RequireAdmin, csrfMW)
	admin.POST("/products", d.Catalog.CreateProduct)
	admin.PATCH("/products/:id", d.Catalog.PatchProduct)
	admin.DELETE("/products/:id", d.Catalog.DeleteProduct)
	admin.POST("/categories", d.Catalog.CreateCategory)
	admin.PATCH("/categories/:id", d.Catalog.UpdateCategory)
	admin.DELETE("/categories/:id", d.Catalog.DeleteCategory)
	admin.GET("/orders", d.Orders.ListOrders)
	admin.GET("/orders/:id", d.Orders.GetOrder)
	admin.PATCH("/orders/:id/status", d.Orders.UpdateStatus)
}
