package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "get_cart")
	}
	return h.renderCart(c, l, "get_cart", userID, http.StatusOK)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "add_to_cart")
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart", "invalid body", err)
	}

	if _, err := h.Svc.AddToCart(ctx, userID, req); err != nil {
		return fail(l.With("user_id", userID, "product_id", req.ProductID), "add_to_cart", err)
	}
	return h.renderCart(c, l, "add_to_cart", userID, http.StatusCreated)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "update_cart_item")
	}
	itemID, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "update_cart_item", "id is not a valid id", nil)
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item", "invalid body", err)
	}

	if _, err := h.Svc.UpdateQuantity(ctx, userID, itemID, req.Quantity); err != nil {
		return fail(l, "update_cart_item", err)
	}
	return h.renderCart(c, l, "update_cart_item", userID, http.StatusOK)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "remove_cart_item")
	}
	itemID, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "remove_cart_item", "id is not a valid id", nil)
	}

	if err := h.Svc.RemoveItem(ctx, userID, itemID); err != nil {
		return fail(l, "remove_cart_item", err)
	}
	return h.renderCart(c, l, "remove_cart_item", userID, http.StatusOK)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "clear_cart")
	}
	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.count")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "cart_count")
	}
	n, err := h.Svc.Count(ctx, userID)
	if err != nil {
		return fail(l, "cart_count", err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}

func (h *CartHTTP) renderCart(c echo.Context, l *slog.Logger, op, userID string, status int) error {
	cart, err := h.Svc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return fail(l, op, err)
	}
	return c.JSON(status, transport.NewCartResponse(cart))
}
