package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	cartPath    = apiPrefix + "/cart"
	addressPath = apiPrefix + "/checkout/address"
	paymentPath = apiPrefix + "/checkout/payment"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

type addressView struct {
	Cart      transport.CartResponse `json:"cart"`
	CSRFToken string                 `json:"csrf_token,omitempty"`
}

func (h *CheckoutHTTP) AddressStep(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.address_step")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "checkout_address")
	}

	cart, err := h.Svc.CheckoutCart(ctx, userID)
	if err != nil {
		return h.checkoutFail(c, l, "checkout_address", err)
	}
	return c.JSON(http.StatusOK, addressView{Cart: transport.NewCartResponse(cart), CSRFToken: csrf.Token(c)})
}

func (h *CheckoutHTTP) SubmitAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.submit_address")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "checkout_address")
	}

	var form transport.AddressForm
	if err := c.Bind(&form); err != nil {
		return badRequest(l, "checkout_address", "invalid body", err)
	}

	if _, err := h.Svc.BeginCheckout(ctx, session.ID(c), userID, form); err != nil {
		return h.checkoutFail(c, l.With("user_id", userID), "checkout_address", err)
	}
	return c.Redirect(http.StatusSeeOther, paymentPath)
}

func (h *CheckoutHTTP) PaymentStep(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.payment_step")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "checkout_payment")
	}

	d, err := h.Svc.PendingDraft(ctx, session.ID(c), userID)
	if err != nil {
		return h.checkoutFail(c, l, "checkout_payment", err)
	}
	return c.JSON(http.StatusOK, transport.PaymentView{
		Address:     d.Address,
		Phone:       d.Phone,
		Note:        d.Note,
		TotalAmount: d.TotalAmount,
		CSRFToken:   csrf.Token(c),
	})
}

func (h *CheckoutHTTP) SubmitPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.submit_payment")

	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(l, "checkout_payment")
	}

	var form transport.PaymentForm
	if err := c.Bind(&form); err != nil {
		return badRequest(l, "checkout_payment", "invalid body", err)
	}

	order, err := h.Svc.SubmitPayment(ctx, session.ID(c), userID, form)
	if err != nil {
		return h.checkoutFail(c, l.With("user_id", userID), "checkout_payment", err)
	}
	l.Info("checkout_success", "order_id", order.ID, "user_id", userID)
	return c.JSON(http.StatusCreated, order)
}

// checkoutFail turns the flow-breaking errors into redirects back to the right step.
func (h *CheckoutHTTP) checkoutFail(c echo.Context, l *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		l.Info(op+"_redirect", "reason", "empty_cart")
		return c.Redirect(http.StatusSeeOther, cartPath+"?error=empty_cart")
	case errors.Is(err, service.ErrCartChanged):
		l.Info(op+"_redirect", "reason", "cart_changed")
		return c.Redirect(http.StatusSeeOther, cartPath+"?error=cart_changed")
	case errors.Is(err, service.ErrSessionExpired):
		l.Info(op+"_redirect", "reason", "session_expired")
		return c.Redirect(http.StatusSeeOther, addressPath+"?error=session_expired")
	}
	return fail(l, op, err)
}
