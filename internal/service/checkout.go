package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/draft"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validation"
)

type CheckoutService struct {
	Carts   *CartService
	Repo    *repo.GormRepo
	Drafts  draft.Store
	Gateway payment.Gateway
	Events  events.Publisher
	Now     func() time.Time
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CheckoutCart is a fresh snapshot of a non-empty cart.
func (s *CheckoutService) CheckoutCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.Carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return cart, nil
}

// BeginCheckout validates the address step and stores the draft under sessionID.
func (s *CheckoutService) BeginCheckout(ctx context.Context, sessionID, userID string, form transport.AddressForm) (*draft.Draft, error) {
	form = normalizeAddress(form)
	if err := validation.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	cart, err := s.CheckoutCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(cart); err != nil {
		return nil, err
	}

	d := draft.New(userID, form.Address, form.Phone, form.Note, cart.TotalAmount(), s.now())
	if err := s.Drafts.Put(ctx, sessionID, d); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	return &d, nil
}

// PendingDraft reads the draft without consuming it. A draft of another user is treated as absent.
func (s *CheckoutService) PendingDraft(ctx context.Context, sessionID, userID string) (*draft.Draft, error) {
	if sessionID == "" {
		return nil, ErrSessionExpired
	}
	d, err := s.Drafts.Peek(ctx, sessionID)
	if errors.Is(err, draft.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	if d.UserID != userID {
		return nil, ErrSessionExpired
	}
	return d, nil
}

// SubmitPayment consumes the draft and places the order.
// Card errors leave the draft untouched; a decline or a storage failure puts it back for a retry.
func (s *CheckoutService) SubmitPayment(ctx context.Context, sessionID, userID string, form transport.PaymentForm) (*models.Order, error) {
	form.CardNumber = strings.TrimSpace(form.CardNumber)
	if err := validation.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, err := s.PendingDraft(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	d, err := s.Drafts.Take(ctx, sessionID)
	if errors.Is(err, draft.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("take draft: %w", err)
	}
	if d.UserID != userID {
		return nil, ErrSessionExpired
	}

	merged, err := mergeResubmitted(*d, form.Order)
	if err != nil {
		s.restore(ctx, sessionID, *d)
		return nil, err
	}

	order, err := s.PlaceOrder(ctx, merged, payment.Card{
		Holder: form.CardHolderName,
		Number: form.CardNumber,
		Expiry: form.ExpiryDate,
		CVV:    form.CVV,
	})
	if err != nil {
		if errors.Is(err, ErrPaymentDeclined) || !IsDomain(err) {
			s.restore(ctx, sessionID, *d)
		}
		return nil, err
	}
	return order, nil
}

// PlaceOrder re-reads the cart, re-checks stock, charges the fresh total and commits.
// Nothing is written unless every step succeeds.
func (s *CheckoutService) PlaceOrder(ctx context.Context, d draft.Draft, card payment.Card) (order *models.Order, err error) {
	l := logging.FromContext(ctx).With("user_id", d.UserID)
	defer func() { metrics.CheckoutOutcomes.WithLabelValues(outcome(err)).Inc() }()

	cart, err := s.CheckoutCart(ctx, d.UserID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(cart); err != nil {
		return nil, err
	}

	total := cart.TotalAmount()
	ok, err := s.Gateway.Pay(ctx, card, total)
	if err != nil {
		l.Error("payment_gateway_error", "card_last4", card.Last4(), "error", err)
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	if !ok {
		l.Warn("payment_declined", "card_last4", card.Last4(), "amount", total.String())
		return nil, ErrPaymentDeclined
	}

	plan := repo.CommitPlan{
		UserID:  d.UserID,
		Address: d.Address,
		Phone:   d.Phone,
		Note:    d.Note,
		Total:   total,
		Lines:   make([]repo.CommitLine, 0, len(cart.Items)),
	}
	for _, it := range cart.Items {
		plan.Lines = append(plan.Lines, repo.CommitLine{
			CartItemID:  it.ID,
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Product.Price,
			Size:        it.Size,
		})
	}

	order, err = s.Repo.CommitOrder(ctx, plan)
	if err != nil {
		err = translate(err, "order")
		if !IsDomain(err) {
			l.Error("checkout_commit_error", "product_ids", cart.ProductIDs(), "error", err)
		}
		return nil, err
	}

	value, _ := total.Float64()
	metrics.OrderValue.Observe(value)
	publish(ctx, s.Events, events.TopicOrders, key(order.ID), map[string]any{
		"type":        "order_created",
		"orderID":     order.ID,
		"userID":      order.UserID,
		"totalAmount": order.TotalAmount.String(),
		"items":       len(order.Items),
	})
	l.Info("order_placed", "order_id", order.ID, "total", order.TotalAmount.String())
	return order, nil
}

func (s *CheckoutService) restore(ctx context.Context, sessionID string, d draft.Draft) {
	if err := s.Drafts.Put(ctx, sessionID, d); err != nil {
		logging.FromContext(ctx).Error("draft_restore_error", "user_id", d.UserID, "error", err)
	}
}

func checkStock(cart *models.Cart) error {
	for _, it := range cart.Items {
		if it.Product == nil {
			return &StockError{ProductID: it.ProductID, ProductName: fmt.Sprintf("product #%d", it.ProductID), Requested: it.Quantity}
		}
		if it.Product.Stock < it.Quantity {
			return &StockError{ProductID: it.ProductID, ProductName: it.Product.Name, Requested: it.Quantity, Available: it.Product.Stock}
		}
	}
	return nil
}

func normalizeAddress(f transport.AddressForm) transport.AddressForm {
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Note = strings.TrimSpace(f.Note)
	return f
}

// mergeResubmitted lets the payment form refine address, phone and note.
// User id, total, status and date always come from the server.
func mergeResubmitted(d draft.Draft, o *transport.OrderFields) (draft.Draft, error) {
	if o == nil {
		return d, nil
	}
	form := normalizeAddress(transport.AddressForm{Address: o.Address, Phone: o.Phone, Note: o.Note})
	if form.Address != "" {
		d.Address = form.Address
	}
	if form.Phone != "" {
		d.Phone = form.Phone
	}
	if form.Note != "" {
		d.Note = form.Note
	}
	if err := validation.Struct(transport.AddressForm{Address: d.Address, Phone: d.Phone, Note: d.Note}); err != nil {
		return d, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return d, nil
}

func outcome(err error) string {
	var se *StockError
	switch {
	case err == nil:
		return "placed"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &se):
		return "insufficient_stock"
	case errors.Is(err, ErrPaymentDeclined):
		return "declined"
	case errors.Is(err, ErrCartChanged):
		return "cart_changed"
	default:
		return "error"
	}
}
