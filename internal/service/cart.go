package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// GetCart is the cart snapshot read: the caller's cart with items and products loaded.
// A first read creates the cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty: %w", ErrValidation)
	}
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	return cart, translate(err, "cart")
}

func (s *CartService) AddToCart(ctx context.Context, userID string, req transport.AddToCartRequest) (*models.CartItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty: %w", ErrValidation)
	}
	if req.ProductID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, translate(err, "product")
	}
	size, err := resolveSize(product, req.Size)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.AddToCart(ctx, userID, req.ProductID, size, req.Quantity)
	if err != nil {
		return nil, translate(err, "product")
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": item.ProductID,
		"size":      item.Size,
		"quantity":  item.Quantity,
	})
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID string, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	item, err := s.Repo.UpdateCartItem(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, translate(err, "cart item")
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":      "cart_item_updated",
		"userID":    userID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, itemID uint) error {
	item, err := s.Repo.DeleteFromCart(ctx, userID, itemID)
	if err != nil {
		return translate(err, "cart item")
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": item.ProductID,
	})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.Repo.DeleteAllFromCart(ctx, userID); err != nil {
		return translate(err, "cart")
	}
	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return nil
}

// Count is the total number of units in the cart.
func (s *CartService) Count(ctx context.Context, userID string) (int, error) {
	return s.Repo.CartCount(ctx, userID)
}

func resolveSize(p *models.Product, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if !p.RequiresSize() {
		return "", nil
	}
	if requested == "" {
		return "", fmt.Errorf("size is required for %q: %w", p.Name, ErrValidation)
	}
	for _, s := range p.Sizes() {
		if strings.EqualFold(s, requested) {
			return s, nil
		}
	}
	return "", fmt.Errorf("size %q is not offered for %q: %w", requested, p.Name, ErrValidation)
}
