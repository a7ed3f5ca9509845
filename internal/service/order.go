package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// ListMyOrders returns the user's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.Repo.ListUserOrders(ctx, userID)
}

func (s *OrderService) GetMyOrder(ctx context.Context, userID string, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, translate(err, "order")
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order not found: %w", ErrNotFound)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	var filter *models.OrderStatus
	if status != "" {
		st, err := parseStatus(status)
		if err != nil {
			return 0, nil, err
		}
		filter = &st
	}
	return s.Repo.ListOrders(ctx, filter, offset, limit)
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	return order, translate(err, "order")
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	to, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	order, from, err := s.Repo.UpdateOrderStatus(ctx, id, to)
	if err != nil {
		err = translate(err, "order")
		if errors.Is(err, ErrInvalidTransition) {
			return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, key(order.ID), map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"userID":  order.UserID,
		"from":    string(from),
		"to":      string(to),
	})
	return order, nil
}

func parseStatus(v string) (models.OrderStatus, error) {
	st := models.OrderStatus(strings.ToLower(strings.TrimSpace(v)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q: %w", v, ErrValidation)
	}
	return st, nil
}
