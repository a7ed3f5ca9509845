package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSessionExpired    = errors.New("checkout session expired")
	ErrPaymentDeclined   = errors.New("payment declined")
	ErrCartChanged       = errors.New("cart changed during checkout")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StockError names the product whose stock cannot cover the cart.
type StockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// translate maps storage errors onto the service taxonomy. Unknown errors pass through.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}

	var oos *repo.OutOfStockError
	switch {
	case errors.As(err, &oos):
		return &StockError{ProductID: oos.ProductID, ProductName: oos.Name, Requested: oos.Requested, Available: oos.Available}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	case errors.Is(err, repo.ErrReferenced):
		return fmt.Errorf("%s is still referenced: %w", what, ErrConflict)
	case errors.Is(err, repo.ErrCartChanged):
		return ErrCartChanged
	case errors.Is(err, repo.ErrStatusTransition):
		return ErrInvalidTransition
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s references a missing record: %w", what, ErrValidation)
	}
	return err
}

// IsDomain reports whether err belongs to the service taxonomy rather than storage.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrNotFound, ErrConflict, ErrEmptyCart, ErrInsufficientStock,
		ErrSessionExpired, ErrPaymentDeclined, ErrCartChanged, ErrInvalidTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
