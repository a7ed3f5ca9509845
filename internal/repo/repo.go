package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

var (
	ErrReferenced       = errors.New("record is referenced")
	ErrCartChanged      = errors.New("cart changed during checkout")
	ErrStatusTransition = errors.New("status transition not allowed")
)

// OutOfStockError reports the first product whose stock cannot cover the requested quantity.
type OutOfStockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %d (%s): requested %d, available %d", e.ProductID, e.Name, e.Requested, e.Available)
}
