package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func ensureCart(tx *gorm.DB, userID string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.Cart{UserID: userID}).Error
}

func loadCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func lockCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	if err := ensureCart(tx, userID); err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func touchCart(tx *gorm.DB, cartID uint) error {
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).UpdateColumn("updated_at", time.Now().UTC()).Error
}

// GetOrCreateCart returns the user's single cart, creating it on first access.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	db := r.DB.WithContext(ctx)

	cart, err := loadCart(db, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := ensureCart(db, userID); err != nil {
		return nil, err
	}
	return loadCart(db, userID)
}

func (r *GormRepo) AddToCart(ctx context.Context, userID string, productID uint, size string, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			cart, err := lockCart(tx, userID)
			if err != nil {
				return err
			}

			var product models.Product
			if err := tx.First(&product, productID).Error; err != nil {
				return err
			}

			var existing models.CartItem
			err = tx.Where("cart_id = ? AND product_id = ? AND size = ?", cart.ID, productID, size).Take(&existing).Error
			switch {
			case err == nil:
				if existing.Quantity+quantity > product.Stock {
					return &OutOfStockError{ProductID: product.ID, Name: product.Name, Requested: existing.Quantity + quantity, Available: product.Stock}
				}
				if err := tx.Model(&existing).Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
					return err
				}
				if err := tx.First(&item, existing.ID).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if quantity > product.Stock {
					return &OutOfStockError{ProductID: product.ID, Name: product.Name, Requested: quantity, Available: product.Stock}
				}
				item = models.CartItem{CartID: cart.ID, ProductID: productID, Size: size, Quantity: quantity}
				if err := tx.Omit("Product").Create(&item).Error; err != nil {
					return err
				}
			default:
				return err
			}

			item.Product = &product
			return touchCart(tx, cart.ID)
		})
		// a concurrent insert of the same line wins the unique index, the retry increments it
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) UpdateCartItem(ctx context.Context, userID string, itemID uint, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Preload("Product").Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
			return err
		}
		if item.Product == nil {
			return gorm.ErrRecordNotFound
		}
		if quantity > item.Product.Stock {
			return &OutOfStockError{ProductID: item.ProductID, Name: item.Product.Name, Requested: quantity, Available: item.Product.Stock}
		}
		if err := tx.Model(&models.CartItem{}).Where("id = ?", item.ID).Update("quantity", quantity).Error; err != nil {
			return err
		}
		item.Quantity = quantity
		return touchCart(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) DeleteFromCart(ctx context.Context, userID string, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return touchCart(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) DeleteAllFromCart(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, userID)
		if err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
}

func (r *GormRepo) CartCount(ctx context.Context, userID string) (int, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Scan(&n).Error
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
