package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CommitLine is one cart line as it was read when the checkout plan was built.
type CommitLine struct {
	CartItemID  uint
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Size        string
}

type CommitPlan struct {
	UserID  string
	Address string
	Phone   string
	Note    string
	Total   decimal.Decimal
	Lines   []CommitLine
}

// CommitOrder writes the order, decrements stock and clears the planned cart lines in one transaction.
func (r *GormRepo) CommitOrder(ctx context.Context, plan CommitPlan) (*models.Order, error) {
	order := models.Order{
		UserID:      plan.UserID,
		Address:     plan.Address,
		Phone:       plan.Phone,
		Note:        plan.Note,
		TotalAmount: plan.Total,
		Status:      models.StatusPending,
		OrderDate:   time.Now().UTC(),
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, plan.UserID)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		for _, line := range plan.Lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var available int
				if err := tx.Model(&models.Product{}).Where("id = ?", line.ProductID).Select("stock").Scan(&available).Error; err != nil {
					return fmt.Errorf("read stock of product %d: %w", line.ProductID, err)
				}
				return &OutOfStockError{ProductID: line.ProductID, Name: line.ProductName, Requested: line.Quantity, Available: available}
			}

			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Size:      line.Size,
			}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return err
			}
		}

		for _, line := range plan.Lines {
			res := tx.Where("id = ? AND cart_id = ? AND quantity = ?", line.CartItemID, cart.ID, line.Quantity).
				Delete(&models.CartItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrCartChanged
			}
		}

		if err := touchCart(tx, cart.ID); err != nil {
			return err
		}

		return tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
			First(&order, order.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("order_date DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, status *models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Preload("Items").Order("order_date DESC, id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, to models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	var order models.Order
	var from models.OrderStatus
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return err
		}
		from = order.Status
		if !from.CanTransition(to) {
			return ErrStatusTransition
		}
		if err := tx.Model(&order).Update("status", string(to)).Error; err != nil {
			return err
		}
		return tx.Preload("Items").First(&order, id).Error
	})
	if err != nil {
		return nil, from, err
	}
	return &order, from, nil
}
