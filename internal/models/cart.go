package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint       `gorm:"primaryKey"                              json:"id"`
	UserID    string     `gorm:"size:64;not null;uniqueIndex"            json:"user_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE"             json:"items"`
	CreatedAt time.Time  `                                               json:"created_at"`
	UpdatedAt time.Time  `                                               json:"updated_at"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey"                                       json:"id"`
	CartID    uint     `gorm:"not null;uniqueIndex:idx_cart_product_size"       json:"cart_id"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_cart_product_size"       json:"product_id"`
	Size      string   `gorm:"size:20;not null;default:'';uniqueIndex:idx_cart_product_size" json:"size"`
	Quantity  int      `gorm:"not null;check:quantity > 0"                      json:"quantity"`
	Product   *Product `gorm:"constraint:OnDelete:RESTRICT"                     json:"product,omitempty"`
}

// SubTotal is zero when the product is not loaded.
func (i CartItem) SubTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.SubTotal())
	}
	return total
}

func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) ProductIDs() []uint {
	ids := make([]uint, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
