package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the status graph allows s -> to.
// Moves outside the graph are refused on purpose, even for admins.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID          uint            `gorm:"primaryKey"                          json:"id"`
	UserID      string          `gorm:"size:64;not null;index"              json:"user_id"`
	Address     string          `gorm:"size:500;not null"                   json:"address"`
	Phone       string          `gorm:"size:20;not null"                    json:"phone"`
	Note        string          `gorm:"size:200"                            json:"note,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"         json:"total_amount"`
	Status      OrderStatus     `gorm:"size:20;not null;index"              json:"status"`
	OrderDate   time.Time       `gorm:"not null;index"                      json:"order_date"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE"         json:"items"`
	UpdatedAt   time.Time       `                                           json:"updated_at"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                      json:"id"`
	OrderID   uint            `gorm:"not null;index"                  json:"order_id"`
	ProductID uint            `gorm:"not null;index"                  json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0"     json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"     json:"unit_price"`
	Size      string          `gorm:"size:20;not null;default:''"     json:"size,omitempty"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT"    json:"product,omitempty"`
}

func (i OrderItem) SubTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal recomputes the order total from its persisted lines.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.SubTotal())
	}
	return total
}
