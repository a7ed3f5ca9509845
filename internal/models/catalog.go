package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint   `gorm:"primaryKey"        json:"id"`
	Name        string `gorm:"size:50;not null"  json:"name"`
	Description string `gorm:"size:200"          json:"description"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey"                      json:"id"`
	Name        string          `gorm:"size:100;not null"               json:"name"`
	Description string          `gorm:"size:500"                        json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"     json:"price"`
	Stock       int             `gorm:"not null;check:stock >= 0"       json:"stock"`
	Size        string          `gorm:"size:100"                        json:"size,omitempty"`
	ImageURL    string          `gorm:"size:500"                        json:"image_url,omitempty"`
	CategoryID  uint            `gorm:"not null;index"                  json:"category_id"`
	Category    *Category       `gorm:"constraint:OnDelete:RESTRICT"    json:"category,omitempty"`
	CreatedAt   time.Time       `                                       json:"created_at"`
}

// Sizes lists the offered sizes of a product whose size label is a comma separated list.
func (p Product) Sizes() []string {
	if strings.TrimSpace(p.Size) == "" {
		return nil
	}
	parts := strings.Split(p.Size, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p Product) RequiresSize() bool {
	return len(p.Sizes()) > 0
}
