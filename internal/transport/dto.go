package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=200"`
}

type PatchCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=200"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price" validate:"gte=0.01,lte=999999.99"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Size        string          `json:"size" validate:"max=100"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=500"`
	CategoryID  uint            `json:"category_id" validate:"required"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0.01,lte=999999.99"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Size        *string          `json:"size" validate:"omitempty,max=100"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=500"`
	CategoryID  *uint            `json:"category_id" validate:"omitempty,gt=0"`
}

type AddToCartRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type AddressForm struct {
	Address string `json:"address" form:"address" validate:"required,max=500"`
	Phone   string `json:"phone" form:"phone" validate:"required,max=20"`
	Note    string `json:"note" form:"note" validate:"max=200"`
}

// OrderFields is the order as echoed back by the payment form.
// Only address, phone and note are taken from it.
type OrderFields struct {
	UserID      string          `json:"user_id"`
	Address     string          `json:"address"`
	Phone       string          `json:"phone"`
	Note        string          `json:"note"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	OrderDate   time.Time       `json:"order_date"`
}

type PaymentForm struct {
	CardHolderName string       `json:"card_holder_name" form:"card_holder_name" validate:"required,max=100"`
	CardNumber     string       `json:"card_number" form:"card_number" validate:"required,cardnumber"`
	ExpiryDate     string       `json:"expiry_date" form:"expiry_date" validate:"required,expiry"`
	CVV            string       `json:"cvv" form:"cvv" validate:"required,cvv"`
	Order          *OrderFields `json:"order,omitempty" validate:"-"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CartLine struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SubTotal  decimal.Decimal `json:"sub_total"`
}

type CartResponse struct {
	ID          uint            `json:"id"`
	Items       []CartLine      `json:"items"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewCartResponse(c *models.Cart) CartResponse {
	lines := make([]CartLine, 0, len(c.Items))
	for _, it := range c.Items {
		line := CartLine{
			ID:        it.ID,
			ProductID: it.ProductID,
			Size:      it.Size,
			Quantity:  it.Quantity,
			SubTotal:  it.SubTotal(),
		}
		if it.Product != nil {
			line.Name = it.Product.Name
			line.ImageURL = it.Product.ImageURL
			line.UnitPrice = it.Product.Price
		}
		lines = append(lines, line)
	}
	return CartResponse{
		ID:          c.ID,
		Items:       lines,
		ItemCount:   c.ItemCount(),
		TotalAmount: c.TotalAmount(),
	}
}

type PaymentView struct {
	Address     string          `json:"address"`
	Phone       string          `json:"phone"`
	Note        string          `json:"note,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CSRFToken   string          `json:"csrf_token,omitempty"`
}

type ProductDetail struct {
	Product models.Product   `json:"product"`
	Related []models.Product `json:"related"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func NewPage[T any](data []T, page, offset, limit int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Meta: PageMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
			HasPrev:    page > 1,
			HasNext:    int64(offset+limit) < total,
		},
	}
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
	Product string            `json:"product,omitempty"`
}
