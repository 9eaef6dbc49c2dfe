package cartdto

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID         string          `json:"id"`
	RemoteID   string          `json:"remote_id,omitempty"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku,omitempty"`
	Image      string          `json:"image,omitempty"`
	VariantID  string          `json:"variant_id,omitempty"`
	Color      string          `json:"color,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	StockLimit *int            `json:"stock_limit,omitempty"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	LineID    string    `json:"line_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Cart is the cart state plus the mode it is served under.
type Cart struct {
	Items         []LineItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	IsOpen        bool            `json:"is_open"`
	Mode          string          `json:"mode"`
	Loading       bool            `json:"loading"`
	Notifications []Notification  `json:"notifications"`
}

type Count struct {
	Count int    `json:"count"`
	Mode  string `json:"mode"`
}

type Toggle struct {
	IsOpen bool `json:"is_open"`
}

type Order struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Checkout struct {
	Order Order `json:"order"`
	Cart  Cart  `json:"cart"`
}
