package cartapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// ID accepts both numeric and string identifiers from the backend.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer-looking ids as JSON numbers, matching the backend's
// integer primary keys.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Cart mirrors GET cart.
type Cart struct {
	Items       []CartLine      `json:"cart_items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CartLine is one server-side cart row.
type CartLine struct {
	ID       ID       `json:"id"`
	Quantity int      `json:"quantity"`
	Product  *Product `json:"product"`
	Variant  *Variant `json:"product_variant"`
}

type Product struct {
	ID             ID              `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	Price          decimal.Decimal `json:"price"`
	TrackInventory bool            `json:"track_inventory"`
	StockQuantity  int             `json:"stock_quantity"`
	PrimaryImage   string          `json:"primary_image"`
	Images         []Image         `json:"images"`
}

type Variant struct {
	ID            ID               `json:"id"`
	Color         string           `json:"color"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
}

// Image accepts either a bare URL string or an object with image_url/url.
type Image struct {
	URL string
}

func (img *Image) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &img.URL)
	}
	var obj struct {
		ImageURL string `json:"image_url"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	img.URL = obj.ImageURL
	if img.URL == "" {
		img.URL = obj.URL
	}
	return nil
}

type AddItemRequest struct {
	ProductID ID  `json:"product_id"`
	Quantity  int `json:"quantity"`
	VariantID *ID `json:"variant_id,omitempty"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// StockDetails carries the stock metadata the backend attaches to rejections.
type StockDetails struct {
	Message        string `json:"message"`
	AvailableStock *int   `json:"available_stock,omitempty"`
	CurrentInCart  *int   `json:"current_in_cart,omitempty"`
}

// Validation mirrors POST cart/validate.
type Validation struct {
	Valid   bool              `json:"valid"`
	Message string            `json:"message,omitempty"`
	Errors  []ValidationIssue `json:"errors,omitempty"`
}

type ValidationIssue struct {
	ItemID         ID     `json:"item_id"`
	Error          string `json:"error"`
	AvailableStock *int   `json:"available_stock,omitempty"`
}

type Address struct {
	Line1      string `json:"address_line1" validate:"required"`
	Line2      string `json:"address_line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country,omitempty"`
}

type OrderItem struct {
	ProductID ID              `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	VariantID *ID             `json:"variant_id"`
}

// CreateOrderRequest is the cart snapshot handed to POST orders.
type CreateOrderRequest struct {
	ShippingAddress Address     `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes,omitempty"`
	Items           []OrderItem `json:"items"`
}

type Order struct {
	ID          ID              `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type errorBody struct {
	Error          string `json:"error"`
	Message        string `json:"message"`
	Code           string `json:"code"`
	AvailableStock *int   `json:"available_stock"`
	CurrentInCart  *int   `json:"current_in_cart"`
}
