package cartdto

import (
	"github.com/shopspring/decimal"

	"github.com/almahra/storefront/pkg/cartapi"
)

// ProductPayload is the catalog snapshot the storefront sends with an add.
type ProductPayload struct {
	ID             string          `json:"id" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	SKU            string          `json:"sku,omitempty"`
	Price          decimal.Decimal `json:"price"`
	TrackInventory bool            `json:"track_inventory"`
	StockQuantity  int             `json:"stock_quantity" validate:"min=0"`
	Images         []string        `json:"images,omitempty"`
}

type VariantPayload struct {
	ID            string           `json:"id" validate:"required"`
	Color         string           `json:"color,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
}

// AddItemRequest omits quantity to add a single unit.
type AddItemRequest struct {
	Product  ProductPayload  `json:"product"`
	Variant  *VariantPayload `json:"variant,omitempty"`
	Quantity *int            `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// UpdateQuantityRequest removes the line when quantity is zero.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type CheckoutRequest struct {
	ShippingAddress cartapi.Address `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	Notes           string          `json:"notes,omitempty" validate:"max=500"`
}
