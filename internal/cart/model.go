package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultVariantKey stands in for the variant id when a line has no variant.
const DefaultVariantKey = "default"

// Product is the catalog snapshot captured when a line is created.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku,omitempty"`
	Price          decimal.Decimal `json:"price"`
	TrackInventory bool            `json:"trackInventory"`
	StockQuantity  int             `json:"stockQuantity"`
	Images         []string        `json:"images,omitempty"`
}

// Variant overrides product price and stock when present.
type Variant struct {
	ID            string           `json:"id"`
	Color         string           `json:"color,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stockQuantity,omitempty"`
}

// LineItem is one distinct (product, variant) entry in the cart.
type LineItem struct {
	ID       string   `json:"id"`
	RemoteID string   `json:"remoteId,omitempty"`
	Product  Product  `json:"product"`
	Variant  *Variant `json:"variant,omitempty"`
	Quantity int      `json:"quantity"`
}

// State is the cart as observed by readers. Total and ItemCount are derived.
type State struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	IsOpen    bool            `json:"isOpen"`
}

// LineID derives the stable identity of a (product, variant) pair.
func LineID(productID string, variant *Variant) string {
	variantKey := DefaultVariantKey
	if variant != nil && variant.ID != "" {
		variantKey = variant.ID
	}
	return fmt.Sprintf("%s-%s", productID, variantKey)
}

// UnitPrice is the variant price when the variant sets one, else the product price.
func (l LineItem) UnitPrice() decimal.Decimal {
	if l.Variant != nil && l.Variant.Price != nil {
		return *l.Variant.Price
	}
	return l.Product.Price
}

// Subtotal is unit price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// StockLimit returns the enforced stock ceiling and whether one applies.
func StockLimit(product Product, variant *Variant) (int, bool) {
	if !product.TrackInventory {
		return 0, false
	}
	if variant != nil && variant.StockQuantity != nil {
		return *variant.StockQuantity, true
	}
	return product.StockQuantity, true
}

// Find returns the line with the given id.
func (s State) Find(lineID string) (LineItem, bool) {
	for _, item := range s.Items {
		if item.ID == lineID {
			return item, true
		}
	}
	return LineItem{}, false
}

// Clone deep-copies the state so callers cannot mutate store internals.
func (s State) Clone() State {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	for i, item := range s.Items {
		out.Items[i] = item.clone()
	}
	return out
}

func (l LineItem) clone() LineItem {
	out := l
	if l.Product.Images != nil {
		out.Product.Images = append([]string(nil), l.Product.Images...)
	}
	if l.Variant != nil {
		variant := *l.Variant
		if l.Variant.Price != nil {
			price := *l.Variant.Price
			variant.Price = &price
		}
		if l.Variant.StockQuantity != nil {
			stock := *l.Variant.StockQuantity
			variant.StockQuantity = &stock
		}
		out.Variant = &variant
	}
	return out
}
