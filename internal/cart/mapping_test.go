package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/almahra/storefront/pkg/cartapi"
)

func TestMapRemoteCart(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString("99.90")
	stock := 4
	remote := &cartapi.Cart{Items: []cartapi.CartLine{
		{
			ID:       "41",
			Quantity: 2,
			Product: &cartapi.Product{
				ID:             "7",
				Name:           "Aviator",
				SKU:            "AV-1",
				Price:          decimal.RequireFromString("80"),
				TrackInventory: true,
				StockQuantity:  10,
				PrimaryImage:   "https://cdn.test/main.jpg",
				Images:         []cartapi.Image{{URL: "https://cdn.test/main.jpg"}, {URL: "https://cdn.test/side.jpg"}},
			},
			Variant: &cartapi.Variant{ID: "3", Color: "Gold", Price: &price, StockQuantity: &stock},
		},
		{ID: "42", Quantity: 1, Product: nil},
		{ID: "43", Quantity: 1, Product: &cartapi.Product{ID: "8", Price: decimal.RequireFromString("5")}, Variant: &cartapi.Variant{}},
	}}

	items := mapRemoteCart(remote)
	if len(items) != 2 {
		t.Fatalf("expected 2 mapped lines, got %d", len(items))
	}

	first := items[0]
	if first.ID != "7-3" || first.RemoteID != "41" || first.Quantity != 2 {
		t.Fatalf("unexpected first line %+v", first)
	}
	if first.Product.SKU != "AV-1" || !first.Product.TrackInventory || first.Product.StockQuantity != 10 {
		t.Fatalf("product snapshot not mapped: %+v", first.Product)
	}
	if len(first.Product.Images) != 2 || first.Product.Images[0] != "https://cdn.test/main.jpg" {
		t.Fatalf("images should list primary first without duplicates: %v", first.Product.Images)
	}
	if first.Variant == nil || first.Variant.Color != "Gold" || !first.UnitPrice().Equal(price) {
		t.Fatalf("variant not mapped: %+v", first.Variant)
	}

	second := items[1]
	if second.ID != "8-default" || second.Variant != nil {
		t.Fatalf("empty variant should map to no variant: %+v", second)
	}
}

func TestMapRemoteCartNil(t *testing.T) {
	t.Parallel()

	if items := mapRemoteCart(nil); items != nil {
		t.Fatalf("expected nil items, got %+v", items)
	}
}

func TestAddRequest(t *testing.T) {
	t.Parallel()

	req := addRequest(Product{ID: "7"}, &Variant{ID: "3"}, 2)
	if req.ProductID != "7" || req.Quantity != 2 || req.VariantID == nil || *req.VariantID != "3" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req := addRequest(Product{ID: "7"}, nil, 1); req.VariantID != nil {
		t.Fatalf("variant id should be omitted")
	}
}
