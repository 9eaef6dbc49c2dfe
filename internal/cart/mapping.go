package cart

import (
	"github.com/almahra/storefront/pkg/cartapi"
)

// mapRemoteCart converts the server cart to local lines. Rows whose product was
// deleted server-side come back with a null product and are skipped.
func mapRemoteCart(remote *cartapi.Cart) []LineItem {
	if remote == nil {
		return nil
	}
	items := make([]LineItem, 0, len(remote.Items))
	for _, line := range remote.Items {
		if line.Product == nil {
			continue
		}
		product := mapRemoteProduct(*line.Product)
		variant := mapRemoteVariant(line.Variant)
		items = append(items, LineItem{
			ID:       LineID(product.ID, variant),
			RemoteID: line.ID.String(),
			Product:  product,
			Variant:  variant,
			Quantity: line.Quantity,
		})
	}
	return items
}

func mapRemoteProduct(p cartapi.Product) Product {
	images := make([]string, 0, len(p.Images)+1)
	if p.PrimaryImage != "" {
		images = append(images, p.PrimaryImage)
	}
	for _, img := range p.Images {
		if img.URL != "" && img.URL != p.PrimaryImage {
			images = append(images, img.URL)
		}
	}
	if len(images) == 0 {
		images = nil
	}
	return Product{
		ID:             p.ID.String(),
		Name:           p.Name,
		SKU:            p.SKU,
		Price:          p.Price,
		TrackInventory: p.TrackInventory,
		StockQuantity:  p.StockQuantity,
		Images:         images,
	}
}

func mapRemoteVariant(v *cartapi.Variant) *Variant {
	if v == nil || v.ID == "" {
		return nil
	}
	return &Variant{
		ID:            v.ID.String(),
		Color:         v.Color,
		Price:         v.Price,
		StockQuantity: v.StockQuantity,
	}
}

func addRequest(product Product, variant *Variant, quantity int) cartapi.AddItemRequest {
	req := cartapi.AddItemRequest{
		ProductID: cartapi.ID(product.ID),
		Quantity:  quantity,
	}
	if variant != nil && variant.ID != "" {
		id := cartapi.ID(variant.ID)
		req.VariantID = &id
	}
	return req
}
