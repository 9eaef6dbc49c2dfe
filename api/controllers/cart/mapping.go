package cart

import (
	cartdto "github.com/almahra/storefront/api/controllers/cart/dto"
	cartsvc "github.com/almahra/storefront/internal/cart"
	"github.com/almahra/storefront/pkg/cartapi"
)

func toProduct(payload cartdto.AddItemRequest) (cartsvc.Product, *cartsvc.Variant) {
	product := cartsvc.Product{
		ID:             payload.Product.ID,
		Name:           payload.Product.Name,
		SKU:            payload.Product.SKU,
		Price:          payload.Product.Price,
		TrackInventory: payload.Product.TrackInventory,
		StockQuantity:  payload.Product.StockQuantity,
		Images:         payload.Product.Images,
	}
	if payload.Variant == nil {
		return product, nil
	}
	return product, &cartsvc.Variant{
		ID:            payload.Variant.ID,
		Color:         payload.Variant.Color,
		Price:         payload.Variant.Price,
		StockQuantity: payload.Variant.StockQuantity,
	}
}

// newCart renders the store state. A nil queue leaves notifications queued.
func newCart(svc Service, queue Notifications) cartdto.Cart {
	state := svc.Snapshot()

	items := make([]cartdto.LineItem, 0, len(state.Items))
	for _, line := range state.Items {
		item := cartdto.LineItem{
			ID:        line.ID,
			RemoteID:  line.RemoteID,
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			SKU:       line.Product.SKU,
			UnitPrice: line.UnitPrice(),
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal(),
		}
		if len(line.Product.Images) > 0 {
			item.Image = line.Product.Images[0]
		}
		if line.Variant != nil {
			item.VariantID = line.Variant.ID
			item.Color = line.Variant.Color
		}
		if limit, ok := cartsvc.StockLimit(line.Product, line.Variant); ok {
			item.StockLimit = &limit
		}
		items = append(items, item)
	}

	out := cartdto.Cart{
		Items:         items,
		Total:         state.Total,
		ItemCount:     state.ItemCount,
		IsOpen:        state.IsOpen,
		Mode:          string(svc.Mode()),
		Loading:       svc.Loading(),
		Notifications: []cartdto.Notification{},
	}
	if queue != nil {
		out.Notifications = newNotifications(queue.Drain())
	}
	return out
}

func newNotifications(in []cartsvc.Notification) []cartdto.Notification {
	out := make([]cartdto.Notification, 0, len(in))
	for _, n := range in {
		out = append(out, cartdto.Notification{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			LineID:    n.LineID,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

func newOrder(order *cartapi.Order) cartdto.Order {
	if order == nil {
		return cartdto.Order{}
	}
	return cartdto.Order{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	}
}
