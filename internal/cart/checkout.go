package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/almahra/storefront/pkg/cartapi"
	pkgerrors "github.com/almahra/storefront/pkg/errors"
)

const opCheckout = "checkout"

// OrderPlacer validates the server cart and creates orders.
type OrderPlacer interface {
	Validate(ctx context.Context) (*cartapi.Validation, error)
	CreateOrder(ctx context.Context, req cartapi.CreateOrderRequest) (*cartapi.Order, error)
}

// CheckoutDetails is the shopper-supplied part of an order.
type CheckoutDetails struct {
	ShippingAddress cartapi.Address
	PaymentMethod   string
	Notes           string
}

// Checkout hands a snapshot of the cart to the order service and clears the
// cart once the order exists. Orders need a signed-in shopper, so guests are
// rejected before any remote call. Any failure leaves the cart untouched.
func (s *Store) Checkout(ctx context.Context, details CheckoutDetails) (*cartapi.Order, error) {
	if s.orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service not configured")
	}
	if strings.TrimSpace(details.PaymentMethod) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	s.mu.RLock()
	snapshot := s.state.Clone()
	mode := s.mode
	s.mu.RUnlock()

	if mode != ModeAuthenticated {
		s.logg.Warn(s.logg.WithCartMode(ctx, string(mode)), "cart.checkout.guest_rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to checkout")
	}
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	start := time.Now()
	ctx = s.logg.WithCartMode(ctx, string(mode))
	order, err := s.placeOrder(ctx, snapshot, details)
	s.observe(opCheckout, mode, outcomeOf(err), start)
	if err != nil {
		return nil, err
	}

	if err := s.ClearCart(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.checkout.clear_failed")
	}
	s.notifier.Notify(ctx, Notification{Type: NotificationInfo, Message: fmt.Sprintf("Order %s placed", order.OrderNumber)})
	s.logg.Info(s.logg.WithField(ctx, "order_number", order.OrderNumber), "cart.checkout.complete")
	return order, nil
}

func (s *Store) placeOrder(ctx context.Context, snapshot State, details CheckoutDetails) (*cartapi.Order, error) {
	done := s.beginRemote()
	defer done()

	result, err := s.orders.Validate(ctx)
	if err != nil {
		s.notifier.Notify(ctx, Notification{Type: NotificationError, Message: "Failed to validate cart"})
		s.logg.Error(ctx, "cart.checkout.validate_failed", err)
		return nil, err
	}
	if !result.Valid {
		message := validationMessage(result)
		s.notifier.Notify(ctx, Notification{Type: NotificationWarning, Message: message})
		s.logg.Warn(s.logg.WithField(ctx, "issues", len(result.Errors)), "cart.checkout.invalid")
		return nil, pkgerrors.New(pkgerrors.CodeStockConflict, message).WithDetails(result.Errors)
	}

	order, err := s.orders.CreateOrder(ctx, orderRequest(snapshot, details))
	if err != nil {
		s.notifier.Notify(ctx, Notification{Type: NotificationError, Message: "Failed to place order"})
		s.logg.Error(ctx, "cart.checkout.failed", err)
		return nil, err
	}
	return order, nil
}

func orderRequest(snapshot State, details CheckoutDetails) cartapi.CreateOrderRequest {
	items := make([]cartapi.OrderItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		item := cartapi.OrderItem{
			ProductID: cartapi.ID(line.Product.ID),
			Name:      line.Product.Name,
			SKU:       line.Product.SKU,
			Price:     line.UnitPrice(),
			Quantity:  line.Quantity,
		}
		if line.Variant != nil && line.Variant.ID != "" {
			id := cartapi.ID(line.Variant.ID)
			item.VariantID = &id
		}
		items = append(items, item)
	}
	return cartapi.CreateOrderRequest{
		ShippingAddress: details.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(details.PaymentMethod),
		Notes:           details.Notes,
		Items:           items,
	}
}

func validationMessage(result *cartapi.Validation) string {
	parts := make([]string, 0, len(result.Errors))
	for _, issue := range result.Errors {
		if msg := strings.TrimSpace(issue.Error); msg != "" {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		if result.Message != "" {
			return result.Message
		}
		return "Some items in your cart are no longer available"
	}
	return strings.Join(parts, "\n")
}
