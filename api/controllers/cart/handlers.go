package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/almahra/storefront/api/controllers/cart/dto"
	"github.com/almahra/storefront/api/responses"
	"github.com/almahra/storefront/api/validators"
	cartsvc "github.com/almahra/storefront/internal/cart"
	"github.com/almahra/storefront/pkg/cartapi"
	pkgerrors "github.com/almahra/storefront/pkg/errors"
	"github.com/almahra/storefront/pkg/logger"
)

const maxNotesLength = 500

// Service is the cart surface the handlers drive.
type Service interface {
	Snapshot() cartsvc.State
	Mode() cartsvc.Mode
	Loading() bool
	AddItem(ctx context.Context, product cartsvc.Product, variant *cartsvc.Variant, quantity int) error
	RemoveItem(ctx context.Context, lineID string) error
	UpdateQuantity(ctx context.Context, lineID string, quantity int) error
	ClearCart(ctx context.Context) error
	ToggleOpen(ctx context.Context) bool
	Refresh(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Checkout(ctx context.Context, details cartsvc.CheckoutDetails) (*cartapi.Order, error)
}

// Notifications drains messages queued for the shopper.
type Notifications interface {
	Drain() []cartsvc.Notification
}

// CartFetch returns the current cart without draining notifications.
func CartFetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, newCart(svc, nil))
	}
}

// CartAddItem adds a product, merging into the existing line.
func CartAddItem(svc Service, queue Notifications, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Product.Price.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative"))
			return
		}

		product, variant := toProduct(payload)
		quantity := 0
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		if err := svc.AddItem(r.Context(), product, variant, quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCart(svc, queue))
	}
}

// CartUpdateItem sets a line's quantity; zero removes it.
func CartUpdateItem(svc Service, queue Notifications, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithLineID(ctx, lineID)
		}
		if err := svc.UpdateQuantity(ctx, lineID, *payload.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCart(svc, queue))
	}
}

// CartRemoveItem deletes a line. Unknown lines are a no-op.
func CartRemoveItem(svc Service, queue Notifications, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithLineID(ctx, lineID)
		}
		if err := svc.RemoveItem(ctx, lineID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCart(svc, queue))
	}
}

// CartClear empties the cart and closes the drawer.
func CartClear(svc Service, queue Notifications, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		if err := svc.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCart(svc, queue))
	}
}

// CartToggle flips the drawer visibility.
func CartToggle(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, cartdto.Toggle{IsOpen: svc.ToggleOpen(r.Context())})
	}
}

// CartRefresh reloads the server cart for a signed-in shopper.
func CartRefresh(svc Service, queue Notifications, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		if err := svc.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCart(svc, queue))
	}
}

// CartCount returns the badge count for the current mode.
func CartCount(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		count, err := svc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.Count{Count: count, Mode: string(svc.Mode())})
	}
}

// CartCheckout places an order from the current cart.
func CartCheckout(svc Service, queue Notifications, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload cartdto.CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), cartsvc.CheckoutDetails{
			ShippingAddress: payload.ShippingAddress,
			PaymentMethod:   strings.TrimSpace(payload.PaymentMethod),
			Notes:           validators.SanitizeString(payload.Notes, maxNotesLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cartdto.Checkout{
			Order: newOrder(order),
			Cart:  newCart(svc, queue),
		})
	}
}

// CartNotifications drains queued shopper messages.
func CartNotifications(queue Notifications, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if queue == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification queue unavailable"))
			return
		}
		responses.WriteSuccess(w, newNotifications(queue.Drain()))
	}
}

func lineIDParam(r *http.Request) (string, error) {
	lineID := strings.TrimSpace(chi.URLParam(r, "lineId"))
	if lineID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	return lineID, nil
}
