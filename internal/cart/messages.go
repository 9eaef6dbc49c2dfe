package cart

import (
	"fmt"
	"strings"

	"github.com/almahra/storefront/pkg/cartapi"
	pkgerrors "github.com/almahra/storefront/pkg/errors"
)

const (
	msgAddFailed    = "Failed to add item to cart"
	msgUpdateFailed = "Failed to update quantity"
	msgRemoveFailed = "Failed to remove item from cart"
	msgSyncFailed   = "Failed to load your cart"
)

// StockDetails is attached to stock-conflict errors returned to callers.
type StockDetails struct {
	Message        string `json:"message"`
	AvailableStock *int   `json:"availableStock,omitempty"`
	CurrentInCart  *int   `json:"currentInCart,omitempty"`
}

func guestStockMessage(available int) string {
	return fmt.Sprintf("Only %d item(s) available in stock.", available)
}

// addFailureMessage formats a rejected remote add. Stock counts take precedence
// over the backend's own text, which in turn beats the generic message.
func addFailureMessage(err error) (string, NotificationType) {
	if details, ok := remoteStock(err); ok {
		switch {
		case details.AvailableStock != nil && details.CurrentInCart != nil:
			return fmt.Sprintf("Stock Limit Reached! You have %d item(s) in your cart. Only %d available in stock.", *details.CurrentInCart, *details.AvailableStock), NotificationWarning
		case details.AvailableStock != nil:
			return "Stock Limit Reached! " + guestStockMessage(*details.AvailableStock), NotificationWarning
		}
	}
	if typed := pkgerrors.As(err); typed != nil && remoteAuthored(typed) {
		return strings.TrimSpace(typed.Message()), NotificationError
	}
	return msgAddFailed, NotificationError
}

// updateFailureMessage keeps the backend's error text and appends the stock count.
func updateFailureMessage(err error) (string, NotificationType) {
	message := msgUpdateFailed
	if typed := pkgerrors.As(err); typed != nil && remoteAuthored(typed) {
		message = typed.Message()
	}
	details, ok := remoteStock(err)
	if !ok || details.AvailableStock == nil {
		return message, NotificationError
	}
	return fmt.Sprintf("%s\n\nOnly %d available in stock.", strings.TrimSpace(message), *details.AvailableStock), NotificationWarning
}

// stockConflict re-codes a remote stock rejection with cart-level details so
// callers see the counts without importing the transport package.
func stockConflict(err error, message string) error {
	details, ok := remoteStock(err)
	if !ok {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeStockConflict, err, message).WithDetails(StockDetails{
		Message:        message,
		AvailableStock: details.AvailableStock,
		CurrentInCart:  details.CurrentInCart,
	})
}

func remoteStock(err error) (cartapi.StockDetails, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStockConflict {
		return cartapi.StockDetails{}, false
	}
	details, ok := typed.Details().(cartapi.StockDetails)
	return details, ok
}

func remoteAuthored(typed *pkgerrors.Error) bool {
	switch typed.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeStockConflict, pkgerrors.CodeNotFound, pkgerrors.CodeConflict:
		return strings.TrimSpace(typed.Message()) != ""
	default:
		return false
	}
}
