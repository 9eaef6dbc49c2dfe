package middleware

import (
	"net/http"

	"github.com/almahra/storefront/api/responses"
	pkgerrors "github.com/almahra/storefront/pkg/errors"
	"github.com/almahra/storefront/pkg/logger"
)

// SessionReader exposes the signed-in user, if any.
type SessionReader interface {
	Authenticated() bool
	UserID() string
}

// Session seeds the request context with the signed-in user and cart mode.
// Anonymous requests pass through as guests.
func Session(sess SessionReader, cartMode func() string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			fields := map[string]any{}

			if sess != nil && sess.Authenticated() {
				userID := sess.UserID()
				ctx = WithUserID(ctx, userID)
				fields["user_id"] = userID
			}
			if cartMode != nil {
				mode := cartMode()
				ctx = WithCartMode(ctx, mode)
				w.Header().Set("X-Cart-Mode", mode)
				fields["cart_mode"] = mode
			}

			if logg != nil && len(fields) > 0 {
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that have no signed-in user.
func RequireSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
