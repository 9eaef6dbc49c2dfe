package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/almahra/storefront/api/responses"
	"github.com/almahra/storefront/api/validators"
	"github.com/almahra/storefront/internal/cart"
	pkgerrors "github.com/almahra/storefront/pkg/errors"
	"github.com/almahra/storefront/pkg/logger"
)

// SessionManager holds the backend tokens for the signed-in shopper.
type SessionManager interface {
	SignIn(accessToken, refreshToken string) error
	SignOut()
	UserID() string
}

// CartSession drives the cart's mode transitions.
type CartSession interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context)
	Mode() cart.Mode
	Snapshot() cart.State
}

type sessionRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type sessionResponse struct {
	UserID    string `json:"user_id,omitempty"`
	Mode      string `json:"mode"`
	ItemCount int    `json:"item_count"`
}

// SessionStart stores the backend tokens and moves the cart to the server.
func SessionStart(manager SessionManager, store CartSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		var payload sessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := manager.SignIn(strings.TrimSpace(payload.AccessToken), strings.TrimSpace(payload.RefreshToken)); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token"))
			return
		}

		ctx := r.Context()
		userID := manager.UserID()
		if logg != nil {
			ctx = logg.WithUserID(ctx, userID)
		}
		if err := store.Login(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			UserID:    userID,
			Mode:      string(store.Mode()),
			ItemCount: store.Snapshot().ItemCount,
		})
	}
}

// SessionEnd forgets the tokens and resets the cart to an empty guest cart.
func SessionEnd(manager SessionManager, store CartSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		manager.SignOut()
		store.Logout(r.Context())

		responses.WriteSuccess(w, sessionResponse{Mode: string(store.Mode())})
	}
}
