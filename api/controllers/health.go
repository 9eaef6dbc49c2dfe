package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/almahra/storefront/api/responses"
	"github.com/almahra/storefront/pkg/config"
	pkgerrors "github.com/almahra/storefront/pkg/errors"
	"github.com/almahra/storefront/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger checks a dependency the cart needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Almahra-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the snapshot store answers.
func HealthReady(cfg *config.Config, persistence Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Almahra-Env", cfg.App.Env)

		if persistence != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := persistence.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart persistence unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
