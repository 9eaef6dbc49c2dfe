package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almahra/storefront/api/controllers"
	cartcontrollers "github.com/almahra/storefront/api/controllers/cart"
	"github.com/almahra/storefront/api/middleware"
	"github.com/almahra/storefront/pkg/config"
	"github.com/almahra/storefront/pkg/logger"
)

// CartService is the cart store as the HTTP surface sees it.
type CartService interface {
	cartcontrollers.Service
	controllers.CartSession
}

// SessionService holds the shopper's backend tokens.
type SessionService interface {
	controllers.SessionManager
	middleware.SessionReader
}

// Dependencies bundles what the router serves.
type Dependencies struct {
	Cart          CartService
	Notifications cartcontrollers.Notifications
	Session       SessionService
	Persistence   controllers.Pinger
	Metrics       http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Persistence, logg))
	})

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics)
	}

	var cartMode func() string
	if deps.Cart != nil {
		cartMode = func() string { return string(deps.Cart.Mode()) }
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(deps.Session, cartMode, logg))

		r.Post("/session", controllers.SessionStart(deps.Session, deps.Cart, logg))
		r.Delete("/session", controllers.SessionEnd(deps.Session, deps.Cart, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, deps.Notifications, logg))
			r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, deps.Notifications, logg))
			r.Patch("/items/{lineId}", cartcontrollers.CartUpdateItem(deps.Cart, deps.Notifications, logg))
			r.Delete("/items/{lineId}", cartcontrollers.CartRemoveItem(deps.Cart, deps.Notifications, logg))
			r.Post("/toggle", cartcontrollers.CartToggle(deps.Cart, logg))
			r.Post("/checkout", cartcontrollers.CartCheckout(deps.Cart, deps.Notifications, logg))
			r.Get("/count", cartcontrollers.CartCount(deps.Cart, logg))
			r.Get("/notifications", cartcontrollers.CartNotifications(deps.Notifications, logg))
			r.With(middleware.RequireSession(logg)).Post("/refresh", cartcontrollers.CartRefresh(deps.Cart, deps.Notifications, logg))
		})
	})

	return r
}
