package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/supplydesk/supplydesk-backend/api/controllers"
	"github.com/supplydesk/supplydesk-backend/api/middleware"
	basketsvc "github.com/supplydesk/supplydesk-backend/internal/basket"
	catalogsvc "github.com/supplydesk/supplydesk-backend/internal/catalog"
	contactsvc "github.com/supplydesk/supplydesk-backend/internal/contacts"
	feedsvc "github.com/supplydesk/supplydesk-backend/internal/feed"
	"github.com/supplydesk/supplydesk-backend/pkg/config"
	"github.com/supplydesk/supplydesk-backend/pkg/logger"
)

// Pinger is the readiness surface the router probes.
type Pinger interface {
	Ping(context.Context) error
}

// RateLimitStore feeds the partner surface throttle.
type RateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP Pinger,
	cacheP Pinger,
	rateStore RateLimitStore,
	catalogService catalogsvc.Service,
	feedService feedsvc.Service,
	basketService basketsvc.Service,
	contactService contactsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Get("/export", controllers.ExportProducts(catalogService, logg))
		})

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", controllers.BasketView(basketService, logg))
			r.Post("/", controllers.BasketAddItem(basketService, logg))
			r.Delete("/", controllers.BasketRemoveItem(basketService, logg))
		})

		r.Post("/order/confirm", controllers.OrderConfirm(basketService, logg))
		r.Get("/orders", controllers.OrdersList(basketService, logg))

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", controllers.ContactsList(contactService, logg))
			r.Post("/", controllers.ContactCreate(contactService, logg))
			r.Delete("/", controllers.ContactDelete(contactService, logg))
		})

		r.Route("/partner", func(r chi.Router) {
			r.Use(middleware.RequireShop(logg))
			r.With(middleware.PartnerRateLimit(cfg.PartnerRate, rateStore, logg)).Post("/update", controllers.PartnerUpdate(feedService, logg))
			r.Get("/state", controllers.PartnerShop(catalogService, logg))
			r.Post("/state", controllers.PartnerState(catalogService, logg))
			r.Get("/orders", controllers.PartnerOrders(basketService, logg))
		})
	})

	return r
}
