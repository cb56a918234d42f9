package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toolyhq/tooly-storefront/api/controllers"
	cartcontrollers "github.com/toolyhq/tooly-storefront/api/controllers/cart"
	checkoutcontrollers "github.com/toolyhq/tooly-storefront/api/controllers/checkout"
	"github.com/toolyhq/tooly-storefront/api/middleware"
	cartsvc "github.com/toolyhq/tooly-storefront/internal/cart"
	checkoutsvc "github.com/toolyhq/tooly-storefront/internal/checkout"
	"github.com/toolyhq/tooly-storefront/internal/rpc"
	"github.com/toolyhq/tooly-storefront/pkg/config"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/redis"
	"github.com/toolyhq/tooly-storefront/pkg/session"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessions *session.Manager,
	rpcClient *rpc.Client,
	carts *cartsvc.Manager,
	checkouts *checkoutsvc.Manager,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient, rpcClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	sessioned := middleware.Session(cfg.Session, sessions, logg)

	r.Group(func(r chi.Router) {
		r.Use(sessioned)
		r.Post("/shop-api", controllers.ShopAPI(rpcClient, cfg.Commerce.MaxBodyBytes, logg))
	})

	idempotent := middleware.Idempotency(redisClient, cfg.Payment.IdempotencyTTL, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(sessioned)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(carts, logg))
			r.Delete("/", cartcontrollers.Clear(carts, logg))
			r.Post("/items", cartcontrollers.AddItem(carts, logg))
			r.Put("/items/{lineID}", cartcontrollers.UpdateItem(carts, logg))
			r.Delete("/items/{lineID}", cartcontrollers.RemoveItem(carts, logg))
			r.Post("/drawer", cartcontrollers.Drawer(carts, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutcontrollers.Fetch(checkouts, carts, logg))
			r.Post("/begin", checkoutcontrollers.Begin(checkouts, carts, logg))
			r.Post("/address", checkoutcontrollers.SubmitAddress(checkouts, carts, logg))
			r.Post("/shipping/select", checkoutcontrollers.SelectShipping(checkouts, carts, logg))
			r.Post("/shipping", checkoutcontrollers.SubmitShipping(checkouts, carts, logg))
			r.With(idempotent).Post("/payment", checkoutcontrollers.SubmitPayment(checkouts, carts, logg))
			r.Post("/back", checkoutcontrollers.Back(checkouts, carts, logg))
			r.Post("/abandon", checkoutcontrollers.Abandon(checkouts, logg))
		})
	})

	return r
}
