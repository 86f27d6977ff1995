package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petalpost/florist-backend/api/controllers"
	ordercontrollers "github.com/petalpost/florist-backend/api/controllers/orders"
	webhookcontrollers "github.com/petalpost/florist-backend/api/controllers/webhooks"
	"github.com/petalpost/florist-backend/api/middleware"
	"github.com/petalpost/florist-backend/internal/audit"
	"github.com/petalpost/florist-backend/internal/auth"
	"github.com/petalpost/florist-backend/internal/orders"
	stripewebhook "github.com/petalpost/florist-backend/internal/webhooks/stripe"
	"github.com/petalpost/florist-backend/pkg/auth/session"
	"github.com/petalpost/florist-backend/pkg/config"
	"github.com/petalpost/florist-backend/pkg/db"
	"github.com/petalpost/florist-backend/pkg/logger"
	"github.com/petalpost/florist-backend/pkg/metrics"
	"github.com/petalpost/florist-backend/pkg/redis"
	"github.com/petalpost/florist-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	ordersService orders.Service,
	auditReader audit.Reader,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewLoginThrottlePolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Post("/checkout", controllers.Checkout(ordersService, logg))
		r.Get("/orders/{code}", controllers.TrackOrder(ordersService, logg))
	})

	// When the gateway is not configured the nil pointers must not reach
	// the handler as typed interface values, or its guards never fire.
	stripeHandler := webhookcontrollers.StripeWebhook(nil, nil, nil, logg)
	if stripeWebhookService != nil && stripeClient != nil && stripeWebhookGuard != nil {
		stripeHandler = webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg)
	}
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", stripeHandler)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginThrottle(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Get("/export", ordercontrollers.Export(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
			r.Patch("/{orderId}/status", ordercontrollers.SetStatus(ordersService, logg))
			r.Patch("/{orderId}/payment-status", ordercontrollers.SetPaymentStatus(ordersService, logg))
			r.Patch("/{orderId}/mark-paid", ordercontrollers.MarkPaid(ordersService, logg))
			r.Patch("/{orderId}/costs", ordercontrollers.UpdateCosts(ordersService, logg))
			r.Get("/{orderId}/audit", ordercontrollers.AuditTrail(auditReader, logg))
			r.Delete("/{orderId}", ordercontrollers.Remove(ordersService, logg))
		})
	})

	return r
}
