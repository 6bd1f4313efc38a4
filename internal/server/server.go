package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/fitcoach/internal/auth"
	"github.com/dukerupert/fitcoach/internal/billing"
	billingstripe "github.com/dukerupert/fitcoach/internal/billing/stripe"
	"github.com/dukerupert/fitcoach/internal/handler"
	"github.com/dukerupert/fitcoach/internal/middleware"
	"github.com/dukerupert/fitcoach/internal/store"
)

type Config struct {
	Stripe         billingstripe.Config
	SiteURL        string
	DefaultPriceID string
	JWTSecret      string
	JWTIssuer      string

	// TrustProxyHeaders keys rate limits on CF-Connecting-IP and
	// X-Forwarded-For instead of the peer address.
	TrustProxyHeaders bool
}

type Server struct {
	logger      *slog.Logger
	registry    *prometheus.Registry
	httpMetrics *middleware.Metrics
	verifier    *auth.Verifier
	userStore   *store.UserStore
	syncer      *billing.Syncer
	rateLimiter *middleware.RateLimiter
	trustProxy  bool
	checkoutOn  bool
	webhookH    *handler.WebhookHandler
	checkoutH   *handler.CheckoutHandler
	programH    *handler.ProgramHandler
	workoutH    *handler.WorkoutHandler
	pricingH    *handler.PricingPlanHandler
	transformH  *handler.TransformationHandler
	progressH   *handler.ProgressHandler
	meH         *handler.MeHandler
	catalogH    *handler.CatalogHandler
	adminH      *handler.AdminHandler
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	billingMetrics := billing.NewMetrics(registry)

	userStore := store.NewUserStore(db)
	programStore := store.NewProgramStore(db)
	workoutStore := store.NewWorkoutStore(db)
	scheduleStore := store.NewScheduleStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)

	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = cfg.SiteURL + "/dashboard?success=true"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = cfg.SiteURL + "/pricing?canceled=true"
	}
	stripeClient := billingstripe.NewClient(cfg.Stripe)
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout and billing portal disabled")
	}

	syncer := billing.NewSyncer(db, stripeClient, billingMetrics, logger)

	return &Server{
		logger:      logger,
		registry:    registry,
		httpMetrics: middleware.NewMetrics(registry),
		verifier:    auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		userStore:   userStore,
		syncer:      syncer,
		rateLimiter: middleware.NewRateLimiter(10, time.Minute),
		trustProxy:  cfg.TrustProxyHeaders,
		checkoutOn:  cfg.Stripe.SecretKey != "",
		webhookH:    handler.NewWebhookHandler(stripeClient, syncer, billingMetrics, logger),
		checkoutH: handler.NewCheckoutHandler(stripeClient, store.NewCustomerStore(db), userStore,
			cfg.SiteURL, cfg.DefaultPriceID, logger),
		programH:   handler.NewProgramHandler(programStore, workoutStore, scheduleStore),
		workoutH:   handler.NewWorkoutHandler(workoutStore),
		pricingH:   handler.NewPricingPlanHandler(store.NewPricingPlanStore(db)),
		transformH: handler.NewTransformationHandler(store.NewTransformationStore(db)),
		progressH:  handler.NewProgressHandler(store.NewProgressStore(db)),
		meH:        handler.NewMeHandler(userStore, programStore, scheduleStore, subscriptionStore),
		catalogH:   handler.NewCatalogHandler(store.NewProductStore(db), store.NewPriceStore(db)),
		adminH: handler.NewAdminHandler(userStore, programStore, workoutStore, subscriptionStore,
			syncer, logger),
	}
}

// Syncer returns the billing syncer for the reconcile loop.
func (s *Server) Syncer() *billing.Syncer {
	return s.syncer
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Stripe webhook (public, signature verified)
	mux.HandleFunc("POST /api/webhooks/stripe", s.webhookH.HandleStripeWebhook)

	// Public content
	mux.HandleFunc("GET /api/programs", s.programH.List)
	mux.HandleFunc("GET /api/programs/{id}", s.programH.Get)
	mux.HandleFunc("GET /api/programs/{id}/schedule", s.programH.Schedule)
	mux.HandleFunc("GET /api/pricing-plans", s.pricingH.List)
	mux.HandleFunc("GET /api/transformations", s.transformH.List)
	mux.HandleFunc("GET /api/catalog", s.catalogH.List)

	// Student routes
	authMw := middleware.RequireAuth(s.verifier, s.userStore, s.logger)
	student := func(h http.HandlerFunc) http.Handler {
		return authMw(h)
	}
	mux.Handle("GET /api/me", student(s.meH.Get))
	mux.Handle("PATCH /api/me", student(s.meH.Update))
	mux.Handle("GET /api/me/program", student(s.meH.Program))
	mux.Handle("PUT /api/me/program", student(s.meH.SetProgram))
	mux.Handle("GET /api/me/subscription", student(s.meH.Subscription))
	mux.Handle("GET /api/me/progress", student(s.progressH.List))
	mux.Handle("POST /api/me/progress", student(s.progressH.Create))
	mux.Handle("DELETE /api/me/progress/{id}", student(s.progressH.Delete))

	if s.checkoutOn {
		rateLimitMw := middleware.RateLimit(s.rateLimiter, s.trustProxy)
		mux.Handle("POST /api/checkout", rateLimitMw(student(s.checkoutH.CreateCheckoutSession)))
		mux.Handle("POST /api/billing-portal", rateLimitMw(student(s.checkoutH.BillingPortal)))
	}

	// Admin routes
	admin := func(h http.HandlerFunc) http.Handler {
		return authMw(middleware.RequireAdmin(h))
	}
	mux.Handle("POST /api/admin/programs", admin(s.programH.Create))
	mux.Handle("PUT /api/admin/programs/{id}", admin(s.programH.Update))
	mux.Handle("DELETE /api/admin/programs/{id}", admin(s.programH.Delete))
	mux.Handle("POST /api/admin/programs/{id}/schedule", admin(s.programH.AddScheduleEntry))
	mux.Handle("DELETE /api/admin/schedule/{id}", admin(s.programH.DeleteScheduleEntry))
	mux.Handle("GET /api/admin/workouts", admin(s.workoutH.List))
	mux.Handle("POST /api/admin/workouts", admin(s.workoutH.Create))
	mux.Handle("PUT /api/admin/workouts/{id}", admin(s.workoutH.Update))
	mux.Handle("DELETE /api/admin/workouts/{id}", admin(s.workoutH.Delete))
	mux.Handle("POST /api/admin/pricing-plans", admin(s.pricingH.Create))
	mux.Handle("PUT /api/admin/pricing-plans/{id}", admin(s.pricingH.Update))
	mux.Handle("DELETE /api/admin/pricing-plans/{id}", admin(s.pricingH.Delete))
	mux.Handle("POST /api/admin/transformations", admin(s.transformH.Create))
	mux.Handle("PUT /api/admin/transformations/{id}", admin(s.transformH.Update))
	mux.Handle("DELETE /api/admin/transformations/{id}", admin(s.transformH.Delete))
	mux.Handle("GET /api/admin/students", admin(s.adminH.Students))
	mux.Handle("GET /api/admin/subscriptions", admin(s.adminH.Subscriptions))
	mux.Handle("GET /api/admin/stats", admin(s.adminH.Stats))
	mux.Handle("POST /api/admin/billing/reconcile", admin(s.adminH.Reconcile))

	return middleware.RequestLogger(s.logger)(s.httpMetrics.Instrument(mux))
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
