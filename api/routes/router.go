package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/developerboi1/tourclean/api/controllers"
	webhookcontrollers "github.com/developerboi1/tourclean/api/controllers/webhooks"
	"github.com/developerboi1/tourclean/api/middleware"
	"github.com/developerboi1/tourclean/internal/analytics"
	"github.com/developerboi1/tourclean/internal/audit"
	"github.com/developerboi1/tourclean/internal/auth"
	"github.com/developerboi1/tourclean/internal/bins"
	"github.com/developerboi1/tourclean/internal/cashouts"
	"github.com/developerboi1/tourclean/internal/submissions"
	"github.com/developerboi1/tourclean/internal/wallets"
	razorpayxwebhook "github.com/developerboi1/tourclean/internal/webhooks/razorpayx"
	"github.com/developerboi1/tourclean/pkg/config"
	"github.com/developerboi1/tourclean/pkg/enums"
	"github.com/developerboi1/tourclean/pkg/logger"
	"github.com/developerboi1/tourclean/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config            *config.Config
	Logger            *logger.Logger
	DB                pinger
	Redis             *redis.Client
	AuthService       auth.Service
	RegisterService   auth.RegisterService
	SubmissionService submissions.Service
	WalletService     wallets.Service
	CashoutService    cashouts.Service
	BinService        bins.Service
	AnalyticsService  analytics.Service
	AuditService      audit.Service
	RazorpayXWebhook  *razorpayxwebhook.Service
	Metrics           http.Handler
}

// NewRouter assembles the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(d.DB, d.Redis, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpayx", webhookcontrollers.RazorpayX(d.RazorpayXWebhook, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Post("/logout", controllers.AuthLogout(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", controllers.SubmissionCreate(d.SubmissionService, logg))
			r.Get("/", controllers.SubmissionList(d.SubmissionService, logg))
			r.Get("/{id}", controllers.SubmissionGet(d.SubmissionService, logg))
		})

		r.Get("/wallet", controllers.WalletGet(d.WalletService, logg))

		r.Route("/cashouts", func(r chi.Router) {
			r.With(middleware.RequireKYCVerified(logg)).Post("/", controllers.CashoutRequest(d.CashoutService, logg))
			r.Get("/", controllers.CashoutList(d.CashoutService, logg))
			r.Get("/{id}", controllers.CashoutGet(d.CashoutService, logg))
		})

		r.Get("/bins", controllers.BinList(d.BinService, logg))

		r.With(middleware.RequireRole(logg, enums.UserRoleModerator, enums.UserRoleCouncil)).
			Get("/analytics", controllers.AnalyticsOverview(d.AnalyticsService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(logg, enums.UserRoleModerator, enums.UserRoleCouncil),
		)

		r.Get("/review-queue", controllers.SubmissionReviewQueue(d.SubmissionService, logg))
		r.Post("/submissions/{id}/approve", controllers.SubmissionApprove(d.SubmissionService, logg))
		r.Post("/submissions/{id}/reject", controllers.SubmissionReject(d.SubmissionService, logg))

		r.Get("/audit-log", controllers.AuditList(d.AuditService, logg))

		r.Get("/cashouts/pending", controllers.CashoutListPending(d.CashoutService, logg))
		r.Post("/cashouts/{id}/initiate", controllers.CashoutInitiate(d.CashoutService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleCouncil))
			r.Post("/bins", controllers.BinCreate(d.BinService, logg))
			r.Patch("/bins/{id}/active", controllers.BinSetActive(d.BinService, logg))
		})
	})

	return r
}
