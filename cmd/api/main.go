package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/developerboi1/tourclean/api/routes"
	"github.com/developerboi1/tourclean/internal/analytics"
	"github.com/developerboi1/tourclean/internal/audit"
	"github.com/developerboi1/tourclean/internal/auth"
	"github.com/developerboi1/tourclean/internal/bins"
	"github.com/developerboi1/tourclean/internal/cashouts"
	"github.com/developerboi1/tourclean/internal/submissions"
	"github.com/developerboi1/tourclean/internal/users"
	"github.com/developerboi1/tourclean/internal/wallets"
	razorpayxwebhook "github.com/developerboi1/tourclean/internal/webhooks/razorpayx"
	"github.com/developerboi1/tourclean/pkg/auth/session"
	"github.com/developerboi1/tourclean/pkg/config"
	"github.com/developerboi1/tourclean/pkg/db"
	"github.com/developerboi1/tourclean/pkg/logger"
	"github.com/developerboi1/tourclean/pkg/metrics"
	"github.com/developerboi1/tourclean/pkg/migrate"
	"github.com/developerboi1/tourclean/pkg/outbox"
	"github.com/developerboi1/tourclean/pkg/razorpayx"
	"github.com/developerboi1/tourclean/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	razorpayxClient, err := razorpayx.NewClient(context.Background(), cfg.RazorpayX, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap razorpayx client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	walletService, err := wallets.NewService(wallets.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}
	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}
	binService, err := bins.NewService(bins.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create bin service", err)
		os.Exit(1)
	}
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	submissionService, err := submissions.NewService(
		dbClient,
		submissions.NewRepository(dbClient.DB()),
		walletService,
		auditService,
		outboxService,
		binService,
		cfg.Cashout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create submission service", err)
		os.Exit(1)
	}

	cashoutService, err := cashouts.NewService(
		dbClient,
		cashouts.NewRepository(dbClient.DB()),
		walletService,
		auditService,
		outboxService,
		razorpayxClient,
		userRepo,
		cfg.Cashout,
		settlementMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cashout service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	webhookService, err := razorpayxwebhook.NewService(razorpayxwebhook.ServiceParams{
		SigningSecret: cfg.RazorpayX.WebhookSecret,
		Idempotency:   redisClient,
		Settler:       cashoutService,
		Metrics:       settlementMetrics,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedBins {
		if err := bins.Seed(context.Background(), bins.NewRepository(dbClient.DB()), logg); err != nil {
			logg.Error(context.Background(), "failed to seed bins", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:            cfg,
			Logger:            logg,
			DB:                dbClient,
			Redis:             redisClient,
			AuthService:       authService,
			RegisterService:   registerService,
			SubmissionService: submissionService,
			WalletService:     walletService,
			CashoutService:    cashoutService,
			BinService:        binService,
			AnalyticsService:  analyticsService,
			AuditService:      auditService,
			RazorpayXWebhook:  webhookService,
			Metrics:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
