package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fxvps/platform/internal/config"
	"fxvps/platform/internal/handler"
	mw "fxvps/platform/internal/middleware"
	"fxvps/platform/internal/migrations"
	"fxvps/platform/internal/repository"
	"fxvps/platform/internal/repository/memory"
	"fxvps/platform/internal/repository/presence"
	"fxvps/platform/internal/scheduler"
	"fxvps/platform/internal/service"
	"fxvps/platform/internal/service/flutterwave"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// store is satisfied by both the postgres and the in-memory store.
type store interface {
	service.LedgerRepository
	service.VPSRepository
	service.MarketRepository
	service.WebhookRepository
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup storage
	var db store
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := migrations.Up(cfg.DatabaseURL); err != nil {
				log.WithError(err).Fatal("Failed to migrate database")
			}
		}

		dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer dbPool.Close()

		if err := dbPool.Ping(ctx); err != nil {
			log.WithError(err).Fatal("Failed to ping database")
		}
		log.Info("Connected to database")
		db = repository.NewStore(dbPool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		db = memory.NewStore()
	}

	var presenceStore service.PresenceStore
	if cfg.RedisURL != "" {
		client, err := presence.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to redis")
		}
		defer client.Close()
		presenceStore = presence.NewRedisStore(client)
	} else {
		presenceStore = presence.NewMemoryStore()
	}

	// 3. Setup Logic
	policy := service.Policy{
		MinWithdrawalCents: cfg.MinWithdrawalCents,
		FeeCents:           cfg.WithdrawalFeeCents,
		FeeBPS:             cfg.WithdrawalFeeBPS,
		PlatformPercent:    cfg.PlatformFeePercent,
		ReferralPercent:    cfg.ReferralPercent,
	}

	var verifier service.ChargeVerifier
	if cfg.FlutterwaveSecretKey != "" {
		verifier = flutterwave.NewClient(flutterwave.Config{
			APIURL:    cfg.FlutterwaveAPIURL,
			SecretKey: cfg.FlutterwaveSecretKey,
		})
	} else {
		log.Warn("FLUTTERWAVE_SECRET_KEY not set, charges will not be re-verified")
	}

	ledgerService := service.NewLedgerService(db, policy, log)
	vpsService := service.NewVPSService(db, cfg.VPSRestartDuration, log)
	marketService := service.NewMarketService(db, log)
	paymentService := service.NewPaymentService(db, db, ledgerService, verifier, log)
	presenceService := service.NewPresenceService(presenceStore, cfg.PresenceTTL)
	overviewService := service.NewOverviewService(ledgerService, vpsService, presenceService)

	limiter := mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiter.StartCleanup(ctx, 5*time.Minute)

	h := handler.NewHandler(handler.Deps{
		Auth:      mw.NewAuth(cfg.JWTSecret, log),
		Limiter:   limiter,
		Ledger:    handler.NewLedgerHandler(ledgerService, log),
		VPS:       handler.NewVPSHandler(vpsService, log),
		Market:    handler.NewMarketHandler(marketService, log),
		Webhook:   handler.NewWebhookHandler(paymentService, cfg.FlutterwaveSecretHash, log),
		Dashboard: handler.NewDashboardHandler(presenceService, overviewService, log),
	}, log)

	sched, err := scheduler.New(cfg.SweepSchedule, vpsService, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create scheduler")
	}
	sched.Start(ctx)

	// 4. Setup Server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Run Server with Graceful Shutdown
	go func() {
		log.WithField("port", cfg.ServerPort).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	// Create a deadline to wait for.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("Scheduler did not stop in time")
	}

	log.Info("Server exiting")
}
