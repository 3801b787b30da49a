package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/nextinning/recruiting-api/internal/config"
	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/infrastructure/account/anubis"
	"github.com/nextinning/recruiting-api/internal/infrastructure/billing/outseta"
	"github.com/nextinning/recruiting-api/internal/infrastructure/billing/stripe"
	cacherepo "github.com/nextinning/recruiting-api/internal/infrastructure/repository/cache"
	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/postgres"
	"github.com/nextinning/recruiting-api/internal/interfaces/httpapi"
	"github.com/nextinning/recruiting-api/internal/platform/cache"
	idgen "github.com/nextinning/recruiting-api/internal/platform/id"
	"github.com/nextinning/recruiting-api/internal/platform/resilience"
	"github.com/nextinning/recruiting-api/internal/usecase"

	_ "github.com/lib/pq"
)

// NewHTTPServer wires repositories, services, and the HTTP surface into a
// ready-to-listen server. The database handle is closed when the server
// shuts down.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	idGen := idgen.NewRandomGenerator()

	if cfg.AppEnv == config.EnvDev {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgres.BootstrapSeed(seedCtx, db, idGen); err != nil {
			logger.Warn("bootstrap seed skipped", "error", err)
		}
	}

	userRepo := postgres.NewUserRepository(db, idGen)

	var teamRepo team.Repository = postgres.NewTeamRepository(db, idGen)
	if cfg.CacheEnabled {
		teamRepo = cacherepo.NewTeamRepository(teamRepo, cache.NewStore(cfg.CacheTTL))
	}
	followRepo := postgres.NewFollowRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)

	stripeClient := stripe.NewClient(stripe.Config{
		BaseURL:   cfg.StripeBaseURL,
		SecretKey: cfg.StripeSecretKey,
		Timeout:   cfg.StripeTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StripeCircuitEnabled,
			FailureThreshold: cfg.StripeCircuitFailureCount,
			OpenTimeout:      cfg.StripeCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StripeCircuitHalfOpenMaxReq,
		},
	}, logger)

	outsetaClient := outseta.NewClient(outseta.Config{
		BaseURL:   cfg.OutsetaBaseURL,
		APIKey:    cfg.OutsetaAPIKey,
		APISecret: cfg.OutsetaAPISecret,
		Timeout:   cfg.OutsetaTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.OutsetaCircuitEnabled,
			FailureThreshold: cfg.OutsetaCircuitFailureCount,
			OpenTimeout:      cfg.OutsetaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.OutsetaCircuitHalfOpenMaxReq,
		},
	}, logger)

	playerSvc := usecase.NewPlayerService(userRepo)
	teamSvc := usecase.NewTeamService(teamRepo, userRepo)
	followSvc := usecase.NewFollowService(followRepo, userRepo, idGen)
	dashboardSvc := usecase.NewDashboardService(userRepo, followSvc)
	registrationSvc := usecase.NewRegistrationService(
		registrationRepo,
		userRepo,
		subscriptionRepo,
		stripeClient,
		outsetaClient,
		idGen,
		logger,
	)
	subscriptionSvc := usecase.NewSubscriptionService(subscriptionRepo, userRepo, logger)
	importSvc := usecase.NewImportService(userRepo, teamRepo, idGen, logger).
		WithMaxWorkers(cfg.ImportMaxWorkers)

	anubisClient := anubis.NewClient(anubis.Config{
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectPath,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.CacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
	}, logger)

	handler := httpapi.NewHandler(
		playerSvc,
		teamSvc,
		dashboardSvc,
		followSvc,
		registrationSvc,
		subscriptionSvc,
		importSvc,
		logger,
		httpapi.HandlerConfig{
			MediaBaseURL:         cfg.MediaBaseURL,
			StripeWebhookSecret:  cfg.StripeWebhookSecret,
			OutsetaWebhookSecret: cfg.OutsetaWebhookKey,
		},
	)
	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.CORSAllowedOrigins, cfg.InternalAPIToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	server.RegisterOnShutdown(func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	})

	return server, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
