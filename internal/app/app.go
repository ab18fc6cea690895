package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"candrive-backend/internal/auth"
	"candrive-backend/internal/config"
	"candrive-backend/internal/db"
	"candrive-backend/internal/event"
	"candrive-backend/internal/health"
	"candrive-backend/internal/kafka"
	"candrive-backend/internal/leaderboard"
	"candrive-backend/internal/ledger"
	"candrive-backend/internal/logger"
	"candrive-backend/internal/messaging"
	"candrive-backend/internal/metrics"
	"candrive-backend/internal/reservation"
	"candrive-backend/internal/roster"
	"candrive-backend/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	telemetry *telemetry.Telemetry
	publisher ledger.Publisher
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the service handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env, "db_driver", cfg.Database.Driver)

	loc, err := time.LoadLocation(cfg.Time.Zone)
	if err != nil {
		log.Fatalf("invalid time zone %q: %v", cfg.Time.Zone, err)
	}

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	ctx := context.Background()

	database := db.New(cfg.Database)
	app.db = database

	var m *metrics.Metrics
	tel, err := telemetry.Init(ctx, ServiceName, Version, cfg.Env, cfg.Telemetry.OTLPEndpoint, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize telemetry, metrics disabled", "error", err)
		m = metrics.NewMock()
	} else {
		app.telemetry = tel
		m = tel.Metrics
		if err := m.Database.RegisterDB(database.DB, otel.Meter(ServiceName)); err != nil {
			slogLogger.Warn("failed to register database pool metrics", "error", err)
		}
	}

	if err := db.RunMigrations(ctx, database,
		(*event.Event)(nil),
		(*roster.Student)(nil),
		(*roster.Teacher)(nil),
		(*ledger.Donation)(nil),
		(*reservation.Reservation)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	eventRepo := event.NewRepository(database, m)
	rosterRepo := roster.NewRepository(database, m)
	ledgerRepo := ledger.NewRepository(database, m)
	reservationRepo := reservation.NewRepository(database, m)

	app.publisher = newPublisher(cfg, slogLogger, m)

	eventService := event.NewService(eventRepo, rosterRepo, ledgerRepo, reservationRepo, slogLogger)
	rosterService := roster.NewService(rosterRepo, slogLogger, m)
	ledgerService := ledger.NewService(ledgerRepo, app.publisher, slogLogger, m)
	leaderboardService := leaderboard.NewService(rosterService, ledgerService, loc, slogLogger, m)
	reservationService := reservation.NewService(reservationRepo, slogLogger, m)

	if _, err := eventService.Ensure(ctx, cfg.Event.ID, cfg.Event.Name); err != nil {
		log.Fatal("failed to ensure bootstrap event:", err)
	}

	eventHandler := event.NewHandler(eventService, slogLogger)
	rosterHandler := roster.NewHandler(rosterService, slogLogger)
	ledgerHandler := ledger.NewHandler(ledgerService, slogLogger)
	leaderboardHandler := leaderboard.NewHandler(leaderboardService, slogLogger)
	reservationHandler := reservation.NewHandler(reservationService, slogLogger)
	healthHandler := health.NewHandler(database, slogLogger)

	app.router.Use(chimiddleware.RequestID)
	app.router.Use(chimiddleware.RealIP)
	app.router.Use(requestLogger(slogLogger))
	app.router.Use(chimiddleware.Recoverer)
	app.router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	// Probe endpoints (no auth required)
	healthHandler.RegisterRoutes(app.router)

	// Prometheus scrape endpoint, present only without an OTLP push target
	if app.telemetry != nil && app.telemetry.PromHandler != nil {
		app.router.Method(http.MethodGet, "/metrics", app.telemetry.PromHandler)
	}

	app.router.Route("/api", func(r chi.Router) {
		healthHandler.RegisterAPIRoutes(r)
		eventHandler.RegisterRoutes(r)
		rosterHandler.RegisterRoutes(r)
		leaderboardHandler.RegisterRoutes(r)
		reservationHandler.RegisterRoutes(r)

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.JWTSecret, slogLogger))
			eventHandler.RegisterAdminRoutes(r)
			rosterHandler.RegisterAdminRoutes(r)
			ledgerHandler.RegisterAdminRoutes(r)
			leaderboardHandler.RegisterAdminRoutes(r)
			reservationHandler.RegisterAdminRoutes(r)
		})
	})

	slogLogger.Info("application initialized successfully")

	return app
}

// newPublisher builds the donation-event publisher named by the messaging
// driver config. Returns nil (publishing disabled) when no driver is set or
// the broker is unreachable; the API works fine without one.
func newPublisher(cfg *config.Config, slogLogger *slog.Logger, m *metrics.Metrics) ledger.Publisher {
	switch cfg.Messaging.Driver {
	case "nats":
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger, m)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS producer", "error", err)
			return nil
		}
		return producer
	case "kafka":
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger, m)
		if err != nil {
			slogLogger.Warn("failed to initialize kafka producer", "error", err)
			return nil
		}
		return producer
	case "":
		slogLogger.Info("no messaging driver configured, donation events disabled")
		return nil
	default:
		log.Fatalf("unknown messaging driver %q", cfg.Messaging.Driver)
		return nil
	}
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	err := a.server.Shutdown(ctx)

	if a.publisher != nil {
		if cerr := a.publisher.Close(); cerr != nil {
			a.logger.Warn("failed to close publisher", "error", cerr)
		}
	}
	if a.telemetry != nil {
		if terr := telemetry.Shutdown(ctx, a.telemetry.MeterProvider, a.logger); terr != nil {
			a.logger.Warn("failed to shutdown telemetry", "error", terr)
		}
	}
	db.Close(a.db)

	return err
}
