package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/osaka-airlines/internal/config"
	"github.com/iliyamo/osaka-airlines/internal/database"
	"github.com/iliyamo/osaka-airlines/internal/handler"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/queue"
	"github.com/iliyamo/osaka-airlines/internal/repository"
	"github.com/iliyamo/osaka-airlines/internal/router"
	"github.com/iliyamo/osaka-airlines/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "osaka-airlines"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting", "env", cfg.Env, "pricing_policy", cfg.PricingPolicy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer func() { _ = db.Close() }()
	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("migrations failed", "error", err)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unreachable, response cache and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	m := metrics.NewMetrics(cfg.MetricsNS)

	// ---- Events ----
	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub := queue.NewPublisher(cfg.RabbitURL, cfg.EventsQueue, log, m)
		defer func() { _ = pub.Close() }()
		events = pub

		audit, err := logger.New(logger.Options{Level: "info", Format: "json", OutputPaths: []string{cfg.AuditLogPath}})
		if err != nil {
			log.Warn("audit log unavailable, writing audit entries to stdout", "path", cfg.AuditLogPath, "error", err)
			audit, _ = logger.New(logger.Options{Level: "info", Format: "json"})
		}
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventsQueue, audit, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// ---- Repositories ----
	manufacturers := repository.NewManufacturerRepo(db)
	models := repository.NewAircraftModelRepo(db)
	boards := repository.NewBoardRepo(db)
	boardSeats := repository.NewBoardSeatRepo(db)
	places := repository.NewPlaceRepo(db)
	airports := repository.NewAirportRepo(db)
	flights := repository.NewFlightRepo(db)
	flightSeats := repository.NewFlightSeatRepo(db)
	tickets := repository.NewTicketRepo(db)
	users := repository.NewUserRepo(db)
	clients := repository.NewClientRepo(db)
	tokens := repository.NewTokenRepo(db)

	// ---- Services ----
	layoutSvc := service.NewLayoutService(db, boards, boardSeats, events, m, log)
	materializer := service.NewMaterializer(boardSeats, flightSeats, flights, cfg.PricingPolicy)
	flightSvc := service.NewFlightService(db, boards, flights, flightSeats, tickets, materializer, events, m, log)
	bookingSvc := service.NewBookingService(db, clients, flightSeats, tickets, events, m, log)
	accountSvc := service.NewAccountService(db, users, clients, cfg.BcryptCost, log)

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(middleware.Recover(log))
	e.Use(middleware.RequestLogger(log, m))

	router.RegisterRoutes(e, db, prometheus.DefaultGatherer)
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, accountSvc, tokens, log),
		Catalog:  handler.NewCatalogHandler(manufacturers, models, boards, places, airports, log),
		Layouts:  handler.NewLayoutHandler(layoutSvc, log),
		Flights:  handler.NewFlightHandler(flightSvc, log),
		Bookings: handler.NewBookingHandler(bookingSvc, log),
		Staff:    handler.NewStaffHandler(accountSvc, log),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Log:       log,
	})

	go func() {
		log.Info("listening", "addr", ":"+cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutting down", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", "error", err)
	}
	cancel()
	log.Info("stopped")
}
