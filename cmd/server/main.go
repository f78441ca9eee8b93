package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log" // Logging library
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo request logging and recovery
	glog "github.com/labstack/gommon/log"           // Log levels for the echo logger

	"github.com/iliyamo/flight-cargo-summary/internal/config"
	"github.com/iliyamo/flight-cargo-summary/internal/database"
	"github.com/iliyamo/flight-cargo-summary/internal/handler"
	"github.com/iliyamo/flight-cargo-summary/internal/queue"
	"github.com/iliyamo/flight-cargo-summary/internal/repository"
	"github.com/iliyamo/flight-cargo-summary/internal/router"
	"github.com/iliyamo/flight-cargo-summary/internal/service"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	if cfg.Env == "dev" {
		e.Logger.SetLevel(glog.DEBUG)
	} else {
		e.Logger.SetLevel(glog.INFO)
	}
	e.Use(echomw.Logger(), echomw.Recover())

	// Dataset is loaded once; the service never writes to it.
	var db *sql.DB
	if cfg.DataSource == repository.SourceMySQL {
		db, err = database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			e.Logger.Fatalf("db: %v", err)
		}
	}
	flights, stats, err := repository.Load(ctx, repository.LoadOptions{
		Source:     cfg.DataSource,
		FlightPath: cfg.FlightDataPath,
		CargoPath:  cfg.CargoDataPath,
		DB:         db,
	})
	if db != nil {
		_ = db.Close() // Not needed after the load
	}
	if err != nil {
		e.Logger.Fatalf("load flights: %v", err)
	}
	e.Logger.Infof("loaded %d flights from %s (cargo attached=%d unmatched=%d)",
		stats.Flights, cfg.DataSource, stats.CargoAttached, stats.CargoUnmatched)
	repo := repository.NewFlightRepo(flights)

	var pub service.Publisher
	if cfg.QueueEnabled {
		pub = queue.NewPublisher(cfg.RabbitMQURL)
		go func() {
			if err := queue.StartSummaryConsumer(ctx, cfg.RabbitMQURL, cfg.SummaryLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("summary consumer stopped: %v", err)
			}
		}()
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		e.Logger.Warn("redis unavailable: cache and rate limit disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	router.RegisterRoutes(e, router.Deps{ // Register application routes
		Flights:   repo,
		Flight:    handler.NewFlightHandler(service.NewSummaryService(repo, pub)),
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		JWTSecret: cfg.JWTSecret,
		APIRoles:  cfg.APIRoles,
	})

	addr := ":" + cfg.Port                                                           // Address string with port
	log.Printf("listening on %s (env=%s auth=%t)", addr, cfg.Env, cfg.AuthEnabled()) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
