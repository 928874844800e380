package main // Entry point package

import (
	"context"   // context for shutdown deadlines
	"log"       // Logging library
	"net/http"  // http.ErrServerClosed sentinel
	"os"        // signal plumbing
	"os/signal" // SIGINT/SIGTERM handling
	"syscall"   // signal constants
	"time"      // durations for config knobs

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/hotel-room-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/hotel-room-reservation/internal/database"   // MySQL connection
	"github.com/iliyamo/hotel-room-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/hotel-room-reservation/internal/middleware" // rate limiting and response cache
	"github.com/iliyamo/hotel-room-reservation/internal/notifier"   // delivery backends
	"github.com/iliyamo/hotel-room-reservation/internal/queue"      // RabbitMQ publisher and consumer
	"github.com/iliyamo/hotel-room-reservation/internal/repository" // DB repositories
	"github.com/iliyamo/hotel-room-reservation/internal/router"     // Internal router setup
	"github.com/iliyamo/hotel-room-reservation/internal/scheduler"  // periodic job runner
	"github.com/iliyamo/hotel-room-reservation/internal/service"    // booking lifecycle engine
	"github.com/iliyamo/hotel-room-reservation/internal/worker"     // notification delivery worker
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	notifRepo := repository.NewNotificationRepo(db)

	// Room status changes fan out to notifications and the message broker.
	broadcaster := service.NewEventBroadcaster(bookingRepo, userRepo, notifRepo, queue.NewPublisher())
	ctrl := service.NewRoomController(roomRepo, broadcaster)

	window := time.Duration(cfg.MaintenanceWindow) * time.Minute
	lifecycle := service.NewLifecycle(roomRepo, bookingRepo, userRepo, ctrl, window)
	sweeper := service.NewSweeper(bookingRepo, lifecycle, window)

	deliver := worker.New(notifRepo, notifier.NewConsole(), worker.Config{
		BatchLimit: cfg.WorkerBatchLimit,
		MaxRetries: cfg.NotifMaxRetries,
		Backoff: worker.BackoffPolicy{
			Base:   time.Duration(cfg.NotifBackoffBase) * time.Second,
			Factor: cfg.NotifBackoffFactor,
		},
		Mode: worker.ParseDeliveryMode(cfg.NotifDeliveryMode),
	})

	// One scheduler drives both background jobs; each job never overlaps
	// itself and late ticks past the grace window are skipped.
	sched := scheduler.New(
		time.Duration(cfg.SweepIntervalSec)*time.Second,
		time.Duration(cfg.MisfireGraceSec)*time.Second,
	)
	sched.AddJob("sweep", sweeper.Run)
	sched.AddJob("notifications", func(ctx context.Context) error {
		_, err := deliver.ProcessPending(ctx)
		return err
	})

	// The consumer mirrors room status events into the audit log and
	// reconnects on its own; a missing broker must not block startup.
	go func() {
		if err := queue.StartRoomStatusConsumer(); err != nil {
			log.Printf("room status consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	// Redis backs the rate limiter and the public browse cache. Both are
	// skipped when Redis is unreachable so the API still serves.
	rdb := config.NewRedisClient()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	} else {
		log.Printf("redis unavailable, rate limiting and response cache disabled")
	}

	router.RegisterRoutes(e) // health check
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)

	roomHandler := handler.NewRoomHandler(roomRepo, ctrl)
	if rdb != nil {
		router.RegisterPublic(e, roomHandler, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		router.RegisterPublic(e, roomHandler)
	}
	router.RegisterAPI(e, cfg.JWTSecret,
		roomHandler,
		handler.NewBookingHandler(bookingRepo, lifecycle),
		handler.NewNotificationHandler(notifRepo, userRepo),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sched.Start(ctx)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done() // wait for SIGINT/SIGTERM
	log.Printf("shutting down")
	sched.Stop() // waits for in-flight sweep and delivery runs

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
