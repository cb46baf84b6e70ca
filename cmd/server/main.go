package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ayanda-dev/studio-booking/internal/booking"
	"github.com/ayanda-dev/studio-booking/internal/config"
	"github.com/ayanda-dev/studio-booking/internal/database"
	"github.com/ayanda-dev/studio-booking/internal/handler"
	"github.com/ayanda-dev/studio-booking/internal/middleware"
	"github.com/ayanda-dev/studio-booking/internal/queue"
	"github.com/ayanda-dev/studio-booking/internal/repository"
	"github.com/ayanda-dev/studio-booking/internal/router"
	queue_publisher "github.com/ayanda-dev/studio-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := database.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Fatalf("schema: %v", err)
		}
		cancel()
	}

	// Redis backs the response cache and the rate limiter.  A nil
	// client disables both; bookings keep working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, caching and rate limiting disabled")
	}

	sessionRepo := repository.NewSessionRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	waitlistRepo := repository.NewWaitlistRepo(db)
	clientRepo := repository.NewClientRepo(db)

	svc := booking.NewService(sessionRepo, bookingRepo, waitlistRepo, queue_publisher.PublishBookingRecorded)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewRateLimit(config.LoadRateLimitConfig(), rdb))

	var cacheMW echo.MiddlewareFunc
	if cacheCfg := config.LoadCacheConfig(); cacheCfg.Enabled && rdb != nil {
		cacheMW = middleware.NewResponseCache(cacheCfg, rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterSessions(e, handler.NewSessionHandler(sessionRepo, waitlistRepo), cacheMW)
	router.RegisterBookings(e, handler.NewBookingHandler(svc, clientRepo, cfg.DefaultWeeks))
	router.RegisterClients(e, handler.NewClientHandler(clientRepo, bookingRepo))

	// The consumer mirrors every recorded outcome into logs/booking.log.
	// It reconnects on its own; a missing broker only costs the log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
