package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-station/internal/config"
	"github.com/iliyamo/game-station/internal/database"
	"github.com/iliyamo/game-station/internal/handler"
	"github.com/iliyamo/game-station/internal/ledger"
	"github.com/iliyamo/game-station/internal/middleware"
	"github.com/iliyamo/game-station/internal/queue"
	"github.com/iliyamo/game-station/internal/repository"
	"github.com/iliyamo/game-station/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	deviceRepo := repository.NewDeviceRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	subRepo := repository.NewSubscriptionRepo(db)

	// The ledger is the live source of truth; seed it from the durable
	// inventory.  Sessions do not survive a restart, so IN_USE/RESERVED
	// rows come back AVAILABLE (RegisterDevice/RegisterRoom normalize).
	ldg := ledger.New(sessionRepo)
	seedLedger(ldg, deviceRepo, roomRepo)

	e := echo.New()

	// Redis-backed rate limiting and response caching; both pass through
	// when Redis is down.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, router.Handlers{
		Devices:       handler.NewDeviceHandler(ldg, deviceRepo),
		Rooms:         handler.NewRoomHandler(ldg, roomRepo),
		Sessions:      handler.NewSessionHandler(ldg, deviceRepo, roomRepo, sessionRepo),
		Reports:       handler.NewReportHandler(sessionRepo),
		Subscriptions: handler.NewSubscriptionHandler(subRepo),
	}, cached)

	// Background consumer appends session.completed events to
	// logs/sessions.log and reconnects on broker trouble.
	go func() {
		if err := queue.StartSessionConsumer(); err != nil {
			log.Printf("session consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedLedger loads the device and room inventory into the ledger at
// startup.
func seedLedger(ldg *ledger.Ledger, devices *repository.DeviceRepo, rooms *repository.RoomRepo) {
	ctx := context.Background()

	ds, err := devices.List(ctx)
	if err != nil {
		log.Fatalf("load devices: %v", err)
	}
	for _, d := range ds {
		ldg.RegisterDevice(d)
	}

	rs, err := rooms.List(ctx)
	if err != nil {
		log.Fatalf("load rooms: %v", err)
	}
	for _, r := range rs {
		ldg.RegisterRoom(r)
	}
	log.Printf("ledger seeded with %d devices and %d rooms", len(ds), len(rs))
}
