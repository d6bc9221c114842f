package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushealth/clinic-booking/internal/api"
	"github.com/campushealth/clinic-booking/internal/booking"
	"github.com/campushealth/clinic-booking/internal/config"
	"github.com/campushealth/clinic-booking/internal/db"
	"github.com/campushealth/clinic-booking/internal/kv"
	redisclient "github.com/campushealth/clinic-booking/internal/redis"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s backend=%s", cfg.Env, cfg.HTTPPort, cfg.StoreBackend)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	var repo booking.Repository
	var pgPool *pgxpool.Pool

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()
		log.Println("connected to Postgres")
		repo = booking.NewPgRepository(pgPool)
	default:
		repo = booking.NewKVRepository(kv.NewRedisStore(rdb, cfg.KVNamespace))
	}

	locker := redisclient.NewSlotLocker(rdb, cfg.LockTTL)
	notifier := booking.NewNotifier(repo)
	inventory := booking.NewInventory(repo, locker)
	ledger := booking.NewLedger(repo, inventory, notifier)
	planner := booking.NewPlanner(repo, cfg.SlotInterval)

	router := api.NewRouter(api.RouterConfig{
		Planner:   planner,
		Inventory: inventory,
		Ledger:    ledger,
		Repo:      repo,
		PgPool:    pgPool,
		Redis:     rdb,
		Env:       cfg.Env,
		Version:   version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
