package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/campushealth/clinic-booking/internal/booking"
	"github.com/campushealth/clinic-booking/internal/config"
	"github.com/campushealth/clinic-booking/internal/db"
	"github.com/campushealth/clinic-booking/internal/kv"
	redisclient "github.com/campushealth/clinic-booking/internal/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("janitor starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running janitor in env=%s interval=%s retention=%s", cfg.Env, cfg.JanitorInterval, cfg.NotifyRetention)

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

	var repo booking.Repository
	if cfg.StoreBackend == config.BackendPostgres {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()
		repo = booking.NewPgRepository(pgPool)
	} else {
		repo = booking.NewKVRepository(kv.NewRedisStore(rdb, cfg.KVNamespace))
	}

	janitor := booking.NewJanitor(repo, cfg.NotifyRetention)

	// Run once at startup, then on the ticker.
	runOnce(rootCtx, janitor)

	ticker := time.NewTicker(cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping janitor")
			return
		case <-ticker.C:
			runOnce(rootCtx, janitor)
		}
	}
}

func runOnce(ctx context.Context, j *booking.Janitor) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	notes, windows, err := j.Sweep(runCtx, start)
	if err != nil {
		log.Printf("sweep error: %v", err)
		return
	}
	log.Printf("sweep complete in %s: removed %d notifications, %d stale windows", time.Since(start), notes, windows)
}
