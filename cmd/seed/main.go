package main

import (
	"context"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/campushealth/clinic-booking/internal/booking"
	"github.com/campushealth/clinic-booking/internal/config"
	"github.com/campushealth/clinic-booking/internal/db"
	"github.com/campushealth/clinic-booking/internal/kv"
	redisclient "github.com/campushealth/clinic-booking/internal/redis"
)

var services = []string{
	"general-checkup",
	"dental",
	"dermatology",
	"physiotherapy",
	"mental-health",
	"vaccination",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	rdb, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer rdb.Close()

	var repo booking.Repository
	if cfg.StoreBackend == config.BackendPostgres {
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancel()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()
		repo = booking.NewPgRepository(pgPool)
	} else {
		repo = booking.NewKVRepository(kv.NewRedisStore(rdb, cfg.KVNamespace))
	}

	done, err := repo.Initialized(ctx)
	if err != nil {
		log.Fatalf("check seed marker: %v", err)
	}
	if done {
		log.Println("store already seeded, nothing to do")
		return
	}

	gofakeit.Seed(time.Now().UnixNano())

	planner := booking.NewPlanner(repo, cfg.SlotInterval)
	if err := seedAvailability(ctx, planner, 3, 5); err != nil {
		log.Fatalf("seed availability: %v", err)
	}

	if err := repo.MarkInitialized(ctx); err != nil {
		log.Fatalf("mark initialized: %v", err)
	}

	log.Println("seed complete")
}

// seedAvailability creates demo clinics, each with a handful of doctors and
// one availability window per doctor per weekday over the coming week.
func seedAvailability(ctx context.Context, planner *booking.Planner, clinics, doctorsPerClinic int) error {
	totalWindows := 0
	totalSlots := 0

	for c := 0; c < clinics; c++ {
		clinicID := uuid.New()

		for d := 0; d < doctorsPerClinic; d++ {
			doctorID := uuid.New()
			service := services[gofakeit.Number(0, len(services)-1)]
			log.Printf("clinic %s: doctor %s (%s, %s)", clinicID, doctorID, gofakeit.Name(), service)

			for day := 1; day <= 7; day++ {
				date := time.Now().AddDate(0, 0, day)
				if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
					continue
				}

				_, slots, err := planner.CreateAvailability(ctx, booking.AvailabilityWindow{
					ClinicID:           clinicID,
					DoctorID:           doctorID,
					ServiceID:          service,
					Date:               date.Format("2006-01-02"),
					StartTime:          "09:00",
					EndTime:            "17:00",
					MaxPatientsPerSlot: gofakeit.Number(1, 3),
				})
				if err != nil {
					return err
				}
				totalWindows++
				totalSlots += slots
			}
		}
	}

	log.Printf("created %d windows with %d slots", totalWindows, totalSlots)
	return nil
}
