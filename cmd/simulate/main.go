package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/campushealth/clinic-booking/internal/booking"
	"github.com/campushealth/clinic-booking/internal/kv"
)

// The simulator hammers one capacity-limited slot with concurrent booking
// attempts against an in-process stack. Exactly capacity attempts must
// succeed; anything more means the per-slot critical section is broken.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	workers := flag.Int("workers", 50, "concurrent booking workers")
	capacity := flag.Int("capacity", 3, "capacity of the contested slot")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	repo := booking.NewKVRepository(kv.NewMemoryStore())
	inventory := booking.NewInventory(repo, booking.NewMutexLocker())
	ledger := booking.NewLedger(repo, inventory, booking.NewNotifier(repo))
	planner := booking.NewPlanner(repo, booking.DefaultSlotInterval)

	ctx := context.Background()

	window, slots, err := planner.CreateAvailability(ctx, booking.AvailabilityWindow{
		ClinicID:           uuid.New(),
		DoctorID:           uuid.New(),
		ServiceID:          "general-checkup",
		Date:               time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime:          "09:00",
		EndTime:            "10:00",
		MaxPatientsPerSlot: *capacity,
	})
	if err != nil {
		log.Fatalf("create availability: %v", err)
	}
	if slots != 1 {
		log.Fatalf("expected a single contested slot, got %d", slots)
	}

	slotID := booking.SlotID(window.ID, 0)
	log.Printf("contesting slot %s (capacity %d) with %d workers", slotID, *capacity, *workers)

	var booked, rejected, failed atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Book(ctx, booking.BookingRequest{
				SlotID:    slotID,
				PatientID: uuid.New(),
				Notes:     gofakeit.Name(),
			})
			switch {
			case err == nil:
				booked.Add(1)
			case errors.Is(err, booking.ErrSlotUnavailable):
				rejected.Add(1)
			default:
				failed.Add(1)
				log.Printf("unexpected booking error: %v", err)
			}
		}()
	}
	wg.Wait()

	log.Printf("done in %s: booked=%d rejected=%d failed=%d", time.Since(start), booked.Load(), rejected.Load(), failed.Load())

	slot, err := inventory.GetSlot(ctx, slotID)
	if err != nil {
		log.Fatalf("load slot: %v", err)
	}
	log.Printf("final slot state: booked=%d capacity=%d", slot.Booked, slot.Capacity)

	if slot.Booked > slot.Capacity || booked.Load() != int64(slot.Booked) {
		log.Fatalf("OVERBOOKED: %d bookings recorded against capacity %d", booked.Load(), slot.Capacity)
	}
	log.Println("capacity held under contention")
}
