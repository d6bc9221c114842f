package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
)

// Inventory tracks per-slot capacity and booking counts. Reserve and
// Release are the only read-modify-write operations in the system; both
// run inside the per-slot critical section provided by the Locker.
type Inventory struct {
	repo   Repository
	locker Locker
}

func NewInventory(repo Repository, locker Locker) *Inventory {
	return &Inventory{repo: repo, locker: locker}
}

func (inv *Inventory) GetSlot(ctx context.Context, id string) (*TimeSlot, error) {
	return inv.repo.GetSlot(ctx, id)
}

// ListAvailable returns the bookable times on a date, optionally filtered
// by service. Slot records from overlapping windows that share a clock
// time are summed into one group; a group is listed only while its summed
// bookings stay below its summed capacity.
func (inv *Inventory) ListAvailable(ctx context.Context, date, serviceID string) ([]SlotAvailability, error) {
	if _, err := parseDate(date); err != nil {
		return nil, validationErr("date", "%v", err)
	}

	slots, err := inv.repo.ListSlotsByDate(ctx, date, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	groups := make(map[string]*SlotAvailability)
	for _, s := range slots {
		g, ok := groups[s.Time]
		if !ok {
			g = &SlotAvailability{Time: s.Time}
			groups[s.Time] = g
		}
		g.Total += s.Capacity
		g.Available += s.Capacity - s.Booked
		g.SlotIDs = append(g.SlotIDs, s.ID)
	}

	out := make([]SlotAvailability, 0, len(groups))
	for _, g := range groups {
		if g.Available > 0 {
			out = append(out, *g)
		}
	}
	// Zero-padded 24h times sort correctly as strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

// Reserve takes one unit of capacity on the slot. It fails with
// ErrSlotUnavailable when the slot is already at capacity and leaves the
// booked count untouched in that case. The updated slot is returned.
func (inv *Inventory) Reserve(ctx context.Context, slotID string) (*TimeSlot, error) {
	var reserved *TimeSlot

	err := inv.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		slot, err := inv.repo.GetSlot(lockCtx, slotID)
		if err != nil {
			return err
		}
		if !slot.Available() {
			return ErrSlotUnavailable
		}

		slot.Booked++
		slot.UpdatedAt = nowFunc()
		if err := inv.repo.UpdateSlot(lockCtx, slot); err != nil {
			return fmt.Errorf("update slot %s: %w", slotID, err)
		}

		inv.adjustWindowCounters(lockCtx, slot.WindowID, +1)
		reserved = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// Release gives one unit of capacity back. The booked count is clamped at
// zero so repeated releases can never drive it negative; the status guard
// in the ledger is what prevents double-crediting in the first place.
func (inv *Inventory) Release(ctx context.Context, slotID string) error {
	return inv.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		slot, err := inv.repo.GetSlot(lockCtx, slotID)
		if err != nil {
			return err
		}

		if slot.Booked > 0 {
			slot.Booked--
		}
		slot.UpdatedAt = nowFunc()
		if err := inv.repo.UpdateSlot(lockCtx, slot); err != nil {
			return fmt.Errorf("update slot %s: %w", slotID, err)
		}

		inv.adjustWindowCounters(lockCtx, slot.WindowID, -1)
		return nil
	})
}

// adjustWindowCounters keeps the cached booked/available counters on the
// parent window in step with the slot, clamped at zero. A missing window
// means the slot outlived a regeneration; the counter update is skipped
// with a log line rather than failing the booking.
func (inv *Inventory) adjustWindowCounters(ctx context.Context, windowID uuid.UUID, delta int) {
	w, err := inv.repo.GetWindow(ctx, windowID)
	if err != nil {
		if errors.Is(err, ErrWindowNotFound) {
			log.Printf("slot counter update skipped: window %s no longer exists", windowID)
			return
		}
		log.Printf("slot counter update failed for window %s: %v", windowID, err)
		return
	}

	w.BookedCount += delta
	w.AvailableCount -= delta
	if w.BookedCount < 0 {
		w.BookedCount = 0
	}
	if w.AvailableCount < 0 {
		w.AvailableCount = 0
	}
	w.UpdatedAt = nowFunc()

	if err := inv.repo.UpdateWindow(ctx, w); err != nil {
		log.Printf("slot counter update failed for window %s: %v", windowID, err)
	}
}
