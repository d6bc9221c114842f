package booking

import (
	"context"
	"testing"

	"github.com/campushealth/clinic-booking/internal/kv"
)

type testStack struct {
	repo      *KVRepository
	planner   *Planner
	inventory *Inventory
	ledger    *Ledger
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	repo := NewKVRepository(kv.NewMemoryStore())
	inv := NewInventory(repo, NewMutexLocker())
	return &testStack{
		repo:      repo,
		planner:   NewPlanner(repo, DefaultSlotInterval),
		inventory: inv,
		ledger:    NewLedger(repo, inv, NewNotifier(repo)),
	}
}

// createWindow persists a window through the planner and returns it.
func (ts *testStack) createWindow(t *testing.T, w AvailabilityWindow) (*AvailabilityWindow, int) {
	t.Helper()
	created, slots, err := ts.planner.CreateAvailability(context.Background(), w)
	if err != nil {
		t.Fatalf("CreateAvailability: %v", err)
	}
	return created, slots
}
