package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/clinic-booking/internal/kv"
)

func TestKVKeyLayout(t *testing.T) {
	store := kv.NewMemoryStore()
	repo := NewKVRepository(store)
	ctx := context.Background()

	w := testWindow()
	slots, err := GenerateSlots(&w, time.Now())
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	if err := repo.CreateWindow(ctx, &w, slots); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	keys, _ := store.ListKeys(ctx, "")
	var windowKeys, slotKeys int
	for _, k := range keys {
		switch {
		case strings.HasPrefix(k, "availability_slot_"):
			slotKeys++
		case strings.HasPrefix(k, "availability_"):
			windowKeys++
		default:
			t.Errorf("unexpected key %s", k)
		}
	}
	if windowKeys != 1 || slotKeys != len(slots) {
		t.Fatalf("got %d window keys and %d slot keys, want 1 and %d", windowKeys, slotKeys, len(slots))
	}

	// Slot key encodes (windowID, index).
	wantKey := "availability_slot_" + w.ID.String() + "_slot_0"
	if _, err := store.Get(ctx, wantKey); err != nil {
		t.Errorf("slot key %s missing: %v", wantKey, err)
	}
}

func TestKVDeleteWindowCascades(t *testing.T) {
	store := kv.NewMemoryStore()
	repo := NewKVRepository(store)
	ctx := context.Background()

	w := testWindow()
	slots, _ := GenerateSlots(&w, time.Now())
	if err := repo.CreateWindow(ctx, &w, slots); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	// A second window must survive the delete.
	other := testWindow()
	otherSlots, _ := GenerateSlots(&other, time.Now())
	if err := repo.CreateWindow(ctx, &other, otherSlots); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	if err := repo.DeleteWindow(ctx, w.ID); err != nil {
		t.Fatalf("DeleteWindow: %v", err)
	}

	if _, err := repo.GetWindow(ctx, w.ID); !errors.Is(err, ErrWindowNotFound) {
		t.Errorf("deleted window still loads: %v", err)
	}
	for _, s := range slots {
		if _, err := repo.GetSlot(ctx, s.ID); !errors.Is(err, ErrSlotNotFound) {
			t.Errorf("slot %s survived cascade: %v", s.ID, err)
		}
	}
	if _, err := repo.GetWindow(ctx, other.ID); err != nil {
		t.Errorf("unrelated window lost: %v", err)
	}
	for _, s := range otherSlots {
		if _, err := repo.GetSlot(ctx, s.ID); err != nil {
			t.Errorf("unrelated slot %s lost: %v", s.ID, err)
		}
	}
}

func TestKVListWindowsExcludesSlotKeys(t *testing.T) {
	repo := NewKVRepository(kv.NewMemoryStore())
	ctx := context.Background()

	w := testWindow()
	slots, _ := GenerateSlots(&w, time.Now())
	if err := repo.CreateWindow(ctx, &w, slots); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	windows, err := repo.ListWindows(ctx, uuid.Nil, "")
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 1 || windows[0].ID != w.ID {
		t.Fatalf("ListWindows = %+v, want exactly the created window", windows)
	}

	byClinic, err := repo.ListWindows(ctx, w.ClinicID, w.Date)
	if err != nil {
		t.Fatalf("ListWindows filtered: %v", err)
	}
	if len(byClinic) != 1 {
		t.Fatalf("clinic+date filter returned %d windows, want 1", len(byClinic))
	}

	none, err := repo.ListWindows(ctx, uuid.New(), "")
	if err != nil {
		t.Fatalf("ListWindows other clinic: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("other clinic returned %d windows, want 0", len(none))
	}
}

func TestKVSeedMarker(t *testing.T) {
	repo := NewKVRepository(kv.NewMemoryStore())
	ctx := context.Background()

	done, err := repo.Initialized(ctx)
	if err != nil {
		t.Fatalf("Initialized: %v", err)
	}
	if done {
		t.Fatal("fresh store reports initialized")
	}

	if err := repo.MarkInitialized(ctx); err != nil {
		t.Fatalf("MarkInitialized: %v", err)
	}
	done, err = repo.Initialized(ctx)
	if err != nil || !done {
		t.Fatalf("after marking: done=%v err=%v", done, err)
	}
}

func TestKVNotifications(t *testing.T) {
	repo := NewKVRepository(kv.NewMemoryStore())
	ctx := context.Background()

	target := uuid.New()
	for i := 0; i < 3; i++ {
		n := Notification{ID: uuid.New(), Type: "TEST", TargetID: target, CreatedAt: time.Now()}
		if i == 2 {
			n.TargetID = uuid.New()
		}
		if err := repo.InsertNotification(ctx, n); err != nil {
			t.Fatalf("InsertNotification: %v", err)
		}
	}

	mine, err := repo.ListNotifications(ctx, target)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d notifications for target, want 2", len(mine))
	}

	all, err := repo.ListNotifications(ctx, uuid.Nil)
	if err != nil {
		t.Fatalf("ListNotifications all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d notifications total, want 3", len(all))
	}

	if err := repo.DeleteNotification(ctx, all[0].ID); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	rest, _ := repo.ListNotifications(ctx, uuid.Nil)
	if len(rest) != 2 {
		t.Fatalf("after delete: %d notifications, want 2", len(rest))
	}
}
