package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Planner turns clinic working-hours submissions into availability windows
// and their derived slots. Windows are immutable once generated: edits go
// through delete-and-recreate, and deleting a window cascades to its slots.
type Planner struct {
	repo            Repository
	defaultInterval int
}

func NewPlanner(repo Repository, defaultInterval int) *Planner {
	if defaultInterval <= 0 {
		defaultInterval = DefaultSlotInterval
	}
	return &Planner{repo: repo, defaultInterval: defaultInterval}
}

// CreateAvailability validates the window, materializes its slots and
// persists both. It returns the stored window and the number of slots
// generated; zero slots is a valid outcome for short windows.
func (p *Planner) CreateAvailability(ctx context.Context, w AvailabilityWindow) (*AvailabilityWindow, int, error) {
	if w.SlotInterval == 0 {
		w.SlotInterval = p.defaultInterval
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}

	now := nowFunc()
	slots, err := GenerateSlots(&w, now)
	if err != nil {
		return nil, 0, err
	}

	w.Active = true
	w.BookedCount = 0
	w.AvailableCount = len(slots) * w.MaxPatientsPerSlot
	w.CreatedAt = now
	w.UpdatedAt = now

	if err := p.repo.CreateWindow(ctx, &w, slots); err != nil {
		return nil, 0, fmt.Errorf("persist window: %w", err)
	}
	return &w, len(slots), nil
}

func (p *Planner) GetWindow(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error) {
	return p.repo.GetWindow(ctx, id)
}

func (p *Planner) ListWindows(ctx context.Context, clinicID uuid.UUID, date string) ([]AvailabilityWindow, error) {
	if date != "" {
		if _, err := parseDate(date); err != nil {
			return nil, validationErr("date", "%v", err)
		}
	}
	return p.repo.ListWindows(ctx, clinicID, date)
}

// DeleteWindow removes a window and all of its derived slots. Appointments
// referencing the removed slots are left untouched; cancelling them later
// skips the capacity release (see Ledger.Cancel).
func (p *Planner) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	if _, err := p.repo.GetWindow(ctx, id); err != nil {
		return err
	}
	if err := p.repo.DeleteWindow(ctx, id); err != nil {
		return fmt.Errorf("delete window: %w", err)
	}
	return nil
}
