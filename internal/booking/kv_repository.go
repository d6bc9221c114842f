package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/campushealth/clinic-booking/internal/kv"
)

// Key layout in the flat store. Slot keys nest the window id so a window's
// slots can be listed and cascade-deleted by prefix.
const (
	windowKeyPrefix       = "availability_"
	slotKeyPrefix         = "availability_slot_"
	appointmentKeyPrefix  = "appointments_"
	notificationKeyPrefix = "notifications_"
	initializedKey        = "DB_INITIALIZED"
)

// KVRepository implements Repository over the generic key-value store.
// Records are stored wholesale as JSON; the only read-modify-write cycles
// (slot counters) are serialized by the inventory's Locker, so
// replace-on-write is safe here.
type KVRepository struct {
	store kv.Store
}

func NewKVRepository(store kv.Store) *KVRepository {
	return &KVRepository{store: store}
}

func windowKey(id uuid.UUID) string      { return windowKeyPrefix + id.String() }
func slotKey(slotID string) string       { return slotKeyPrefix + slotID }
func appointmentKey(id uuid.UUID) string { return appointmentKeyPrefix + id.String() }

func (r *KVRepository) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (r *KVRepository) get(ctx context.Context, key string, v any, notFound error) error {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return notFound
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Windows

func (r *KVRepository) CreateWindow(ctx context.Context, w *AvailabilityWindow, slots []TimeSlot) error {
	if err := r.put(ctx, windowKey(w.ID), w); err != nil {
		return err
	}
	for i := range slots {
		if err := r.put(ctx, slotKey(slots[i].ID), &slots[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *KVRepository) GetWindow(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error) {
	var w AvailabilityWindow
	if err := r.get(ctx, windowKey(id), &w, ErrWindowNotFound); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *KVRepository) UpdateWindow(ctx context.Context, w *AvailabilityWindow) error {
	return r.put(ctx, windowKey(w.ID), w)
}

func (r *KVRepository) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	// Cascade: drop derived slots first so a partial failure never leaves
	// orphaned slots behind a missing window.
	prefix := slotKeyPrefix + id.String() + "_slot_"
	keys, err := r.store.ListKeys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list slots of %s: %w", id, err)
	}
	for _, k := range keys {
		if err := r.store.Remove(ctx, k); err != nil {
			return fmt.Errorf("remove %s: %w", k, err)
		}
	}
	if err := r.store.Remove(ctx, windowKey(id)); err != nil {
		return fmt.Errorf("remove %s: %w", windowKey(id), err)
	}
	return nil
}

func (r *KVRepository) ListWindows(ctx context.Context, clinicID uuid.UUID, date string) ([]AvailabilityWindow, error) {
	keys, err := r.store.ListKeys(ctx, windowKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list window keys: %w", err)
	}
	// The slot prefix shares the window prefix; keep window keys only.
	wkeys := keys[:0]
	for _, k := range keys {
		if !strings.HasPrefix(k, slotKeyPrefix) {
			wkeys = append(wkeys, k)
		}
	}

	values, err := r.store.MultiGet(ctx, wkeys)
	if err != nil {
		return nil, fmt.Errorf("load windows: %w", err)
	}

	var out []AvailabilityWindow
	for k, data := range values {
		var w AvailabilityWindow
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		if clinicID != uuid.Nil && w.ClinicID != clinicID {
			continue
		}
		if date != "" && w.Date != date {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// Slots

func (r *KVRepository) GetSlot(ctx context.Context, id string) (*TimeSlot, error) {
	var s TimeSlot
	if err := r.get(ctx, slotKey(id), &s, ErrSlotNotFound); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *KVRepository) UpdateSlot(ctx context.Context, s *TimeSlot) error {
	return r.put(ctx, slotKey(s.ID), s)
}

func (r *KVRepository) ListSlotsByDate(ctx context.Context, date, serviceID string) ([]TimeSlot, error) {
	keys, err := r.store.ListKeys(ctx, slotKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list slot keys: %w", err)
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}

	var out []TimeSlot
	for k, data := range values {
		var s TimeSlot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		if s.Date != date {
			continue
		}
		if serviceID != "" && s.ServiceID != serviceID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Appointments

func (r *KVRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	return r.put(ctx, appointmentKey(a.ID), a)
}

func (r *KVRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	if err := r.get(ctx, appointmentKey(id), &a, ErrAppointmentNotFound); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *KVRepository) UpdateAppointment(ctx context.Context, a *Appointment) error {
	return r.put(ctx, appointmentKey(a.ID), a)
}

func (r *KVRepository) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	keys, err := r.store.ListKeys(ctx, appointmentKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list appointment keys: %w", err)
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	var out []Appointment
	for k, data := range values {
		var a Appointment
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		if f.ClinicID != uuid.Nil && a.ClinicID != f.ClinicID {
			continue
		}
		if f.PatientID != uuid.Nil && a.PatientID != f.PatientID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Date != "" && a.Date != f.Date {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Notifications

func (r *KVRepository) InsertNotification(ctx context.Context, n Notification) error {
	return r.put(ctx, notificationKeyPrefix+n.ID.String(), &n)
}

func (r *KVRepository) ListNotifications(ctx context.Context, targetID uuid.UUID) ([]Notification, error) {
	keys, err := r.store.ListKeys(ctx, notificationKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list notification keys: %w", err)
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	var out []Notification
	for k, data := range values {
		var n Notification
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		if targetID != uuid.Nil && n.TargetID != targetID {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *KVRepository) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Remove(ctx, notificationKeyPrefix+id.String()); err != nil {
		return fmt.Errorf("remove notification %s: %w", id, err)
	}
	return nil
}

// Seeding marker

func (r *KVRepository) Initialized(ctx context.Context) (bool, error) {
	data, err := r.store.Get(ctx, initializedKey)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", initializedKey, err)
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return false, fmt.Errorf("decode %s: %w", initializedKey, err)
	}
	return v, nil
}

func (r *KVRepository) MarkInitialized(ctx context.Context) error {
	return r.put(ctx, initializedKey, true)
}
