package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
)

const (
	NotificationAppointmentBooked    = "APPOINTMENT_BOOKED"
	NotificationAppointmentCancelled = "APPOINTMENT_CANCELLED"
	NotificationStatusChanged        = "APPOINTMENT_STATUS_CHANGED"
)

// transitions is the explicit status state machine. The UI restricts which
// buttons are shown, but the ledger enforces the table regardless of
// caller. completed and cancelled are terminal.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusWaiting:    {StatusConfirmed, StatusInProgress, StatusCancelled},
	StatusConfirmed:  {StatusWaiting, StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusWaiting, StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func canTransition(from, to AppointmentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// BookingRequest carries everything needed to create an appointment
// against one slot.
type BookingRequest struct {
	SlotID    string
	PatientID uuid.UUID
	Notes     string
}

// Ledger records confirmed appointments, enforces at-most-capacity booking
// per slot through the inventory, and releases capacity on cancellation.
type Ledger struct {
	repo     Repository
	inv      *Inventory
	notifier Notifier
}

func NewLedger(repo Repository, inv *Inventory, notifier Notifier) *Ledger {
	return &Ledger{repo: repo, inv: inv, notifier: notifier}
}

// Book reserves one unit of capacity and records a confirmed appointment.
// A full slot fails with ErrSlotUnavailable before anything is written.
func (l *Ledger) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	return l.create(ctx, req, StatusConfirmed)
}

// Enqueue is the walk-in entry point: same reservation rules as Book but
// the appointment starts in the waiting queue.
func (l *Ledger) Enqueue(ctx context.Context, req BookingRequest) (*Appointment, error) {
	return l.create(ctx, req, StatusWaiting)
}

func (l *Ledger) create(ctx context.Context, req BookingRequest, initial AppointmentStatus) (*Appointment, error) {
	if req.SlotID == "" {
		return nil, validationErr("slot_id", "must not be empty")
	}
	if req.PatientID == uuid.Nil {
		return nil, validationErr("patient_id", "must not be empty")
	}

	slot, err := l.inv.Reserve(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	now := nowFunc()
	appt := &Appointment{
		ID:        uuid.New(),
		SlotID:    slot.ID,
		PatientID: req.PatientID,
		DoctorID:  slot.DoctorID,
		ClinicID:  slot.ClinicID,
		ServiceID: slot.ServiceID,
		Date:      slot.Date,
		Time:      slot.Time,
		Status:    initial,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := l.repo.CreateAppointment(ctx, appt); err != nil {
		// Hand the reserved unit back so a failed write cannot leak capacity.
		if relErr := l.inv.Release(ctx, slot.ID); relErr != nil {
			log.Printf("release after failed appointment create for slot %s: %v", slot.ID, relErr)
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	l.notifier.Emit(ctx, Notification{
		Type:      NotificationAppointmentBooked,
		Title:     "New appointment",
		Message:   fmt.Sprintf("Appointment booked for %s at %s", appt.Date, appt.Time),
		TargetID:  appt.ClinicID,
		RelatedID: appt.ID.String(),
	})

	return appt, nil
}

// Cancel transitions the appointment to cancelled, stamps the cancellation
// time and releases the slot's capacity exactly once. Cancelling an
// already-cancelled appointment fails with ErrAlreadyCancelled so capacity
// can never be double-credited.
func (l *Ledger) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := l.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !canTransition(appt.Status, StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, StatusCancelled)
	}

	now := nowFunc()
	appt.Status = StatusCancelled
	appt.CancelledAt = &now
	appt.UpdatedAt = now

	if err := l.repo.UpdateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	if err := l.inv.Release(ctx, appt.SlotID); err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			// The window was regenerated after this booking; there is no
			// counter left to credit. The cancellation itself stands.
			log.Printf("cancel %s: slot %s no longer exists, release skipped", appt.ID, appt.SlotID)
		} else {
			return nil, fmt.Errorf("release slot %s: %w", appt.SlotID, err)
		}
	}

	l.notifier.Emit(ctx, Notification{
		Type:      NotificationAppointmentCancelled,
		Title:     "Appointment cancelled",
		Message:   fmt.Sprintf("Appointment for %s at %s was cancelled", appt.Date, appt.Time),
		TargetID:  appt.ClinicID,
		RelatedID: appt.ID.String(),
	})

	return appt, nil
}

// UpdateStatus moves an appointment along the transition table. Moving to
// cancelled goes through Cancel so the release behavior applies.
func (l *Ledger) UpdateStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	if !ValidStatus(to) {
		return nil, validationErr("status", "unknown status %q", to)
	}
	if to == StatusCancelled {
		return l.Cancel(ctx, id)
	}

	appt, err := l.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}

	appt.Status = to
	appt.UpdatedAt = nowFunc()
	if err := l.repo.UpdateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	l.notifier.Emit(ctx, Notification{
		Type:      NotificationStatusChanged,
		Title:     "Appointment updated",
		Message:   fmt.Sprintf("Appointment for %s at %s is now %s", appt.Date, appt.Time, appt.Status),
		TargetID:  appt.PatientID,
		RelatedID: appt.ID.String(),
	})

	return appt, nil
}

// Get returns one appointment by id.
func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return l.repo.GetAppointment(ctx, id)
}

// List returns appointments matching the filter ordered by time of day
// ascending; zero-padded HH:MM strings compare correctly as strings.
func (l *Ledger) List(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, validationErr("status", "unknown status %q", f.Status)
	}
	if f.Date != "" {
		if _, err := parseDate(f.Date); err != nil {
			return nil, validationErr("date", "%v", err)
		}
	}

	appts, err := l.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].Time < appts[j].Time
	})
	return appts, nil
}
