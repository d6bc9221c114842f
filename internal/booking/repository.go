package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter narrows ListAppointments. Zero values mean "any".
type AppointmentFilter struct {
	ClinicID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	Date      string
}

// Repository contains all persistence interactions needed by the planner,
// inventory and ledger. Two implementations exist: one over the generic
// key-value store and one over Postgres.
type Repository interface {
	// CreateWindow persists a window together with its derived slots.
	CreateWindow(ctx context.Context, w *AvailabilityWindow, slots []TimeSlot) error
	GetWindow(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, w *AvailabilityWindow) error
	// DeleteWindow removes the window and cascades to its slots.
	DeleteWindow(ctx context.Context, id uuid.UUID) error
	// ListWindows filters by clinic and/or date; uuid.Nil and "" mean any.
	ListWindows(ctx context.Context, clinicID uuid.UUID, date string) ([]AvailabilityWindow, error)

	GetSlot(ctx context.Context, id string) (*TimeSlot, error)
	UpdateSlot(ctx context.Context, s *TimeSlot) error
	// ListSlotsByDate returns all slots for a calendar date, optionally
	// restricted to one service.
	ListSlotsByDate(ctx context.Context, date, serviceID string) ([]TimeSlot, error)

	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointment(ctx context.Context, a *Appointment) error
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error)

	InsertNotification(ctx context.Context, n Notification) error
	// ListNotifications filters by recipient; uuid.Nil means all.
	ListNotifications(ctx context.Context, targetID uuid.UUID) ([]Notification, error)
	DeleteNotification(ctx context.Context, id uuid.UUID) error

	// One-time seeding marker.
	Initialized(ctx context.Context) (bool, error)
	MarkInitialized(ctx context.Context) error
}

// nowFunc is overridable in tests.
var nowFunc = time.Now
