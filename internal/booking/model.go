package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusWaiting    AppointmentStatus = "waiting"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in-progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusWaiting, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// AvailabilityWindow is a clinic-declared block of bookable time for one
// doctor, service and date. Slots are derived from it and deleted with it.
type AvailabilityWindow struct {
	ID                 uuid.UUID `json:"id"`
	ClinicID           uuid.UUID `json:"clinic_id"`
	DoctorID           uuid.UUID `json:"doctor_id"`
	ServiceID          string    `json:"service_id"`
	Date               string    `json:"date"`       // YYYY-MM-DD
	StartTime          string    `json:"start_time"` // HH:MM, 24h
	EndTime            string    `json:"end_time"`   // HH:MM, 24h
	SlotInterval       int       `json:"slot_interval_minutes"`
	MaxPatientsPerSlot int       `json:"max_patients_per_slot"`
	Active             bool      `json:"active"`

	// Cached booking counters across all derived slots, maintained by the
	// inventory on reserve/release. Units are bookings, not slots.
	BookedCount    int `json:"booked_count"`
	AvailableCount int `json:"available_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeSlot is one bookable time-of-day unit derived from a window.
// Its ID is the string "<windowID>_slot_<index>" so that a slot can be
// addressed without loading its parent window first.
type TimeSlot struct {
	ID        string    `json:"id"`
	WindowID  uuid.UUID `json:"window_id"`
	Index     int       `json:"index"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	ServiceID string    `json:"service_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"` // HH:MM
	Capacity  int       `json:"capacity"`
	Booked    int       `json:"booked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available reports whether the slot still has booking capacity left.
func (s *TimeSlot) Available() bool {
	return s.Booked < s.Capacity
}

// SlotID builds the canonical slot id for a window and slot index.
func SlotID(windowID uuid.UUID, index int) string {
	return fmt.Sprintf("%s_slot_%d", windowID, index)
}

// Appointment is one patient booking against a single time slot. While in
// any status other than cancelled it holds exactly one unit of capacity on
// its slot; cancellation releases that unit exactly once.
type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	SlotID      string            `json:"slot_id"`
	PatientID   uuid.UUID         `json:"patient_id"`
	DoctorID    uuid.UUID         `json:"doctor_id"`
	ClinicID    uuid.UUID         `json:"clinic_id"`
	ServiceID   string            `json:"service_id"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
}

// Notification is a fire-and-forget event record for status changes.
// It is written best-effort and consumed by the UI layer.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TargetID  uuid.UUID `json:"target_id"`
	RelatedID string    `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotAvailability is the aggregate view returned to booking screens: all
// slot records sharing one clock time on a date, summed.
type SlotAvailability struct {
	Time      string   `json:"time"`
	Available int      `json:"available"`
	Total     int      `json:"total"`
	SlotIDs   []string `json:"slot_ids"`
}
