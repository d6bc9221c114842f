package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/clinic-booking/internal/booking"
)

type CreateAvailabilityRequest struct {
	ClinicID           string `json:"clinic_id"`
	DoctorID           string `json:"doctor_id"`
	ServiceID          string `json:"service_id"`
	Date               string `json:"date"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	SlotInterval       int    `json:"slot_interval_minutes,omitempty"`
	MaxPatientsPerSlot int    `json:"max_patients_per_slot"`
}

type CreateAvailabilityResponse struct {
	Success        bool                        `json:"success"`
	SlotsGenerated int                         `json:"slots_generated"`
	Window         *booking.AvailabilityWindow `json:"window"`
}

type BookAppointmentRequest struct {
	SlotID    string `json:"slot_id"`
	PatientID string `json:"patient_id"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	SlotID      string     `json:"slot_id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	ClinicID    uuid.UUID  `json:"clinic_id"`
	ServiceID   string     `json:"service_id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		SlotID:      a.SlotID,
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		ClinicID:    a.ClinicID,
		ServiceID:   a.ServiceID,
		Date:        a.Date,
		Time:        a.Time,
		Status:      string(a.Status),
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		CancelledAt: a.CancelledAt,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
