package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campushealth/clinic-booking/internal/booking"
)

// Availability

func createAvailabilityHandler(planner *booking.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		clinicID, err := uuid.Parse(req.ClinicID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
			return
		}
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		window, generated, err := planner.CreateAvailability(r.Context(), booking.AvailabilityWindow{
			ClinicID:           clinicID,
			DoctorID:           doctorID,
			ServiceID:          req.ServiceID,
			Date:               req.Date,
			StartTime:          req.StartTime,
			EndTime:            req.EndTime,
			SlotInterval:       req.SlotInterval,
			MaxPatientsPerSlot: req.MaxPatientsPerSlot,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateAvailabilityResponse{
			Success:        true,
			SlotsGenerated: generated,
			Window:         window,
		})
	}
}

func listAvailabilityHandler(planner *booking.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var clinicID uuid.UUID
		if s := r.URL.Query().Get("clinic_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
				return
			}
			clinicID = id
		}

		windows, err := planner.ListWindows(r.Context(), clinicID, r.URL.Query().Get("date"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, windows)
	}
}

func deleteAvailabilityHandler(planner *booking.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_window_id", "id must be a valid UUID")
			return
		}
		if err := planner.DeleteWindow(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Slots

func listSlotsHandler(inv *booking.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}

		slots, err := inv.ListAvailable(r.Context(), date, r.URL.Query().Get("service_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

// Appointments

func bookAppointmentHandler(ledger *booking.Ledger) http.HandlerFunc {
	return createAppointmentHandler(ledger, false)
}

func walkInAppointmentHandler(ledger *booking.Ledger) http.HandlerFunc {
	return createAppointmentHandler(ledger, true)
}

func createAppointmentHandler(ledger *booking.Ledger, walkIn bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		breq := booking.BookingRequest{
			SlotID:    req.SlotID,
			PatientID: patientID,
			Notes:     req.Notes,
		}

		var appt *booking.Appointment
		if walkIn {
			appt, err = ledger.Enqueue(r.Context(), breq)
		} else {
			appt, err = ledger.Book(r.Context(), breq)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(ledger *booking.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := ledger.Cancel(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func updateStatusHandler(ledger *booking.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := ledger.UpdateStatus(r.Context(), id, booking.AppointmentStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(ledger *booking.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := ledger.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(ledger *booking.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f booking.AppointmentFilter
		if s := q.Get("clinic_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
				return
			}
			f.ClinicID = id
		}
		if s := q.Get("patient_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
			f.PatientID = id
		}
		f.Status = booking.AppointmentStatus(q.Get("status"))
		f.Date = q.Get("date")

		appts, err := ledger.List(r.Context(), f)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			out = append(out, toAppointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Notifications

func listNotificationsHandler(repo booking.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var targetID uuid.UUID
		if s := r.URL.Query().Get("target_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_target_id", "target_id must be a valid UUID")
				return
			}
			targetID = id
		}

		notes, err := repo.ListNotifications(r.Context(), targetID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if notes == nil {
			notes = []booking.Notification{}
		}
		writeJSON(w, http.StatusOK, notes)
	}
}
