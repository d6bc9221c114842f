package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/campushealth/clinic-booking/internal/booking"
	"github.com/campushealth/clinic-booking/internal/kv"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := booking.NewKVRepository(kv.NewMemoryStore())
	inv := booking.NewInventory(repo, booking.NewMutexLocker())
	router := NewRouter(RouterConfig{
		Planner:   booking.NewPlanner(repo, booking.DefaultSlotInterval),
		Inventory: inv,
		Ledger:    booking.NewLedger(repo, inv, booking.NewNotifier(repo)),
		Repo:      repo,
		Env:       "test",
		Version:   "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t)

	// Publish availability: 09:00-11:00, one patient per slot.
	var created CreateAvailabilityResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/availability", CreateAvailabilityRequest{
		ClinicID:           uuid.New().String(),
		DoctorID:           uuid.New().String(),
		ServiceID:          "general-checkup",
		Date:               "2026-02-10",
		StartTime:          "09:00",
		EndTime:            "11:00",
		MaxPatientsPerSlot: 1,
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create availability: status %d", status)
	}
	if created.SlotsGenerated != 2 {
		t.Fatalf("slots_generated = %d, want 2", created.SlotsGenerated)
	}

	// Both times listed.
	var avail []booking.SlotAvailability
	status = doJSON(t, http.MethodGet, srv.URL+"/slots?date=2026-02-10", nil, &avail)
	if status != http.StatusOK || len(avail) != 2 {
		t.Fatalf("slots: status %d, %d groups", status, len(avail))
	}

	slotID := booking.SlotID(created.Window.ID, 0)
	patientID := uuid.New().String()

	// Book 09:00.
	var appt AppointmentResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/appointments", BookAppointmentRequest{
		SlotID:    slotID,
		PatientID: patientID,
	}, &appt)
	if status != http.StatusCreated {
		t.Fatalf("book: status %d", status)
	}
	if appt.Status != "confirmed" || appt.Time != "09:00" {
		t.Fatalf("appointment = %+v", appt)
	}

	// 09:00 now full, 10:00 still listed.
	status = doJSON(t, http.MethodGet, srv.URL+"/slots?date=2026-02-10", nil, &avail)
	if status != http.StatusOK || len(avail) != 1 || avail[0].Time != "10:00" {
		t.Fatalf("slots after booking: %+v", avail)
	}

	// Second booking on the same slot is refused.
	var errResp ErrorResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/appointments", BookAppointmentRequest{
		SlotID:    slotID,
		PatientID: uuid.New().String(),
	}, &errResp)
	if status != http.StatusConflict || errResp.Error != "slot_unavailable" {
		t.Fatalf("double booking: status %d, error %q", status, errResp.Error)
	}

	// Cancel restores availability.
	status = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/cancel", srv.URL, appt.ID), nil, &appt)
	if status != http.StatusOK || appt.Status != "cancelled" {
		t.Fatalf("cancel: status %d, %+v", status, appt)
	}

	status = doJSON(t, http.MethodGet, srv.URL+"/slots?date=2026-02-10", nil, &avail)
	if status != http.StatusOK || len(avail) != 2 || avail[0].Time != "09:00" || avail[0].Available != 1 {
		t.Fatalf("slots after cancel: %+v", avail)
	}

	// Cancelling again is a conflict.
	status = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/cancel", srv.URL, appt.ID), nil, &errResp)
	if status != http.StatusConflict || errResp.Error != "already_cancelled" {
		t.Fatalf("double cancel: status %d, error %q", status, errResp.Error)
	}
}

func TestValidationSurfacesAs400(t *testing.T) {
	srv := newTestServer(t)

	var errResp ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/availability", CreateAvailabilityRequest{
		ClinicID:           uuid.New().String(),
		DoctorID:           uuid.New().String(),
		ServiceID:          "dental",
		Date:               "2026-02-10",
		StartTime:          "11:00",
		EndTime:            "09:00",
		MaxPatientsPerSlot: 1,
	}, &errResp)
	if status != http.StatusBadRequest || errResp.Error != "validation_error" {
		t.Fatalf("inverted window: status %d, error %q", status, errResp.Error)
	}

	status = doJSON(t, http.MethodGet, srv.URL+"/slots", nil, &errResp)
	if status != http.StatusBadRequest {
		t.Fatalf("missing date: status %d", status)
	}
}

func TestUnknownAppointment404(t *testing.T) {
	srv := newTestServer(t)

	var errResp ErrorResponse
	status := doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/cancel", srv.URL, uuid.New()), nil, &errResp)
	if status != http.StatusNotFound || errResp.Error != "appointment_not_found" {
		t.Fatalf("status %d, error %q", status, errResp.Error)
	}
}

func TestWalkInAndStatusFlow(t *testing.T) {
	srv := newTestServer(t)

	var created CreateAvailabilityResponse
	doJSON(t, http.MethodPost, srv.URL+"/availability", CreateAvailabilityRequest{
		ClinicID:           uuid.New().String(),
		DoctorID:           uuid.New().String(),
		ServiceID:          "dental",
		Date:               "2026-02-10",
		StartTime:          "09:00",
		EndTime:            "10:00",
		MaxPatientsPerSlot: 1,
	}, &created)

	var appt AppointmentResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/appointments/walk-in", BookAppointmentRequest{
		SlotID:    booking.SlotID(created.Window.ID, 0),
		PatientID: uuid.New().String(),
	}, &appt)
	if status != http.StatusCreated || appt.Status != "waiting" {
		t.Fatalf("walk-in: status %d, %+v", status, appt)
	}

	status = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/status", srv.URL, appt.ID), UpdateStatusRequest{Status: "in-progress"}, &appt)
	if status != http.StatusOK || appt.Status != "in-progress" {
		t.Fatalf("to in-progress: status %d, %+v", status, appt)
	}

	status = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/status", srv.URL, appt.ID), UpdateStatusRequest{Status: "completed"}, &appt)
	if status != http.StatusOK || appt.Status != "completed" {
		t.Fatalf("to completed: status %d, %+v", status, appt)
	}

	var errResp ErrorResponse
	status = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/status", srv.URL, appt.ID), UpdateStatusRequest{Status: "waiting"}, &errResp)
	if status != http.StatusConflict || errResp.Error != "invalid_status_transition" {
		t.Fatalf("from terminal: status %d, error %q", status, errResp.Error)
	}
}
