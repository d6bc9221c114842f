package booking

import "time"

// DefaultSlotInterval is the slot spacing in minutes used when a window
// does not set one explicitly.
const DefaultSlotInterval = 60

// ValidateWindow checks a window before generation. It must be called (and
// must pass) before any slot is persisted.
func ValidateWindow(w *AvailabilityWindow) error {
	start, err := parseClock(w.StartTime)
	if err != nil {
		return validationErr("start_time", "%v", err)
	}
	end, err := parseClock(w.EndTime)
	if err != nil {
		return validationErr("end_time", "%v", err)
	}
	if end <= start {
		return validationErr("end_time", "end time %s must be after start time %s", w.EndTime, w.StartTime)
	}
	if _, err := parseDate(w.Date); err != nil {
		return validationErr("date", "%v", err)
	}
	if w.MaxPatientsPerSlot < 1 {
		return validationErr("max_patients_per_slot", "must be at least 1, got %d", w.MaxPatientsPerSlot)
	}
	if w.SlotInterval < 0 {
		return validationErr("slot_interval_minutes", "must not be negative, got %d", w.SlotInterval)
	}
	return nil
}

// GenerateSlots expands a validated window into its derived time slots:
// one slot per interval boundary, each inheriting the window's per-slot
// capacity with zero bookings. A slot is emitted only when its whole
// interval fits inside [start, end), so a window of N minutes yields
// floor(N/interval) slots and a window shorter than one interval yields
// none, which is not an error.
func GenerateSlots(w *AvailabilityWindow, now time.Time) ([]TimeSlot, error) {
	if err := ValidateWindow(w); err != nil {
		return nil, err
	}

	interval := w.SlotInterval
	if interval == 0 {
		interval = DefaultSlotInterval
	}

	start, _ := parseClock(w.StartTime)
	end, _ := parseClock(w.EndTime)

	var slots []TimeSlot
	for t, i := start, 0; t+interval <= end; t, i = t+interval, i+1 {
		slots = append(slots, TimeSlot{
			ID:        SlotID(w.ID, i),
			WindowID:  w.ID,
			Index:     i,
			ClinicID:  w.ClinicID,
			DoctorID:  w.DoctorID,
			ServiceID: w.ServiceID,
			Date:      w.Date,
			Time:      formatClock(t),
			Capacity:  w.MaxPatientsPerSlot,
			Booked:    0,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return slots, nil
}
