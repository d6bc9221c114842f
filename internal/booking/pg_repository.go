package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository implements Repository over Postgres, the optional remote
// backend. Schema: availability_windows, time_slots (PK window_id +
// slot_index), appointments, notifications, plus a single-row meta table
// for the seeding marker.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Scan helpers

func scanWindow(row pgx.Row) (*AvailabilityWindow, error) {
	var w AvailabilityWindow
	err := row.Scan(
		&w.ID,
		&w.ClinicID,
		&w.DoctorID,
		&w.ServiceID,
		&w.Date,
		&w.StartTime,
		&w.EndTime,
		&w.SlotInterval,
		&w.MaxPatientsPerSlot,
		&w.Active,
		&w.BookedCount,
		&w.AvailableCount,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}
	return &w, nil
}

func scanSlot(row pgx.Row) (*TimeSlot, error) {
	var s TimeSlot
	err := row.Scan(
		&s.ID,
		&s.WindowID,
		&s.Index,
		&s.ClinicID,
		&s.DoctorID,
		&s.ServiceID,
		&s.Date,
		&s.Time,
		&s.Capacity,
		&s.Booked,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var cancelledAt *time.Time
	err := row.Scan(
		&a.ID,
		&a.SlotID,
		&a.PatientID,
		&a.DoctorID,
		&a.ClinicID,
		&a.ServiceID,
		&a.Date,
		&a.Time,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
		&cancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	a.CancelledAt = cancelledAt
	return &a, nil
}

const windowColumns = `id, clinic_id, doctor_id, service_id, date, start_time, end_time,
	slot_interval, max_patients, active, booked_count, available_count, created_at, updated_at`

const slotColumns = `id, window_id, slot_index, clinic_id, doctor_id, service_id,
	date, slot_time, capacity, booked, created_at, updated_at`

const appointmentColumns = `id, slot_id, patient_id, doctor_id, clinic_id, service_id,
	date, slot_time, status, notes, created_at, updated_at, cancelled_at`

// Windows

func (r *PgRepository) CreateWindow(ctx context.Context, w *AvailabilityWindow, slots []TimeSlot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO availability_windows (`+windowColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, w.ID, w.ClinicID, w.DoctorID, w.ServiceID, w.Date, w.StartTime, w.EndTime,
		w.SlotInterval, w.MaxPatientsPerSlot, w.Active, w.BookedCount, w.AvailableCount,
		w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}

	for _, s := range slots {
		_, err = tx.Exec(ctx, `
			INSERT INTO time_slots (`+slotColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, s.ID, s.WindowID, s.Index, s.ClinicID, s.DoctorID, s.ServiceID,
			s.Date, s.Time, s.Capacity, s.Booked, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert slot %s: %w", s.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) GetWindow(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+windowColumns+` FROM availability_windows WHERE id = $1
	`, id)
	return scanWindow(row)
}

func (r *PgRepository) UpdateWindow(ctx context.Context, w *AvailabilityWindow) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE availability_windows
		SET active = $2, booked_count = $3, available_count = $4, updated_at = $5
		WHERE id = $1
	`, w.ID, w.Active, w.BookedCount, w.AvailableCount, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *PgRepository) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM time_slots WHERE window_id = $1`, id); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM availability_windows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete window: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *PgRepository) ListWindows(ctx context.Context, clinicID uuid.UUID, date string) ([]AvailabilityWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+windowColumns+`
		FROM availability_windows
		WHERE ($1::uuid IS NULL OR clinic_id = $1)
		  AND ($2::text IS NULL OR date = $2)
		ORDER BY date, start_time
	`, nullableUUID(clinicID), nullableString(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AvailabilityWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// Slots

func (r *PgRepository) GetSlot(ctx context.Context, id string) (*TimeSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+` FROM time_slots WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) UpdateSlot(ctx context.Context, s *TimeSlot) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE time_slots SET booked = $2, updated_at = $3 WHERE id = $1
	`, s.ID, s.Booked, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgRepository) ListSlotsByDate(ctx context.Context, date, serviceID string) ([]TimeSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM time_slots
		WHERE date = $1
		  AND ($2::text IS NULL OR service_id = $2)
		ORDER BY slot_time
	`, date, nullableString(serviceID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Appointments

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, a.ID, a.SlotID, a.PatientID, a.DoctorID, a.ClinicID, a.ServiceID,
		a.Date, a.Time, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt, a.CancelledAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+` FROM appointments WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $2, notes = $3, updated_at = $4, cancelled_at = $5
		WHERE id = $1
	`, a.ID, a.Status, a.Notes, a.UpdatedAt, a.CancelledAt)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE ($1::uuid IS NULL OR clinic_id = $1)
		  AND ($2::uuid IS NULL OR patient_id = $2)
		  AND ($3::text IS NULL OR status = $3)
		  AND ($4::text IS NULL OR date = $4)
		ORDER BY date, slot_time
	`, nullableUUID(f.ClinicID), nullableUUID(f.PatientID),
		nullableString(string(f.Status)), nullableString(f.Date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Notifications

func (r *PgRepository) InsertNotification(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, type, title, message, target_id, related_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.Type, n.Title, n.Message, n.TargetID, n.RelatedID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PgRepository) ListNotifications(ctx context.Context, targetID uuid.UUID) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, title, message, target_id, related_id, created_at
		FROM notifications
		WHERE ($1::uuid IS NULL OR target_id = $1)
		ORDER BY created_at DESC
	`, nullableUUID(targetID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.TargetID, &n.RelatedID, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PgRepository) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// Seeding marker

func (r *PgRepository) Initialized(ctx context.Context) (bool, error) {
	var v bool
	err := r.pool.QueryRow(ctx, `
		SELECT initialized FROM meta WHERE id = 1
	`).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load meta: %w", err)
	}
	return v, nil
}

func (r *PgRepository) MarkInitialized(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO meta (id, initialized) VALUES (1, true)
		ON CONFLICT (id) DO UPDATE SET initialized = true
	`)
	if err != nil {
		return fmt.Errorf("mark initialized: %w", err)
	}
	return nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
