package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"petpal/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `
	id, user_id, pet_id,
	appointment_date, appointment_time,
	appointment_type, veterinarian, clinic,
	reason, notes, status,
	created_at, updated_at`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		a.ID,
		a.UserID,
		a.PetID,
		a.AppointmentDate,
		a.AppointmentTime,
		a.AppointmentType,
		a.Veterinarian,
		a.Clinic,
		a.Reason,
		a.Notes,
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AppointmentsRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (appointments.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	return a, err
}

func (r *AppointmentsRepo) ListByOwner(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	return r.list(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY appointment_date DESC
	`, userID)
}

func (r *AppointmentsRepo) ListByPet(ctx context.Context, userID, petID string) ([]appointments.Appointment, error) {
	return r.list(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1 AND pet_id = $2
		ORDER BY appointment_date DESC
	`, userID, petID)
}

func (r *AppointmentsRepo) ListUpcoming(ctx context.Context, userID string, from time.Time) ([]appointments.Appointment, error) {
	return r.list(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
			AND appointment_date >= $2
			AND status IN ('scheduled', 'confirmed')
		ORDER BY appointment_date ASC
	`, userID, from)
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			pet_id = $3,
			appointment_date = $4,
			appointment_time = $5,
			appointment_type = $6,
			veterinarian = $7,
			clinic = $8,
			reason = $9,
			notes = $10,
			status = $11,
			updated_at = $12
		WHERE id = $1 AND user_id = $2
	`,
		a.ID,
		a.UserID,
		a.PetID,
		a.AppointmentDate,
		a.AppointmentTime,
		a.AppointmentType,
		a.Veterinarian,
		a.Clinic,
		a.Reason,
		a.Notes,
		string(a.Status),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, appointments.ErrNotFound)
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, appointments.ErrNotFound)
}

func (r *AppointmentsRepo) list(ctx context.Context, query string, args ...any) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(s rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var status string
	if err := s.Scan(
		&a.ID,
		&a.UserID,
		&a.PetID,
		&a.AppointmentDate,
		&a.AppointmentTime,
		&a.AppointmentType,
		&a.Veterinarian,
		&a.Clinic,
		&a.Reason,
		&a.Notes,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}
	a.Status = appointments.Status(status)
	return a, nil
}
