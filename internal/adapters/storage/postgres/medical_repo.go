package postgres

import (
	"context"
	"database/sql"
	"errors"

	"petpal/internal/domain/medical"
)

type MedicalRepo struct {
	db *sql.DB
}

func NewMedicalRepo(db *sql.DB) *MedicalRepo {
	return &MedicalRepo{db: db}
}

const medicalColumns = `
	id, user_id, pet_id,
	visit_date, record_type, veterinarian,
	diagnosis, treatment, medications, notes, clinic,
	weight, temperature, follow_up_date,
	created_at, updated_at`

func (r *MedicalRepo) Create(ctx context.Context, rec medical.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (`+medicalColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		rec.ID,
		rec.UserID,
		rec.PetID,
		rec.VisitDate,
		rec.RecordType,
		rec.Veterinarian,
		rec.Diagnosis,
		rec.Treatment,
		rec.Medications,
		rec.Notes,
		rec.Clinic,
		toNullFloat(rec.Weight),
		toNullFloat(rec.Temperature),
		toNullTime(rec.FollowUpDate),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *MedicalRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (medical.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+medicalColumns+`
		FROM medical_records
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return medical.Record{}, medical.ErrNotFound
	}
	return rec, err
}

func (r *MedicalRepo) ListByOwner(ctx context.Context, userID string) ([]medical.Record, error) {
	return r.list(ctx, `
		SELECT`+medicalColumns+`
		FROM medical_records
		WHERE user_id = $1
		ORDER BY visit_date DESC
	`, userID)
}

func (r *MedicalRepo) ListRecent(ctx context.Context, userID string, limit int) ([]medical.Record, error) {
	return r.list(ctx, `
		SELECT`+medicalColumns+`
		FROM medical_records
		WHERE user_id = $1
		ORDER BY visit_date DESC
		LIMIT $2
	`, userID, limit)
}

// ListByPet: recordType vacío no filtra por tipo.
func (r *MedicalRepo) ListByPet(ctx context.Context, userID, petID, recordType string) ([]medical.Record, error) {
	return r.list(ctx, `
		SELECT`+medicalColumns+`
		FROM medical_records
		WHERE user_id = $1 AND pet_id = $2
			AND ($3 = '' OR record_type = $3)
		ORDER BY visit_date DESC
	`, userID, petID, recordType)
}

func (r *MedicalRepo) Update(ctx context.Context, rec medical.Record) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET
			pet_id = $3,
			visit_date = $4,
			record_type = $5,
			veterinarian = $6,
			diagnosis = $7,
			treatment = $8,
			medications = $9,
			notes = $10,
			clinic = $11,
			weight = $12,
			temperature = $13,
			follow_up_date = $14,
			updated_at = $15
		WHERE id = $1 AND user_id = $2
	`,
		rec.ID,
		rec.UserID,
		rec.PetID,
		rec.VisitDate,
		rec.RecordType,
		rec.Veterinarian,
		rec.Diagnosis,
		rec.Treatment,
		rec.Medications,
		rec.Notes,
		rec.Clinic,
		toNullFloat(rec.Weight),
		toNullFloat(rec.Temperature),
		toNullTime(rec.FollowUpDate),
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, medical.ErrNotFound)
}

func (r *MedicalRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medical_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, medical.ErrNotFound)
}

func (r *MedicalRepo) list(ctx context.Context, query string, args ...any) ([]medical.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medical.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(s rowScanner) (medical.Record, error) {
	var rec medical.Record
	var weight, temperature sql.NullFloat64
	var followUp sql.NullTime
	if err := s.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PetID,
		&rec.VisitDate,
		&rec.RecordType,
		&rec.Veterinarian,
		&rec.Diagnosis,
		&rec.Treatment,
		&rec.Medications,
		&rec.Notes,
		&rec.Clinic,
		&weight,
		&temperature,
		&followUp,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return medical.Record{}, err
	}
	rec.Weight = fromNullFloat(weight)
	rec.Temperature = fromNullFloat(temperature)
	rec.FollowUpDate = fromNullTime(followUp)
	return rec, nil
}
