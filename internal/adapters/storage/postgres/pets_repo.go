package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"petpal/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, user_id,
	name, species, breed,
	age, weight,
	color, gender, microchip_id, notes,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		p.ID,
		p.UserID,
		p.Name,
		p.Species,
		p.Breed,
		p.Age,
		toNullFloat(p.Weight),
		p.Color,
		p.Gender,
		p.MicrochipID,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update pisa todos los campos mutables; user_id va en el WHERE.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $3,
			species = $4,
			breed = $5,
			age = $6,
			weight = $7,
			color = $8,
			gender = $9,
			microchip_id = $10,
			notes = $11,
			updated_at = $12
		WHERE id = $1 AND user_id = $2
	`,
		p.ID,
		p.UserID,
		p.Name,
		p.Species,
		p.Breed,
		p.Age,
		toNullFloat(p.Weight),
		p.Color,
		p.Gender,
		p.MicrochipID,
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, pets.ErrNotFound)
}

func (r *PetsRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(userID) == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, userID string) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	if strings.TrimSpace(userID) == "" {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PetsRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, pets.ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(s rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var weight sql.NullFloat64
	if err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.Age,
		&weight,
		&p.Color,
		&p.Gender,
		&p.MicrochipID,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	p.Weight = fromNullFloat(weight)
	return p, nil
}
