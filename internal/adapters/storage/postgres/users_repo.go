package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"petpal/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, email, password_hash,
	name, phone, address,
	created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, u users.Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Phone,
		u.Address,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return users.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.Identity, error) {
	if strings.TrimSpace(id) == "" {
		return users.Identity{}, users.ErrNotFound
	}
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.Identity, error) {
	if strings.TrimSpace(email) == "" {
		return users.Identity{}, users.ErrNotFound
	}
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, where string, arg string) (users.Identity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users `+where, arg)

	var u users.Identity
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.Address,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Identity{}, users.ErrNotFound
		}
		return users.Identity{}, err
	}
	return u, nil
}

// Update solo toca el perfil; email y password_hash no están en el SET.
func (r *UsersRepo) Update(ctx context.Context, u users.Identity) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			name = $2,
			phone = $3,
			address = $4,
			updated_at = $5
		WHERE id = $1
	`,
		u.ID,
		u.Name,
		u.Phone,
		u.Address,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, users.ErrNotFound)
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, users.ErrNotFound)
}
