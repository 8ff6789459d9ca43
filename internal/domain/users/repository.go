package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository es el store de identidades. Email es único y se compara exacto.
type Repository interface {
	Create(ctx context.Context, u Identity) error
	GetByID(ctx context.Context, id string) (Identity, error)
	GetByEmail(ctx context.Context, email string) (Identity, error)
	Update(ctx context.Context, u Identity) error
	Delete(ctx context.Context, id string) error
}

// PasswordHasher es opaco para el dominio: solo hash y verify.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}
