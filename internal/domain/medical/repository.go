package medical

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("medical record not found")

// Repository: todo filtrado por user_id, ordenado por visit_date desc.
// ListByPet con recordType vacío trae todos los tipos.
type Repository interface {
	Create(ctx context.Context, rec Record) error
	GetByIDAndOwner(ctx context.Context, id, userID string) (Record, error)
	ListByOwner(ctx context.Context, userID string) ([]Record, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]Record, error)
	ListByPet(ctx context.Context, userID, petID, recordType string) ([]Record, error)
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id, userID string) error
}
