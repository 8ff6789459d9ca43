package pets

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("pet not found")

// Repository: toda lectura y mutación va filtrada por dueño.
// Un id ajeno se comporta igual que uno inexistente (ErrNotFound).
type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByIDAndOwner(ctx context.Context, id, userID string) (Pet, error)
	ListByOwner(ctx context.Context, userID string) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id, userID string) error
}
