package appointments

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("appointment not found")

// Repository: todo filtrado por user_id. Listados por appointment_date desc,
// salvo ListUpcoming que es asc.
type Repository interface {
	Create(ctx context.Context, a Appointment) error
	GetByIDAndOwner(ctx context.Context, id, userID string) (Appointment, error)
	ListByOwner(ctx context.Context, userID string) ([]Appointment, error)
	ListByPet(ctx context.Context, userID, petID string) ([]Appointment, error)
	ListUpcoming(ctx context.Context, userID string, from time.Time) ([]Appointment, error)
	Update(ctx context.Context, a Appointment) error
	Delete(ctx context.Context, id, userID string) error
}
