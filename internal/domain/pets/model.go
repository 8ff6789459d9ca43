package pets

import "time"

// Pet es el perfil de una mascota. UserID es el dueño y nunca viene del payload.
type Pet struct {
	ID     string
	UserID string

	Name    string
	Species string
	Breed   string
	Age     float64

	Weight      *float64
	Color       string
	Gender      string
	MicrochipID string
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}
