package users

import "time"

// Identity es una cuenta registrada. PasswordHash nunca se serializa.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string

	Name    string
	Phone   string
	Address string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot es la vista pública mínima que viaja en login y verify-token.
type Snapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (i Identity) Snapshot() Snapshot {
	return Snapshot{ID: i.ID, Name: i.Name, Email: i.Email}
}
