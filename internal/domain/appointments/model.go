package appointments

import "time"

// Status no tiene grafo de transiciones: cualquier valor del set vale desde cualquier otro.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment es un turno veterinario. AppointmentDate ya incluye la hora;
// AppointmentTime es esa hora en HH:MM, o vacío si el turno es solo de día.
type Appointment struct {
	ID     string
	UserID string
	PetID  string

	AppointmentDate time.Time
	AppointmentTime string
	AppointmentType string
	Veterinarian    string

	Clinic string
	Reason string
	Notes  string
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
