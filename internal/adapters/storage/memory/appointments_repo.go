package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"petpal/internal/domain/appointments"
)

type appointmentRepo struct {
	mu   sync.RWMutex
	byID map[string]appointments.Appointment
	ids  []string // orden de inserción
}

func NewAppointmentRepo() appointments.Repository {
	return &appointmentRepo{
		byID: make(map[string]appointments.Appointment),
	}
}

func (r *appointmentRepo) Create(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("appointment id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("appointment already exists")
	}
	r.byID[a.ID] = a
	r.ids = append(r.ids, a.ID)
	return nil
}

func (r *appointmentRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	return a, nil
}

func (r *appointmentRepo) ListByOwner(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	return r.list(func(a appointments.Appointment) bool { return a.UserID == userID }, false), nil
}

func (r *appointmentRepo) ListByPet(ctx context.Context, userID, petID string) ([]appointments.Appointment, error) {
	return r.list(func(a appointments.Appointment) bool {
		return a.UserID == userID && a.PetID == petID
	}, false), nil
}

func (r *appointmentRepo) ListUpcoming(ctx context.Context, userID string, from time.Time) ([]appointments.Appointment, error) {
	return r.list(func(a appointments.Appointment) bool {
		if a.UserID != userID || a.AppointmentDate.Before(from) {
			return false
		}
		return a.Status == appointments.StatusScheduled || a.Status == appointments.StatusConfirmed
	}, true), nil
}

func (r *appointmentRepo) Update(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[a.ID]
	if !ok || cur.UserID != a.UserID {
		return appointments.ErrNotFound
	}
	a.CreatedAt = cur.CreatedAt
	r.byID[a.ID] = a
	return nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return appointments.ErrNotFound
	}
	delete(r.byID, id)
	r.ids = removeID(r.ids, id)
	return nil
}

// list filtra y ordena por appointment_date (desc salvo asc=true).
func (r *appointmentRepo) list(keep func(appointments.Appointment) bool, asc bool) []appointments.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, id := range r.ids {
		a := r.byID[id]
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].AppointmentDate.Before(out[j].AppointmentDate)
		}
		return out[i].AppointmentDate.After(out[j].AppointmentDate)
	})
	return out
}
