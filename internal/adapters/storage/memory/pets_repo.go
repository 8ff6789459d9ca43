package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"petpal/internal/domain/pets"
)

type petRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
	ids  []string // orden de inserción
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	r.ids = append(r.ids, p.ID)
	return nil
}

// Update reemplaza el registro completo si sigue siendo del mismo dueño (last-write-wins).
func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[p.ID]
	if !exists || cur.UserID != p.UserID {
		return pets.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok || p.UserID != userID {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, userID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, id := range r.ids {
		p := r.byID[id]
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *petRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok || p.UserID != userID {
		return pets.ErrNotFound
	}
	delete(r.byID, id)
	r.ids = removeID(r.ids, id)
	return nil
}

// removeID saca id de ids manteniendo el orden del resto.
func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
