package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"petpal/internal/domain/users"
)

type userRepo struct {
	mu      sync.RWMutex
	byID    map[string]users.Identity
	byEmail map[string]string // email -> id
}

func NewUserRepo() users.Repository {
	return &userRepo{
		byID:    make(map[string]users.Identity),
		byEmail: make(map[string]string),
	}
}

func (r *userRepo) Create(ctx context.Context, u users.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, taken := r.byEmail[u.Email]; taken {
		return users.ErrEmailTaken
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.Identity{}, users.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (users.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return users.Identity{}, users.ErrNotFound
	}
	return r.byID[id], nil
}

// Update no cambia email, password ni created_at aunque vengan distintos.
func (r *userRepo) Update(ctx context.Context, u users.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[u.ID]
	if !ok {
		return users.ErrNotFound
	}
	cur.Name = u.Name
	cur.Phone = u.Phone
	cur.Address = u.Address
	cur.UpdatedAt = u.UpdatedAt
	r.byID[u.ID] = cur
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return users.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}
