package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petpal/internal/domain/medical"
)

type medicalRepo struct {
	mu   sync.RWMutex
	byID map[string]medical.Record
	ids  []string // orden de inserción
}

func NewMedicalRepo() medical.Repository {
	return &medicalRepo{
		byID: make(map[string]medical.Record),
	}
}

func (r *medicalRepo) Create(ctx context.Context, rec medical.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}
	r.byID[rec.ID] = rec
	r.ids = append(r.ids, rec.ID)
	return nil
}

func (r *medicalRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (medical.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return medical.Record{}, medical.ErrNotFound
	}
	return rec, nil
}

func (r *medicalRepo) ListByOwner(ctx context.Context, userID string) ([]medical.Record, error) {
	return r.list(func(rec medical.Record) bool { return rec.UserID == userID }), nil
}

func (r *medicalRepo) ListRecent(ctx context.Context, userID string, limit int) ([]medical.Record, error) {
	out := r.list(func(rec medical.Record) bool { return rec.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *medicalRepo) ListByPet(ctx context.Context, userID, petID, recordType string) ([]medical.Record, error) {
	return r.list(func(rec medical.Record) bool {
		if rec.UserID != userID || rec.PetID != petID {
			return false
		}
		return recordType == "" || rec.RecordType == recordType
	}), nil
}

func (r *medicalRepo) Update(ctx context.Context, rec medical.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[rec.ID]
	if !ok || cur.UserID != rec.UserID {
		return medical.ErrNotFound
	}
	rec.CreatedAt = cur.CreatedAt
	r.byID[rec.ID] = rec
	return nil
}

func (r *medicalRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return medical.ErrNotFound
	}
	delete(r.byID, id)
	r.ids = removeID(r.ids, id)
	return nil
}

// list ordena por visit_date desc.
func (r *medicalRepo) list(keep func(medical.Record) bool) []medical.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medical.Record, 0)
	for _, id := range r.ids {
		rec := r.byID[id]
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VisitDate.After(out[j].VisitDate)
	})
	return out
}
