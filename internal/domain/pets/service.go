package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"petpal/internal/platform/apperr"
	"petpal/internal/platform/fields"

	"github.com/google/uuid"
)

const msgNotFound = "Pet not found"

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Age         fields.Number
	Weight      fields.Number
	Color       string
	Gender      string
	MicrochipID string
	Notes       string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(userID) == "" {
		return Pet{}, apperr.Auth("unauthorized")
	}

	switch {
	case fields.Blank(in.Name):
		return Pet{}, apperr.Validation("name is required")
	case fields.Blank(in.Species):
		return Pet{}, apperr.Validation("species is required")
	case fields.Blank(in.Breed):
		return Pet{}, apperr.Validation("breed is required")
	case !in.Age.Present():
		return Pet{}, apperr.Validation("age is required")
	}

	age, err := in.Age.Float64()
	if err != nil {
		return Pet{}, apperr.Validation("Age must be a number")
	}
	weight, err := in.Weight.OptionalFloat()
	if err != nil {
		return Pet{}, apperr.Validation("Weight must be a number")
	}

	now := s.now().UTC()
	p := Pet{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		Age:         age,
		Weight:      weight,
		Color:       strings.TrimSpace(in.Color),
		Gender:      strings.TrimSpace(in.Gender),
		MicrochipID: strings.TrimSpace(in.MicrochipID),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, apperr.Internal(err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (Pet, error) {
	p, err := s.repo.GetByIDAndOwner(ctx, strings.TrimSpace(id), userID)
	if err != nil {
		return Pet{}, notFoundOr(err)
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, userID string) ([]Pet, error) {
	items, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// UpdateInput: punteros para saber qué vino. id, user_id y created_at no existen acá,
// así que aunque el cliente los mande no se pueden pisar.
type UpdateInput struct {
	Name        *string
	Species     *string
	Breed       *string
	Age         fields.Number
	Weight      fields.Number
	Color       *string
	Gender      *string
	MicrochipID *string
	Notes       *string
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (Pet, error) {
	p, err := s.Get(ctx, id, userID)
	if err != nil {
		return Pet{}, err
	}

	for _, req := range []struct {
		name string
		val  *string
		dst  *string
	}{
		{"name", in.Name, &p.Name},
		{"species", in.Species, &p.Species},
		{"breed", in.Breed, &p.Breed},
	} {
		if req.val == nil {
			continue
		}
		if fields.Blank(*req.val) {
			return Pet{}, apperr.Validation("%s is required", req.name)
		}
		*req.dst = strings.TrimSpace(*req.val)
	}

	if in.Age.Present() {
		age, err := in.Age.Float64()
		if err != nil {
			return Pet{}, apperr.Validation("Age must be a number")
		}
		p.Age = age
	}
	if in.Weight.Present() {
		w, err := in.Weight.Float64()
		if err != nil {
			return Pet{}, apperr.Validation("Weight must be a number")
		}
		p.Weight = &w
	}

	applyOptional(&p.Color, in.Color)
	applyOptional(&p.Gender, in.Gender)
	applyOptional(&p.MicrochipID, in.MicrochipID)
	applyOptional(&p.Notes, in.Notes)

	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, notFoundOr(err)
	}
	return p, nil
}

// Delete no toca turnos ni historias de la mascota.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id), userID); err != nil {
		return notFoundOr(err)
	}
	return nil
}

func applyOptional(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound(msgNotFound)
	}
	return apperr.Internal(err)
}
