package medical

import (
	"context"
	"errors"
	"strings"
	"time"

	"petpal/internal/platform/apperr"
	"petpal/internal/platform/fields"
	"petpal/internal/platform/logger"
	"petpal/internal/ports/auth"
	"petpal/internal/ports/ownership"

	"github.com/google/uuid"
)

const (
	msgNotFound  = "Medical record not found"
	msgPetDenied = "Pet not found or access denied"

	DefaultRecentLimit = 10
	MaxRecentLimit     = 100

	statsWindow = 30 * 24 * time.Hour
)

type Service struct {
	repo Repository
	pets ownership.PetChecker
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, pets ownership.PetChecker, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		pets: pets,
		log:  log,
		now:  time.Now,
	}
}

type CreateInput struct {
	PetID        string
	VisitDate    string
	RecordType   string
	Veterinarian string
	Diagnosis    string
	Treatment    string
	Medications  string
	Notes        string
	Clinic       string
	Weight       fields.Number
	Temperature  fields.Number
	FollowUpDate string
}

func (s *Service) Create(ctx context.Context, caller auth.Principal, in CreateInput) (Record, error) {
	switch {
	case fields.Blank(in.PetID):
		return Record{}, apperr.Validation("pet_id is required")
	case fields.Blank(in.VisitDate):
		return Record{}, apperr.Validation("visit_date is required")
	case fields.Blank(in.RecordType):
		return Record{}, apperr.Validation("record_type is required")
	case fields.Blank(in.Veterinarian):
		return Record{}, apperr.Validation("veterinarian is required")
	case fields.Blank(in.Diagnosis):
		return Record{}, apperr.Validation("diagnosis is required")
	}

	visit, _, err := fields.ParseDateTime(in.VisitDate)
	if err != nil {
		return Record{}, apperr.Validation("Invalid visit date format")
	}
	followUp, err := parseFollowUp(in.FollowUpDate)
	if err != nil {
		return Record{}, err
	}
	weight, err := in.Weight.OptionalFloat()
	if err != nil {
		return Record{}, apperr.Validation("Weight must be a number")
	}
	temp, err := in.Temperature.OptionalFloat()
	if err != nil {
		return Record{}, apperr.Validation("Temperature must be a number")
	}

	petID := strings.TrimSpace(in.PetID)
	if err := s.checkPet(ctx, caller, petID); err != nil {
		return Record{}, err
	}

	now := s.now().UTC()
	rec := Record{
		ID:           uuid.NewString(),
		UserID:       caller.UserID,
		PetID:        petID,
		VisitDate:    visit,
		RecordType:   strings.TrimSpace(in.RecordType),
		Veterinarian: strings.TrimSpace(in.Veterinarian),
		Diagnosis:    strings.TrimSpace(in.Diagnosis),
		Treatment:    strings.TrimSpace(in.Treatment),
		Medications:  strings.TrimSpace(in.Medications),
		Notes:        strings.TrimSpace(in.Notes),
		Clinic:       strings.TrimSpace(in.Clinic),
		Weight:       weight,
		Temperature:  temp,
		FollowUpDate: followUp,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, apperr.Internal(err)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (Record, error) {
	rec, err := s.repo.GetByIDAndOwner(ctx, strings.TrimSpace(id), userID)
	if err != nil {
		return Record{}, notFoundOr(err)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Record, error) {
	items, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// Recent acota limit a [1, MaxRecentLimit]; <= 0 usa el default.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Record, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	items, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// ListByPet verifica la mascota y lista. recordType vacío = todos.
func (s *Service) ListByPet(ctx context.Context, caller auth.Principal, petID, recordType string) ([]Record, error) {
	petID = strings.TrimSpace(petID)
	if err := s.checkPet(ctx, caller, petID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByPet(ctx, caller.UserID, petID, strings.TrimSpace(recordType))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *Service) Vaccinations(ctx context.Context, caller auth.Principal, petID string) ([]Record, error) {
	return s.ListByPet(ctx, caller, petID, TypeVaccination)
}

// Search filtra en memoria sobre los registros del caller.
// Un end_date sin hora incluye todo ese día.
func (s *Service) Search(ctx context.Context, userID string, f SearchFilter) ([]Record, error) {
	var start, end *time.Time
	if !fields.Blank(f.StartDate) {
		t, _, err := fields.ParseDateTime(f.StartDate)
		if err != nil {
			return nil, apperr.Validation("Invalid start date format")
		}
		start = &t
	}
	if !fields.Blank(f.EndDate) {
		t, dateOnly, err := fields.ParseDateTime(f.EndDate)
		if err != nil {
			return nil, apperr.Validation("Invalid end date format")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = &t
	}

	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	recordType := strings.TrimSpace(f.RecordType)
	petID := strings.TrimSpace(f.PetID)

	out := make([]Record, 0, len(items))
	for _, rec := range items {
		if q != "" && !rec.matches(q) {
			continue
		}
		if recordType != "" && rec.RecordType != recordType {
			continue
		}
		if petID != "" && rec.PetID != petID {
			continue
		}
		if start != nil && rec.VisitDate.Before(*start) {
			continue
		}
		if end != nil && rec.VisitDate.After(*end) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r Record) matches(q string) bool {
	for _, v := range []string{r.Diagnosis, r.Treatment, r.Medications, r.Notes, r.Veterinarian} {
		if v != "" && strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Stats: visitas de los últimos 30 días y controles pendientes en los próximos 30.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	now := s.now().UTC()
	since, until := now.Add(-statsWindow), now.Add(statsWindow)

	st := Stats{TotalRecords: len(items), RecordTypes: map[string]int{}}
	for _, rec := range items {
		typ := rec.RecordType
		if typ == "" {
			typ = "other"
		}
		st.RecordTypes[typ]++

		if !rec.VisitDate.Before(since) {
			st.RecentVisits++
		}
		if f := rec.FollowUpDate; f != nil && !f.Before(now) && !f.After(until) {
			st.UpcomingFollowups++
		}
	}
	return st, nil
}

// Export devuelve todo lo del caller y el instante del export.
func (s *Service) Export(ctx context.Context, userID string) ([]Record, time.Time, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	return items, s.now().UTC(), nil
}

// UpdateInput: nil = no tocar; numéricos con Present().
type UpdateInput struct {
	PetID        *string
	VisitDate    *string
	RecordType   *string
	Veterinarian *string
	Diagnosis    *string
	Treatment    *string
	Medications  *string
	Notes        *string
	Clinic       *string
	Weight       fields.Number
	Temperature  fields.Number
	FollowUpDate *string
}

func (s *Service) Update(ctx context.Context, caller auth.Principal, id string, in UpdateInput) (Record, error) {
	rec, err := s.Get(ctx, id, caller.UserID)
	if err != nil {
		return Record{}, err
	}

	for _, req := range []struct {
		name string
		val  *string
		dst  *string
	}{
		{"record_type", in.RecordType, &rec.RecordType},
		{"veterinarian", in.Veterinarian, &rec.Veterinarian},
		{"diagnosis", in.Diagnosis, &rec.Diagnosis},
	} {
		if req.val == nil {
			continue
		}
		if fields.Blank(*req.val) {
			return Record{}, apperr.Validation("%s is required", req.name)
		}
		*req.dst = strings.TrimSpace(*req.val)
	}

	if in.VisitDate != nil {
		if fields.Blank(*in.VisitDate) {
			return Record{}, apperr.Validation("visit_date is required")
		}
		v, _, err := fields.ParseDateTime(*in.VisitDate)
		if err != nil {
			return Record{}, apperr.Validation("Invalid visit date format")
		}
		rec.VisitDate = v
	}
	if in.FollowUpDate != nil {
		// string vacío limpia el control
		f, err := parseFollowUp(*in.FollowUpDate)
		if err != nil {
			return Record{}, err
		}
		rec.FollowUpDate = f
	}
	if in.Weight.Present() {
		w, err := in.Weight.Float64()
		if err != nil {
			return Record{}, apperr.Validation("Weight must be a number")
		}
		rec.Weight = &w
	}
	if in.Temperature.Present() {
		t, err := in.Temperature.Float64()
		if err != nil {
			return Record{}, apperr.Validation("Temperature must be a number")
		}
		rec.Temperature = &t
	}

	if in.PetID != nil {
		petID := strings.TrimSpace(*in.PetID)
		if petID == "" {
			return Record{}, apperr.Validation("pet_id is required")
		}
		if petID != rec.PetID {
			if err := s.checkPet(ctx, caller, petID); err != nil {
				return Record{}, err
			}
			rec.PetID = petID
		}
	}

	applyOptional(&rec.Treatment, in.Treatment)
	applyOptional(&rec.Medications, in.Medications)
	applyOptional(&rec.Notes, in.Notes)
	applyOptional(&rec.Clinic, in.Clinic)

	rec.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, notFoundOr(err)
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id), userID); err != nil {
		return notFoundOr(err)
	}
	return nil
}

func (s *Service) checkPet(ctx context.Context, caller auth.Principal, petID string) error {
	if s.pets == nil {
		return apperr.NotFound(msgPetDenied)
	}
	pet, err := s.pets.VerifyPet(ctx, caller.Token, petID)
	if err != nil {
		if !errors.Is(err, ownership.ErrNotFoundOrDenied) {
			s.log.Warn("pet ownership check failed", map[string]any{
				"pet_id":  petID,
				"user_id": caller.UserID,
				"err":     err,
			})
		}
		return apperr.NotFound(msgPetDenied)
	}
	if pet.OwnerUserID != "" && pet.OwnerUserID != caller.UserID {
		return apperr.NotFound(msgPetDenied)
	}
	return nil
}

func parseFollowUp(s string) (*time.Time, error) {
	if fields.Blank(s) {
		return nil, nil
	}
	t, _, err := fields.ParseDateTime(s)
	if err != nil {
		return nil, apperr.Validation("Invalid follow-up date format")
	}
	return &t, nil
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
