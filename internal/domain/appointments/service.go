package appointments

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
	msgNotFound      = "Appointment not found"
	msgPetDenied     = "Pet not found or access denied"
	msgMustBeFuture  = "Appointment must be scheduled for a future date/time"
	msgInvalidDate   = "Invalid appointment date format"
	msgInvalidTime   = "Invalid appointment time format"
	msgInvalidStatus = "Invalid status"
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
	PetID           string
	AppointmentDate string
	AppointmentTime string
	AppointmentType string
	Veterinarian    string
	Clinic          string
	Reason          string
	Notes           string
	Status          string
}

// Create valida todo lo local antes de gastar la llamada a pets.
func (s *Service) Create(ctx context.Context, caller auth.Principal, in CreateInput) (Appointment, error) {
	switch {
	case fields.Blank(in.PetID):
		return Appointment{}, apperr.Validation("pet_id is required")
	case fields.Blank(in.AppointmentDate):
		return Appointment{}, apperr.Validation("appointment_date is required")
	case fields.Blank(in.AppointmentType):
		return Appointment{}, apperr.Validation("appointment_type is required")
	case fields.Blank(in.Veterinarian):
		return Appointment{}, apperr.Validation("veterinarian is required")
	}

	when, dateOnly, err := scheduleAt(in.AppointmentDate, in.AppointmentTime)
	if err != nil {
		return Appointment{}, err
	}

	status := StatusScheduled
	if !fields.Blank(in.Status) {
		status = Status(strings.TrimSpace(in.Status))
		if !status.Valid() {
			return Appointment{}, apperr.Validation(msgInvalidStatus)
		}
	}

	now := s.now().UTC()
	if !inFuture(when, dateOnly, now) {
		return Appointment{}, apperr.Validation(msgMustBeFuture)
	}

	petID := strings.TrimSpace(in.PetID)
	if err := s.checkPet(ctx, caller, petID); err != nil {
		return Appointment{}, err
	}

	a := Appointment{
		ID:              uuid.NewString(),
		UserID:          caller.UserID,
		PetID:           petID,
		AppointmentDate: when,
		AppointmentTime: clockOf(when, dateOnly),
		AppointmentType: strings.TrimSpace(in.AppointmentType),
		Veterinarian:    strings.TrimSpace(in.Veterinarian),
		Clinic:          strings.TrimSpace(in.Clinic),
		Reason:          strings.TrimSpace(in.Reason),
		Notes:           strings.TrimSpace(in.Notes),
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, apperr.Internal(err)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (Appointment, error) {
	a, err := s.repo.GetByIDAndOwner(ctx, strings.TrimSpace(id), userID)
	if err != nil {
		return Appointment{}, notFoundOr(err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Appointment, error) {
	items, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// Upcoming: fecha >= ahora y status scheduled o confirmed, más próximo primero.
func (s *Service) Upcoming(ctx context.Context, userID string) ([]Appointment, error) {
	items, err := s.repo.ListUpcoming(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// ListByPet corre el protocolo de ownership antes de listar.
func (s *Service) ListByPet(ctx context.Context, caller auth.Principal, petID string) ([]Appointment, error) {
	petID = strings.TrimSpace(petID)
	if err := s.checkPet(ctx, caller, petID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByPet(ctx, caller.UserID, petID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// UpdateInput: nil = no tocar. Sin campos inmutables.
type UpdateInput struct {
	PetID           *string
	AppointmentDate *string
	AppointmentTime *string
	AppointmentType *string
	Veterinarian    *string
	Clinic          *string
	Reason          *string
	Notes           *string
	Status          *string
}

// Update no exige fecha futura: reprogramar o cerrar turnos pasados es válido.
func (s *Service) Update(ctx context.Context, caller auth.Principal, id string, in UpdateInput) (Appointment, error) {
	a, err := s.Get(ctx, id, caller.UserID)
	if err != nil {
		return Appointment{}, err
	}

	for _, req := range []struct {
		name string
		val  *string
		dst  *string
	}{
		{"appointment_type", in.AppointmentType, &a.AppointmentType},
		{"veterinarian", in.Veterinarian, &a.Veterinarian},
	} {
		if req.val == nil {
			continue
		}
		if fields.Blank(*req.val) {
			return Appointment{}, apperr.Validation("%s is required", req.name)
		}
		*req.dst = strings.TrimSpace(*req.val)
	}

	if in.AppointmentDate != nil || in.AppointmentTime != nil {
		var date string
		if in.AppointmentDate != nil {
			if fields.Blank(*in.AppointmentDate) {
				return Appointment{}, apperr.Validation("appointment_date is required")
			}
			date = *in.AppointmentDate
		} else {
			// solo cambia la hora: se aplica sobre el día ya guardado
			date = a.AppointmentDate.Format(fields.DateLayout)
		}
		clock := a.AppointmentTime
		if in.AppointmentTime != nil {
			clock = *in.AppointmentTime
		}
		when, dateOnly, err := scheduleAt(date, clock)
		if err != nil {
			return Appointment{}, err
		}
		a.AppointmentDate = when
		a.AppointmentTime = clockOf(when, dateOnly)
	}

	if in.Status != nil {
		st := Status(strings.TrimSpace(*in.Status))
		if !st.Valid() {
			return Appointment{}, apperr.Validation(msgInvalidStatus)
		}
		a.Status = st
	}

	if in.PetID != nil {
		petID := strings.TrimSpace(*in.PetID)
		if petID == "" {
			return Appointment{}, apperr.Validation("pet_id is required")
		}
		if petID != a.PetID {
			if err := s.checkPet(ctx, caller, petID); err != nil {
				return Appointment{}, err
			}
			a.PetID = petID
		}
	}

	applyOptional(&a.Clinic, in.Clinic)
	applyOptional(&a.Reason, in.Reason)
	applyOptional(&a.Notes, in.Notes)

	a.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, notFoundOr(err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id), userID); err != nil {
		return notFoundOr(err)
	}
	return nil
}

// checkPet: cualquier respuesta que no sea un "sí" explícito es NotFound.
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

// scheduleAt combina appointment_date con appointment_time. La hora solo se
// aplica si la fecha vino sin hora.
func scheduleAt(date, clock string) (time.Time, bool, error) {
	when, dateOnly, err := fields.ParseDateTime(date)
	if err != nil {
		return time.Time{}, false, apperr.Validation(msgInvalidDate)
	}
	if fields.Blank(clock) {
		return when, dateOnly, nil
	}
	h, m, err := fields.ParseClock(clock)
	if err != nil {
		return time.Time{}, false, apperr.Validation(msgInvalidTime)
	}
	if dateOnly {
		return fields.AtClock(when, h, m), false, nil
	}
	return when, false, nil
}

// clockOf deja appointment_time vacío solo cuando el turno no tiene hora.
func clockOf(when time.Time, dateOnly bool) string {
	if dateOnly {
		return ""
	}
	return when.Format(fields.ClockLayout)
}

// inFuture: una fecha sin hora cuenta como futura si es hoy o después.
func inFuture(when time.Time, dateOnly bool, now time.Time) bool {
	if dateOnly {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return !when.Before(today)
	}
	return when.After(now)
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
