package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"petpal/internal/platform/apperr"
	"petpal/internal/ports/auth"

	"github.com/google/uuid"
)

type Service struct {
	repo   Repository
	hasher PasswordHasher
	tokens auth.TokenIssuer
	now    func() time.Time
}

func NewService(repo Repository, hasher PasswordHasher, tokens auth.TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// Register crea la identidad y devuelve también una credencial recién emitida.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Identity, string, error) {
	required := []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
		{"phone", in.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return Identity{}, "", apperr.Validation("%s is required", f.name)
		}
	}

	email := strings.TrimSpace(in.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Identity{}, "", apperr.Conflict("User already exists", ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return Identity{}, "", apperr.Internal(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Identity{}, "", apperr.Internal(err)
	}

	now := s.now().UTC()
	u := Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		// carrera entre el GetByEmail y el insert: el store tiene la última palabra
		if errors.Is(err, ErrEmailTaken) {
			return Identity{}, "", apperr.Conflict("User already exists", err)
		}
		return Identity{}, "", apperr.Internal(err)
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return Identity{}, "", apperr.Internal(err)
	}
	return u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Identity, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Identity{}, "", apperr.Validation("Email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, "", apperr.Auth("Invalid credentials")
		}
		return Identity{}, "", apperr.Internal(err)
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		return Identity{}, "", apperr.Auth("Invalid credentials")
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return Identity{}, "", apperr.Internal(err)
	}
	return u, token, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Identity, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, apperr.NotFound("User not found")
		}
		return Identity{}, apperr.Internal(err)
	}
	return u, nil
}

// UpdateProfileInput: nil = no tocar. Email y password no se cambian por acá.
type UpdateProfileInput struct {
	Name    *string
	Phone   *string
	Address *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (Identity, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Identity{}, apperr.Validation("name is required")
		}
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		if strings.TrimSpace(*in.Phone) == "" {
			return Identity{}, apperr.Validation("phone is required")
		}
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		u.Address = strings.TrimSpace(*in.Address)
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, apperr.NotFound("User not found")
		}
		return Identity{}, apperr.Internal(err)
	}
	return u, nil
}

// DeleteProfile borra solo la identidad. Mascotas, turnos e historias quedan huérfanos.
func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// VerifyRemote es la verificación autoritativa: firma, expiración y que la
// identidad siga existiendo. Cualquier falla es apperr.Auth sin detalle.
func (s *Service) VerifyRemote(ctx context.Context, token string) (Identity, error) {
	claims, err := s.tokens.VerifyLocal(token)
	if err != nil {
		return Identity{}, apperr.Auth("Invalid token")
	}
	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, apperr.Auth("Invalid token")
		}
		return Identity{}, apperr.Internal(err)
	}
	return u, nil
}

// Verify implementa auth.AuthVerifier para las rutas propias del servicio.
func (s *Service) Verify(ctx context.Context, token string) (auth.Principal, error) {
	u, err := s.VerifyRemote(ctx, token)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Token:  token,
	}, nil
}
