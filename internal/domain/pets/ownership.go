package pets

import (
	"context"

	"petpal/internal/platform/apperr"
)

// VerifyOwnership es el lado servidor del protocolo de ownership: otros servicios
// preguntan si petID es del caller. Ausente y ajeno devuelven el mismo NotFound.
func (s *Service) VerifyOwnership(ctx context.Context, petID, userID string) (Pet, error) {
	p, err := s.Get(ctx, petID, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Pet{}, apperr.NotFound("Pet not found or access denied")
		}
		return Pet{}, err
	}
	return p, nil
}
