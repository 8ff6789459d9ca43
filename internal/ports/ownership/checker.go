package ownership

import (
	"context"
	"errors"
)

// ErrNotFoundOrDenied cubre "no existe" y "no es tuya": el caller no puede distinguirlos.
var ErrNotFoundOrDenied = errors.New("pet not found or access denied")

// PetSnapshot es lo mínimo que devuelve el servicio de mascotas al verificar.
type PetSnapshot struct {
	ID          string
	OwnerUserID string
	Name        string
	Species     string
}

// PetChecker pregunta al dueño de la colección de mascotas si petID pertenece
// a la identidad detrás de token. Cualquier falla (red, timeout, status) es un "no".
type PetChecker interface {
	VerifyPet(ctx context.Context, token, petID string) (PetSnapshot, error)
}
