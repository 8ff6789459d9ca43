package auth

import "context"

// AuthVerifier verifica un token y devuelve el principal o error.
// Las implementaciones que sirven para decidir escrituras tienen que confirmar
// además que la identidad sigue existiendo.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// TokenIssuer emite y verifica localmente (firma + expiración) credenciales bearer.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
	VerifyLocal(token string) (TokenClaims, error)
}
