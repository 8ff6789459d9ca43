package auth

import "time"

// Principal es la identidad autenticada de un request.
// Token es la credencial tal como llegó; se reenvía en llamadas a otros servicios.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

// TokenClaims es lo que lleva firmada la credencial bearer.
type TokenClaims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
