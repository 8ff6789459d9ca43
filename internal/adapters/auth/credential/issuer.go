// Package credential emite y verifica las credenciales bearer (JWT HS256).
// La verificación local solo mira firma, estructura y expiración; no sabe si
// la identidad sigue existiendo.
package credential

import (
	"errors"
	"strings"
	"time"

	"petpal/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 24 * time.Hour

var (
	ErrExpired      = errors.New("credential expired")
	ErrMalformed    = errors.New("credential malformed")
	ErrNoSecret     = errors.New("credential secret not configured")
	ErrMissingClaim = errors.New("credential missing user_id")
)

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock reemplaza el reloj (tests).
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) Issue(userID, email string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrMissingClaim
	}

	now := i.now()
	c := claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// VerifyLocal falla con ErrExpired si now >= exp y con ErrMalformed ante
// cualquier problema de firma o estructura.
func (i *Issuer) VerifyLocal(token string) (auth.TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.TokenClaims{}, ErrMalformed
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.TokenClaims{}, ErrExpired
		}
		return auth.TokenClaims{}, ErrMalformed
	}
	if !parsed.Valid || strings.TrimSpace(c.UserID) == "" {
		return auth.TokenClaims{}, ErrMalformed
	}

	out := auth.TokenClaims{
		UserID: c.UserID,
		Email:  c.Email,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
