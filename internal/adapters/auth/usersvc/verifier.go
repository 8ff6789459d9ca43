package usersvc

import (
	"context"
	"errors"
	"strings"

	"petpal/internal/platform/metrics"
	"petpal/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implementa auth.AuthVerifier delegando en el servicio de usuarios.
// Es el que usan pets, appointments y medical.
type Verifier struct {
	client  *Client
	metrics *metrics.Metrics
}

func NewVerifier(client *Client, m *metrics.Metrics) *Verifier {
	return &Verifier{client: client, metrics: m}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Principal, error) {
	if v == nil || v.client == nil {
		return auth.Principal{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Principal{}, ErrTokenEmpty
	}

	p, err := v.client.VerifyToken(ctx, token)
	switch {
	case err == nil:
		v.metrics.ObserveCredentialVerification(metrics.ResultValid)
	case errors.Is(err, ErrUnauthorized):
		v.metrics.ObserveCredentialVerification(metrics.ResultDenied)
	default:
		v.metrics.ObserveCredentialVerification(metrics.ResultUpstreamError)
	}
	if err != nil {
		return auth.Principal{}, err
	}
	return p, nil
}
