package usersvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"petpal/internal/platform/httpclient"
	"petpal/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("users service client not configured")
	ErrUnauthorized  = errors.New("users service rejected token")
	ErrUpstream      = errors.New("users service upstream error")
)

const verifyPath = "/api/users/verify-token"

// Config del cliente contra el servicio de usuarios.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Opcional: tests inyectan el transport de un httptest.Server.
	Transport http.RoundTripper
}

type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithTransport(cfg.BaseURL, cfg.Timeout, cfg.Transport)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type verifyResponse struct {
	Valid bool `json:"valid"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// VerifyToken pide al servicio de usuarios que valide firma, expiración y
// que la identidad siga existiendo.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Principal, error) {
	if c == nil || c.http == nil {
		return auth.Principal{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Principal{}, ErrUnauthorized
	}

	var out verifyResponse
	err := c.http.DoJSON(ctx, http.MethodPost, verifyPath, httpclient.BearerHeaders(token), nil, &out)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Principal{}, ErrUnauthorized
		default:
			return auth.Principal{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	if !out.Valid {
		return auth.Principal{}, ErrUnauthorized
	}
	userID := strings.TrimSpace(out.User.ID)
	if userID == "" {
		return auth.Principal{}, fmt.Errorf("%w: response missing user id", ErrUpstream)
	}

	return auth.Principal{
		UserID: userID,
		Email:  strings.TrimSpace(out.User.Email),
		Name:   strings.TrimSpace(out.User.Name),
		Token:  token,
	}, nil
}
