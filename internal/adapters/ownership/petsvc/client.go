package petsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petpal/internal/platform/httpclient"
	"petpal/internal/platform/metrics"
	"petpal/internal/ports/ownership"
)

var (
	ErrNotConfigured = errors.New("pets service client not configured")
	ErrUpstream      = errors.New("pets service upstream error")
)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client implementa ownership.PetChecker contra GET /api/pets/verify/{id}.
type Client struct {
	http    *httpclient.Client
	metrics *metrics.Metrics
}

func NewClient(cfg Config, m *metrics.Metrics) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithTransport(cfg.BaseURL, cfg.Timeout, cfg.Transport)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, metrics: m}, nil
}

type verifyResponse struct {
	Valid bool `json:"valid"`
	Pet   struct {
		ID      string `json:"id"`
		UserID  string `json:"user_id"`
		Name    string `json:"name"`
		Species string `json:"species"`
	} `json:"pet"`
}

// VerifyPet reenvía la credencial del caller. Un 404 es ErrNotFoundOrDenied;
// cualquier otra falla vuelve envuelta en ErrUpstream. Ninguna de las dos es un "sí".
func (c *Client) VerifyPet(ctx context.Context, token, petID string) (ownership.PetSnapshot, error) {
	if c == nil || c.http == nil {
		return ownership.PetSnapshot{}, ErrNotConfigured
	}
	petID = strings.TrimSpace(petID)
	if petID == "" {
		c.metrics.ObserveOwnershipCheck(metrics.ResultDenied)
		return ownership.PetSnapshot{}, ownership.ErrNotFoundOrDenied
	}

	var out verifyResponse
	path := "/api/pets/verify/" + url.PathEscape(petID)
	err := c.http.DoJSON(ctx, http.MethodGet, path, httpclient.BearerHeaders(token), nil, &out)
	if err != nil {
		if httpclient.StatusCode(err) == http.StatusNotFound {
			c.metrics.ObserveOwnershipCheck(metrics.ResultDenied)
			return ownership.PetSnapshot{}, ownership.ErrNotFoundOrDenied
		}
		c.metrics.ObserveOwnershipCheck(metrics.ResultUpstreamError)
		return ownership.PetSnapshot{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if !out.Valid || strings.TrimSpace(out.Pet.ID) != petID {
		c.metrics.ObserveOwnershipCheck(metrics.ResultDenied)
		return ownership.PetSnapshot{}, ownership.ErrNotFoundOrDenied
	}

	c.metrics.ObserveOwnershipCheck(metrics.ResultValid)
	return ownership.PetSnapshot{
		ID:          out.Pet.ID,
		OwnerUserID: out.Pet.UserID,
		Name:        out.Pet.Name,
		Species:     out.Pet.Species,
	}, nil
}
