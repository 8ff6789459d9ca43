package usersvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petpal/internal/platform/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, verifyPath, r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"valid": true,
				"user":  map[string]string{"id": "u-1", "name": "Ana", "email": "ana@x.com"},
			})
		case "Bearer boom":
			w.WriteHeader(http.StatusInternalServerError)
		case "Bearer slow":
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]bool{"valid": false})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifier_Verify(t *testing.T) {
	srv := usersStub(t)
	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	v := NewVerifier(client, metrics.New("test"))

	p, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "ana@x.com", p.Email)
	assert.Equal(t, "good", p.Token)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Verify(context.Background(), "boom")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestVerifier_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = NewVerifier(client, nil).Verify(context.Background(), "good")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
