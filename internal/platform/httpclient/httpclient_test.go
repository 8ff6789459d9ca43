package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_ForwardsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "req-7", r.Header.Get(chimw.RequestIDHeader))
		assert.Equal(t, "/api/pets/verify/p1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"valid": true})
	}))
	defer srv.Close()

	c, err := NewWithTransport(srv.URL+"/", time.Second, nil)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-7")
	var out struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, c.DoJSON(ctx, http.MethodGet, "api/pets/verify/p1", BearerHeaders(" tok "), nil, &out))
	assert.True(t, out.Valid)
}

func TestDoJSON_Non2xxIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"valid":false}`))
	}))
	defer srv.Close()

	c, err := NewWithTransport(srv.URL, time.Second, nil)
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Contains(t, err.Error(), `{"valid":false}`)
}

func TestDoJSON_TimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewWithTransport(srv.URL, 20*time.Millisecond, nil)
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodGet, "/slow", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	_, err := NewWithTransport("::not a url", time.Second, nil)
	assert.Error(t, err)

	c, err := NewWithTransport("", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.HTTP.Timeout)
	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, "/relative", nil, nil, nil))
}
