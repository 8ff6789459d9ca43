package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sessionmem "petpal/internal/adapters/session/memory"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubUsers(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "pw" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Login successful",
			"token":   "tok-1",
			"user":    map[string]string{"id": "u-1", "name": "Ana", "email": in["email"]},
		})
	})
	r.Post("/api/users/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "User created successfully", "user_id": "u-2", "token": "tok-2"})
	})
	r.Post("/api/users/verify-token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"valid": true,
			"user":  map[string]string{"id": "u-2", "name": "Beto", "email": "b@x.com"},
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// stubEcho devuelve el path y el Authorization que le llegaron.
func stubEcho(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"path":   r.URL.Path,
			"auth":   r.Header.Get("Authorization"),
			"cookie": r.Header.Get("Cookie"),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T, upstreams map[string]string) (*httptest.Server, *http.Client) {
	t.Helper()
	g, err := New(Config{
		Upstreams:  upstreams,
		Sessions:   sessionmem.NewStore(),
		SessionTTL: time.Hour,
		Timeout:    2 * time.Second,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	g.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func post(t *testing.T, c *http.Client, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := c.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestGateway_LoginProxyLogout(t *testing.T) {
	users := stubUsers(t)
	pets := stubEcho(t)
	gw, c := newGateway(t, map[string]string{"users": users.URL, "pets": pets.URL})

	// sin sesión
	resp, body := get(t, c, gw.URL+"/api/pets/")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required", body["message"])

	resp, body = post(t, c, gw.URL+"/auth/login", `{"email":"a@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotContains(t, body, "token")

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == CookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	resp, body = get(t, c, gw.URL+"/api/pets/p-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/api/pets/p-1", body["path"])
	assert.Equal(t, "Bearer tok-1", body["auth"])
	assert.Empty(t, body["cookie"])

	resp, body = get(t, c, gw.URL+"/auth/session")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "u-1", user["id"])

	resp, _ = post(t, c, gw.URL+"/auth/logout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, c, gw.URL+"/auth/session")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = get(t, c, gw.URL+"/api/pets/p-1")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateway_LoginFailureIsRelayed(t *testing.T) {
	users := stubUsers(t)
	gw, c := newGateway(t, map[string]string{"users": users.URL})

	resp, body := post(t, c, gw.URL+"/auth/login", `{"email":"a@x.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["message"])
	assert.Empty(t, resp.Cookies())

	resp, body = post(t, c, gw.URL+"/auth/login", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid json", body["message"])
}

func TestGateway_ForwardsClientIPToIdentity(t *testing.T) {
	seen := make(chan string, 2)
	users := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL.Path + " " + r.Header.Get("X-Forwarded-For")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
	}))
	t.Cleanup(users.Close)
	gw, c := newGateway(t, map[string]string{"users": users.URL})

	resp, _ := post(t, c, gw.URL+"/auth/login", `{"email":"a@x.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = post(t, c, gw.URL+"/auth/register", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// sin RealIP delante, la IP del cliente es el par TCP
	assert.Equal(t, "/api/users/login 127.0.0.1", <-seen)
	assert.Equal(t, "/api/users/register 127.0.0.1", <-seen)
}

func TestGateway_RegisterOpensSession(t *testing.T) {
	users := stubUsers(t)
	gw, c := newGateway(t, map[string]string{"users": users.URL})

	resp, body := post(t, c, gw.URL+"/auth/register", `{"name":"Beto","email":"b@x.com","password":"pw","phone":"1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Beto", user["name"])

	resp, _ = get(t, c, gw.URL+"/auth/session")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateway_UpstreamDown(t *testing.T) {
	users := stubUsers(t)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	gw, c := newGateway(t, map[string]string{"users": users.URL, "medical": deadURL})

	resp, _ := post(t, c, gw.URL+"/auth/login", `{"email":"a@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, c, gw.URL+"/api/medical/")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Service unavailable", body["message"])
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Upstreams: map[string]string{"users": "http://localhost:5001"}})
	assert.Error(t, err)

	_, err = New(Config{Sessions: sessionmem.NewStore(), Upstreams: map[string]string{}})
	assert.Error(t, err)

	_, err = New(Config{Sessions: sessionmem.NewStore(), Upstreams: map[string]string{"users": "http://localhost:5001", "pets": "nope"}})
	assert.Error(t, err)
}
