package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"petpal/internal/adapters/auth/credential"
	"petpal/internal/adapters/password"
	sessionmem "petpal/internal/adapters/session/memory"
	"petpal/internal/gateway"
	"petpal/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// los httptest.Server escuchan en loopback
var loopback = []string{"127.0.0.1", "::1"}

func startUsers(t *testing.T, trusted []string) *httptest.Server {
	t.Helper()
	issuer, err := credential.NewIssuer("rl-secret", time.Hour)
	require.NoError(t, err)

	h, err := router.NewUsers(router.UsersOptions{
		Base:               router.Base{TrustedProxies: trusted},
		Issuer:             issuer,
		Hasher:             password.NewBcrypt(4),
		LoginRatePerSecond: 0.0001,
		LoginBurst:         2,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func loginFrom(t *testing.T, url string, headers map[string]string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"email":"nadie@x.com","password":"nope"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestHTTP_LoginLimitedPerClientBehindGateway(t *testing.T) {
	users := startUsers(t, loopback)

	g, err := gateway.New(gateway.Config{
		Upstreams:  map[string]string{"users": users.URL},
		Sessions:   sessionmem.NewStore(),
		SessionTTL: time.Hour,
		Timeout:    2 * time.Second,
	})
	require.NoError(t, err)
	// el test hace de balanceador delante del gateway
	gwH, err := router.NewGateway(router.GatewayOptions{Base: router.Base{TrustedProxies: loopback}, Gateway: g})
	require.NoError(t, err)
	gw := httptest.NewServer(gwH)
	t.Cleanup(gw.Close)

	as := func(ip string) map[string]string { return map[string]string{"X-Forwarded-For": ip} }

	assert.Equal(t, http.StatusUnauthorized, loginFrom(t, gw.URL+"/auth/login", as("10.0.0.1")))
	assert.Equal(t, http.StatusUnauthorized, loginFrom(t, gw.URL+"/auth/login", as("10.0.0.1")))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(t, gw.URL+"/auth/login", as("10.0.0.1")))

	// otro cliente detrás del mismo gateway no hereda el bucket
	assert.Equal(t, http.StatusUnauthorized, loginFrom(t, gw.URL+"/auth/login", as("10.0.0.2")))
}

func TestHTTP_LoginIgnoresSpoofedForwardingHeaders(t *testing.T) {
	users := startUsers(t, nil)

	codes := make([]int, 0, 5)
	for i, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4", "5.5.5.5"} {
		h := map[string]string{"X-Real-IP": ip}
		if i%2 == 1 {
			h = map[string]string{"X-Forwarded-For": ip}
		}
		codes = append(codes, loginFrom(t, users.URL+"/api/users/login", h))
	}
	assert.Equal(t, []int{401, 401, 429, 429, 429}, codes)
}
