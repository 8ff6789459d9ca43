// Package gateway es la puerta para el browser: guarda la credencial en una
// sesión del lado servidor y reenvía /api/* a cada servicio con el Bearer.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"petpal/internal/adapters/auth/usersvc"
	"petpal/internal/platform/httpclient"
	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"
	"petpal/internal/ports/auth"
	"petpal/internal/ports/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const CookieName = "petpal_session"

// Config: Upstreams va de nombre de colección ("users", "pets", ...) a URL base.
type Config struct {
	Upstreams     map[string]string
	Sessions      session.Store
	SessionTTL    time.Duration
	SecureCookies bool
	Timeout       time.Duration
	Log           logger.Logger

	// Opcional: tests.
	Transport http.RoundTripper
}

type Gateway struct {
	sessions session.Store
	ttl      time.Duration
	secure   bool
	log      logger.Logger
	now      func() time.Time

	identity *httpclient.Client
	verifier *usersvc.Client
	proxies  map[string]*httputil.ReverseProxy
}

func New(cfg Config) (*Gateway, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("gateway: session store required")
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	usersURL := strings.TrimSpace(cfg.Upstreams["users"])
	if usersURL == "" {
		return nil, errors.New("gateway: users upstream required")
	}
	identity, err := httpclient.NewWithTransport(usersURL, cfg.Timeout, cfg.Transport)
	if err != nil {
		return nil, err
	}
	verifier, err := usersvc.NewClient(usersvc.Config{BaseURL: usersURL, Timeout: cfg.Timeout, Transport: cfg.Transport})
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		sessions: cfg.Sessions,
		ttl:      cfg.SessionTTL,
		secure:   cfg.SecureCookies,
		log:      cfg.Log.With(map[string]any{"component": "gateway"}),
		now:      time.Now,
		identity: identity,
		verifier: verifier,
		proxies:  make(map[string]*httputil.ReverseProxy, len(cfg.Upstreams)),
	}

	for name, raw := range cfg.Upstreams {
		target, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("gateway: invalid upstream %s=%q", name, raw)
		}
		g.proxies[name] = g.newProxy(name, target, cfg.Transport)
	}

	return g, nil
}

// WithClock es para tests.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

func (g *Gateway) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", g.login)
		r.Post("/register", g.register)
		r.Post("/logout", g.logout)
		r.Get("/session", g.currentSession)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(g.requireSession)
		for name, rp := range g.proxies {
			r.Handle("/"+name, rp)
			r.Handle("/"+name+"/*", rp)
		}
	})
}

func (g *Gateway) newProxy(name string, target *url.URL, tr http.RoundTripper) *httputil.ReverseProxy {
	log := g.log.With(map[string]any{"upstream": name})
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Del("Cookie")
			if reqID := chimw.GetReqID(pr.In.Context()); reqID != "" {
				pr.Out.Header.Set(chimw.RequestIDHeader, reqID)
			}
			if s, ok := sessionFrom(pr.In.Context()); ok {
				pr.Out.Header.Set("Authorization", "Bearer "+s.Token)
			}
		},
		Transport: tr,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("upstream unavailable", map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"path":       r.URL.Path,
				"err":        err,
			})
			httpx.WriteMessage(w, http.StatusBadGateway, "Service unavailable")
		},
	}
}

type ctxKey string

const sessionKey ctxKey = "session"

func sessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	return s, ok
}

// requireSession corta con 401 si no hay cookie o la sesión ya no existe.
func (g *Gateway) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := g.lookup(r)
		if err != nil {
			httpx.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, s)))
	})
}

func (g *Gateway) lookup(r *http.Request) (session.Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return session.Session{}, session.ErrNotFound
	}
	s, err := g.sessions.Get(r.Context(), c.Value)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		g.log.Error("session lookup failed", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
			"err":        err,
		})
	}
	return s, err
}

// startSession guarda la credencial del lado servidor y setea la cookie.
func (g *Gateway) startSession(w http.ResponseWriter, r *http.Request, token string, p auth.Principal) (session.Session, error) {
	now := g.now().UTC()
	s := session.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    p.UserID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
	}
	if err := g.sessions.Save(r.Context(), s); err != nil {
		return session.Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

func (g *Gateway) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
