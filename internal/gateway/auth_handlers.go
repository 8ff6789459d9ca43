package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"petpal/internal/middleware"
	"petpal/internal/platform/httpclient"
	"petpal/internal/platform/httpx"
	"petpal/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const maxAuthBody = 64 << 10

// forwardedFor pasa la IP del cliente al servicio de usuarios, que limita
// el login por IP y confía en el gateway vía TRUSTED_PROXIES.
func forwardedFor(r *http.Request) map[string]string {
	return map[string]string{"X-Forwarded-For": middleware.ClientIP(r)}
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Message   string      `json:"message,omitempty"`
	User      userSummary `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type loginUpstream struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

type registerUpstream struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// login godoc
// @Summary Inicia sesión
// @Description Reenvía las credenciales al servicio de usuarios y abre una sesión con cookie.
// @Tags gateway
// @Accept json
// @Produce json
// @Success 200 {object} sessionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /auth/login [post]
func (g *Gateway) login(w http.ResponseWriter, r *http.Request) {
	body, ok := readForwardBody(w, r)
	if !ok {
		return
	}

	var out loginUpstream
	if err := g.identity.DoJSON(r.Context(), http.MethodPost, "/api/users/login", forwardedFor(r), body, &out); err != nil {
		g.relayError(w, r, err)
		return
	}

	p := auth.Principal{UserID: out.User.ID, Name: out.User.Name, Email: out.User.Email}
	s, err := g.startSession(w, r, out.Token, p)
	if err != nil {
		g.sessionError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Message:   "Login successful",
		User:      userSummary{ID: s.UserID, Name: s.Name, Email: s.Email},
		ExpiresAt: s.ExpiresAt,
	})
}

// register godoc
// @Summary Registra un usuario
// @Description Crea la cuenta en el servicio de usuarios y deja la sesión abierta.
// @Tags gateway
// @Accept json
// @Produce json
// @Success 201 {object} sessionResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /auth/register [post]
func (g *Gateway) register(w http.ResponseWriter, r *http.Request) {
	body, ok := readForwardBody(w, r)
	if !ok {
		return
	}

	var out registerUpstream
	if err := g.identity.DoJSON(r.Context(), http.MethodPost, "/api/users/register", forwardedFor(r), body, &out); err != nil {
		g.relayError(w, r, err)
		return
	}

	// register no devuelve nombre ni email; se piden con la credencial recién emitida.
	p, err := g.verifier.VerifyToken(r.Context(), out.Token)
	if err != nil {
		g.log.Error("verify after register failed", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
			"user_id":    out.UserID,
			"err":        err,
		})
		httpx.WriteMessage(w, http.StatusBadGateway, "Identity service unavailable")
		return
	}

	s, err := g.startSession(w, r, out.Token, p)
	if err != nil {
		g.sessionError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, sessionResponse{
		Message:   "User created successfully",
		User:      userSummary{ID: s.UserID, Name: s.Name, Email: s.Email},
		ExpiresAt: s.ExpiresAt,
	})
}

// logout godoc
// @Summary Cierra la sesión
// @Tags gateway
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (g *Gateway) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if err := g.sessions.Delete(r.Context(), c.Value); err != nil {
			g.log.Warn("session delete failed", map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"err":        err,
			})
		}
	}
	g.clearCookie(w)
	httpx.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// currentSession godoc
// @Summary Sesión actual
// @Tags gateway
// @Produce json
// @Success 200 {object} sessionResponse
// @Failure 401 {object} map[string]string
// @Router /auth/session [get]
func (g *Gateway) currentSession(w http.ResponseWriter, r *http.Request) {
	s, err := g.lookup(r)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		User:      userSummary{ID: s.UserID, Name: s.Name, Email: s.Email},
		ExpiresAt: s.ExpiresAt,
	})
}

// readForwardBody lee el body tal cual. Vacío se reenvía vacío y el servicio
// de usuarios contesta "No data provided".
func readForwardBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	if r.Body == nil {
		return nil, true
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json")
		return nil, false
	}
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil, true
	}
	if !json.Valid(raw) {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json")
		return nil, false
	}
	return json.RawMessage(raw), true
}

// relayError devuelve al cliente la respuesta de error del servicio de usuarios
// sin tocarla. Si ni siquiera hubo respuesta, 502.
func (g *Gateway) relayError(w http.ResponseWriter, r *http.Request, err error) {
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		if he.Body == "" {
			httpx.WriteMessage(w, he.StatusCode, http.StatusText(he.StatusCode))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(he.StatusCode)
		_, _ = io.WriteString(w, he.Body)
		return
	}

	g.log.Error("identity service unavailable", map[string]any{
		"request_id": chimw.GetReqID(r.Context()),
		"path":       r.URL.Path,
		"err":        err,
	})
	httpx.WriteMessage(w, http.StatusBadGateway, "Identity service unavailable")
}

func (g *Gateway) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	g.log.Error("session save failed", map[string]any{
		"request_id": chimw.GetReqID(r.Context()),
		"err":        err,
	})
	httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
}
