package middleware

import (
	"context"
	"net/http"
	"strings"

	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"
	"petpal/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const principalKey ctxKey = "principal"

// RequireAuth corta con 401 si no viene Bearer o si el verifier lo rechaza.
// El motivo del rechazo no se expone al cliente, solo se loguea.
func RequireAuth(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				httpx.WriteMessage(w, http.StatusUnauthorized, "Token is missing")
				return
			}

			p, err := verifier.Verify(r.Context(), token)
			if err != nil || strings.TrimSpace(p.UserID) == "" {
				log.Warn("token verification failed", map[string]any{
					"request_id": chimw.GetReqID(r.Context()),
					"path":       r.URL.Path,
					"err":        err,
				})
				httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			p.Token = token

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// AuthedHandlerFunc es un handler que solo puede correr con un principal ya verificado.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, p auth.Principal)

// Authed adapta un AuthedHandlerFunc a http.HandlerFunc. Si por error de wiring
// la ruta quedó fuera de RequireAuth, responde 401 en vez de correr sin identidad.
func Authed(h AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetPrincipal(r.Context())
		if !ok || strings.TrimSpace(p.UserID) == "" {
			httpx.WriteMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h(w, r, p)
	}
}

func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// BearerToken extrae el token de "Authorization: Bearer <token>".
func BearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
