package middleware

import (
	"net/http"
	"time"

	"petpal/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLog loguea una línea por request con la ruta de chi y el status.
func RequestLog(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			fields := map[string]any{
				"request_id":  chimw.GetReqID(r.Context()),
				"method":      r.Method,
				"route":       route,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if p, ok := GetPrincipal(r.Context()); ok {
				fields["user_id"] = p.UserID
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("request", fields)
			case r.URL.Path == "/health" || r.URL.Path == "/metrics":
				log.Debug("request", fields)
			default:
				log.Info("request", fields)
			}
		})
	}
}
