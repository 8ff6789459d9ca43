package middleware

import (
	"net/http"
	"sync"

	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"

	"golang.org/x/time/rate"
)

// maxTrackedClients evita que el mapa crezca sin límite con IPs de una sola vez.
const maxTrackedClients = 10000

// RateLimiter limita por IP del cliente (después de RealIP). Se usa en login.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	log      logger.Logger
}

func NewRateLimiter(perSecond float64, burst int, log logger.Logger) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		log:      log,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxTrackedClients {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ClientIP(r)
		if !rl.limiter(key).Allow() {
			rl.log.Warn("rate limit exceeded", map[string]any{
				"client": key,
				"path":   r.URL.Path,
			})
			httpx.WriteMessage(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
