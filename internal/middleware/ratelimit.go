package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit limita requests por cliente (IP) con token bucket.
// Pensado para la búsqueda de catálogo: el debounce vive en la UI, esto es
// la red de contención del lado servidor.
type RateLimit struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rps      rate.Limit
	burst    int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimit(perMinute int) *RateLimit {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimit{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

func (rl *RateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimit) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now

	// Barrido perezoso de entradas viejas para no crecer sin límite.
	if len(rl.limiters) > 1024 {
		for k, v := range rl.limiters {
			if now.Sub(v.lastSeen) > 10*time.Minute {
				delete(rl.limiters, k)
			}
		}
	}

	return cl.limiter.Allow()
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
