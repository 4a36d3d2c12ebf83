package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// login / signup / password reset / payment webhook
	limitStrict = rate.Limit(2)
	burstStrict = 5

	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// trusted internal callers
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

var strictPaths = []string{
	"/api/v1/user/login",
	"/api/v1/user/signup",
	"/api/v1/user/forgot-password",
	"/api/v1/user/reset-password",
	"/api/v1/order/webhook",
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per identity and tier.
type Limiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	internalKey string
	idleTTL     time.Duration
}

func NewLimiter(internalKey string) *Limiter {
	return &Limiter{
		visitors:    make(map[string]*visitor),
		internalKey: internalKey,
		idleTTL:     3 * time.Minute,
	}
}

// Run evicts idle visitors until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if time.Since(v.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *Limiter) get(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r, b)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := l.resolveTier(r)
		key := fmt.Sprintf("%s:%s", identity(r, tier), tier)

		if !l.get(key, limit, burst).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"success":false,"message":"Too many requests"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) resolveTier(r *http.Request) (rate.Limit, int, string) {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	for _, p := range strictPaths {
		if strings.HasPrefix(r.URL.Path, p) {
			return limitStrict, burstStrict, "strict"
		}
	}

	return limitGeneral, burstGeneral, "general"
}

// identity keys the strict tier on the client IP only; the device header is
// client supplied and may be rotated freely.
func identity(r *http.Request, tier string) string {
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" && tier != "strict" {
		return "device:" + deviceID
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
