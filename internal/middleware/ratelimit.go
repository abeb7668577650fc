package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type RateLimitOptions struct {
	TrustHeaders bool
	Interval     time.Duration
	Burst        int
	CacheSize    int
	TTL          time.Duration
}

// RateLimit limita por IP. Los limiters viven en un LRU con expiración
// para no crecer sin límite con IPs de paso.
func RateLimit(opts RateLimitOptions) func(http.Handler) http.Handler {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}

	cache := expirable.NewLRU[string, *rate.Limiter](opts.CacheSize, nil, opts.TTL)

	// Get + Add bajo el mismo lock: una IP nueva tiene un solo limiter.
	var mu sync.Mutex

	getLimiter := func(remoteAddr string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		limiter, exists := cache.Get(remoteAddr)
		if !exists {
			limiter = rate.NewLimiter(rate.Every(opts.Interval), opts.Burst)
			cache.Add(remoteAddr, limiter)
		}
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := getLimiter(remoteAddr(r, opts.TrustHeaders))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(opts.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

			next.ServeHTTP(w, r)
		})
	}
}

func remoteAddr(r *http.Request, trustHeaders bool) string {
	if trustHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			return strings.TrimSpace(ips[0])
		}
		if xri := r.Header.Get("X-Real-Ip"); xri != "" {
			return xri
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
