package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
)

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

type statusRecorder struct {
	h  http.ResponseWriter
	st int
	n  int
}

func (w *statusRecorder) Header() http.Header { return w.h.Header() }
func (w *statusRecorder) WriteHeader(code int) {
	w.st = code
	w.h.WriteHeader(code)
}
func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.h.Write(b)
	w.n += n
	return n, err
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{h: w, st: 200}
		next.ServeHTTP(sr, r)
		lat := time.Since(start)
		obs.Logger.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.st,
			"bytes", sr.n,
			"latency_ms", float64(lat.Microseconds())/1000.0,
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}

// WithContentLanguage stamps every response with the active document language.
func WithContentLanguage(lang func() string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l := lang(); l != "" {
			w.Header().Set("Content-Language", l)
		}
		next.ServeHTTP(w, r)
	})
}

// ipLimiter hands out one token bucket per client address. Buckets unused
// for longer than idle are dropped, at most once per idle period.
type ipLimiter struct {
	limit     rate.Limit
	burst     int
	idle      time.Duration
	limiters  sync.Map
	lastSweep atomic.Int64
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64
}

func newIPLimiter(perSecond float64, burst int, idle time.Duration) *ipLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	l := &ipLimiter{limit: rate.Limit(perSecond), burst: burst, idle: idle}
	l.lastSweep.Store(time.Now().UnixNano())
	return l
}

func (l *ipLimiter) allow(ip string) bool {
	return l.allowAt(ip, time.Now())
}

func (l *ipLimiter) allowAt(ip string, now time.Time) bool {
	l.maybeSweep(now)
	v, ok := l.limiters.Load(ip)
	if !ok {
		v, _ = l.limiters.LoadOrStore(ip, &clientBucket{lim: rate.NewLimiter(l.limit, l.burst)})
	}
	b := v.(*clientBucket)
	b.lastSeen.Store(now.UnixNano())
	return b.lim.AllowN(now, 1)
}

func (l *ipLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idle) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	l.sweep(now)
}

// sweep drops buckets idle since before now minus idle.
func (l *ipLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idle).UnixNano()
	dropped := 0
	l.limiters.Range(func(k, v any) bool {
		if v.(*clientBucket).lastSeen.Load() < cutoff {
			l.limiters.Delete(k)
			dropped++
		}
		return true
	})
	if dropped > 0 {
		obs.Logger.Debug("rate_limiter_swept", "dropped", dropped)
	}
}

func (l *ipLimiter) size() int {
	n := 0
	l.limiters.Range(func(any, any) bool { n++; return true })
	return n
}

// clientIP returns the peer address. Forwarding headers are honored only when
// trustProxy is set, since any client can send them.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
