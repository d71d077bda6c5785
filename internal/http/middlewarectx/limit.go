package middlewarectx

import (
	"container/list"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/metrics"
)

const (
	limiterIdleTTL = 10 * time.Minute
	// DefaultMaxClients сколько клиентов ограничитель помнит одновременно.
	DefaultMaxClients = 10000
)

type visitor struct {
	key      string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter хранит отдельный token bucket на каждый IP-адрес клиента.
// Клиенты лежат в LRU-списке: давно не приходившие вытесняются первыми,
// размер ограничен maxClients.
type IPRateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*list.Element
	lru        *list.List
	rps        rate.Limit
	burst      int
	maxClients int
	now        func() time.Time
}

// LimiterOption настраивает IPRateLimiter.
type LimiterOption func(*IPRateLimiter)

// WithMaxClients задаёт предел числа отслеживаемых клиентов.
func WithMaxClients(n int) LimiterOption {
	return func(l *IPRateLimiter) { l.maxClients = max(n, 1) }
}

// WithLimiterClock подменяет источник времени.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *IPRateLimiter) { l.now = now }
}

// NewIPRateLimiter создаёт ограничитель rps запросов в секунду с запасом burst на клиента.
func NewIPRateLimiter(rps float64, burst int, opts ...LimiterOption) *IPRateLimiter {
	l := &IPRateLimiter{
		visitors:   make(map[string]*list.Element),
		lru:        list.New(),
		rps:        rate.Limit(rps),
		burst:      max(burst, 1),
		maxClients: DefaultMaxClients,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow сообщает, можно ли пропустить запрос клиента key.
func (l *IPRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.expire(now)

	var v *visitor
	if el, ok := l.visitors[key]; ok {
		v = el.Value.(*visitor)
		l.lru.MoveToFront(el)
	} else {
		if l.lru.Len() >= l.maxClients {
			l.remove(l.lru.Back())
		}
		v = &visitor{key: key, limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = l.lru.PushFront(v)
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Len возвращает число отслеживаемых клиентов.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lru.Len()
}

// expire убирает с хвоста клиентов, не приходивших дольше limiterIdleTTL.
func (l *IPRateLimiter) expire(now time.Time) {
	for el := l.lru.Back(); el != nil; el = l.lru.Back() {
		if now.Sub(el.Value.(*visitor).lastSeen) <= limiterIdleTTL {
			return
		}
		l.remove(el)
	}
}

func (l *IPRateLimiter) remove(el *list.Element) {
	v := l.lru.Remove(el).(*visitor)
	delete(l.visitors, v.key)
}

// clientIP берёт адрес из сокета. Заголовки прокси учитываются, только если
// перед роутером подключён middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware ограничивает частоту запросов с одного IP. m может быть nil.
func RateLimitMiddleware(log *slog.Logger, limiter *IPRateLimiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				log.Warn("too many requests", slog.String("ip", ip), slog.String("path", r.URL.Path))
				m.ObserveLogin(metrics.LoginRateLimited)
				w.Header().Set("Retry-After", "1")
				response.WriteErrorMessage(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
