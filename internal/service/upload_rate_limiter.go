package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// UploadRateLimiter limita cuantas imagenes puede clasificar un cliente por ventana.
type UploadRateLimiter interface {
	Allow(ctx context.Context, clientKey string) bool
}

type memoryUploadLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryUploadLimiter crea un limitador de ventana deslizante en memoria.
// Devuelve nil si max es cero, lo que desactiva el limite.
func NewMemoryUploadLimiter(window time.Duration, max int) UploadRateLimiter {
	if max <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryUploadLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (l *memoryUploadLimiter) Allow(_ context.Context, clientKey string) bool {
	key := normalizeClientKey(clientKey)
	if key == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now().UTC()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// sweep borra, como mucho una vez por ventana, los clientes sin marcas vigentes.
func (l *memoryUploadLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, entries := range l.hits {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

const redisUploadAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisUploadLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

// NewRedisUploadLimiter comparte el contador entre replicas con una ventana fija.
// Ante errores de Redis deja pasar la solicitud.
func NewRedisUploadLimiter(client *redis.Client, window time.Duration, max int) UploadRateLimiter {
	if client == nil || max <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &redisUploadLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "classify:rl:",
	}
}

func (l *redisUploadLimiter) Allow(ctx context.Context, clientKey string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := normalizeClientKey(clientKey)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisUploadAllowScript, []string{l.prefix + key}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

func normalizeClientKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
