package middlewares

import (
	stdctx "context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beego/beego/v2/core/logs"
	"github.com/beego/beego/v2/server/web/context"
	"github.com/redis/go-redis/v9"

	internalhelpers "github.com/udistrital/gestion_ofertas_mid/internal/helpers"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RateLimiter limita mutaciones y exportaciones por profesional con una ventana fija en Redis.
type RateLimiter struct {
	client redis.UniversalClient
	script *redis.Script
	limit  int
	window time.Duration
	prefix string
}

// NewRateLimiter retorna nil si no hay cliente; un limitador nil deja pasar todo.
func NewRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RateLimiter {
	if client == nil {
		return nil
	}
	return &RateLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		limit:  limit,
		window: window,
		prefix: "gestion_mid:rl:",
	}
}

// Allow consume una unidad de la ventana de key. Ante fallas de Redis deja pasar.
func (l *RateLimiter) Allow(ctx stdctx.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || l.limit <= 0 || l.window <= 0 {
		return true
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := stdctx.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, l.limit).Int64()
	if err != nil {
		logs.Warn("rate limit sin redis, se deja pasar:", err)
		return true
	}
	return allowed == 1
}

// Filter aplica el límite a mutaciones y exportaciones de /v1/gestion.
func (l *RateLimiter) Filter(ctx *context.Context) {
	if l == nil || !limited(ctx) {
		return
	}
	id, err := internalhelpers.ProfesionalID(ctx)
	if err != nil {
		return
	}
	if !l.Allow(ctx.Request.Context(), id) {
		ctx.Output.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
		abort(ctx, http.StatusTooManyRequests, "demasiadas solicitudes, intente más tarde")
	}
}

func limited(ctx *context.Context) bool {
	switch ctx.Input.Method() {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	case http.MethodGet:
		return strings.HasSuffix(strings.TrimSuffix(ctx.Input.URL(), "/"), "/exportar")
	}
	return false
}
