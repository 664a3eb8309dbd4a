package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	beegocontext "github.com/beego/beego/v2/server/web/context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBeegoCtx(method, target string, headers map[string]string) (*beegocontext.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ctx := beegocontext.NewContext()
	ctx.Reset(rec, req)
	return ctx, rec
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	t.Run("Should block once the window is exhausted", func(t *testing.T) {
		l := NewRateLimiter(client, 2, time.Minute)
		ctx := context.Background()
		assert.True(t, l.Allow(ctx, "p1"))
		assert.True(t, l.Allow(ctx, "p1"))
		assert.False(t, l.Allow(ctx, "p1"))
		assert.True(t, l.Allow(ctx, "p2"))

		mr.FastForward(time.Minute + time.Second)
		assert.True(t, l.Allow(ctx, "p1"))
	})
	t.Run("Should answer 429 on mutations only", func(t *testing.T) {
		l := NewRateLimiter(client, 1, time.Minute)
		headers := map[string]string{"X-Profesional-Id": "p-filter"}

		ctx, rec := newBeegoCtx(http.MethodPost, "/v1/gestion/emplois", headers)
		l.Filter(ctx)
		assert.Equal(t, http.StatusOK, rec.Code)

		ctx, rec = newBeegoCtx(http.MethodGet, "/v1/gestion/emplois", headers)
		l.Filter(ctx)
		assert.Equal(t, http.StatusOK, rec.Code)

		ctx, rec = newBeegoCtx(http.MethodDelete, "/v1/gestion/emplois/1", headers)
		l.Filter(ctx)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})
	t.Run("Should fail open when redis is down", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer broken.Close()
		l := NewRateLimiter(broken, 1, time.Minute)
		assert.True(t, l.Allow(context.Background(), "p1"))
		assert.True(t, l.Allow(context.Background(), "p1"))
	})
	t.Run("Should let everything through without a client", func(t *testing.T) {
		l := NewRateLimiter(nil, 1, time.Minute)
		assert.True(t, l.Allow(context.Background(), "p1"))
	})
}

func TestAuthFilter(t *testing.T) {
	t.Run("Should reject requests without identity", func(t *testing.T) {
		ctx, rec := newBeegoCtx(http.MethodGet, "/v1/gestion/emplois", nil)
		AuthFilter()(ctx)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"Success":false`)
	})
	t.Run("Should accept the dev header", func(t *testing.T) {
		ctx, rec := newBeegoCtx(http.MethodGet, "/v1/gestion/emplois", map[string]string{"X-Profesional-Id": "p1"})
		AuthFilter()(ctx)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestMetrics_Chain(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	handler := m.Chain(func(ctx *beegocontext.Context) {
		ctx.Input.SetData("RouterPattern", "/v1/gestion/:kind")
		ctx.Output.SetStatus(http.StatusCreated)
		_ = ctx.Output.Body([]byte("{}"))
	})

	ctx, _ := newBeegoCtx(http.MethodPost, "/v1/gestion/emplois", nil)
	handler(ctx)

	count := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/v1/gestion/:kind", "201"))
	require.Equal(t, float64(1), count)
}
