package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/game-station/internal/config"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisCacheHitAndMiss(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}

	calls := 0
	e := echo.New()
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/reports/summary?range=today", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/reports/summary")
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		return rec
	}

	first := do()
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}

	second := do()
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1 (second served from cache)", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestRedisCacheSkipsNonConfiguredMethods(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"}

	calls := 0
	e := echo.New()
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/devices", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/devices")
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2 (POST is never cached)", calls)
	}
}

func TestTokenBucketBlocksWhenExhausted(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour, // no refill within the test
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}

	e := echo.New()
	h := NewTokenBucket(cfg, rdb)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/devices", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/devices")
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	blocked := do()
	if blocked.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", blocked.Code)
	}
	if blocked.Header().Get("Retry-After") == "" {
		t.Errorf("blocked response missing Retry-After header")
	}
}

func TestMiddlewarePassthroughWithoutRedis(t *testing.T) {
	e := echo.New()
	calls := 0
	next := func(c echo.Context) error { calls++; return c.String(http.StatusOK, "ok") }

	for _, h := range []echo.HandlerFunc{
		NewRedisCache(config.CacheConfig{Enabled: true}, nil)(next),
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)(next),
	} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		if err := h(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}
