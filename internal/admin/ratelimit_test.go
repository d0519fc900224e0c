package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, method, path, ip string) int {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_CollectIsBurstOne(t *testing.T) {
	rl := NewRateLimitMiddleware(testLogger())
	defer rl.Stop()
	h := rl.Wrap(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, "/admin/collect", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, http.MethodPost, "/admin/collect", "10.0.0.1"))
}

func TestRateLimit_PerIPIsolation(t *testing.T) {
	rl := NewRateLimitMiddleware(testLogger())
	defer rl.Stop()
	h := rl.Wrap(okHandler())

	require.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, "/admin/collect", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, "/admin/collect", "10.0.0.2"),
		"a second client must not inherit the first client's budget")
}

func TestRateLimit_ReplayAllowsBurst(t *testing.T) {
	rl := NewRateLimitMiddleware(testLogger())
	defer rl.Stop()
	h := rl.Wrap(okHandler())

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, "/admin/dead-letters/replay", "10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, http.MethodPost, "/admin/dead-letters/replay", "10.0.0.1"))
}

func TestRateLimit_XForwardedForWins(t *testing.T) {
	rl := NewRateLimitMiddleware(testLogger())
	defer rl.Stop()
	h := rl.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/admin/collect", nil)
	req.RemoteAddr = "10.0.0.9:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same forwarded client, different proxy hop: still one budget.
	req2 := httptest.NewRequest(http.MethodPost, "/admin/collect", nil)
	req2.RemoteAddr = "10.0.0.8:54321"
	req2.Header.Set("X-Forwarded-For", "203.0.113.5")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestRateLimit_StaleLimitersEvicted(t *testing.T) {
	rl := NewRateLimitMiddleware(testLogger())
	defer rl.Stop()
	h := rl.Wrap(okHandler())

	now := time.Now()
	rl.nowFunc = func() time.Time { return now }
	doRequest(h, http.MethodGet, "/admin/stats", "10.0.0.1")
	require.Equal(t, 1, rl.LimiterCount())

	rl.nowFunc = func() time.Time { return now.Add(staleLimiterTTL + time.Minute) }
	rl.evictStale()
	assert.Zero(t, rl.LimiterCount())
}
