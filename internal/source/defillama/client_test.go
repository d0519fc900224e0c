package defillama

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestFetch_FullResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("If-None-Match"))
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[
			{"id":"1","name":"Uniswap","slug":"uniswap","chains":["Ethereum","Arbitrum"],"url":"https://uniswap.org","twitter":"Uniswap","tvl":4200000000,"symbol":"UNI"},
			{"id":"2","name":"NewDex","slug":"newdex","chains":["Base"],"tvl":12000000,"symbol":"-"}
		]`))
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second, 0, testLogger())
	res, err := client.Fetch(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, `"abc123"`, res.ETag)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "uniswap", res.Records[0].Slug)
	assert.Equal(t, []string{"Ethereum", "Arbitrum"}, res.Records[0].Chains)
	assert.Equal(t, float64(12000000), res.Records[1].TVL)
	assert.Equal(t, "-", res.Records[1].Symbol)
}

func TestFetch_NotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"abc123"`, r.Header.Get("If-None-Match"))
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second, 0, testLogger())
	res, err := client.Fetch(context.Background(), `"abc123"`)
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Empty(t, res.Records)
	assert.Equal(t, `"abc123"`, res.ETag)
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second, 0, testLogger())
	_, err := client.Fetch(context.Background(), "")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.Status)
	assert.Contains(t, fetchErr.Body, "upstream unavailable")
}

func TestFetch_ErrorBodyExcerptBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second, 0, testLogger())
	_, err := client.Fetch(context.Background(), "")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Len(t, fetchErr.Body, bodyExcerptLimit)
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second, 0, testLogger())
	_, err := client.Fetch(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
