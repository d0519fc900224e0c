package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsk7209/coindrop/internal/blob"
	"github.com/lsk7209/coindrop/internal/cache"
	"github.com/lsk7209/coindrop/internal/collector"
	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/store"
	storeredis "github.com/lsk7209/coindrop/internal/store/redis"
)

const testToken = "secret-token"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRunner struct {
	summary *collector.Summary
	err     error
	calls   int
}

func (s *stubRunner) Run(context.Context, string) (*collector.Summary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func (s *stubRunner) Running() bool { return false }

type stubStats struct {
	stats *store.Stats
	err   error
	calls int
}

func (s *stubStats) GetStats(context.Context) (*store.Stats, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

type env struct {
	server *Server
	runner *stubRunner
	stats  *stubStats
	cache  cache.Cache
	queue  *storeredis.InMemoryQueue
	blobs  *blob.MemoryStore
	http   http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		runner: &stubRunner{summary: &collector.Summary{Processed: 10, NewProjects: 4, NewAirdrops: 2, DurationMS: 1500}},
		stats:  &stubStats{stats: &store.Stats{Projects: 100, Airdrops: 20, Contents: 15}},
		cache:  cache.NewMemory(16),
		queue:  storeredis.NewInMemoryQueue(),
		blobs:  blob.NewMemoryStore(),
	}
	e.server = NewServer(e.runner, e.stats, e.cache, e.queue, e.blobs, testToken, testLogger())
	e.http = e.server.Handler(nil)
	return e
}

func (e *env) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.http.ServeHTTP(rec, req)
	return rec
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	e := newEnv(t)
	rec := e.request(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCollect_RequiresBearerToken(t *testing.T) {
	e := newEnv(t)

	rec := e.request(t, http.MethodPost, "/admin/collect", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.request(t, http.MethodPost, "/admin/collect", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, e.runner.calls)
}

func TestCollect_RunsBatch(t *testing.T) {
	e := newEnv(t)

	rec := e.request(t, http.MethodPost, "/admin/collect", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary collector.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 10, summary.Processed)
	assert.Equal(t, 2, summary.NewAirdrops)
	assert.Equal(t, int64(1500), summary.DurationMS)
	assert.Equal(t, 1, e.runner.calls)
}

func TestCollect_ConflictWhenBatchRunning(t *testing.T) {
	e := newEnv(t)
	e.runner.err = collector.ErrBatchInProgress

	rec := e.request(t, http.MethodPost, "/admin/collect", testToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCollect_InternalErrorOnBatchFailure(t *testing.T) {
	e := newEnv(t)
	e.runner.err = errors.New("source unreachable")

	rec := e.request(t, http.MethodPost, "/admin/collect", testToken, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStats_CacheFallThroughAndPopulate(t *testing.T) {
	e := newEnv(t)

	rec := e.request(t, http.MethodGet, "/admin/stats", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.stats.calls)

	var stats store.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(100), stats.Projects)

	// Second read is served from cache, without touching the store.
	rec = e.request(t, http.MethodGet, "/admin/stats", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.stats.calls)
}

func TestStats_CachedPayloadServedVerbatim(t *testing.T) {
	e := newEnv(t)
	cachedBody := `{"projects":7,"airdrops":3,"ongoing":0,"planned":3,"ended":0,"new_flagged":1,"contents":2}`
	require.NoError(t, e.cache.Set(context.Background(), cache.StatsKey, []byte(cachedBody), cache.TTLStats))

	rec := e.request(t, http.MethodGet, "/admin/stats", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, cachedBody, rec.Body.String())
	assert.Zero(t, e.stats.calls)
}

func seedDeadLetter(t *testing.T, blobs *blob.MemoryStore, messageID string, msg model.GenerateMessage) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	record, err := json.Marshal(model.DeadLetter{
		MessageID: messageID,
		Payload:   payload,
		Error:     "model overloaded",
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	key := blob.DeadLetterKey(time.Now(), messageID)
	require.NoError(t, blobs.Put(context.Background(), key, record, "application/json"))
}

func TestReplayDeadLetter_ReenqueuesWithResetRetryCount(t *testing.T) {
	e := newEnv(t)
	seedDeadLetter(t, e.blobs, "1693000000-0", model.GenerateMessage{
		AirdropID:   42,
		ProjectID:   7,
		ProjectSlug: "newdex",
		Chain:       model.ChainEthereum,
		RetryCount:  3,
	})

	rec := e.request(t, http.MethodPost, "/admin/dead-letters/replay", testToken, replayRequest{MessageID: "1693000000-0"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp replayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1693000000-0", resp.MessageID)
	assert.NotEmpty(t, resp.NewMessageID)

	msg, err := e.queue.Dequeue(context.Background(), "test", 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, int64(42), msg.Payload.AirdropID)
	assert.Zero(t, msg.Payload.RetryCount, "replay resets the retry budget")
}

func TestReplayDeadLetter_NotFound(t *testing.T) {
	e := newEnv(t)
	rec := e.request(t, http.MethodPost, "/admin/dead-letters/replay", testToken, replayRequest{MessageID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplayDeadLetter_RejectsEmptyMessageID(t *testing.T) {
	e := newEnv(t)
	rec := e.request(t, http.MethodPost, "/admin/dead-letters/replay", testToken, replayRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplayDeadLetter_CorruptPayload(t *testing.T) {
	e := newEnv(t)
	key := blob.DeadLetterKey(time.Now(), "bad-record")
	require.NoError(t, e.blobs.Put(context.Background(), key, []byte("not json"), "application/json"))

	rec := e.request(t, http.MethodPost, "/admin/dead-letters/replay", testToken, replayRequest{MessageID: "bad-record"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
