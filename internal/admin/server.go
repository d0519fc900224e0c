// Package admin is the operational HTTP surface: manual batch trigger,
// aggregate stats, health, and dead-letter replay. Every mutating route
// sits behind a bearer token, rate limiting, and an audit log.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lsk7209/coindrop/internal/blob"
	"github.com/lsk7209/coindrop/internal/cache"
	"github.com/lsk7209/coindrop/internal/collector"
	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/store"
	storeredis "github.com/lsk7209/coindrop/internal/store/redis"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// BatchRunner triggers collection batches. Satisfied by
// *collector.Collector; tests provide a stub.
type BatchRunner interface {
	Run(ctx context.Context, trigger string) (*collector.Summary, error)
	Running() bool
}

// Server provides the admin API.
type Server struct {
	runner BatchRunner
	stats  store.StatsRepository
	cache  cache.Cache
	queue  storeredis.Queue
	blobs  blob.Store
	token  string
	logger *slog.Logger
}

func NewServer(
	runner BatchRunner,
	stats store.StatsRepository,
	c cache.Cache,
	queue storeredis.Queue,
	blobs blob.Store,
	token string,
	logger *slog.Logger,
) *Server {
	return &Server{
		runner: runner,
		stats:  stats,
		cache:  c,
		queue:  queue,
		blobs:  blobs,
		token:  token,
		logger: logger.With("component", "admin"),
	}
}

// Handler returns the HTTP handler for the admin API, with auth, rate
// limiting, and audit logging applied to the /admin routes. rl may be
// nil to skip rate limiting.
func (s *Server) Handler(rl *RateLimitMiddleware) http.Handler {
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST /admin/collect", s.handleCollect)
	adminMux.HandleFunc("GET /admin/stats", s.handleStats)
	adminMux.HandleFunc("POST /admin/dead-letters/replay", s.handleReplayDeadLetter)

	var admin http.Handler = adminMux
	admin = s.requireBearer(admin)
	if rl != nil {
		admin = rl.Wrap(admin)
	}
	admin = AuditMiddleware(s.logger, admin)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("/admin/", admin)
	return mux
}

// requireBearer rejects requests whose Authorization header does not
// carry the configured token.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		got, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			s.logger.Warn("unauthorized admin request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	summary, err := s.runner.Run(r.Context(), "manual")
	if err != nil {
		if errors.Is(err, collector.ErrBatchInProgress) {
			http.Error(w, `{"error":"collection batch already in progress"}`, http.StatusConflict)
			return
		}
		s.logger.Error("manual collection batch failed", "error", err)
		http.Error(w, `{"error":"collection batch failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleStats serves the aggregate counters, cache-first with a
// fall-through to the store.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, found, err := s.cache.Get(ctx, cache.StatsKey); err == nil && found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	stats, err := s.stats.GetStats(ctx)
	if err != nil {
		s.logger.Error("load stats failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if err := s.cache.Set(ctx, cache.StatsKey, payload, cache.TTLStats); err != nil {
		s.logger.Warn("cache stats failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

type replayRequest struct {
	MessageID string `json:"message_id"`
}

type replayResponse struct {
	MessageID    string `json:"message_id"`
	NewMessageID string `json:"new_message_id"`
}

// handleReplayDeadLetter re-enqueues a dead-lettered job with its retry
// budget reset. The blob stays in place as the audit record.
func (s *Server) handleReplayDeadLetter(w http.ResponseWriter, r *http.Request) {
	var req replayRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.MessageID == "" {
		http.Error(w, `{"error":"message_id is required"}`, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	key, err := s.findDeadLetterKey(ctx, req.MessageID)
	if err != nil {
		s.logger.Error("list dead letters failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if key == "" {
		http.Error(w, `{"error":"dead letter not found"}`, http.StatusNotFound)
		return
	}

	raw, err := s.blobs.Get(ctx, key)
	if err != nil {
		s.logger.Error("load dead letter failed", "key", key, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	var record model.DeadLetter
	if err := json.Unmarshal(raw, &record); err != nil {
		http.Error(w, `{"error":"dead letter record is corrupt"}`, http.StatusUnprocessableEntity)
		return
	}
	var msg model.GenerateMessage
	if err := json.Unmarshal(record.Payload, &msg); err != nil {
		http.Error(w, `{"error":"dead letter payload is corrupt"}`, http.StatusUnprocessableEntity)
		return
	}
	msg.RetryCount = 0
	if err := msg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, "dead letter payload invalid: "+err.Error()), http.StatusUnprocessableEntity)
		return
	}

	newID, err := s.queue.Enqueue(ctx, msg)
	if err != nil {
		s.logger.Error("replay enqueue failed", "key", key, "error", err)
		http.Error(w, `{"error":"enqueue failed"}`, http.StatusInternalServerError)
		return
	}

	s.logger.Info("dead letter replayed", "message_id", req.MessageID, "new_message_id", newID, "key", key)
	writeJSON(w, http.StatusOK, replayResponse{MessageID: req.MessageID, NewMessageID: newID})
}

// findDeadLetterKey scans the dead-letter prefix for the key carrying
// the given message id. Keys are "{unixMillis}-{messageID}.json".
func (s *Server) findDeadLetterKey(ctx context.Context, messageID string) (string, error) {
	keys, err := s.blobs.List(ctx, blob.DeadLetterPrefix, 0)
	if err != nil {
		return "", err
	}
	suffix := "-" + messageID + ".json"
	for _, key := range keys {
		if strings.HasSuffix(key, suffix) {
			return key, nil
		}
	}
	return "", nil
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSONBody reads and decodes a JSON request body into v.
// Returns false (and writes an error response) if decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return false
	}
	return true
}
