// Package collector runs one collection batch: fetch the source
// snapshot, classify each protocol, persist, and enqueue generation
// jobs for fresh high-confidence candidates.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/lsk7209/coindrop/internal/cache"
	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/ident"
	"github.com/lsk7209/coindrop/internal/metrics"
	"github.com/lsk7209/coindrop/internal/source/defillama"
	"github.com/lsk7209/coindrop/internal/store"
	storeredis "github.com/lsk7209/coindrop/internal/store/redis"
	"github.com/lsk7209/coindrop/internal/tracing"
)

// ErrBatchInProgress is returned when a collection batch is already
// running; batches never overlap.
var ErrBatchInProgress = errors.New("collection batch already in progress")

// Fetcher is the source snapshot client.
type Fetcher interface {
	Fetch(ctx context.Context, prevETag string) (*defillama.Result, error)
}

// Summary reports one batch outcome.
type Summary struct {
	Processed   int           `json:"processed"`
	NewProjects int           `json:"new_projects"`
	NewAirdrops int           `json:"new_airdrops"`
	Errors      int           `json:"errors"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
}

// Collector orchestrates collection batches.
type Collector struct {
	fetcher  Fetcher
	cache    cache.Cache
	projects store.ProjectRepository
	airdrops store.AirdropRepository
	queue    storeredis.Queue
	logger   *slog.Logger
	nowFn    func() time.Time

	running atomic.Bool
}

func New(
	fetcher Fetcher,
	c cache.Cache,
	projects store.ProjectRepository,
	airdrops store.AirdropRepository,
	queue storeredis.Queue,
	logger *slog.Logger,
) *Collector {
	return &Collector{
		fetcher:  fetcher,
		cache:    c,
		projects: projects,
		airdrops: airdrops,
		queue:    queue,
		logger:   logger.With("component", "collector"),
		nowFn:    time.Now,
	}
}

// Run executes one batch. trigger labels the run source ("scheduled" or
// "manual") for metrics. Only one batch runs at a time.
func (c *Collector) Run(ctx context.Context, trigger string) (*Summary, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrBatchInProgress
	}
	defer c.running.Store(false)

	ctx, span := tracing.Tracer("collector").Start(ctx, "collector.batch",
		otelTrace.WithAttributes(
			attribute.String("trigger", trigger),
		),
	)
	defer span.End()

	metrics.CollectorRunsTotal.WithLabelValues(trigger).Inc()
	start := c.nowFn()

	prevETag := c.loadETag(ctx)

	result, err := c.fetcher.Fetch(ctx, prevETag)
	if err != nil {
		metrics.CollectorRunErrors.Inc()
		metrics.SourceFetchesTotal.WithLabelValues("error").Inc()
		err = fmt.Errorf("fetch source: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !result.Changed || len(result.Records) == 0 {
		metrics.SourceFetchesTotal.WithLabelValues("unchanged").Inc()
		metrics.CollectorUnchangedSkips.Inc()
		c.logger.Info("source unchanged, batch skipped", "etag", result.ETag)
		return c.finish(start, &Summary{}), nil
	}
	metrics.SourceFetchesTotal.WithLabelValues("full").Inc()

	if result.ETag != "" {
		if err := c.cache.Set(ctx, cache.ETagKey, []byte(result.ETag), cache.TTLETag); err != nil {
			c.logger.Warn("persist etag failed", "error", err)
		}
	}

	summary := &Summary{Processed: len(result.Records)}
	for i := range result.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.processRecord(ctx, &result.Records[i], summary); err != nil {
			summary.Errors++
			metrics.CollectorRecordErrors.Inc()
			c.logger.Error("record processing failed",
				"protocol_id", result.Records[i].ID,
				"slug", result.Records[i].Slug,
				"error", err,
			)
		}
		metrics.CollectorRecordsProcessed.Inc()
	}

	span.SetAttributes(
		attribute.Int("processed", summary.Processed),
		attribute.Int("new_projects", summary.NewProjects),
		attribute.Int("new_airdrops", summary.NewAirdrops),
		attribute.Int("errors", summary.Errors),
	)
	c.logger.Info("batch complete",
		"processed", summary.Processed,
		"new_projects", summary.NewProjects,
		"new_airdrops", summary.NewAirdrops,
		"errors", summary.Errors,
	)
	return c.finish(start, summary), nil
}

// Running reports whether a batch is currently executing.
func (c *Collector) Running() bool {
	return c.running.Load()
}

func (c *Collector) loadETag(ctx context.Context) string {
	val, ok, err := c.cache.Get(ctx, cache.ETagKey)
	if err != nil {
		c.logger.Warn("load etag failed", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(val)
}

// processRecord classifies and persists one protocol. A failure here
// skips the record only; the batch keeps going.
func (c *Collector) processRecord(ctx context.Context, p *defillama.Protocol, summary *Summary) error {
	chains := model.NormalizeChains(p.Chains)
	score := model.ScoreCandidate(p.Symbol, p.TVL, chains)
	if score.IsCandidate {
		metrics.CollectorCandidatesDetected.Inc()
	}

	slug := ident.Slugify(firstNonEmpty(p.Slug, p.Name))
	twitter := ""
	if p.Twitter != "" {
		twitter = "https://twitter.com/" + p.Twitter
	}

	project := &model.Project{
		ProtocolID:          p.ID,
		Slug:                slug,
		Name:                p.Name,
		Chains:              chains,
		Website:             p.URL,
		Twitter:             twitter,
		TVLUSD:              p.TVL,
		TokenPresent:        !score.IsCandidate,
		TokenlessConfidence: score.Confidence,
		SchemaVersion:       model.CurrentSchemaVersion,
	}

	projectRes, err := c.projects.Upsert(ctx, project)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	if projectRes.Inserted {
		summary.NewProjects++
	}

	// Only action-worthy candidates become airdrop rows and jobs.
	if !score.IsCandidate || score.Confidence < model.DispatchThreshold {
		return nil
	}

	detectedAt := c.nowFn().UTC()
	airdrop := &model.Airdrop{
		ProjectID:      projectRes.ID,
		Status:         model.AirdropStatusPlanned,
		Source:         "defillama",
		SourceRef:      "https://defillama.com/protocol/" + p.Slug,
		IdempotencyKey: ident.IdempotencyKey(p.ID, projectRes.ID, detectedAt.Unix()),
	}

	airdropRes, err := c.airdrops.Upsert(ctx, airdrop)
	if err != nil {
		return fmt.Errorf("upsert airdrop: %w", err)
	}
	if !airdropRes.Inserted {
		// Re-detection of a known drop: row refreshed, no new job.
		return nil
	}
	summary.NewAirdrops++

	msg := model.GenerateMessage{
		AirdropID:   airdropRes.ID,
		ProjectID:   projectRes.ID,
		ProjectSlug: slug,
		Chain:       primaryChain(chains),
		RetryCount:  0,
	}
	if _, err := c.queue.Enqueue(ctx, msg); err != nil {
		// The airdrop row is durable; the job can be replayed later.
		c.logger.Error("enqueue generation job failed",
			"airdrop_id", airdropRes.ID,
			"slug", slug,
			"error", err,
		)
		return nil
	}
	metrics.CollectorJobsEnqueued.Inc()
	return nil
}

func (c *Collector) finish(start time.Time, s *Summary) *Summary {
	s.Duration = c.nowFn().Sub(start)
	s.DurationMS = s.Duration.Milliseconds()
	metrics.CollectorRunLatency.Observe(s.Duration.Seconds())
	return s
}

func primaryChain(chains []model.Chain) model.Chain {
	if len(chains) == 0 {
		return model.DefaultChain
	}
	return chains[0]
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
