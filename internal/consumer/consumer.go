// Package consumer drains the generation queue: each job turns one
// detected airdrop into a published Korean guide. Jobs either complete,
// get re-enqueued with backoff, or end up as dead-letter blobs; the
// stream is never left with an unacknowledged message past the retry
// bound.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lsk7209/coindrop/internal/alert"
	"github.com/lsk7209/coindrop/internal/blob"
	"github.com/lsk7209/coindrop/internal/cache"
	"github.com/lsk7209/coindrop/internal/circuitbreaker"
	"github.com/lsk7209/coindrop/internal/content"
	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/engine"
	"github.com/lsk7209/coindrop/internal/ident"
	"github.com/lsk7209/coindrop/internal/metrics"
	"github.com/lsk7209/coindrop/internal/retry"
	"github.com/lsk7209/coindrop/internal/store"
	storeredis "github.com/lsk7209/coindrop/internal/store/redis"
	"github.com/lsk7209/coindrop/internal/tracing"
	"github.com/lsk7209/coindrop/internal/webhook"
)

const (
	defaultWorkers         = 2
	defaultGenerateTimeout = 60 * time.Second
	defaultPromoteInterval = 15 * time.Second

	dequeueBlock = 5 * time.Second
)

// Options configures a Consumer. Zero values fall back to defaults.
type Options struct {
	Workers         int
	GenerateTimeout time.Duration
	PromoteInterval time.Duration
	// BaseURL is the public site root embedded in artifacts.
	BaseURL string
}

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.GenerateTimeout <= 0 {
		o.GenerateTimeout = defaultGenerateTimeout
	}
	if o.PromoteInterval <= 0 {
		o.PromoteInterval = defaultPromoteInterval
	}
}

// Consumer processes generation jobs from the queue.
type Consumer struct {
	opts     Options
	queue    storeredis.Queue
	engine   engine.Engine
	breaker  *circuitbreaker.Breaker
	projects store.ProjectRepository
	airdrops store.AirdropRepository
	contents store.ContentRepository
	blobs    blob.Store
	cache    cache.Cache
	notifier *webhook.Notifier
	alerter  alert.Alerter
	logger   *slog.Logger
	nowFn    func() time.Time
}

func New(
	opts Options,
	queue storeredis.Queue,
	eng engine.Engine,
	breaker *circuitbreaker.Breaker,
	projects store.ProjectRepository,
	airdrops store.AirdropRepository,
	contents store.ContentRepository,
	blobs blob.Store,
	c cache.Cache,
	notifier *webhook.Notifier,
	alerter alert.Alerter,
	logger *slog.Logger,
) *Consumer {
	opts.applyDefaults()
	return &Consumer{
		opts:     opts,
		queue:    queue,
		engine:   eng,
		breaker:  breaker,
		projects: projects,
		airdrops: airdrops,
		contents: contents,
		blobs:    blobs,
		cache:    c,
		notifier: notifier,
		alerter:  alerter,
		logger:   logger.With("component", "consumer"),
		nowFn:    time.Now,
	}
}

// Run blocks until ctx is cancelled, driving the worker pool and the
// delayed-message promoter.
func (c *Consumer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.promoteLoop(ctx) })

	for i := 0; i < c.opts.Workers; i++ {
		name := fmt.Sprintf("worker-%d-%s", i, uuid.NewString()[:8])
		g.Go(func() error { return c.workerLoop(ctx, name) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// promoteLoop moves due delayed messages back onto the stream and keeps
// the queue depth gauge fresh.
func (c *Consumer) promoteLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.PromoteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		promoted, err := c.queue.PromoteDue(ctx, c.nowFn())
		if err != nil {
			c.logger.Warn("promote delayed messages failed", "error", err)
			continue
		}
		if promoted > 0 {
			c.logger.Info("promoted delayed messages", "count", promoted)
		}
		if depth, err := c.queue.Depth(ctx); err == nil {
			metrics.QueueDepth.Set(float64(depth))
		}
	}
}

func (c *Consumer) workerLoop(ctx context.Context, name string) error {
	logger := c.logger.With("worker", name)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := c.queue.Dequeue(ctx, name, dequeueBlock)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("dequeue failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if msg == nil {
			continue
		}

		c.process(ctx, logger, msg)
	}
}

// process runs one job end to end and always disposes of the message:
// ack on success, delayed re-enqueue on transient failure, dead-letter
// on permanent failure or retry exhaustion.
func (c *Consumer) process(ctx context.Context, logger *slog.Logger, msg *storeredis.Message) {
	ctx, span := tracing.Tracer("consumer").Start(ctx, "consumer.processJob",
		otelTrace.WithAttributes(
			attribute.String("message_id", msg.ID),
			attribute.Int64("airdrop_id", msg.Payload.AirdropID),
			attribute.String("project_slug", msg.Payload.ProjectSlug),
			attribute.Int("retry_count", msg.Payload.RetryCount),
		),
	)
	defer span.End()

	start := c.nowFn()
	logger = logger.With(
		"message_id", msg.ID,
		"airdrop_id", msg.Payload.AirdropID,
		"project_slug", msg.Payload.ProjectSlug,
		"retry_count", msg.Payload.RetryCount,
	)

	err := c.handle(ctx, logger, msg)
	metrics.ConsumerJobLatency.Observe(c.nowFn().Sub(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	switch {
	case err == nil:
		if ackErr := c.queue.Ack(ctx, msg.ID); ackErr != nil {
			logger.Error("ack failed after publish", "error", ackErr)
		}
		metrics.ConsumerJobsProcessed.WithLabelValues("success").Inc()
		logger.Info("job published", "duration_ms", c.nowFn().Sub(start).Milliseconds())

	case ctx.Err() != nil:
		// Shutdown mid-job: leave the message pending so another
		// consumer picks it up after redelivery.
		logger.Warn("job interrupted by shutdown", "error", err)

	case retry.Classify(err).IsTransient() && msg.Payload.RetryCount < retry.MaxRetries:
		c.scheduleRetry(ctx, logger, msg, err)

	default:
		c.deadLetter(ctx, logger, msg, err)
	}
}

func (c *Consumer) scheduleRetry(ctx context.Context, logger *slog.Logger, msg *storeredis.Message, cause error) {
	delay, ok := retry.Delay(msg.Payload.RetryCount + 1)
	if !ok {
		c.deadLetter(ctx, logger, msg, cause)
		return
	}

	next := msg.Payload
	next.RetryCount++
	if err := c.queue.EnqueueDelayed(ctx, next, c.nowFn().Add(delay)); err != nil {
		// Re-enqueue failed; keep the original pending for redelivery
		// rather than losing the job.
		logger.Error("schedule retry failed, leaving message pending", "error", err, "cause", cause)
		return
	}
	if err := c.queue.Ack(ctx, msg.ID); err != nil {
		logger.Error("ack failed after retry scheduling", "error", err)
	}

	metrics.ConsumerRetriesTotal.Inc()
	metrics.ConsumerJobsProcessed.WithLabelValues("retry").Inc()
	logger.Warn("job scheduled for retry", "error", cause, "delay", delay, "next_retry_count", next.RetryCount)
}

func (c *Consumer) deadLetter(ctx context.Context, logger *slog.Logger, msg *storeredis.Message, cause error) {
	now := c.nowFn().UTC()

	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		payload = []byte("{}")
	}
	if msg.Raw != nil {
		// Preserve the undecodable bytes for forensics. They may not be
		// valid JSON, so quote them into a string field.
		if quoted, qErr := json.Marshal(string(msg.Raw)); qErr == nil {
			payload = quoted
		}
	}
	record, err := json.Marshal(model.DeadLetter{
		MessageID: msg.ID,
		Payload:   payload,
		Error:     cause.Error(),
		Timestamp: now,
	})
	if err != nil {
		logger.Error("marshal dead letter failed", "error", err, "cause", cause)
		return
	}

	key := blob.DeadLetterKey(now, msg.ID)
	if err := c.blobs.Put(ctx, key, record, "application/json"); err != nil {
		// Without a durable record we must not ack: the job would
		// vanish. Leave it pending and let redelivery try again.
		logger.Error("persist dead letter failed, leaving message pending", "error", err, "cause", cause)
		return
	}
	if err := c.queue.Ack(ctx, msg.ID); err != nil {
		logger.Error("ack failed after dead-letter", "error", err)
	}

	metrics.ConsumerDeadLettersTotal.Inc()
	metrics.ConsumerJobsProcessed.WithLabelValues("dead_letter").Inc()
	logger.Error("job dead-lettered", "error", cause, "dead_letter_key", key)

	if c.alerter != nil {
		alertErr := c.alerter.Send(ctx, alert.Alert{
			Type:      alert.AlertTypeDeadLetter,
			Component: "consumer",
			Subject:   msg.Payload.ProjectSlug,
			Title:     "Generation job dead-lettered",
			Message:   cause.Error(),
			Fields: map[string]string{
				"message_id":      msg.ID,
				"dead_letter_key": key,
				"project_slug":    msg.Payload.ProjectSlug,
				"retry_count":     fmt.Sprintf("%d", msg.Payload.RetryCount),
			},
		})
		if alertErr != nil {
			logger.Warn("dead-letter alert failed", "error", alertErr)
		}
	}
}

// handle is the happy path: validate, load, generate, lint, score,
// publish. Any returned error is classified by the caller.
func (c *Consumer) handle(ctx context.Context, logger *slog.Logger, msg *storeredis.Message) error {
	if msg.Raw != nil {
		return retry.Permanent(fmt.Errorf("undecodable message payload: %.128s", msg.Raw))
	}
	if err := msg.Payload.Validate(); err != nil {
		return retry.Permanent(fmt.Errorf("invalid message: %w", err))
	}

	airdrop, err := c.airdrops.FindByID(ctx, msg.Payload.AirdropID)
	if err != nil {
		return fmt.Errorf("load airdrop %d: %w", msg.Payload.AirdropID, err)
	}
	if airdrop == nil {
		return retry.Permanent(fmt.Errorf("airdrop %d not found", msg.Payload.AirdropID))
	}

	project, err := c.projects.FindByID(ctx, msg.Payload.ProjectID)
	if err != nil {
		return fmt.Errorf("load project %d: %w", msg.Payload.ProjectID, err)
	}
	if project == nil {
		return retry.Permanent(fmt.Errorf("project %d not found", msg.Payload.ProjectID))
	}

	gen, err := c.generate(ctx, project, airdrop)
	if err != nil {
		return err
	}

	findings := content.Lint(gen)
	scores := content.ComputeScores(gen, findings)
	for _, f := range findings {
		logger.Warn("lint finding", "type", f.Type, "severity", f.Severity, "detail", f.Message)
	}

	chain := string(msg.Payload.Chain)
	now := c.nowFn().UTC()

	artifact := content.BuildArtifact(project, airdrop, gen, c.opts.BaseURL, now)
	artifactJSON, err := json.Marshal(artifact)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal artifact: %w", err))
	}
	artifactKey := blob.ArtifactKey(chain, project.Slug)
	if err := c.blobs.Put(ctx, artifactKey, artifactJSON, "application/json"); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	row, err := c.buildContentRow(msg.Payload.AirdropID, project.Slug, chain, artifactKey, gen, scores, findings)
	if err != nil {
		return retry.Permanent(err)
	}
	res, err := c.contents.Upsert(ctx, row)
	if err != nil {
		return fmt.Errorf("upsert content: %w", err)
	}

	c.invalidateCaches(ctx, logger, chain, project.Slug)
	c.notify(ctx, logger, res.ID, row.Slug, project.Slug, msg.Payload.Chain, gen.Title)
	return nil
}

func (c *Consumer) generate(ctx context.Context, project *model.Project, airdrop *model.Airdrop) (*engine.Generated, error) {
	req := engine.GenerateRequest{
		ProjectName: project.Name,
		ProjectSlug: project.Slug,
		Chains:      project.Chains,
		TVLUSD:      project.TVLUSD,
		Website:     project.Website,
		SourceRef:   airdrop.SourceRef,
		Status:      airdrop.Status,
	}

	var gen *engine.Generated
	start := c.nowFn()
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		genCtx, cancel := context.WithTimeout(ctx, c.opts.GenerateTimeout)
		defer cancel()

		g, genErr := c.engine.Generate(genCtx, req)
		if genErr != nil {
			if errors.Is(genErr, context.DeadlineExceeded) {
				return retry.Transient(fmt.Errorf("generation timed out after %s", c.opts.GenerateTimeout))
			}
			return genErr
		}
		gen = g
		return nil
	})
	metrics.EngineCallLatency.Observe(c.nowFn().Sub(start).Seconds())
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("generate: %w", err)
	}
	metrics.EngineCallsTotal.WithLabelValues("ok").Inc()
	return gen, nil
}

func (c *Consumer) buildContentRow(
	airdropID int64,
	projectSlug, chain, artifactKey string,
	gen *engine.Generated,
	scores content.QualityScores,
	findings []content.LintFinding,
) (*model.Content, error) {
	hashtagsJSON, err := json.Marshal(gen.Hashtags)
	if err != nil {
		return nil, fmt.Errorf("marshal hashtags: %w", err)
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("marshal quality scores: %w", err)
	}
	var lintJSON json.RawMessage
	if len(findings) > 0 {
		lintJSON, err = json.Marshal(findings)
		if err != nil {
			return nil, fmt.Errorf("marshal lint findings: %w", err)
		}
	}

	return &model.Content{
		AirdropID:         airdropID,
		Slug:              ident.ContentSlug(projectSlug, chain),
		Title:             gen.Title,
		Summary:           gen.Summary,
		HashtagsJSON:      hashtagsJSON,
		QualityScoresJSON: scoresJSON,
		LintErrorsJSON:    lintJSON,
		ArtifactKey:       artifactKey,
		SchemaVersion:     model.CurrentSchemaVersion,
	}, nil
}

// invalidateCaches clears the detail, list, and stats projections after
// a publish. Failures only narrow freshness, never correctness, so they
// are logged and swallowed.
func (c *Consumer) invalidateCaches(ctx context.Context, logger *slog.Logger, chain, slug string) {
	if err := c.cache.Delete(ctx, cache.DetailKey(chain, slug)); err != nil {
		logger.Warn("invalidate detail cache failed", "error", err)
	}
	if _, err := c.cache.DeleteByPrefix(ctx, cache.ListPrefix, 0); err != nil {
		logger.Warn("invalidate list cache failed", "error", err)
	}
	if err := c.cache.Delete(ctx, cache.StatsKey); err != nil {
		logger.Warn("invalidate stats cache failed", "error", err)
	}
	metrics.CacheInvalidations.Inc()
}

func (c *Consumer) notify(ctx context.Context, logger *slog.Logger, contentID int64, contentSlug, projectSlug string, chain model.Chain, title string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Revalidate(ctx, webhook.GuidePath(chain, projectSlug)); err != nil {
		logger.Warn("revalidation webhook failed", "error", err)
	}
	if err := c.notifier.NotifyPublished(ctx, contentID, contentSlug, projectSlug, chain, title); err != nil {
		logger.Warn("publish webhook failed", "error", err)
	}
}
