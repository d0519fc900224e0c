// Package redis provides the generation job queue on Redis Streams,
// with a sorted-set holding area for delayed retries.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lsk7209/coindrop/internal/domain/model"
)

const payloadField = "payload"

// reclaimMinIdle is how long a delivered-but-unacked message may sit in
// the pending list before PromoteDue hands it back out. Long enough for
// a full generation attempt, short enough that a crashed worker's jobs
// resurface within a few promote ticks.
const reclaimMinIdle = 5 * time.Minute

// Message is one dequeued generation job. ID must be passed back to Ack
// once the job reaches a terminal outcome. Raw is set instead of Payload
// when the stream entry could not be decoded; such messages must be
// dead-lettered, never silently dropped.
type Message struct {
	ID      string
	Payload model.GenerateMessage
	Raw     []byte
}

// Queue is the generation job transport. Delayed entries become visible
// to Dequeue only after PromoteDue moves them onto the stream.
type Queue interface {
	Enqueue(ctx context.Context, msg model.GenerateMessage) (string, error)
	EnqueueDelayed(ctx context.Context, msg model.GenerateMessage, notBefore time.Time) error
	PromoteDue(ctx context.Context, now time.Time) (int, error)
	Dequeue(ctx context.Context, consumer string, block time.Duration) (*Message, error)
	Ack(ctx context.Context, id string) error
	Depth(ctx context.Context) (int64, error)
}

// StreamQueue implements Queue on a Redis stream plus consumer group.
type StreamQueue struct {
	client *redis.Client
	stream string
	group  string
}

// NewClient connects to Redis and verifies the connection.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// NewStreamQueue creates the consumer group if it does not exist yet.
// The client is caller-owned.
func NewStreamQueue(ctx context.Context, client *redis.Client, stream, group string) (*StreamQueue, error) {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	return &StreamQueue{client: client, stream: stream, group: group}, nil
}

func (q *StreamQueue) delayedKey() string {
	return q.stream + ":delayed"
}

func (q *StreamQueue) Enqueue(ctx context.Context, msg model.GenerateMessage) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{payloadField: string(data)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}
	return id, nil
}

// EnqueueDelayed parks the message in the delay set until notBefore.
func (q *StreamQueue) EnqueueDelayed(ctx context.Context, msg model.GenerateMessage, notBefore time.Time) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = q.client.ZAdd(ctx, q.delayedKey(), redis.Z{
		Score:  float64(notBefore.UnixMilli()),
		Member: string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("zadd delayed: %w", err)
	}
	return nil
}

// PromoteDue moves entries whose not-before has passed onto the stream
// and reclaims messages stuck in the pending list past reclaimMinIdle
// (crashed worker, shutdown mid-job, failed retry scheduling). Returns
// the number of entries made visible again.
func (q *StreamQueue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	reclaimed, err := q.reclaimStale(ctx)
	if err != nil {
		return 0, err
	}
	due, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return reclaimed, fmt.Errorf("zrangebyscore delayed: %w", err)
	}

	promoted := reclaimed
	for _, member := range due {
		// ZRem first so a concurrent promoter cannot double-deliver.
		removed, err := q.client.ZRem(ctx, q.delayedKey(), member).Result()
		if err != nil {
			return promoted, fmt.Errorf("zrem delayed: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := q.client.XAdd(ctx, &redis.XAddArgs{
			Stream: q.stream,
			Values: map[string]any{payloadField: member},
		}).Err(); err != nil {
			return promoted, fmt.Errorf("xadd promoted: %w", err)
		}
		promoted++
	}
	return promoted, nil
}

// reclaimStale claims pending entries idle past reclaimMinIdle and puts
// a copy back at the tail of the stream, acking the stale delivery. The
// retry count travels in the payload, so redelivery preserves it.
func (q *StreamQueue) reclaimStale(ctx context.Context) (int, error) {
	claimed, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: "reclaimer",
		MinIdle:  reclaimMinIdle,
		Start:    "0-0",
		Count:    64,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("xautoclaim: %w", err)
	}

	reclaimed := 0
	for _, entry := range claimed {
		values := entry.Values
		if len(values) == 0 {
			values = map[string]any{payloadField: ""}
		}
		if err := q.client.XAdd(ctx, &redis.XAddArgs{
			Stream: q.stream,
			Values: values,
		}).Err(); err != nil {
			return reclaimed, fmt.Errorf("xadd reclaimed: %w", err)
		}
		if err := q.client.XAck(ctx, q.stream, q.group, entry.ID).Err(); err != nil {
			return reclaimed, fmt.Errorf("xack reclaimed %s: %w", entry.ID, err)
		}
		reclaimed++
	}
	return reclaimed, nil
}

// Dequeue blocks up to the given duration for the next message. Returns
// (nil, nil) when the block window elapses with nothing to read.
func (q *StreamQueue) Dequeue(ctx context.Context, consumer string, block time.Duration) (*Message, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	for _, s := range streams {
		for _, entry := range s.Messages {
			msg := &Message{ID: entry.ID}
			raw, _ := entry.Values[payloadField].(string)
			if err := json.Unmarshal([]byte(raw), &msg.Payload); err != nil {
				// Undecodable entry: hand it to the consumer with the
				// raw bytes so it dead-letters rather than vanishes.
				msg.Payload = model.GenerateMessage{}
				msg.Raw = []byte(raw)
			}
			return msg, nil
		}
	}
	return nil, nil
}

func (q *StreamQueue) Ack(ctx context.Context, id string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, id).Err(); err != nil {
		return fmt.Errorf("xack %s: %w", id, err)
	}
	return nil
}

// Depth reports stream length plus parked delayed entries.
func (q *StreamQueue) Depth(ctx context.Context) (int64, error) {
	n, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("xlen: %w", err)
	}
	d, err := q.client.ZCard(ctx, q.delayedKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard delayed: %w", err)
	}
	return n + d, nil
}
