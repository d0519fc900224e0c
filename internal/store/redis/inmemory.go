package redis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lsk7209/coindrop/internal/domain/model"
)

// InMemoryQueue implements Queue without a Redis server, for tests and
// single-process development runs.
type InMemoryQueue struct {
	mu      sync.Mutex
	ready   []Message
	delayed []delayedEntry
	pending map[string]pendingEntry
	nextID  int64
	wake    chan struct{}
	nowFunc func() time.Time
}

type delayedEntry struct {
	msg       model.GenerateMessage
	notBefore time.Time
}

type pendingEntry struct {
	msg         Message
	deliveredAt time.Time
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		pending: make(map[string]pendingEntry),
		wake:    make(chan struct{}, 1),
		nowFunc: time.Now,
	}
}

func (q *InMemoryQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *InMemoryQueue) Enqueue(_ context.Context, msg model.GenerateMessage) (string, error) {
	q.mu.Lock()
	q.nextID++
	id := fmt.Sprintf("%d-0", q.nextID)
	q.ready = append(q.ready, Message{ID: id, Payload: msg})
	q.mu.Unlock()
	q.signal()
	return id, nil
}

func (q *InMemoryQueue) EnqueueDelayed(_ context.Context, msg model.GenerateMessage, notBefore time.Time) error {
	q.mu.Lock()
	q.delayed = append(q.delayed, delayedEntry{msg: msg, notBefore: notBefore})
	q.mu.Unlock()
	return nil
}

func (q *InMemoryQueue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	q.mu.Lock()
	var due []delayedEntry
	var remaining []delayedEntry
	for _, e := range q.delayed {
		if !e.notBefore.After(now) {
			due = append(due, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	q.delayed = remaining
	sort.Slice(due, func(i, j int) bool { return due[i].notBefore.Before(due[j].notBefore) })

	// Redeliver messages stuck in the pending set, mirroring the
	// stream queue's stale-claim pass. Idle time is measured on the
	// queue's own clock, like Redis measures it server-side.
	reclaimed := 0
	for id, p := range q.pending {
		if q.nowFunc().Sub(p.deliveredAt) >= reclaimMinIdle {
			delete(q.pending, id)
			q.ready = append(q.ready, p.msg)
			reclaimed++
		}
	}
	q.mu.Unlock()
	if reclaimed > 0 {
		q.signal()
	}

	for _, e := range due {
		if _, err := q.Enqueue(ctx, e.msg); err != nil {
			return reclaimed, err
		}
	}
	return reclaimed + len(due), nil
}

func (q *InMemoryQueue) Dequeue(ctx context.Context, _ string, block time.Duration) (*Message, error) {
	timer := time.NewTimer(block)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.ready) > 0 {
			msg := q.ready[0]
			q.ready = q.ready[1:]
			q.pending[msg.ID] = pendingEntry{msg: msg, deliveredAt: q.nowFunc()}
			q.mu.Unlock()
			return &msg, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case <-q.wake:
		}
	}
}

func (q *InMemoryQueue) Ack(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
	return nil
}

func (q *InMemoryQueue) Depth(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.ready) + len(q.delayed)), nil
}

// PendingCount reports dequeued-but-unacked messages.
func (q *InMemoryQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
