// Package blob is durable object storage for full generation payloads
// and dead-letter records. Keys are deterministic so regeneration
// overwrites in place.
package blob

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blob: object not found")

const (
	artifactKeyFormat   = "contents/airdrop/%s/%s.json"
	deadLetterKeyFormat = "dead-letters/%d-%s.json"

	// DeadLetterPrefix namespaces dead-letter records for listing.
	DeadLetterPrefix = "dead-letters/"
)

// ArtifactKey is the storage key for a generated artifact.
func ArtifactKey(chain, slug string) string {
	return fmt.Sprintf(artifactKeyFormat, chain, slug)
}

// DeadLetterKey is the storage key for a dead-letter record. The
// timestamp prefix keeps listings in rough chronological order.
func DeadLetterKey(ts time.Time, messageID string) string {
	return fmt.Sprintf(deadLetterKeyFormat, ts.UnixMilli(), messageID)
}

// Store is durable object storage.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns up to limit keys sharing prefix, lexicographically
	// ordered. limit <= 0 means no cap.
	List(ctx context.Context, prefix string, limit int) ([]string, error)
	Delete(ctx context.Context, key string) error
}
