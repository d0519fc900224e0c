package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// GenerateMessage is the queue payload dispatched for each newly
// detected candidate. Retry count travels in the message because the
// stream does not track redelivery on its own.
type GenerateMessage struct {
	AirdropID   int64  `json:"airdrop_id"`
	ProjectID   int64  `json:"project_id"`
	ProjectSlug string `json:"project_slug"`
	Chain       Chain  `json:"chain"`
	RetryCount  int    `json:"retry_count"`
}

// Validate reports a structural problem in a decoded message. Messages
// that fail validation are permanent errors, never retried.
func (m *GenerateMessage) Validate() error {
	if m.AirdropID <= 0 {
		return fmt.Errorf("airdrop_id must be positive, got %d", m.AirdropID)
	}
	if m.ProjectID <= 0 {
		return fmt.Errorf("project_id must be positive, got %d", m.ProjectID)
	}
	if m.ProjectSlug == "" {
		return fmt.Errorf("project_slug is empty")
	}
	if m.Chain == "" {
		return fmt.Errorf("chain is empty")
	}
	if m.RetryCount < 0 {
		return fmt.Errorf("retry_count must be non-negative, got %d", m.RetryCount)
	}
	return nil
}

// DeadLetter records a job that exhausted its retry budget, or failed
// permanently. Stored append-only in blob storage for manual replay.
type DeadLetter struct {
	MessageID string          `json:"message_id"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error"`
	Timestamp time.Time       `json:"timestamp"`
}
