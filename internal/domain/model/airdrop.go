package model

import (
	"encoding/json"
	"time"
)

type AirdropStatus string

const (
	AirdropStatusPlanned AirdropStatus = "planned"
	AirdropStatusOngoing AirdropStatus = "ongoing"
	AirdropStatusEnded   AirdropStatus = "ended"
)

func (s AirdropStatus) Valid() bool {
	switch s {
	case AirdropStatusPlanned, AirdropStatusOngoing, AirdropStatusEnded:
		return true
	}
	return false
}

type RewardType string

const (
	RewardTypeToken  RewardType = "token"
	RewardTypeNFT    RewardType = "nft"
	RewardTypePoints RewardType = "points"
)

// Airdrop is one detected airdrop candidate. The idempotency key is the
// natural conflict key: re-detection with the same key updates the row.
type Airdrop struct {
	ID             int64           `db:"id"`
	ProjectID      int64           `db:"project_id"`
	Status         AirdropStatus   `db:"status"`
	RewardType     *RewardType     `db:"reward_type"`
	SnapshotAt     *time.Time      `db:"snapshot_at"`
	DeadlineAt     *time.Time      `db:"deadline_at"`
	TasksJSON      json.RawMessage `db:"tasks_json"`
	ClaimLinksJSON json.RawMessage `db:"claim_links_json"`
	Source         string          `db:"source"`
	SourceRef      string          `db:"source_ref"`
	NewFlag        bool            `db:"new_flag"`
	UpdatedAt      time.Time       `db:"updated_at"`
	IdempotencyKey string          `db:"idempotency_key"`
}
