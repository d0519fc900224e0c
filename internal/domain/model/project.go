package model

import (
	"encoding/json"
	"time"
)

// CurrentSchemaVersion tags persisted rows and artifacts so readers can
// detect payloads written by an older deployment.
const CurrentSchemaVersion = 101

// Project is one external protocol, keyed by its slug.
type Project struct {
	ID                  int64     `db:"id"`
	ProtocolID          string    `db:"protocol_id"`
	Slug                string    `db:"slug"`
	Name                string    `db:"name"`
	Chains              []Chain   `db:"-"`
	Website             string    `db:"website"`
	Twitter             string    `db:"twitter"`
	Discord             string    `db:"discord"`
	TVLUSD              float64   `db:"tvl_usd"`
	TokenPresent        bool      `db:"token_present"`
	TokenlessConfidence float64   `db:"tokenless_confidence"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
	SchemaVersion       int       `db:"schema_version"`
}

// ChainsJSON serializes the chain list for the chains_json column.
func (p *Project) ChainsJSON() (json.RawMessage, error) {
	return json.Marshal(p.Chains)
}

// PrimaryChain is the chain a generation job targets: the first
// normalized chain, or the default when the list is empty.
func (p *Project) PrimaryChain() Chain {
	if len(p.Chains) == 0 {
		return DefaultChain
	}
	return p.Chains[0]
}
