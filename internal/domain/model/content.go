package model

import (
	"encoding/json"
	"time"
)

// Content is the published summary row for one generated artifact. The
// full payload lives in blob storage under ArtifactKey; this row carries
// what list/detail reads need without a blob round trip.
type Content struct {
	ID                int64           `db:"id"`
	AirdropID         int64           `db:"airdrop_id"`
	Slug              string          `db:"slug"`
	Title             string          `db:"title"`
	Summary           string          `db:"summary"`
	HashtagsJSON      json.RawMessage `db:"hashtags_json"`
	QualityScoresJSON json.RawMessage `db:"quality_scores_json"`
	LintErrorsJSON    json.RawMessage `db:"lint_errors_json"` // nil when clean
	ArtifactKey       string          `db:"artifact_key"`
	PublishedAt       time.Time       `db:"published_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	SchemaVersion     int             `db:"schema_version"`
}
