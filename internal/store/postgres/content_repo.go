package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/store"
)

type ContentRepo struct {
	db *DB
}

func NewContentRepo(db *DB) *ContentRepo {
	return &ContentRepo{db: db}
}

const contentColumns = `
	id, airdrop_id, slug, title, summary, hashtags_json, quality_scores_json,
	lint_errors_json, artifact_key, published_at, updated_at, schema_version`

// Upsert inserts or replaces the content row keyed by slug. Regeneration
// always derives the same slug, so a re-detected airdrop overwrites the
// existing guide (and re-points airdrop_id at the newest detection).
func (r *ContentRepo) Upsert(ctx context.Context, c *model.Content) (store.ContentUpsertResult, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var res store.ContentUpsertResult
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contents (
			airdrop_id, slug, title, summary, hashtags_json, quality_scores_json,
			lint_errors_json, artifact_key, published_at, schema_version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			airdrop_id = EXCLUDED.airdrop_id,
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			hashtags_json = EXCLUDED.hashtags_json,
			quality_scores_json = EXCLUDED.quality_scores_json,
			lint_errors_json = EXCLUDED.lint_errors_json,
			artifact_key = EXCLUDED.artifact_key,
			published_at = EXCLUDED.published_at,
			schema_version = EXCLUDED.schema_version,
			updated_at = now()
		RETURNING id, (xmax = 0)
	`,
		c.AirdropID, c.Slug, c.Title, c.Summary,
		nullableJSON(c.HashtagsJSON), nullableJSON(c.QualityScoresJSON),
		nullableJSON(c.LintErrorsJSON), c.ArtifactKey, c.PublishedAt, c.SchemaVersion,
	).Scan(&res.ID, &res.Inserted)
	if err != nil {
		return store.ContentUpsertResult{}, fmt.Errorf("upsert content: %w", err)
	}
	return res, nil
}

func (r *ContentRepo) FindByAirdropID(ctx context.Context, airdropID int64) (*model.Content, error) {
	return r.findOne(ctx, "airdrop_id = $1", airdropID)
}

func (r *ContentRepo) FindBySlug(ctx context.Context, slug string) (*model.Content, error) {
	return r.findOne(ctx, "slug = $1", slug)
}

func (r *ContentRepo) findOne(ctx context.Context, where string, arg any) (*model.Content, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var c model.Content
	err := r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE `+where, arg,
	).Scan(
		&c.ID, &c.AirdropID, &c.Slug, &c.Title, &c.Summary,
		&c.HashtagsJSON, &c.QualityScoresJSON, &c.LintErrorsJSON,
		&c.ArtifactKey, &c.PublishedAt, &c.UpdatedAt, &c.SchemaVersion,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	return &c, nil
}
