package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/store"
)

type ProjectRepo struct {
	db *DB
}

func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Upsert inserts or refreshes a project keyed by its normalized slug, so
// upstream protocols that normalize to the same slug converge on one row.
// (xmax = 0) distinguishes a fresh insert from a conflict update.
func (r *ProjectRepo) Upsert(ctx context.Context, p *model.Project) (store.ProjectUpsertResult, error) {
	chainsJSON, err := p.ChainsJSON()
	if err != nil {
		return store.ProjectUpsertResult{}, fmt.Errorf("marshal chains: %w", err)
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var res store.ProjectUpsertResult
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO projects (
			protocol_id, slug, name, chains_json, website, twitter, discord,
			tvl_usd, token_present, tokenless_confidence, schema_version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (slug) DO UPDATE SET
			protocol_id = EXCLUDED.protocol_id,
			name = EXCLUDED.name,
			chains_json = EXCLUDED.chains_json,
			website = EXCLUDED.website,
			twitter = EXCLUDED.twitter,
			discord = EXCLUDED.discord,
			tvl_usd = EXCLUDED.tvl_usd,
			token_present = EXCLUDED.token_present,
			tokenless_confidence = EXCLUDED.tokenless_confidence,
			schema_version = EXCLUDED.schema_version,
			updated_at = now()
		RETURNING id, (xmax = 0)
	`,
		p.ProtocolID, p.Slug, p.Name, chainsJSON, p.Website, p.Twitter, p.Discord,
		p.TVLUSD, p.TokenPresent, p.TokenlessConfidence, p.SchemaVersion,
	).Scan(&res.ID, &res.Inserted)
	if err != nil {
		return store.ProjectUpsertResult{}, fmt.Errorf("upsert project: %w", err)
	}
	return res, nil
}

func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*model.Project, error) {
	return r.findOne(ctx, "id", id)
}

func (r *ProjectRepo) FindByProtocolID(ctx context.Context, protocolID string) (*model.Project, error) {
	return r.findOne(ctx, "protocol_id", protocolID)
}

func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *ProjectRepo) findOne(ctx context.Context, column string, value any) (*model.Project, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var (
		p          model.Project
		chainsJSON []byte
	)
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, protocol_id, slug, name, chains_json, website, twitter, discord,
		       tvl_usd, token_present, tokenless_confidence, created_at, updated_at, schema_version
		FROM projects
		WHERE %s = $1
	`, column), value).Scan(
		&p.ID, &p.ProtocolID, &p.Slug, &p.Name, &chainsJSON,
		&p.Website, &p.Twitter, &p.Discord,
		&p.TVLUSD, &p.TokenPresent, &p.TokenlessConfidence,
		&p.CreatedAt, &p.UpdatedAt, &p.SchemaVersion,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by %s: %w", column, err)
	}

	if len(chainsJSON) > 0 {
		if err := json.Unmarshal(chainsJSON, &p.Chains); err != nil {
			return nil, fmt.Errorf("unmarshal project chains: %w", err)
		}
	}
	return &p, nil
}
