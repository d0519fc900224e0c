package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/store"
)

type AirdropRepo struct {
	db *DB
}

func NewAirdropRepo(db *DB) *AirdropRepo {
	return &AirdropRepo{db: db}
}

const airdropColumns = `
	id, project_id, status, reward_type, snapshot_at, deadline_at,
	tasks_json, claim_links_json, source, source_ref, new_flag, updated_at, idempotency_key`

// Upsert inserts or refreshes an airdrop keyed by its idempotency key.
// new_flag is re-raised only when the conflicting row's status actually
// changed, so a no-op re-detection never resurfaces an already-seen drop.
func (r *AirdropRepo) Upsert(ctx context.Context, a *model.Airdrop) (store.AirdropUpsertResult, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var res store.AirdropUpsertResult
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO airdrops (
			project_id, status, reward_type, snapshot_at, deadline_at,
			tasks_json, claim_links_json, source, source_ref, new_flag, idempotency_key
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, $10)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			status = EXCLUDED.status,
			reward_type = EXCLUDED.reward_type,
			snapshot_at = EXCLUDED.snapshot_at,
			deadline_at = EXCLUDED.deadline_at,
			tasks_json = EXCLUDED.tasks_json,
			claim_links_json = EXCLUDED.claim_links_json,
			source = EXCLUDED.source,
			source_ref = EXCLUDED.source_ref,
			new_flag = CASE
				WHEN airdrops.status != EXCLUDED.status THEN true
				ELSE airdrops.new_flag
			END,
			updated_at = now()
		RETURNING id, (xmax = 0)
	`,
		a.ProjectID, a.Status, a.RewardType, a.SnapshotAt, a.DeadlineAt,
		nullableJSON(a.TasksJSON), nullableJSON(a.ClaimLinksJSON),
		a.Source, a.SourceRef, a.IdempotencyKey,
	).Scan(&res.ID, &res.Inserted)
	if err != nil {
		return store.AirdropUpsertResult{}, fmt.Errorf("upsert airdrop: %w", err)
	}
	return res, nil
}

func (r *AirdropRepo) FindByID(ctx context.Context, id int64) (*model.Airdrop, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *AirdropRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Airdrop, error) {
	return r.findOne(ctx, "idempotency_key = $1", key)
}

func (r *AirdropRepo) findOne(ctx context.Context, where string, arg any) (*model.Airdrop, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var a model.Airdrop
	err := r.db.QueryRowContext(ctx,
		`SELECT `+airdropColumns+` FROM airdrops WHERE `+where, arg,
	).Scan(
		&a.ID, &a.ProjectID, &a.Status, &a.RewardType, &a.SnapshotAt, &a.DeadlineAt,
		&a.TasksJSON, &a.ClaimLinksJSON, &a.Source, &a.SourceRef,
		&a.NewFlag, &a.UpdatedAt, &a.IdempotencyKey,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find airdrop: %w", err)
	}
	return &a, nil
}

// ClearNewFlagsBefore lowers new_flag on rows untouched since cutoff.
func (r *AirdropRepo) ClearNewFlagsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `
		UPDATE airdrops SET new_flag = false
		WHERE new_flag = true AND updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear new flags: %w", err)
	}
	return result.RowsAffected()
}

// nullableJSON maps an empty RawMessage to SQL NULL so jsonb columns
// never receive the invalid empty string.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
