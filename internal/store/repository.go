//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/lsk7209/coindrop/internal/store ProjectRepository,AirdropRepository,ContentRepository,StatsRepository

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lsk7209/coindrop/internal/domain/model"
)

// TxBeginner abstracts the ability to begin a database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ProjectUpsertResult describes the outcome of a project upsert.
type ProjectUpsertResult struct {
	ID       int64
	Inserted bool // First insertion of this protocol ID.
}

// ProjectRepository provides access to project data.
type ProjectRepository interface {
	Upsert(ctx context.Context, p *model.Project) (ProjectUpsertResult, error)
	FindByID(ctx context.Context, id int64) (*model.Project, error)
	FindByProtocolID(ctx context.Context, protocolID string) (*model.Project, error)
	FindBySlug(ctx context.Context, slug string) (*model.Project, error)
}

// AirdropUpsertResult describes the outcome of an airdrop upsert.
type AirdropUpsertResult struct {
	ID       int64
	Inserted bool // First insertion of this idempotency key.
}

// AirdropRepository provides access to airdrop data.
type AirdropRepository interface {
	Upsert(ctx context.Context, a *model.Airdrop) (AirdropUpsertResult, error)
	FindByID(ctx context.Context, id int64) (*model.Airdrop, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Airdrop, error)
	ClearNewFlagsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ContentUpsertResult describes the outcome of a content upsert.
type ContentUpsertResult struct {
	ID       int64
	Inserted bool // First insertion of this airdrop's content.
}

// ContentRepository provides access to generated content data.
type ContentRepository interface {
	Upsert(ctx context.Context, c *model.Content) (ContentUpsertResult, error)
	FindByAirdropID(ctx context.Context, airdropID int64) (*model.Content, error)
	FindBySlug(ctx context.Context, slug string) (*model.Content, error)
}

// Stats is the aggregate counters surface exposed on the admin API.
type Stats struct {
	Projects   int64 `json:"projects"`
	Airdrops   int64 `json:"airdrops"`
	Ongoing    int64 `json:"ongoing"`
	Planned    int64 `json:"planned"`
	Ended      int64 `json:"ended"`
	NewFlagged int64 `json:"new_flagged"`
	Contents   int64 `json:"contents"`
}

// StatsRepository reads aggregate counters across the pipeline tables.
type StatsRepository interface {
	GetStats(ctx context.Context) (*Stats, error)
}
