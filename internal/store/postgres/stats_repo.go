package postgres

import (
	"context"
	"fmt"

	"github.com/lsk7209/coindrop/internal/store"
)

// StatsRepo implements store.StatsRepository using PostgreSQL.
type StatsRepo struct {
	db *DB
}

func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// GetStats returns aggregate counters across the pipeline tables in a
// single round trip.
func (r *StatsRepo) GetStats(ctx context.Context) (*store.Stats, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var s store.Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM projects),
			(SELECT count(*) FROM airdrops),
			(SELECT count(*) FROM airdrops WHERE status = 'ongoing'),
			(SELECT count(*) FROM airdrops WHERE status = 'planned'),
			(SELECT count(*) FROM airdrops WHERE status = 'ended'),
			(SELECT count(*) FROM airdrops WHERE new_flag = true),
			(SELECT count(*) FROM contents)
	`).Scan(&s.Projects, &s.Airdrops, &s.Ongoing, &s.Planned, &s.Ended, &s.NewFlagged, &s.Contents)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &s, nil
}
