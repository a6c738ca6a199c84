package repository

import (
	"context"
	"time"

	"streamhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository aggregates platform-wide numbers for the admin dashboard.
type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Get(ctx context.Context, now time.Time) (*domain.Stats, error) {
	stats := &domain.Stats{}
	today := now.Truncate(24 * time.Hour)
	weekAgo := today.Add(-7 * 24 * time.Hour)

	// Users
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_online),
		       COUNT(*) FILTER (WHERE is_online AND is_busy),
		       COUNT(*) FILTER (WHERE is_fake),
		       COUNT(*) FILTER (WHERE is_vip),
		       COUNT(*) FILTER (WHERE is_block),
		       COALESCE(SUM(r_coin), 0),
		       COALESCE(SUM(diamond), 0)
		FROM users
	`).Scan(&stats.TotalUsers, &stats.OnlineUsers, &stats.BusyUsers, &stats.FakeUsers,
		&stats.VIPUsers, &stats.BlockedUsers, &stats.TotalRCoin, &stats.TotalDiamond)
	if err != nil {
		return nil, err
	}

	// Signups
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE created_at >= $1),
		       COUNT(*) FILTER (WHERE created_at >= $2)
		FROM users
	`, today, weekAgo).Scan(&stats.SignupsToday, &stats.SignupsWeek)
	if err != nil {
		return nil, err
	}

	// Live now
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM live_users`).Scan(&stats.LiveNow); err != nil {
		return nil, err
	}

	// Ledger
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE created_at >= $1),
		       COALESCE(SUM(r_coin) FILTER (WHERE kind = 'recharge'), 0),
		       COALESCE(SUM(r_coin) FILTER (WHERE kind = 'recharge' AND created_at >= $1), 0)
		FROM wallet_entries
	`, today).Scan(&stats.LedgerEntriesToday, &stats.RechargedTotal, &stats.RechargedToday)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
