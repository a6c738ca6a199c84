package repository

import (
	"context"
	"time"

	"streamhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LiveRepository tracks running live sessions and their finished history.
type LiveRepository struct {
	db *pgxpool.Pool
}

func NewLiveRepository(db *pgxpool.Pool) *LiveRepository {
	return &LiveRepository{db: db}
}

// Start opens (or restarts) the live session of a user.
func (r *LiveRepository) Start(ctx context.Context, lu *domain.LiveUser) error {
	return conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO live_users (user_id, channel, token)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET channel = EXCLUDED.channel, token = EXCLUDED.token, started_at = NOW()
		RETURNING id, started_at
	`, lu.UserID, lu.Channel, lu.Token).Scan(&lu.ID, &lu.StartedAt)
}

// End deletes the running session and moves it to history. It returns nil, nil when
// the user was not live.
func (r *LiveRepository) End(ctx context.Context, userID int64, end time.Time) (*domain.LiveStreamingHistory, error) {
	q := conn(ctx, r.db)

	var start time.Time
	err := q.QueryRow(ctx,
		`DELETE FROM live_users WHERE user_id = $1 RETURNING started_at`, userID,
	).Scan(&start)
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	h := &domain.LiveStreamingHistory{
		UserID:          userID,
		StartTime:       start,
		EndTime:         &end,
		DurationSeconds: int64(end.Sub(start).Seconds()),
	}
	err = q.QueryRow(ctx, `
		INSERT INTO live_streaming_history (user_id, duration_seconds, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, h.DurationSeconds, start, end).Scan(&h.ID)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ListHistory returns finished sessions newest first.
func (r *LiveRepository) ListHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.LiveStreamingHistory, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, user_id, duration_seconds, gifts, comments, fans, r_coin, start_time, end_time
		FROM live_streaming_history
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LiveStreamingHistory{}
	for rows.Next() {
		var h domain.LiveStreamingHistory
		if err := rows.Scan(&h.ID, &h.UserID, &h.DurationSeconds, &h.Gifts, &h.Comments, &h.Fans,
			&h.RCoin, &h.StartTime, &h.EndTime); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *LiveRepository) CountHistory(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM live_streaming_history WHERE user_id = $1`, userID,
	).Scan(&n)
	return n, err
}
