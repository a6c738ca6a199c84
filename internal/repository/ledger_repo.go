package repository

import (
	"context"

	"streamhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository is the append-only ledger of balance changes.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append stores e and fills its ID and CreatedAt.
func (r *LedgerRepository) Append(ctx context.Context, e *domain.WalletEntry) error {
	var gateway *string
	if e.PaymentGateway != "" {
		gateway = &e.PaymentGateway
	}
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO wallet_entries (user_id, kind, r_coin, diamond, is_income, other_user_id, payment_gateway, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, e.UserID, e.Kind, e.RCoin, e.Diamond, e.IsIncome, e.OtherUserID, gateway, e.PurchasedAt,
	).Scan(&e.ID, &e.CreatedAt)
	return translate(err)
}

// ListByUser returns a user's entries newest first with the counterparty name joined in.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletHistoryItem, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT w.id, w.kind, w.r_coin, w.diamond, w.is_income, COALESCE(w.payment_gateway, ''),
		       w.other_user_id, COALESCE(o.name, ''), w.created_at
		FROM wallet_entries w
		LEFT JOIN users o ON o.id = w.other_user_id
		WHERE w.user_id = $1
		ORDER BY w.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.WalletHistoryItem{}
	for rows.Next() {
		var it domain.WalletHistoryItem
		if err := rows.Scan(
			&it.ID, &it.Kind, &it.RCoin, &it.Diamond, &it.IsIncome, &it.PaymentGateway,
			&it.OtherUserID, &it.OtherUserName, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		it.Type = it.Kind.Code()
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *LedgerRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM wallet_entries WHERE user_id = $1`, userID,
	).Scan(&n)
	return n, err
}

// SumByUser folds every entry of a user into signed balance totals.
func (r *LedgerRepository) SumByUser(ctx context.Context, userID int64) (rCoin, diamond int64, err error) {
	err = conn(ctx, r.db).QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN is_income THEN r_coin ELSE -r_coin END), 0),
		       COALESCE(SUM(CASE WHEN is_income THEN diamond ELSE -diamond END), 0)
		FROM wallet_entries
		WHERE user_id = $1
	`, userID).Scan(&rCoin, &diamond)
	return rCoin, diamond, err
}
