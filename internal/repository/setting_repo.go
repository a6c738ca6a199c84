package repository

import (
	"context"

	"streamhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingRepository reads and writes the single global settings row.
type SettingRepository struct {
	db *pgxpool.Pool
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context) (*domain.Setting, error) {
	var s domain.Setting
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT login_bonus, referral_bonus, is_fake, updated_at FROM settings WHERE id = 1`,
	).Scan(&s.LoginBonus, &s.ReferralBonus, &s.IsFake, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Save upserts the row and refreshes s.UpdatedAt.
func (r *SettingRepository) Save(ctx context.Context, s *domain.Setting) error {
	return conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO settings (id, login_bonus, referral_bonus, is_fake, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET login_bonus = EXCLUDED.login_bonus,
		    referral_bonus = EXCLUDED.referral_bonus,
		    is_fake = EXCLUDED.is_fake,
		    updated_at = NOW()
		RETURNING updated_at
	`, s.LoginBonus, s.ReferralBonus, s.IsFake).Scan(&s.UpdatedAt)
}
