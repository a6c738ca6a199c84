package domain

import "time"

// Setting holds the platform-wide economy toggles. There is exactly one row.
type Setting struct {
	LoginBonus    int64     `db:"login_bonus" json:"login_bonus"`
	ReferralBonus int64     `db:"referral_bonus" json:"referral_bonus"`
	IsFake        bool      `db:"is_fake" json:"is_fake"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
