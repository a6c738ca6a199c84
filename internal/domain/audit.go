package domain

import "time"

// AuditLog tracks admin and account actions that are not balance changes.
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryBalance  = "balance"
	AuditCategoryReferral = "referral"
	AuditCategoryAdmin    = "admin"
	AuditCategoryPresence = "presence"
)

// Audit actions
const (
	// Auth actions
	AuditActionSignup = "signup"
	AuditActionLogin  = "login"

	// Referral actions
	AuditActionReferralRedeem = "referral_redeem"

	// Admin actions
	AuditActionAdminAdjust      = "admin_adjust_balance"
	AuditActionAdminRecharge    = "admin_recharge"
	AuditActionAdminBlock       = "admin_block_toggle"
	AuditActionAdminGrantVIP    = "admin_grant_vip"
	AuditActionAdminSettings    = "admin_update_settings"
	AuditActionAdminCreateFake  = "admin_create_fake_user"
	AuditActionAdminCreateLevel = "admin_create_level"
	AuditActionAdminCreatePlan  = "admin_create_vip_plan"

	// Plan actions
	AuditActionVIPExpired = "vip_expired"
)

const (
	AuditActionQuickLogin      = "quick_login"
	AuditActionProfileUpdate   = "profile_update"
	AuditActionAdminUpdateFake = "admin_update_fake_user"
)
