package domain

import "time"

// EntryKind discriminates wallet ledger entries.
type EntryKind string

const (
	EntryLoginBonus      EntryKind = "login_bonus"
	EntryReferralBonus   EntryKind = "referral_bonus"
	EntryAdminAdjustment EntryKind = "admin_adjustment"
	EntryRecharge        EntryKind = "recharge"
)

// Code returns the numeric type code older clients still branch on.
func (k EntryKind) Code() int {
	switch k {
	case EntryLoginBonus:
		return 5
	case EntryReferralBonus:
		return 6
	case EntryAdminAdjustment:
		return 8
	default:
		return 0
	}
}

func (k EntryKind) Valid() bool {
	switch k {
	case EntryLoginBonus, EntryReferralBonus, EntryAdminAdjustment, EntryRecharge:
		return true
	}
	return false
}

// Currency names one of the two balances a user holds.
type Currency string

const (
	CurrencyRCoin   Currency = "r_coin"
	CurrencyDiamond Currency = "diamond"
)

// WalletEntry is one immutable balance change. Build entries with the New*Entry
// constructors so each kind only carries its own fields.
type WalletEntry struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	Kind           EntryKind  `db:"kind" json:"kind"`
	RCoin          int64      `db:"r_coin" json:"r_coin"`
	Diamond        int64      `db:"diamond" json:"diamond"`
	IsIncome       bool       `db:"is_income" json:"is_income"`
	OtherUserID    *int64     `db:"other_user_id" json:"other_user_id,omitempty"`
	PaymentGateway string     `db:"payment_gateway" json:"payment_gateway,omitempty"`
	PurchasedAt    *time.Time `db:"purchased_at" json:"purchased_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Delta returns the signed change this entry applied to each balance.
func (e *WalletEntry) Delta() (rCoin, diamond int64) {
	if e.IsIncome {
		return e.RCoin, e.Diamond
	}
	return -e.RCoin, -e.Diamond
}

func NewLoginBonusEntry(userID, diamond int64) *WalletEntry {
	return &WalletEntry{
		UserID:   userID,
		Kind:     EntryLoginBonus,
		Diamond:  diamond,
		IsIncome: true,
	}
}

// NewReferralBonusEntry credits amount of currency to userID, naming the other party.
func NewReferralBonusEntry(userID, counterpartyID int64, currency Currency, amount int64) *WalletEntry {
	e := &WalletEntry{
		UserID:      userID,
		Kind:        EntryReferralBonus,
		IsIncome:    true,
		OtherUserID: &counterpartyID,
	}
	e.set(currency, amount)
	return e
}

// NewAdminAdjustmentEntry records the absolute difference between the old and new
// balance; income is true when the balance went up.
func NewAdminAdjustmentEntry(userID int64, currency Currency, amount int64, income bool) *WalletEntry {
	e := &WalletEntry{
		UserID:   userID,
		Kind:     EntryAdminAdjustment,
		IsIncome: income,
	}
	e.set(currency, amount)
	return e
}

func NewRechargeEntry(userID, rCoin int64, gateway string, purchasedAt time.Time) *WalletEntry {
	return &WalletEntry{
		UserID:         userID,
		Kind:           EntryRecharge,
		RCoin:          rCoin,
		IsIncome:       true,
		PaymentGateway: gateway,
		PurchasedAt:    &purchasedAt,
	}
}

func (e *WalletEntry) set(currency Currency, amount int64) {
	switch currency {
	case CurrencyRCoin:
		e.RCoin = amount
	case CurrencyDiamond:
		e.Diamond = amount
	}
}

// WalletHistoryItem is a ledger entry enriched for history listings.
type WalletHistoryItem struct {
	ID             int64     `json:"id"`
	Kind           EntryKind `json:"kind"`
	Type           int       `json:"type"`
	RCoin          int64     `json:"r_coin"`
	Diamond        int64     `json:"diamond"`
	IsIncome       bool      `json:"is_income"`
	PaymentGateway string    `json:"payment_gateway,omitempty"`
	OtherUserID    *int64    `json:"other_user_id,omitempty"`
	OtherUserName  string    `json:"other_user_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Date           string    `json:"date"`
}
