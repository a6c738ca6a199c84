package service

import (
	"context"
	"time"

	"streamhub/internal/domain"
)

// The interfaces below are implemented by the postgres repositories and by the
// in-memory fakes in tests.

// TxRunner runs fn in one transaction; stores called with the ctx passed to fn join it.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.User, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	MobileTaken(ctx context.Context, mobile string) (bool, error)
	ReferralCodeTaken(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, u *domain.User) error
	AddBalances(ctx context.Context, userID, rCoin, diamond int64) (int64, int64, error)
	MarkReferralUsed(ctx context.Context, userID int64) (bool, error)
	IncrementReferralCount(ctx context.Context, userID int64) error
	SetLevel(ctx context.Context, userID int64, levelID *int64) error
	SetPlan(ctx context.Context, userID int64, isVIP bool, planID *int64, start *time.Time) error
	SetPresence(ctx context.Context, userID int64, online, busy bool) error
	SetOffline(ctx context.Context, userID int64) error
	SetLiveChannel(ctx context.Context, userID int64, channel, token string) error
	ToggleBlock(ctx context.Context, userID int64) (bool, error)
	TouchLogin(ctx context.Context, userID int64, fcmToken string) error
	FindMatchCandidates(ctx context.Context, f domain.MatchFilter) ([]domain.User, error)
	FindFakeUsers(ctx context.Context, gender string) ([]domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, p domain.ProfileFields) error
	Search(ctx context.Context, q domain.UserSearch) ([]domain.User, error)
	List(ctx context.Context, f domain.UserListFilter) (*domain.UserList, error)
}

type LedgerStore interface {
	Append(ctx context.Context, e *domain.WalletEntry) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletHistoryItem, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	SumByUser(ctx context.Context, userID int64) (int64, int64, error)
}

type LevelStore interface {
	List(ctx context.Context) ([]domain.Level, error)
	Create(ctx context.Context, l *domain.Level) error
}

type PlanStore interface {
	GetByID(ctx context.Context, id int64) (*domain.VIPPlan, error)
	List(ctx context.Context) ([]domain.VIPPlan, error)
	Create(ctx context.Context, p *domain.VIPPlan) error
}

type SettingStore interface {
	Get(ctx context.Context) (*domain.Setting, error)
	Save(ctx context.Context, s *domain.Setting) error
}

type LiveStore interface {
	Start(ctx context.Context, lu *domain.LiveUser) error
	End(ctx context.Context, userID int64, end time.Time) (*domain.LiveStreamingHistory, error)
	ListHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.LiveStreamingHistory, error)
	CountHistory(ctx context.Context, userID int64) (int64, error)
}

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
	GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}
