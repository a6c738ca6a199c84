package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/repository"
)

// RechargeGateway is the payment gateway recorded on admin recharges.
const RechargeGateway = "recharge to user"

type StatsStore interface {
	Get(ctx context.Context, now time.Time) (*domain.Stats, error)
}

// AdminService provides admin operations
type AdminService struct {
	tx       TxRunner
	users    UserStore
	balance  *BalanceService
	plans    *PlanService
	levels   *LevelService
	settings *SettingsService
	stats    StatsStore
	audit    *AuditService
}

// NewAdminService creates a new admin service
func NewAdminService(tx TxRunner, users UserStore, balance *BalanceService, plans *PlanService, levels *LevelService,
	settings *SettingsService, stats StatsStore, audit *AuditService) *AdminService {
	return &AdminService{
		tx:       tx,
		users:    users,
		balance:  balance,
		plans:    plans,
		levels:   levels,
		settings: settings,
		stats:    stats,
		audit:    audit,
	}
}

// AdjustRequest holds absolute target balances; nil fields are left alone.
type AdjustRequest struct {
	RCoin   *int64 `json:"r_coin"`
	Diamond *int64 `json:"diamond"`
}

// AdjustBalance moves each supplied balance to its target value. A field already at
// its target writes nothing; every other field gets one admin_adjustment entry
// carrying |target - current| and the direction.
func (s *AdminService) AdjustBalance(ctx context.Context, userID int64, req AdjustRequest) (*domain.User, error) {
	var entries []*domain.WalletEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if req.RCoin != nil && *req.RCoin != u.RCoin {
			entries = append(entries, adjustmentEntry(u.ID, domain.CurrencyRCoin, u.RCoin, *req.RCoin))
		}
		if req.Diamond != nil && *req.Diamond != u.Diamond {
			entries = append(entries, adjustmentEntry(u.ID, domain.CurrencyDiamond, u.Diamond, *req.Diamond))
		}
		for _, e := range entries {
			if _, err := s.balance.Apply(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		rc, dm := e.Delta()
		s.audit.LogAdminAction(ctx, domain.AuditActionAdminAdjust, userID, map[string]interface{}{
			"entry_id": e.ID,
			"r_coin":   rc,
			"diamond":  dm,
		})
	}
	return s.users.GetByID(ctx, userID)
}

func adjustmentEntry(userID int64, c domain.Currency, current, target int64) *domain.WalletEntry {
	amount := target - current
	if amount < 0 {
		amount = -amount
	}
	return domain.NewAdminAdjustmentEntry(userID, c, amount, target > current)
}

// Recharge credits a positive r_coin amount as a purchase.
func (s *AdminService) Recharge(ctx context.Context, userID, rCoin int64) (*domain.User, error) {
	if rCoin <= 0 {
		return nil, invalidInput("rCoin must be positive")
	}
	e := domain.NewRechargeEntry(userID, rCoin, RechargeGateway, time.Now())
	if _, err := s.balance.Apply(ctx, e); err != nil {
		return nil, err
	}
	s.audit.LogAdminAction(ctx, domain.AuditActionAdminRecharge, userID, map[string]interface{}{
		"entry_id": e.ID,
		"r_coin":   rCoin,
	})
	return s.users.GetByID(ctx, userID)
}

// ToggleBlock flips the user's block flag.
func (s *AdminService) ToggleBlock(ctx context.Context, userID int64) (*domain.User, error) {
	blocked, err := s.users.ToggleBlock(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.audit.LogAdminAction(ctx, domain.AuditActionAdminBlock, userID, map[string]interface{}{"blocked": blocked})
	return s.users.GetByID(ctx, userID)
}

// GrantVIP starts a plan for the user now.
func (s *AdminService) GrantVIP(ctx context.Context, userID, planID int64) (*domain.User, error) {
	u, err := s.plans.Grant(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	s.audit.LogAdminAction(ctx, domain.AuditActionAdminGrantVIP, userID, map[string]interface{}{"plan_id": planID})
	return u, nil
}

type FakeUserInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	Image    string `json:"image"`
	Country  string `json:"country"`
	Bio      string `json:"bio"`
}

// CreateFakeUser adds a synthetic profile used to fill the match pool.
func (s *AdminService) CreateFakeUser(ctx context.Context, in FakeUserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if in.Username == "" || in.Name == "" {
		return nil, ErrInvalidDetails
	}
	if taken, err := s.users.UsernameTaken(ctx, in.Username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	code, err := newReferralCode(ctx, s.users)
	if err != nil {
		return nil, err
	}
	lvl, err := s.levels.Resolve(ctx, 0)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		UniqueID:     newUniqueID(),
		Name:         in.Name,
		Username:     in.Username,
		Gender:       strings.ToLower(strings.TrimSpace(in.Gender)),
		Age:          in.Age,
		Image:        in.Image,
		Country:      strings.TrimSpace(in.Country),
		Bio:          in.Bio,
		LoginType:    domain.LoginTypeQuick,
		ReferralCode: code,
		IsFake:       true,
	}
	if lvl != nil {
		u.LevelID = &lvl.ID
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, mapDuplicate(err)
	}

	s.audit.LogAdminAction(ctx, domain.AuditActionAdminCreateFake, u.ID, map[string]interface{}{"username": u.Username})
	return s.users.GetByID(ctx, u.ID)
}

func (s *AdminService) Settings(ctx context.Context) (*domain.Setting, error) {
	return s.settings.Settings(ctx)
}

func (s *AdminService) UpdateSettings(ctx context.Context, st *domain.Setting) (*domain.Setting, error) {
	if err := s.settings.Update(ctx, st); err != nil {
		return nil, err
	}
	logger.Info("settings updated", "login_bonus", st.LoginBonus, "referral_bonus", st.ReferralBonus, "is_fake", st.IsFake)
	s.audit.LogAdminAction(ctx, domain.AuditActionAdminSettings, 0, map[string]interface{}{
		"login_bonus":    st.LoginBonus,
		"referral_bonus": st.ReferralBonus,
		"is_fake":        st.IsFake,
	})
	return st, nil
}

func (s *AdminService) Levels(ctx context.Context) ([]domain.Level, error) {
	return s.levels.List(ctx)
}

func (s *AdminService) CreateLevel(ctx context.Context, name string, coin int64, image string) (*domain.Level, error) {
	l, err := s.levels.Create(ctx, name, coin, image)
	if err != nil {
		return nil, err
	}
	s.audit.LogAdminAction(ctx, domain.AuditActionAdminCreateLevel, 0, map[string]interface{}{"level_id": l.ID, "coin": l.Coin})
	return l, nil
}

func (s *AdminService) Plans(ctx context.Context) ([]domain.VIPPlan, error) {
	return s.plans.List(ctx)
}

func (s *AdminService) CreatePlan(ctx context.Context, name string, validity int, validityType string, priceCoin int64) (*domain.VIPPlan, error) {
	p, err := s.plans.Create(ctx, name, validity, validityType, priceCoin)
	if err != nil {
		return nil, err
	}
	s.audit.LogAdminAction(ctx, domain.AuditActionAdminCreatePlan, 0, map[string]interface{}{"plan_id": p.ID})
	return p, nil
}

// CheckLedger compares a user's balances with their ledger totals.
func (s *AdminService) CheckLedger(ctx context.Context, userID int64) (*LedgerCheck, error) {
	return s.balance.CheckLedger(ctx, userID)
}

// GetStats returns platform statistics
func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	return s.stats.Get(ctx, time.Now())
}

// AuditLogs returns a user's audit trail, or the most recent entries when userID is 0.
func (s *AdminService) AuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if userID == 0 {
		return s.audit.GetRecentLogs(ctx, limit)
	}
	return s.audit.GetUserAuditLogs(ctx, userID, limit)
}

const (
	DefaultUserListLimit = 10
	userListDateLayout   = "2006-01-02"
	listAll              = "ALL"
)

// UserListInput mirrors the admin list query. "ALL" or an empty value disables the
// search and date filters; Type is "fake" or anything else for real users; Start is
// the 1-based page.
type UserListInput struct {
	Search    string
	Type      string
	StartDate string
	EndDate   string
	Start     int
	Limit     int
}

func parseListDate(v string) (*time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, listAll) {
		return nil, false, nil
	}
	t, err := time.ParseInLocation(userListDateLayout, v, time.UTC)
	if err != nil {
		return nil, false, invalidInput("Invalid date %q, want YYYY-MM-DD!", v)
	}
	return &t, true, nil
}

// ListUsers pages through real or fake users, newest first, with the filter's total,
// online count and per-gender counts.
func (s *AdminService) ListUsers(ctx context.Context, in UserListInput) (*domain.UserList, error) {
	f := domain.UserListFilter{Fake: strings.EqualFold(strings.TrimSpace(in.Type), "fake")}

	if search := strings.TrimSpace(in.Search); !strings.EqualFold(search, listAll) {
		f.Search = search
	}

	from, okFrom, err := parseListDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	to, okTo, err := parseListDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	// both bounds or neither
	if okFrom && okTo {
		end := to.AddDate(0, 0, 1)
		f.From, f.To = from, &end
	}

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultUserListLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	start := in.Start
	if start < 1 {
		start = 1
	}
	if start > MaxHistoryPage {
		start = MaxHistoryPage
	}
	f.Limit, f.Offset = limit, (start-1)*limit

	return s.users.List(ctx, f)
}

// FakeUserUpdate overwrites the non-empty fields of a fake user.
type FakeUserUpdate struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	Image    string `json:"image"`
	Country  string `json:"country"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
}

// UpdateFakeUser edits a synthetic profile. Real users are refused.
func (s *AdminService) UpdateFakeUser(ctx context.Context, userID int64, in FakeUserUpdate) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFakeUserNotFound
		}
		return nil, err
	}
	if !u.IsFake {
		return nil, ErrFakeUserNotFound
	}
	if in.Age < 0 {
		return nil, ErrInvalidDetails
	}

	p := u.Editable()
	if v := strings.TrimSpace(in.Username); v != "" {
		if taken, err := s.users.UsernameTaken(ctx, v, userID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrUsernameTaken
		}
		p.Username = v
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		p.Name = v
	}
	if v := strings.TrimSpace(in.Gender); v != "" {
		p.Gender = strings.ToLower(v)
	}
	if in.Age > 0 {
		p.Age = in.Age
	}
	if in.Image != "" {
		p.Image = in.Image
	}
	if v := strings.TrimSpace(in.Country); v != "" {
		p.Country = v
	}
	if in.Bio != "" {
		p.Bio = in.Bio
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		p.Email = v
	}

	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFakeUserNotFound
		}
		return nil, mapDuplicate(err)
	}

	s.audit.LogAdminAction(ctx, domain.AuditActionAdminUpdateFake, userID, map[string]interface{}{"username": p.Username})
	return s.users.GetByID(ctx, userID)
}
