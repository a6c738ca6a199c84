package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/repository"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeUsers struct {
	mu     sync.Mutex
	rows   map[int64]*domain.User
	nextID int64

	setLevelCalls int
	setPlanCalls  int
	locks         []int64
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{rows: map[int64]*domain.User{}}
	for _, u := range users {
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) get(id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) find(match func(u *domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) update(id int64, fn func(u *domain.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) { return f.get(id) }

func (f *fakeUsers) GetByIDForUpdate(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	f.locks = append(f.locks, id)
	f.mu.Unlock()
	return f.get(id)
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) GetByMobile(_ context.Context, mobile string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.MobileNumber == mobile })
}

func (f *fakeUsers) GetByReferralCode(_ context.Context, code string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.ReferralCode == code })
}

func (f *fakeUsers) exists(match func(u *domain.User) bool) bool {
	_, err := f.find(match)
	return err == nil
}

func (f *fakeUsers) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	return f.exists(func(u *domain.User) bool {
		return u.ID != excludeID && strings.EqualFold(u.Username, username)
	}), nil
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string) (bool, error) {
	return f.exists(func(u *domain.User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) }), nil
}

func (f *fakeUsers) MobileTaken(_ context.Context, mobile string) (bool, error) {
	return f.exists(func(u *domain.User) bool { return u.MobileNumber != "" && u.MobileNumber == mobile }), nil
}

func (f *fakeUsers) ReferralCodeTaken(_ context.Context, code string) (bool, error) {
	return f.exists(func(u *domain.User) bool { return u.ReferralCode == code }), nil
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) AddBalances(_ context.Context, userID, rCoin, diamond int64) (int64, int64, error) {
	var rc, dm int64
	err := f.update(userID, func(u *domain.User) {
		u.RCoin += rCoin
		u.Diamond += diamond
		u.UpdatedAt = time.Now()
		rc, dm = u.RCoin, u.Diamond
	})
	return rc, dm, err
}

func (f *fakeUsers) MarkReferralUsed(_ context.Context, userID int64) (bool, error) {
	flipped := false
	err := f.update(userID, func(u *domain.User) {
		if !u.IsReferral {
			u.IsReferral = true
			flipped = true
		}
	})
	return flipped, err
}

func (f *fakeUsers) IncrementReferralCount(_ context.Context, userID int64) error {
	return f.update(userID, func(u *domain.User) { u.ReferralCount++ })
}

func (f *fakeUsers) SetLevel(_ context.Context, userID int64, levelID *int64) error {
	f.setLevelCalls++
	return f.update(userID, func(u *domain.User) { u.LevelID = levelID })
}

func (f *fakeUsers) SetPlan(_ context.Context, userID int64, isVIP bool, planID *int64, start *time.Time) error {
	f.setPlanCalls++
	return f.update(userID, func(u *domain.User) {
		u.IsVIP = isVIP
		u.Plan = domain.UserPlan{PlanID: planID, StartDate: start}
	})
}

func (f *fakeUsers) SetPresence(_ context.Context, userID int64, online, busy bool) error {
	return f.update(userID, func(u *domain.User) { u.IsOnline, u.IsBusy = online, busy })
}

func (f *fakeUsers) SetOffline(_ context.Context, userID int64) error {
	return f.update(userID, func(u *domain.User) {
		u.IsOnline, u.IsBusy = false, false
		u.Token, u.Channel = nil, nil
	})
}

func (f *fakeUsers) SetLiveChannel(_ context.Context, userID int64, channel, token string) error {
	return f.update(userID, func(u *domain.User) { u.Channel, u.Token = &channel, &token })
}

func (f *fakeUsers) ToggleBlock(_ context.Context, userID int64) (bool, error) {
	var blocked bool
	err := f.update(userID, func(u *domain.User) {
		u.IsBlock = !u.IsBlock
		blocked = u.IsBlock
	})
	return blocked, err
}

func (f *fakeUsers) TouchLogin(_ context.Context, userID int64, _ string) error {
	return f.update(userID, func(u *domain.User) {
		now := time.Now()
		u.LastLoginAt = &now
	})
}

func (f *fakeUsers) filter(match func(u *domain.User) bool) []domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.rows {
		if match(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeUsers) FindMatchCandidates(_ context.Context, mf domain.MatchFilter) ([]domain.User, error) {
	return f.filter(func(u *domain.User) bool {
		return u.ID != mf.ExcludeUserID && u.IsOnline && !u.IsBusy && !u.IsFake && !u.IsBlock &&
			(mf.Gender == "" || strings.EqualFold(u.Gender, mf.Gender))
	}), nil
}

func (f *fakeUsers) FindFakeUsers(_ context.Context, gender string) ([]domain.User, error) {
	return f.filter(func(u *domain.User) bool {
		return u.IsFake && (gender == "" || strings.EqualFold(u.Gender, gender))
	}), nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return strings.EqualFold(u.Username, username) })
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID int64, p domain.ProfileFields) error {
	return f.update(userID, func(u *domain.User) {
		u.Name, u.Username, u.Bio, u.Gender = p.Name, p.Username, p.Bio, p.Gender
		u.Age, u.Image, u.Country, u.Email = p.Age, p.Image, p.Country, p.Email
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func pageOf(users []domain.User, offset, limit int) []domain.User {
	if offset >= len(users) {
		return []domain.User{}
	}
	users = users[offset:]
	if len(users) > limit {
		users = users[:limit]
	}
	return users
}

func (f *fakeUsers) Search(_ context.Context, q domain.UserSearch) ([]domain.User, error) {
	out := f.filter(func(u *domain.User) bool {
		return u.ID != q.ExcludeUserID && !u.IsBlock &&
			(containsFold(u.Name, q.Value) || containsFold(u.Username, q.Value))
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return pageOf(out, q.Offset, q.Limit), nil
}

func (f *fakeUsers) List(_ context.Context, lf domain.UserListFilter) (*domain.UserList, error) {
	all := f.filter(func(u *domain.User) bool {
		if u.IsFake != lf.Fake {
			return false
		}
		if lf.Search != "" && !containsFold(u.Username, lf.Search) &&
			!containsFold(u.Gender, lf.Search) && !containsFold(u.Country, lf.Search) {
			return false
		}
		if lf.From != nil && u.CreatedAt.Before(*lf.From) {
			return false
		}
		return lf.To == nil || u.CreatedAt.Before(*lf.To)
	})
	out := &domain.UserList{Total: int64(len(all)), MaleFemale: []domain.GenderCount{}}
	genders := map[string]int64{}
	for _, u := range all {
		if u.IsOnline {
			out.ActiveUser++
		}
		genders[strings.ToLower(u.Gender)]++
	}
	for g, n := range genders {
		out.MaleFemale = append(out.MaleFemale, domain.GenderCount{Gender: g, Count: n})
	}
	sort.Slice(out.MaleFemale, func(i, j int) bool { return out.MaleFemale[i].Gender < out.MaleFemale[j].Gender })
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	out.Users = pageOf(all, lf.Offset, lf.Limit)
	return out, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	users   *fakeUsers
	entries []domain.WalletEntry
}

func (f *fakeLedger) Append(_ context.Context, e *domain.WalletEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = int64(len(f.entries) + 1)
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeLedger) byUser(userID int64) []domain.WalletEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WalletEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeLedger) ListByUser(_ context.Context, userID int64, limit, offset int) ([]domain.WalletHistoryItem, error) {
	entries := f.byUser(userID)
	items := []domain.WalletHistoryItem{}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		it := domain.WalletHistoryItem{
			ID: e.ID, Kind: e.Kind, Type: e.Kind.Code(), RCoin: e.RCoin, Diamond: e.Diamond,
			IsIncome: e.IsIncome, PaymentGateway: e.PaymentGateway, OtherUserID: e.OtherUserID,
			CreatedAt: e.CreatedAt,
		}
		if e.OtherUserID != nil && f.users != nil {
			if o, err := f.users.get(*e.OtherUserID); err == nil {
				it.OtherUserName = o.Name
			}
		}
		items = append(items, it)
	}
	if offset < 0 {
		return nil, fmt.Errorf("OFFSET must not be negative")
	}
	if offset >= len(items) {
		return []domain.WalletHistoryItem{}, nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeLedger) CountByUser(_ context.Context, userID int64) (int64, error) {
	return int64(len(f.byUser(userID))), nil
}

func (f *fakeLedger) SumByUser(_ context.Context, userID int64) (int64, int64, error) {
	var rc, dm int64
	for _, e := range f.byUser(userID) {
		r, d := e.Delta()
		rc += r
		dm += d
	}
	return rc, dm, nil
}

type fakeLevels struct{ levels []domain.Level }

func (f *fakeLevels) List(context.Context) ([]domain.Level, error) {
	out := append([]domain.Level(nil), f.levels...)
	return out, nil
}

func (f *fakeLevels) Create(_ context.Context, l *domain.Level) error {
	l.ID = int64(len(f.levels) + 1)
	f.levels = append(f.levels, *l)
	return nil
}

type fakePlans struct{ plans map[int64]*domain.VIPPlan }

func (f *fakePlans) GetByID(_ context.Context, id int64) (*domain.VIPPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlans) List(context.Context) ([]domain.VIPPlan, error) {
	var out []domain.VIPPlan
	for _, p := range f.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePlans) Create(_ context.Context, p *domain.VIPPlan) error {
	if f.plans == nil {
		f.plans = map[int64]*domain.VIPPlan{}
	}
	p.ID = int64(len(f.plans) + 1)
	cp := *p
	f.plans[p.ID] = &cp
	return nil
}

type fakeSettingStore struct {
	s     *domain.Setting
	gets  int
	saves int
}

func (f *fakeSettingStore) Get(context.Context) (*domain.Setting, error) {
	f.gets++
	if f.s == nil {
		return nil, repository.ErrNotFound
	}
	cp := *f.s
	return &cp, nil
}

func (f *fakeSettingStore) Save(_ context.Context, s *domain.Setting) error {
	f.saves++
	s.UpdatedAt = time.Now()
	cp := *s
	f.s = &cp
	return nil
}

type staticSettings struct{ s domain.Setting }

func (f staticSettings) Settings(context.Context) (*domain.Setting, error) {
	cp := f.s
	return &cp, nil
}

type fakeLive struct {
	mu      sync.Mutex
	live    map[int64]*domain.LiveUser
	history []domain.LiveStreamingHistory
}

func (f *fakeLive) Start(_ context.Context, lu *domain.LiveUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.live == nil {
		f.live = map[int64]*domain.LiveUser{}
	}
	lu.ID = int64(len(f.live) + 1)
	lu.StartedAt = time.Now()
	cp := *lu
	f.live[lu.UserID] = &cp
	return nil
}

func (f *fakeLive) End(_ context.Context, userID int64, end time.Time) (*domain.LiveStreamingHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lu, ok := f.live[userID]
	if !ok {
		return nil, nil
	}
	delete(f.live, userID)
	h := domain.LiveStreamingHistory{
		ID:              int64(len(f.history) + 1),
		UserID:          userID,
		StartTime:       lu.StartedAt,
		EndTime:         &end,
		DurationSeconds: int64(end.Sub(lu.StartedAt).Seconds()),
	}
	f.history = append(f.history, h)
	return &h, nil
}

func (f *fakeLive) ListHistory(_ context.Context, userID int64, limit, offset int) ([]domain.LiveStreamingHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.LiveStreamingHistory{}
	for i := len(f.history) - 1; i >= 0; i-- {
		if f.history[i].UserID == userID {
			out = append(out, f.history[i])
		}
	}
	if offset >= len(out) {
		return []domain.LiveStreamingHistory{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLive) CountHistory(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, h := range f.history {
		if h.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (f *fakeAudit) Create(_ context.Context, log *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeAudit) GetByUserID(_ context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.AuditLog
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.logs[i].UserID == userID {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}

func (f *fakeAudit) GetRecent(_ context.Context, limit int) ([]*domain.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.AuditLog
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.logs[i])
	}
	return out, nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.logs {
		out = append(out, l.Action)
	}
	return out
}

// env wires every service over one set of fakes.
type env struct {
	tx       *fakeTx
	users    *fakeUsers
	ledger   *fakeLedger
	levels   *fakeLevels
	plans    *fakePlans
	settings *fakeSettingStore
	live     *fakeLive
	audit    *fakeAudit

	balanceSvc  *BalanceService
	levelSvc    *LevelService
	planSvc     *PlanService
	settingsSvc *SettingsService
	auditSvc    *AuditService
}

func newEnv(users ...*domain.User) *env {
	e := &env{
		tx:       &fakeTx{},
		users:    newFakeUsers(users...),
		levels:   &fakeLevels{},
		plans:    &fakePlans{plans: map[int64]*domain.VIPPlan{}},
		settings: &fakeSettingStore{s: &domain.Setting{}},
		live:     &fakeLive{},
		audit:    &fakeAudit{},
	}
	e.ledger = &fakeLedger{users: e.users}
	e.balanceSvc = NewBalanceService(e.tx, e.users, e.ledger)
	e.levelSvc = NewLevelService(e.users, e.levels)
	e.planSvc = NewPlanService(e.users, e.plans)
	e.settingsSvc = NewSettingsService(e.settings, nil, time.Minute)
	e.auditSvc = NewAuditService(e.audit)
	return e
}

func (e *env) admin() *AdminService {
	return NewAdminService(e.tx, e.users, e.balanceSvc, e.planSvc, e.levelSvc, e.settingsSvc, nil, e.auditSvc)
}

func (e *env) referral() *ReferralService {
	return NewReferralService(e.tx, e.users, e.balanceSvc, e.settingsSvc, e.auditSvc)
}

func (e *env) auth() *AuthService {
	return NewAuthService(e.tx, e.users, e.balanceSvc, e.levelSvc, e.settingsSvc, e.auditSvc)
}

func ptr[T any](v T) *T { return &v }
