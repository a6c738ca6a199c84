package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/http/middleware"
	"streamhub/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAccounts struct {
	signup func(service.SignupInput) (*service.AuthResult, error)
	login  service.LoginInput
	taken  map[string]bool
}

func (s *stubAccounts) Signup(_ context.Context, in service.SignupInput) (*service.AuthResult, error) {
	return s.signup(in)
}
func (s *stubAccounts) Login(_ context.Context, in service.LoginInput) (*service.AuthResult, error) {
	s.login = in
	return &service.AuthResult{User: &domain.User{ID: 1}, Token: "tok"}, nil
}
func (s *stubAccounts) QuickLogin(_ context.Context, in service.QuickLoginInput) (*service.AuthResult, error) {
	if in.Identity == "" {
		return nil, service.ErrInvalidDetails
	}
	if in.Identity == "other" {
		return nil, service.ErrOtherDevice
	}
	return &service.AuthResult{User: &domain.User{ID: 3}, Token: "quick"}, nil
}

func (s *stubAccounts) UsernameAvailable(_ context.Context, name string) (bool, error) {
	if name == "" {
		return false, service.ErrInvalidDetails
	}
	return !s.taken[name], nil
}

type stubProfiles struct{ err error }

func (s stubProfiles) GetProfile(_ context.Context, id int64) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Name: "me"}, nil
}

func (s stubProfiles) UpdateProfile(_ context.Context, id int64, in service.ProfileUpdate) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Username: in.Username, Age: in.Age}, nil
}

func (s stubProfiles) Search(_ context.Context, _ int64, value string, start, limit int) ([]*domain.PublicUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.PublicUser{{UserID: int64(start + limit), Name: value}}, nil
}

func (s stubProfiles) UserProfile(_ context.Context, _ int64, id int64, username string) (*domain.PublicUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.PublicUser{UserID: id, Username: username}, nil
}

type stubReferrals struct{ err error }

func (s stubReferrals) Redeem(_ context.Context, id int64, _ string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Diamond: 10}, nil
}

type stubMatcher struct {
	m      *domain.MatchUser
	gender string
}

func (s *stubMatcher) FindMatch(_ context.Context, _ int64, gender string) (*domain.MatchUser, bool, error) {
	s.gender = gender
	return s.m, s.m != nil, nil
}

type stubHistory struct{ page, limit int }

func (s *stubHistory) PurchaseHistory(_ context.Context, _ int64, page, limit int) (*domain.PurchaseHistory, error) {
	s.page, s.limit = page, limit
	return &domain.PurchaseHistory{}, nil
}

type stubWallets struct{ err error }

func (s stubWallets) GetBalance(_ context.Context, _ int64) (*service.Balances, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.Balances{RCoin: 12, Diamond: 34}, nil
}

type stubPresence struct{ calls int }

func (s *stubPresence) Online(context.Context, int64) error {
	s.calls++
	return nil
}

func withUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", service.ErrUserNotFound, http.StatusOK, "User does not exist!"},
		{"conflict", service.ErrReferralUsed, http.StatusOK, "User already used a referral code!"},
		{"invalid", service.ErrReferralCodeNotFound, http.StatusOK, "Referral code does not exist!"},
		{"storage", errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		h := NewHandler(Services{Referrals: stubReferrals{err: tt.err}})
		r := gin.New()
		r.POST("/redeem", withUser(1), h.RedeemReferral)

		w := serve(r, http.MethodPost, "/redeem", `{"code":"ABC"}`)
		if w.Code != tt.code {
			t.Errorf("%s: status %d, want %d", tt.name, w.Code, tt.code)
			continue
		}
		body := decode(t, w)
		if body["status"] != false || body["message"] != tt.message {
			t.Errorf("%s: body %v", tt.name, body)
		}
	}
}

func TestRedeemSuccess(t *testing.T) {
	h := NewHandler(Services{Referrals: stubReferrals{}})
	r := gin.New()
	r.POST("/redeem", withUser(5), h.RedeemReferral)

	body := decode(t, serve(r, http.MethodPost, "/redeem", `{"code":"ABC"}`))
	if body["status"] != true || body["message"] != successMessage {
		t.Fatalf("body %v", body)
	}
	user, _ := body["user"].(map[string]any)
	if user["id"] != float64(5) {
		t.Fatalf("user %v", user)
	}
}

func TestRequiresUser(t *testing.T) {
	h := NewHandler(Services{Profiles: stubProfiles{}})
	r := gin.New()
	r.GET("/profile", h.Profile)

	if w := serve(r, http.MethodGet, "/profile", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
}

func TestProfileBehindJWT(t *testing.T) {
	service.InitJWT("handlers-test", time.Hour)
	token, err := service.GenerateJWT(77)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	h := NewHandler(Services{Profiles: stubProfiles{}})
	r := gin.New()
	r.GET("/profile", middleware.JWT(), h.Profile)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	user, _ := decode(t, w)["user"].(map[string]any)
	if user["id"] != float64(77) {
		t.Fatalf("user %v", user)
	}
}

func TestMatch(t *testing.T) {
	m := &stubMatcher{}
	h := NewHandler(Services{Matcher: m})
	r := gin.New()
	r.GET("/match", withUser(1), h.Match)

	body := decode(t, serve(r, http.MethodGet, "/match?type=female", ""))
	if body["status"] != false || body["message"] != noMatchMessage || body["user"] != nil {
		t.Fatalf("no match body %v", body)
	}
	if m.gender != "female" {
		t.Fatalf("gender not passed through: %q", m.gender)
	}

	m.m = &domain.MatchUser{UserID: 9, Name: "x"}
	body = decode(t, serve(r, http.MethodGet, "/match", ""))
	if body["status"] != true {
		t.Fatalf("match body %v", body)
	}
}

func TestSignupBadJSON(t *testing.T) {
	acc := &stubAccounts{signup: func(service.SignupInput) (*service.AuthResult, error) {
		t.Fatalf("signup must not be called")
		return nil, nil
	}}
	h := NewHandler(Services{Accounts: acc})
	r := gin.New()
	r.POST("/signup", h.Signup)

	body := decode(t, serve(r, http.MethodPost, "/signup", `{"username":`))
	if body["status"] != false || body["message"] != service.ErrInvalidDetails.Error() {
		t.Fatalf("body %v", body)
	}
}

func TestLoginPassesClientInfo(t *testing.T) {
	acc := &stubAccounts{}
	h := NewHandler(Services{Accounts: acc})
	r := gin.New()
	r.POST("/login", h.Login)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := decode(t, w)
	if body["token"] != "tok" {
		t.Fatalf("body %v", body)
	}
	if acc.login.UserAgent != "test-agent" || acc.login.IP == "" || acc.login.Email != "a@b.c" {
		t.Fatalf("login input %+v", acc.login)
	}
}

func TestCheckUsername(t *testing.T) {
	acc := &stubAccounts{taken: map[string]bool{"bob": true}}
	h := NewHandler(Services{Accounts: acc})
	r := gin.New()
	r.GET("/check", h.CheckUsername)

	if body := decode(t, serve(r, http.MethodGet, "/check?username=alice", "")); body["status"] != true {
		t.Fatalf("alice: %v", body)
	}
	if body := decode(t, serve(r, http.MethodGet, "/check?username=bob", "")); body["status"] != false {
		t.Fatalf("bob: %v", body)
	}
}

func TestPurchaseHistoryPaging(t *testing.T) {
	hist := &stubHistory{}
	h := NewHandler(Services{History: hist})
	r := gin.New()
	r.GET("/history", withUser(1), h.PurchaseHistory)

	serve(r, http.MethodGet, "/history", "")
	if hist.page != 1 || hist.limit != 0 {
		t.Fatalf("defaults: page=%d limit=%d", hist.page, hist.limit)
	}
	serve(r, http.MethodGet, "/history?page=3&limit=25", "")
	if hist.page != 3 || hist.limit != 25 {
		t.Fatalf("explicit: page=%d limit=%d", hist.page, hist.limit)
	}
	if body := decode(t, serve(r, http.MethodGet, "/history?page=x", "")); body["status"] != false {
		t.Fatalf("bad page accepted: %v", body)
	}
}

func TestOnline(t *testing.T) {
	p := &stubPresence{}
	h := NewHandler(Services{Presence: p})
	r := gin.New()
	r.POST("/online", withUser(1), h.Online)

	if body := decode(t, serve(r, http.MethodPost, "/online", "")); body["status"] != true || p.calls != 1 {
		t.Fatalf("body %v calls %d", body, p.calls)
	}
}

func TestBalance(t *testing.T) {
	h := NewHandler(Services{Wallets: stubWallets{}})
	r := gin.New()
	r.GET("/balance", withUser(1), h.Balance)

	body := decode(t, serve(r, http.MethodGet, "/balance", ""))
	if body["status"] != true || body["r_coin"] != float64(12) || body["diamond"] != float64(34) {
		t.Fatalf("body %v", body)
	}

	h = NewHandler(Services{Wallets: stubWallets{err: service.ErrUserNotFound}})
	r = gin.New()
	r.GET("/balance", withUser(1), h.Balance)
	if body := decode(t, serve(r, http.MethodGet, "/balance", "")); body["status"] != false {
		t.Fatalf("missing user body %v", body)
	}
}

func TestQuickLogin(t *testing.T) {
	h := NewHandler(Services{Accounts: &stubAccounts{}})
	r := gin.New()
	r.POST("/quick", h.QuickLogin)

	body := decode(t, serve(r, http.MethodPost, "/quick", `{"identity":"dev-1","mobile_number":"555"}`))
	if body["status"] != true || body["token"] != "quick" {
		t.Fatalf("body %v", body)
	}
	body = decode(t, serve(r, http.MethodPost, "/quick", `{"identity":"other","mobile_number":"555"}`))
	if body["status"] != false || body["message"] != service.ErrOtherDevice.Error() {
		t.Fatalf("other device body %v", body)
	}
}

func TestUpdateProfile(t *testing.T) {
	h := NewHandler(Services{Profiles: stubProfiles{}})
	r := gin.New()
	r.PATCH("/profile", withUser(4), h.UpdateProfile)

	body := decode(t, serve(r, http.MethodPatch, "/profile", `{"username":"neo","age":30}`))
	user, _ := body["user"].(map[string]any)
	if body["status"] != true || user["username"] != "neo" || user["age"] != float64(30) {
		t.Fatalf("body %v", body)
	}

	h = NewHandler(Services{Profiles: stubProfiles{err: service.ErrUsernameTaken}})
	r = gin.New()
	r.PATCH("/profile", withUser(4), h.UpdateProfile)
	body = decode(t, serve(r, http.MethodPatch, "/profile", `{"username":"taken"}`))
	if body["status"] != false || body["message"] != service.ErrUsernameTaken.Error() {
		t.Fatalf("taken body %v", body)
	}
}

func TestSearchUsers(t *testing.T) {
	h := NewHandler(Services{Profiles: stubProfiles{}})
	r := gin.New()
	r.GET("/search", withUser(1), h.SearchUsers)

	body := decode(t, serve(r, http.MethodGet, "/search?value=ann&start=5&limit=7", ""))
	users, _ := body["user"].([]any)
	if body["status"] != true || len(users) != 1 {
		t.Fatalf("body %v", body)
	}
	first, _ := users[0].(map[string]any)
	if first["name"] != "ann" || first["user_id"] != float64(12) {
		t.Fatalf("paging not passed through: %v", first)
	}
	if body := decode(t, serve(r, http.MethodGet, "/search?limit=x", "")); body["status"] != false {
		t.Fatalf("bad limit accepted: %v", body)
	}
}

func TestUserProfile(t *testing.T) {
	h := NewHandler(Services{Profiles: stubProfiles{}})
	r := gin.New()
	r.GET("/users/profile", withUser(1), h.UserProfile)

	body := decode(t, serve(r, http.MethodGet, "/users/profile?user_id=9", ""))
	user, _ := body["user"].(map[string]any)
	if body["status"] != true || user["user_id"] != float64(9) {
		t.Fatalf("by id body %v", body)
	}
	body = decode(t, serve(r, http.MethodGet, "/users/profile?username=bob", ""))
	user, _ = body["user"].(map[string]any)
	if user["username"] != "bob" {
		t.Fatalf("by username body %v", body)
	}
	if body := decode(t, serve(r, http.MethodGet, "/users/profile?user_id=-1", "")); body["status"] != false {
		t.Fatalf("bad id accepted: %v", body)
	}
}
