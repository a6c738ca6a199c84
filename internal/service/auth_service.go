package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup and password login.
type AuthService struct {
	tx       TxRunner
	users    UserStore
	balance  *BalanceService
	levels   *LevelService
	settings SettingsProvider
	audit    *AuditService
}

func NewAuthService(tx TxRunner, users UserStore, balance *BalanceService, levels *LevelService, settings SettingsProvider, audit *AuditService) *AuthService {
	return &AuthService{tx: tx, users: users, balance: balance, levels: levels, settings: settings, audit: audit}
}

type SignupInput struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Age          int    `json:"age"`
	Country      string `json:"country"`
	Image        string `json:"image"`
	FCMToken     string `json:"fcm_token"`
	LoginType    int    `json:"login_type"`
}

type LoginInput struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
	FCMToken     string `json:"fcm_token"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// AuthResult is a user with a freshly issued token.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Signup creates the account, credits the login bonus and assigns the initial level.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	if (in.Email == "" && in.MobileNumber == "") || in.Username == "" || in.Password == "" {
		return nil, invalidInput("Invalid signup details!")
	}
	if in.Age < 0 {
		return nil, invalidInput("Invalid signup details!")
	}

	if taken, err := s.users.UsernameTaken(ctx, in.Username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if in.Email != "" {
		if taken, err := s.users.EmailTaken(ctx, in.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrEmailTaken
		}
	}
	if in.MobileNumber != "" {
		if taken, err := s.users.MobileTaken(ctx, in.MobileNumber); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrMobileTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	u := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     in.Username,
		Gender:       strings.ToLower(strings.TrimSpace(in.Gender)),
		Age:          in.Age,
		Email:        in.Email,
		MobileNumber: in.MobileNumber,
		PasswordHash: string(hash),
		Image:        in.Image,
		Country:      strings.TrimSpace(in.Country),
		FCMToken:     in.FCMToken,
		LoginType:    in.LoginType,
		LastLoginAt:  &now,
	}
	user, bonus, err := s.createAccount(ctx, u)
	if err != nil {
		return nil, err
	}
	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("user signed up", "user_id", user.ID, "username", user.Username)
	s.audit.Log(ctx, user.ID, domain.AuditActionSignup, domain.AuditCategoryAuth, map[string]interface{}{
		"login_bonus": bonus,
	})
	return &AuthResult{User: user, Token: token}, nil
}

// createAccount fills the generated fields, inserts u, credits the login bonus and
// assigns the level. It returns the stored user and the bonus paid.
func (s *AuthService) createAccount(ctx context.Context, u *domain.User) (*domain.User, int64, error) {
	code, err := newReferralCode(ctx, s.users)
	if err != nil {
		return nil, 0, err
	}
	st, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, 0, err
	}
	lvl, err := s.levels.Resolve(ctx, 0)
	if err != nil {
		return nil, 0, err
	}

	u.UniqueID = newUniqueID()
	u.ReferralCode = code
	if lvl != nil {
		u.LevelID = &lvl.ID
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			return mapDuplicate(err)
		}
		_, err := s.balance.Apply(ctx, domain.NewLoginBonusEntry(u.ID, st.LoginBonus))
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	user, err := s.levels.Recompute(ctx, u.ID)
	if err != nil {
		return nil, 0, err
	}
	return user, st.LoginBonus, nil
}

// Login authenticates by email or mobile number and password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	if (in.Email == "" && in.MobileNumber == "") || in.Password == "" {
		return nil, invalidInput("Email or mobile number and password are required!")
	}

	var (
		u   *domain.User
		err error
	)
	if in.Email != "" {
		u, err = s.users.GetByEmail(ctx, in.Email)
	} else {
		u, err = s.users.GetByMobile(ctx, in.MobileNumber)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newAppError(ErrNotFound, "User not found! Please sign up.")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.IsBlock {
		return nil, ErrUserBlocked
	}

	if err := s.users.TouchLogin(ctx, u.ID, in.FCMToken); err != nil {
		return nil, err
	}
	user, err := s.levels.Recompute(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}

	s.audit.LogLogin(ctx, user.ID, in.IP, in.UserAgent)
	return &AuthResult{User: user, Token: token}, nil
}

// UsernameAvailable reports whether no user holds username, ignoring case.
func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, ErrInvalidDetails
	}
	taken, err := s.users.UsernameTaken(ctx, username, 0)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// mapDuplicate turns a unique violation raced past the pre-checks into a Conflict.
func mapDuplicate(err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "email"):
		return ErrEmailTaken
	case strings.Contains(msg, "mobile"):
		return ErrMobileTaken
	}
	return newAppError(ErrConflict, "Duplicate record!")
}

// QuickLoginInput identifies a device-bound account by mobile number or email.
type QuickLoginInput struct {
	Identity     string `json:"identity"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Age          int    `json:"age"`
	Country      string `json:"country"`
	Image        string `json:"image"`
	FCMToken     string `json:"fcm_token"`
	LoginType    int    `json:"login_type"`
}

// QuickLogin signs in the account matching the mobile number (or, without one, the
// email) and creates it when there is none. A mobile account only accepts the device
// identity it was created with.
func (s *AuthService) QuickLogin(ctx context.Context, in QuickLoginInput) (*AuthResult, error) {
	in.Identity = strings.TrimSpace(in.Identity)
	in.Email = strings.TrimSpace(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.Username = strings.TrimSpace(in.Username)
	if in.Identity == "" || (in.Email == "" && in.MobileNumber == "") {
		return nil, ErrInvalidDetails
	}

	var (
		u   *domain.User
		err error
	)
	if in.MobileNumber != "" {
		u, err = s.users.GetByMobile(ctx, in.MobileNumber)
		if err == nil && u.Identity != in.Identity {
			return nil, ErrOtherDevice
		}
	} else {
		u, err = s.users.GetByEmail(ctx, in.Email)
	}

	switch {
	case err == nil:
		return s.quickSignIn(ctx, u, in.FCMToken)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if in.Username == "" || in.Age < 0 {
		return nil, ErrInvalidDetails
	}
	if taken, err := s.users.UsernameTaken(ctx, in.Username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	now := time.Now()
	user, bonus, err := s.createAccount(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     in.Username,
		Gender:       strings.ToLower(strings.TrimSpace(in.Gender)),
		Age:          in.Age,
		Email:        in.Email,
		MobileNumber: in.MobileNumber,
		Image:        in.Image,
		Country:      strings.TrimSpace(in.Country),
		Identity:     in.Identity,
		FCMToken:     in.FCMToken,
		LoginType:    in.LoginType,
		LastLoginAt:  &now,
	})
	if err != nil {
		return nil, err
	}
	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("user signed up", "user_id", user.ID, "username", user.Username, "quick", true)
	s.audit.Log(ctx, user.ID, domain.AuditActionSignup, domain.AuditCategoryAuth, map[string]interface{}{
		"login_bonus": bonus,
		"quick":       true,
	})
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) quickSignIn(ctx context.Context, u *domain.User, fcmToken string) (*AuthResult, error) {
	if u.IsBlock {
		return nil, ErrUserBlocked
	}
	if err := s.users.TouchLogin(ctx, u.ID, fcmToken); err != nil {
		return nil, err
	}
	user, err := s.levels.Recompute(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, user.ID, domain.AuditActionQuickLogin, domain.AuditCategoryAuth, nil)
	return &AuthResult{User: user, Token: token}, nil
}
