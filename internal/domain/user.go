package domain

import "time"

// Login types
const (
	LoginTypeGoogle   = 0
	LoginTypeFacebook = 1
	LoginTypeQuick    = 2
	LoginTypeMobile   = 3
)

type User struct {
	ID            int64      `db:"id" json:"id"`
	UniqueID      int64      `db:"unique_id" json:"unique_id"`
	Name          string     `db:"name" json:"name"`
	Username      string     `db:"username" json:"username"`
	Gender        string     `db:"gender" json:"gender"`
	Age           int        `db:"age" json:"age"`
	Email         string     `db:"email" json:"email,omitempty"`
	MobileNumber  string     `db:"mobile_number" json:"mobile_number,omitempty"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Image         string     `db:"image" json:"image"`
	CoverImage    string     `db:"cover_image" json:"cover_image"`
	Country       string     `db:"country" json:"country"`
	Bio           string     `db:"bio" json:"bio"`
	Identity      string     `db:"identity" json:"-"`
	FCMToken      string     `db:"fcm_token" json:"-"`
	LoginType     int        `db:"login_type" json:"login_type"`
	ReferralCode  string     `db:"referral_code" json:"referral_code"`
	IsReferral    bool       `db:"is_referral" json:"is_referral"`
	ReferralCount int64      `db:"referral_count" json:"referral_count"`
	LevelID       *int64     `db:"level_id" json:"-"`
	Level         *Level     `db:"-" json:"level"`
	RCoin         int64      `db:"r_coin" json:"r_coin"`
	Diamond       int64      `db:"diamond" json:"diamond"`
	WithdrawRCoin int64      `db:"withdrawal_rcoin" json:"withdrawal_rcoin"`
	SpentCoin     int64      `db:"spent_coin" json:"spent_coin"`
	IsVIP         bool       `db:"is_vip" json:"is_vip"`
	Plan          UserPlan   `db:"-" json:"plan"`
	IsOnline      bool       `db:"is_online" json:"is_online"`
	IsBusy        bool       `db:"is_busy" json:"is_busy"`
	IsFake        bool       `db:"is_fake" json:"is_fake"`
	IsBlock       bool       `db:"is_block" json:"is_block"`
	Token         *string    `db:"token" json:"-"`
	Channel       *string    `db:"channel" json:"channel,omitempty"`
	Notification  Notify     `db:"-" json:"notification"`
	LastLoginAt   *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// UserPlan is the VIP plan a user currently holds. Both fields are nil or both are set.
type UserPlan struct {
	PlanID    *int64     `json:"plan_id"`
	StartDate *time.Time `json:"plan_start_date"`
}

// Active reports whether a plan is attached.
func (p UserPlan) Active() bool {
	return p.PlanID != nil && p.StartDate != nil
}

type Notify struct {
	NewFollow        bool `json:"new_follow"`
	FavoriteLive     bool `json:"favorite_live"`
	LikeCommentShare bool `json:"like_comment_share"`
	Message          bool `json:"message"`
}

// MatchUser is the public projection returned by random matching.
type MatchUser struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	Image     string `json:"image"`
	Country   string `json:"country"`
	Bio       string `json:"bio"`
	IsFake    bool   `json:"is_fake"`
	IsVIP     bool   `json:"is_vip"`
	LoginType int    `json:"login_type"`
	Level     *Level `json:"level"`
}

// ToMatch projects the user for match results.
func (u *User) ToMatch() *MatchUser {
	return &MatchUser{
		UserID:    u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Gender:    u.Gender,
		Age:       u.Age,
		Image:     u.Image,
		Country:   u.Country,
		Bio:       u.Bio,
		IsFake:    u.IsFake,
		IsVIP:     u.IsVIP,
		LoginType: u.LoginType,
		Level:     u.Level,
	}
}

// MatchFilter restricts the candidate pools of random matching.
type MatchFilter struct {
	ExcludeUserID int64
	Gender        string // empty means any
}

// PublicUser is what one user may see of another.
type PublicUser struct {
	UserID     int64  `json:"user_id"`
	UniqueID   int64  `json:"unique_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	Image      string `json:"image"`
	CoverImage string `json:"cover_image"`
	Country    string `json:"country"`
	Bio        string `json:"bio"`
	IsVIP      bool   `json:"is_vip"`
	IsOnline   bool   `json:"is_online"`
	Level      *Level `json:"level"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		UserID:     u.ID,
		UniqueID:   u.UniqueID,
		Name:       u.Name,
		Username:   u.Username,
		Gender:     u.Gender,
		Age:        u.Age,
		Image:      u.Image,
		CoverImage: u.CoverImage,
		Country:    u.Country,
		Bio:        u.Bio,
		IsVIP:      u.IsVIP,
		IsOnline:   u.IsOnline,
		Level:      u.Level,
	}
}

// ProfileFields are the user-editable columns, written together.
type ProfileFields struct {
	Name     string
	Username string
	Bio      string
	Gender   string
	Age      int
	Image    string
	Country  string
	Email    string
}

func (u *User) Editable() ProfileFields {
	return ProfileFields{
		Name:     u.Name,
		Username: u.Username,
		Bio:      u.Bio,
		Gender:   u.Gender,
		Age:      u.Age,
		Image:    u.Image,
		Country:  u.Country,
		Email:    u.Email,
	}
}

// UserSearch matches name or username, case-insensitively, among unblocked users.
type UserSearch struct {
	ExcludeUserID int64
	Value         string
	Offset        int
	Limit         int
}

// UserListFilter drives the admin user list. Search matches username, gender or
// country; signups fall in [From, To).
type UserListFilter struct {
	Fake   bool
	Search string
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

type GenderCount struct {
	Gender string `json:"gender"`
	Count  int64  `json:"count"`
}

// UserList is one page of the admin user list plus totals over the whole filter.
type UserList struct {
	Total      int64         `json:"total"`
	ActiveUser int64         `json:"active_user"`
	MaleFemale []GenderCount `json:"male_female"`
	Users      []User        `json:"user"`
}
