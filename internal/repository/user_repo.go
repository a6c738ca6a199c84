package repository

import (
	"context"
	"strings"
	"time"

	"streamhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

const userSelect = `
	SELECT u.id, u.unique_id, u.name, u.username, u.gender, u.age,
	       COALESCE(u.email, ''), COALESCE(u.mobile_number, ''), u.password_hash,
	       u.image, u.cover_image, u.country, u.bio, u.identity, u.fcm_token, u.login_type,
	       u.referral_code, u.is_referral, u.referral_count, u.level_id,
	       u.r_coin, u.diamond, u.withdrawal_rcoin, u.spent_coin,
	       u.is_vip, u.plan_id, u.plan_start_date,
	       u.is_online, u.is_busy, u.is_fake, u.is_block, u.token, u.channel,
	       u.notify_new_follow, u.notify_favorite_live, u.notify_like_comment_share, u.notify_message,
	       u.last_login_at, u.created_at, u.updated_at,
	       l.id, l.name, l.coin, l.image, l.created_at
	FROM users u
	LEFT JOIN levels l ON l.id = u.level_id`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		u          domain.User
		levelID    *int64
		levelName  *string
		levelCoin  *int64
		levelImage *string
		levelAt    *time.Time
	)
	err := row.Scan(
		&u.ID, &u.UniqueID, &u.Name, &u.Username, &u.Gender, &u.Age,
		&u.Email, &u.MobileNumber, &u.PasswordHash,
		&u.Image, &u.CoverImage, &u.Country, &u.Bio, &u.Identity, &u.FCMToken, &u.LoginType,
		&u.ReferralCode, &u.IsReferral, &u.ReferralCount, &u.LevelID,
		&u.RCoin, &u.Diamond, &u.WithdrawRCoin, &u.SpentCoin,
		&u.IsVIP, &u.Plan.PlanID, &u.Plan.StartDate,
		&u.IsOnline, &u.IsBusy, &u.IsFake, &u.IsBlock, &u.Token, &u.Channel,
		&u.Notification.NewFollow, &u.Notification.FavoriteLive,
		&u.Notification.LikeCommentShare, &u.Notification.Message,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
		&levelID, &levelName, &levelCoin, &levelImage, &levelAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if levelID != nil {
		u.Level = &domain.Level{ID: *levelID}
		if levelName != nil {
			u.Level.Name = *levelName
		}
		if levelCoin != nil {
			u.Level.Coin = *levelCoin
		}
		if levelImage != nil {
			u.Level.Image = *levelImage
		}
		if levelAt != nil {
			u.Level.CreatedAt = *levelAt
		}
	}
	return &u, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, sql string, args ...any) ([]domain.User, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
}

// GetByIDForUpdate locks the user row until the surrounding transaction ends.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, userSelect+` WHERE u.id = $1 FOR UPDATE OF u`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, userSelect+` WHERE LOWER(u.email) = LOWER($1)`, email))
}

func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, userSelect+` WHERE u.mobile_number = $1`, mobile))
}

// GetByReferralCode matches the code exactly.
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, userSelect+` WHERE u.referral_code = $1`, code))
}

// UsernameTaken compares case-insensitively, ignoring excludeID (0 ignores nobody).
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) AND id <> $2)`,
		strings.TrimSpace(username), excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) MobileTaken(ctx context.Context, mobile string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE mobile_number = $1)`, mobile,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) ReferralCodeTaken(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE referral_code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

// Create inserts a user with zero balances; balances change only through AddBalances.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	var email, mobile *string
	if u.Email != "" {
		email = &u.Email
	}
	if u.MobileNumber != "" {
		mobile = &u.MobileNumber
	}

	err := conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO users (unique_id, name, username, gender, age, email, mobile_number, password_hash,
		                    image, cover_image, country, bio, identity, fcm_token, login_type,
		                    referral_code, level_id, is_fake, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id, created_at, updated_at, notify_new_follow, notify_favorite_live,
		           notify_like_comment_share, notify_message`,
		u.UniqueID, u.Name, u.Username, u.Gender, u.Age, email, mobile, u.PasswordHash,
		u.Image, u.CoverImage, u.Country, u.Bio, u.Identity, u.FCMToken, u.LoginType,
		u.ReferralCode, u.LevelID, u.IsFake, u.LastLoginAt,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt,
		&u.Notification.NewFollow, &u.Notification.FavoriteLive,
		&u.Notification.LikeCommentShare, &u.Notification.Message)
	return translate(err)
}

// AddBalances applies signed deltas in place and returns the resulting balances.
// Balances are not clamped; a negative result is stored as is.
func (r *UserRepository) AddBalances(ctx context.Context, userID, rCoin, diamond int64) (newRCoin, newDiamond int64, err error) {
	err = conn(ctx, r.db).QueryRow(ctx,
		`UPDATE users
		 SET r_coin = r_coin + $1, diamond = diamond + $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING r_coin, diamond`,
		rCoin, diamond, userID,
	).Scan(&newRCoin, &newDiamond)
	return newRCoin, newDiamond, translate(err)
}

// MarkReferralUsed flips is_referral false -> true. It reports false when the flag
// was already set.
func (r *UserRepository) MarkReferralUsed(ctx context.Context, userID int64) (bool, error) {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET is_referral = true, updated_at = NOW() WHERE id = $1 AND is_referral = false`,
		userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) IncrementReferralCount(ctx context.Context, userID int64) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET referral_count = referral_count + 1, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	return err
}

func (r *UserRepository) SetLevel(ctx context.Context, userID int64, levelID *int64) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET level_id = $1 WHERE id = $2`,
		levelID, userID,
	)
	return err
}

// SetPlan writes the VIP flag and plan together; pass nil/nil to clear the plan.
func (r *UserRepository) SetPlan(ctx context.Context, userID int64, isVIP bool, planID *int64, start *time.Time) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET is_vip = $1, plan_id = $2, plan_start_date = $3, updated_at = NOW() WHERE id = $4`,
		isVIP, planID, start, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetPresence(ctx context.Context, userID int64, online, busy bool) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET is_online = $1, is_busy = $2 WHERE id = $3`,
		online, busy, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOffline clears presence and the live channel credentials.
func (r *UserRepository) SetOffline(ctx context.Context, userID int64) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET is_online = false, is_busy = false, token = NULL, channel = NULL WHERE id = $1`,
		userID,
	)
	return err
}

func (r *UserRepository) SetLiveChannel(ctx context.Context, userID int64, channel, token string) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET channel = $1, token = $2 WHERE id = $3`,
		channel, token, userID,
	)
	return err
}

// ToggleBlock flips is_block and returns the new value.
func (r *UserRepository) ToggleBlock(ctx context.Context, userID int64) (bool, error) {
	var blocked bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`UPDATE users SET is_block = NOT is_block, updated_at = NOW() WHERE id = $1 RETURNING is_block`,
		userID,
	).Scan(&blocked)
	return blocked, translate(err)
}

func (r *UserRepository) TouchLogin(ctx context.Context, userID int64, fcmToken string) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET last_login_at = NOW(), fcm_token = COALESCE(NULLIF($1, ''), fcm_token) WHERE id = $2`,
		fcmToken, userID,
	)
	return err
}

// FindMatchCandidates returns real users who are online, idle and unblocked.
func (r *UserRepository) FindMatchCandidates(ctx context.Context, f domain.MatchFilter) ([]domain.User, error) {
	return r.queryUsers(ctx, userSelect+`
		WHERE u.id <> $1 AND u.is_online AND NOT u.is_busy AND NOT u.is_fake AND NOT u.is_block
		  AND ($2 = '' OR LOWER(u.gender) = $2)`,
		f.ExcludeUserID, strings.ToLower(f.Gender),
	)
}

// FindFakeUsers returns every synthetic user, optionally of one gender.
func (r *UserRepository) FindFakeUsers(ctx context.Context, gender string) ([]domain.User, error) {
	return r.queryUsers(ctx, userSelect+`
		WHERE u.is_fake AND ($1 = '' OR LOWER(u.gender) = $1)`,
		strings.ToLower(gender),
	)
}

// GetByUsername compares case-insensitively.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, userSelect+` WHERE LOWER(u.username) = LOWER($1)`, username))
}

// UpdateProfile overwrites the editable columns. An empty email is stored as NULL.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, p domain.ProfileFields) error {
	var email *string
	if p.Email != "" {
		email = &p.Email
	}
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users
		 SET name = $1, username = $2, bio = $3, gender = $4, age = $5, image = $6,
		     country = $7, email = $8, updated_at = NOW()
		 WHERE id = $9`,
		p.Name, p.Username, p.Bio, p.Gender, p.Age, p.Image, p.Country, email, userID,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// likePattern escapes LIKE metacharacters and wraps s for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Search lists unblocked users other than the caller whose name or username contains
// the value, newest first.
func (r *UserRepository) Search(ctx context.Context, q domain.UserSearch) ([]domain.User, error) {
	return r.queryUsers(ctx, userSelect+`
		WHERE u.id <> $1 AND NOT u.is_block
		  AND (u.name ILIKE $2 OR u.username ILIKE $2)
		ORDER BY u.id DESC
		LIMIT $3 OFFSET $4`,
		q.ExcludeUserID, likePattern(q.Value), q.Limit, q.Offset,
	)
}

const userListWhere = `
	WHERE u.is_fake = $1
	  AND ($2 = '' OR u.username ILIKE $3 OR u.gender ILIKE $3 OR u.country ILIKE $3)
	  AND ($4::timestamptz IS NULL OR u.created_at >= $4)
	  AND ($5::timestamptz IS NULL OR u.created_at < $5)`

// List returns one page of the admin user list with totals over the whole filter.
func (r *UserRepository) List(ctx context.Context, f domain.UserListFilter) (*domain.UserList, error) {
	args := []any{f.Fake, f.Search, likePattern(f.Search), f.From, f.To}
	out := &domain.UserList{MaleFemale: []domain.GenderCount{}}

	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE u.is_online)
		FROM users u`+userListWhere, args...,
	).Scan(&out.Total, &out.ActiveUser)
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT LOWER(u.gender), COUNT(*)
		FROM users u`+userListWhere+`
		GROUP BY LOWER(u.gender)
		ORDER BY 1`, args...,
	)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var g domain.GenderCount
		if err := rows.Scan(&g.Gender, &g.Count); err != nil {
			rows.Close()
			return nil, err
		}
		out.MaleFemale = append(out.MaleFemale, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out.Users, err = r.queryUsers(ctx, userSelect+userListWhere+`
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $6 OFFSET $7`, append(args, f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, err
	}
	if out.Users == nil {
		out.Users = []domain.User{}
	}
	return out, nil
}
