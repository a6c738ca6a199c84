package service

import (
	"context"
	"errors"
	"strings"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/repository"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// ProfileService serves the signed-in user's own profile and their view of others.
type ProfileService struct {
	users  UserStore
	plans  *PlanService
	levels *LevelService
	audit  *AuditService
}

func NewProfileService(users UserStore, plans *PlanService, levels *LevelService, audit *AuditService) *ProfileService {
	return &ProfileService{users: users, plans: plans, levels: levels, audit: audit}
}

func (s *ProfileService) user(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetProfile reconciles the VIP plan and recomputes the level before returning the user.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.plans.reconcile(ctx, u); err != nil {
		return nil, err
	}
	if err := s.levels.apply(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type ProfileUpdate struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
}

// UpdateProfile replaces name, username, bio, gender and age. The username must be
// free among other users, ignoring case.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Age < 0 {
		return nil, ErrInvalidDetails
	}

	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if taken, err := s.users.UsernameTaken(ctx, in.Username, userID); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	p := u.Editable()
	p.Name = strings.TrimSpace(in.Name)
	p.Username = in.Username
	p.Bio = in.Bio
	p.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	p.Age = in.Age
	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, mapDuplicate(err)
	}

	logger.WithContext(ctx).Info("profile updated", "user_id", userID)
	s.audit.Log(ctx, userID, domain.AuditActionProfileUpdate, domain.AuditCategoryAuth, map[string]interface{}{
		"username": p.Username,
	})
	return s.GetProfile(ctx, userID)
}

// Search finds other unblocked users by name or username. limit defaults to 20 and is
// capped at 100.
func (s *ProfileService) Search(ctx context.Context, userID int64, value string, start, limit int) ([]*domain.PublicUser, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	if start < 0 {
		start = 0
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	users, err := s.users.Search(ctx, domain.UserSearch{
		ExcludeUserID: userID,
		Value:         strings.TrimSpace(value),
		Offset:        start,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// UserProfile returns another user's public profile, by id when profileUserID is set
// and by username otherwise. The viewer must exist.
func (s *ProfileService) UserProfile(ctx context.Context, viewerID, profileUserID int64, username string) (*domain.PublicUser, error) {
	if _, err := s.user(ctx, viewerID); err != nil {
		return nil, err
	}

	var (
		u   *domain.User
		err error
	)
	switch username = strings.TrimSpace(username); {
	case profileUserID > 0:
		u, err = s.users.GetByID(ctx, profileUserID)
	case username != "":
		u, err = s.users.GetByUsername(ctx, username)
	default:
		return nil, ErrInvalidDetails
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u.Public(), nil
}
