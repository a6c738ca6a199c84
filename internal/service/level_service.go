package service

import (
	"context"
	"errors"
	"strings"

	"streamhub/internal/domain"
	"streamhub/internal/repository"
)

// LevelService assigns spend tiers.
type LevelService struct {
	users  UserStore
	levels LevelStore
}

func NewLevelService(users UserStore, levels LevelStore) *LevelService {
	return &LevelService{users: users, levels: levels}
}

// Recompute resolves and stores the user's level from spentCoin.
func (s *LevelService) Recompute(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.apply(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// apply always writes the level, even when it did not change.
func (s *LevelService) apply(ctx context.Context, u *domain.User) error {
	lvl, err := s.Resolve(ctx, u.SpentCoin)
	if err != nil {
		return err
	}

	var id *int64
	if lvl != nil {
		id = &lvl.ID
	}
	if err := s.users.SetLevel(ctx, u.ID, id); err != nil {
		return err
	}
	u.LevelID, u.Level = id, lvl
	return nil
}

// Resolve returns the level for a spend total, or nil when no levels exist.
func (s *LevelService) Resolve(ctx context.Context, spent int64) (*domain.Level, error) {
	levels, err := s.levels.List(ctx)
	if err != nil {
		return nil, err
	}
	lvl := domain.ResolveLevel(levels, spent)
	if lvl == nil {
		return nil, nil
	}
	out := *lvl
	return &out, nil
}

func (s *LevelService) List(ctx context.Context) ([]domain.Level, error) {
	return s.levels.List(ctx)
}

func (s *LevelService) Create(ctx context.Context, name string, coin int64, image string) (*domain.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" || coin < 0 {
		return nil, invalidInput("level needs a name and a non-negative coin threshold")
	}
	l := &domain.Level{Name: name, Coin: coin, Image: image}
	if err := s.levels.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
