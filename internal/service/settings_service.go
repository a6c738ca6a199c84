package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/repository"

	redis "github.com/redis/go-redis/v9"
)

const settingsCacheKey = "settings:global"

// SettingsProvider supplies the current economy settings.
type SettingsProvider interface {
	Settings(ctx context.Context) (*domain.Setting, error)
}

// SettingsService reads settings from postgres through an optional redis cache.
type SettingsService struct {
	store SettingStore
	cache *redis.Client
	ttl   time.Duration
}

// NewSettingsService creates the service; cache may be nil.
func NewSettingsService(store SettingStore, cache *redis.Client, ttl time.Duration) *SettingsService {
	return &SettingsService{store: store, cache: cache, ttl: ttl}
}

// Settings returns the cached row, falling back to the database. A missing row
// reads as all-zero settings.
func (s *SettingsService) Settings(ctx context.Context) (*domain.Setting, error) {
	if s.cache != nil {
		b, err := s.cache.Get(ctx, settingsCacheKey).Bytes()
		if err == nil {
			var st domain.Setting
			if json.Unmarshal(b, &st) == nil {
				return &st, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Warn("settings cache read failed", "error", err)
		}
	}

	st, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		st = &domain.Setting{}
	}

	if s.cache != nil {
		if b, err := json.Marshal(st); err == nil {
			if err := s.cache.Set(ctx, settingsCacheKey, b, s.ttl).Err(); err != nil {
				logger.Warn("settings cache write failed", "error", err)
			}
		}
	}
	return st, nil
}

// Update persists new settings and drops the cached copy.
func (s *SettingsService) Update(ctx context.Context, st *domain.Setting) error {
	if st.LoginBonus < 0 || st.ReferralBonus < 0 {
		return invalidInput("bonuses must not be negative")
	}
	if err := s.store.Save(ctx, st); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func (s *SettingsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, settingsCacheKey).Err(); err != nil {
		logger.Warn("settings cache invalidate failed", "error", err)
	}
}
