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

// PresenceService drives the Offline -> Idle -> Busy -> Idle -> Offline lifecycle.
type PresenceService struct {
	tx    TxRunner
	users UserStore
	live  LiveStore
	now   func() time.Time
}

func NewPresenceService(tx TxRunner, users UserStore, live LiveStore) *PresenceService {
	return &PresenceService{tx: tx, users: users, live: live, now: time.Now}
}

// Online marks the user online and idle.
func (s *PresenceService) Online(ctx context.Context, userID int64) error {
	return s.setPresence(ctx, userID, true, false)
}

func (s *PresenceService) CallStart(ctx context.Context, userID int64) error {
	return s.setPresence(ctx, userID, true, true)
}

func (s *PresenceService) CallEnd(ctx context.Context, userID int64) error {
	return s.setPresence(ctx, userID, true, false)
}

func (s *PresenceService) setPresence(ctx context.Context, userID int64, online, busy bool) error {
	if err := s.users.SetPresence(ctx, userID, online, busy); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// LiveStart registers a live broadcast on channel for the user.
func (s *PresenceService) LiveStart(ctx context.Context, userID int64, channel, token string) (*domain.LiveUser, error) {
	channel, token = strings.TrimSpace(channel), strings.TrimSpace(token)
	if channel == "" || token == "" {
		return nil, invalidInput("channel and token are required")
	}

	lu := &domain.LiveUser{UserID: userID, Channel: channel, Token: token}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.SetLiveChannel(ctx, userID, channel, token); err != nil {
			return err
		}
		return s.live.Start(ctx, lu)
	})
	if err != nil {
		return nil, err
	}
	return lu, nil
}

// Offline clears presence and live credentials and closes any running broadcast
// into the live history.
func (s *PresenceService) Offline(ctx context.Context, userID int64) error {
	var ended *domain.LiveStreamingHistory
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.SetOffline(ctx, userID); err != nil {
			return err
		}
		var err error
		ended, err = s.live.End(ctx, userID, s.now())
		return err
	})
	if err != nil {
		return err
	}
	if ended != nil {
		logger.Info("live session closed", "user_id", userID, "duration_seconds", ended.DurationSeconds)
	}
	return nil
}
