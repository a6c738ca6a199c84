package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/repository"
)

// ReferralService grants the one-time referral bonus.
type ReferralService struct {
	tx       TxRunner
	users    UserStore
	balance  *BalanceService
	settings SettingsProvider
	audit    *AuditService
}

func NewReferralService(tx TxRunner, users UserStore, balance *BalanceService, settings SettingsProvider, audit *AuditService) *ReferralService {
	return &ReferralService{tx: tx, users: users, balance: balance, settings: settings, audit: audit}
}

// Redeem applies code for userID. The claimant is credited diamonds and the code
// owner r_coin, each with a referral_bonus entry naming the other party.
func (s *ReferralService) Redeem(ctx context.Context, userID int64, code string) (*domain.User, error) {
	code = strings.TrimSpace(code)
	if userID == 0 || code == "" {
		return nil, ErrInvalidDetails
	}

	claimant, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if claimant.ReferralCode == code {
		ReferralRedemptions.WithLabelValues("self").Inc()
		return nil, ErrSelfReferral
	}

	owner, err := s.users.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			ReferralRedemptions.WithLabelValues("unknown_code").Inc()
			return nil, ErrReferralCodeNotFound
		}
		return nil, err
	}

	st, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	bonus := st.ReferralBonus

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := lockUsers(ctx, s.users, claimant.ID, owner.ID); err != nil {
			return err
		}
		ok, err := s.users.MarkReferralUsed(ctx, claimant.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrReferralUsed
		}

		if _, err := s.balance.Apply(ctx, domain.NewReferralBonusEntry(claimant.ID, owner.ID, domain.CurrencyDiamond, bonus)); err != nil {
			return err
		}
		if _, err := s.balance.Apply(ctx, domain.NewReferralBonusEntry(owner.ID, claimant.ID, domain.CurrencyRCoin, bonus)); err != nil {
			return err
		}
		return s.users.IncrementReferralCount(ctx, owner.ID)
	})
	if err != nil {
		if errors.Is(err, ErrReferralUsed) {
			ReferralRedemptions.WithLabelValues("already_used").Inc()
		}
		return nil, err
	}

	ReferralRedemptions.WithLabelValues("ok").Inc()
	logger.WithContext(ctx).Info("referral redeemed", "user_id", claimant.ID, "owner_id", owner.ID, "bonus", bonus)
	s.audit.Log(ctx, claimant.ID, domain.AuditActionReferralRedeem, domain.AuditCategoryReferral, map[string]interface{}{
		"owner_id": owner.ID,
		"bonus":    bonus,
	})

	return s.users.GetByID(ctx, claimant.ID)
}

// lockUsers row-locks the given users in ascending id order, so two redemptions
// crossing the same pair always queue instead of deadlocking.
func lockUsers(ctx context.Context, users UserStore, ids ...int64) error {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		if _, err := users.GetByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
	}
	return nil
}
