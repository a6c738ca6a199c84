package service

import (
	"context"
	"errors"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
	MaxHistoryPage      = 1_000_000
)

// DisplayLayout formats ledger times the way clients show them.
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// HistoryService pages a user's wallet ledger and live sessions.
type HistoryService struct {
	users  UserStore
	ledger LedgerStore
	live   LiveStore
	loc    *time.Location
}

// NewHistoryService renders display dates in loc (UTC when nil).
func NewHistoryService(users UserStore, ledger LedgerStore, live LiveStore, loc *time.Location) *HistoryService {
	if loc == nil {
		loc = time.UTC
	}
	return &HistoryService{users: users, ledger: ledger, live: live, loc: loc}
}

// PurchaseHistory returns one page of both histories, newest first, with totals.
// page starts at 1 and is capped at MaxHistoryPage; limit defaults to 10 and is capped at 100.
func (s *HistoryService) PurchaseHistory(ctx context.Context, userID int64, page, limit int) (*domain.PurchaseHistory, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxHistoryPage {
		page = MaxHistoryPage
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	offset := (page - 1) * limit

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var out domain.PurchaseHistory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.WalletHistory, err = s.ledger.ListByUser(gctx, userID, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		out.WalletHistoryTotal, err = s.ledger.CountByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		out.LiveStreamingHistory, err = s.live.ListHistory(gctx, userID, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		out.LiveStreamingHistoryTotal, err = s.live.CountHistory(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out.WalletHistory {
		out.WalletHistory[i].Date = out.WalletHistory[i].CreatedAt.In(s.loc).Format(DisplayLayout)
	}
	return &out, nil
}
