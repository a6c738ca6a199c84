package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"streamhub/internal/domain"
)

func TestPurchaseHistory(t *testing.T) {
	e := newEnv(&domain.User{ID: 1, Name: "me"}, &domain.User{ID: 2, Name: "friend"})
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := e.balanceSvc.Apply(ctx, domain.NewRechargeEntry(1, int64(i+1), RechargeGateway, time.Now())); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if _, err := e.balanceSvc.Apply(ctx, domain.NewReferralBonusEntry(1, 2, domain.CurrencyDiamond, 5)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := e.live.Start(ctx, &domain.LiveUser{UserID: 1, Channel: "c", Token: "t"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.live.End(ctx, 1, time.Now()); err != nil {
		t.Fatalf("end: %v", err)
	}

	kolkata := time.FixedZone("IST", 5*3600+1800)
	svc := NewHistoryService(e.users, e.ledger, e.live, kolkata)

	page, err := svc.PurchaseHistory(ctx, 1, 1, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.WalletHistoryTotal != 13 || len(page.WalletHistory) != DefaultHistoryLimit {
		t.Fatalf("total=%d len=%d", page.WalletHistoryTotal, len(page.WalletHistory))
	}
	first := page.WalletHistory[0]
	if first.Kind != domain.EntryReferralBonus || first.Type != 6 || first.OtherUserName != "friend" {
		t.Fatalf("newest entry should be the referral bonus, got %+v", first)
	}
	if want := first.CreatedAt.In(kolkata).Format(DisplayLayout); first.Date != want {
		t.Fatalf("date = %q, want %q", first.Date, want)
	}
	for i := 1; i < len(page.WalletHistory); i++ {
		if page.WalletHistory[i].ID >= page.WalletHistory[i-1].ID {
			t.Fatalf("history not newest first")
		}
	}
	if page.LiveStreamingHistoryTotal != 1 || len(page.LiveStreamingHistory) != 1 {
		t.Fatalf("live history = %+v", page.LiveStreamingHistory)
	}

	page2, err := svc.PurchaseHistory(ctx, 1, 2, 10)
	if err != nil {
		t.Fatalf("history page 2: %v", err)
	}
	if len(page2.WalletHistory) != 3 || len(page2.LiveStreamingHistory) != 0 {
		t.Fatalf("page 2 sizes: wallet=%d live=%d", len(page2.WalletHistory), len(page2.LiveStreamingHistory))
	}
}

func TestPurchaseHistory_HugePageIsEmpty(t *testing.T) {
	e := newEnv(&domain.User{ID: 1, Name: "me"})
	ctx := context.Background()
	if _, err := e.balanceSvc.Apply(ctx, domain.NewRechargeEntry(1, 5, RechargeGateway, time.Now())); err != nil {
		t.Fatalf("apply: %v", err)
	}

	svc := NewHistoryService(e.users, e.ledger, e.live, nil)
	page, err := svc.PurchaseHistory(ctx, 1, math.MaxInt, MaxHistoryLimit)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.WalletHistory) != 0 || page.WalletHistoryTotal != 1 {
		t.Fatalf("wallet=%d total=%d", len(page.WalletHistory), page.WalletHistoryTotal)
	}
}

func TestPurchaseHistory_UnknownUser(t *testing.T) {
	e := newEnv()
	svc := NewHistoryService(e.users, e.ledger, e.live, nil)
	if _, err := svc.PurchaseHistory(context.Background(), 5, 1, 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
