package service

import (
	"context"
	"errors"
	"testing"

	"streamhub/internal/domain"
)

func referralFixture() *env {
	claimant := &domain.User{ID: 1, Name: "claimant", ReferralCode: "AAAA1111", RCoin: 10, Diamond: 20}
	owner := &domain.User{ID: 2, Name: "owner", ReferralCode: "BBBB2222", RCoin: 30, Diamond: 40}
	e := newEnv(claimant, owner)
	e.settings.s = &domain.Setting{ReferralBonus: 50}
	return e
}

func TestRedeem_CreditsBothPartiesAndWritesTwoEntries(t *testing.T) {
	e := referralFixture()
	ctx := context.Background()

	u, err := e.referral().Redeem(ctx, 1, " BBBB2222 ")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !u.IsReferral {
		t.Fatalf("expected claimant to be marked as referred")
	}
	if u.Diamond != 70 || u.RCoin != 10 {
		t.Fatalf("claimant balances = (%d, %d), want (10, 70)", u.RCoin, u.Diamond)
	}

	owner, _ := e.users.GetByID(ctx, 2)
	if owner.RCoin != 80 || owner.Diamond != 40 {
		t.Fatalf("owner balances = (%d, %d), want (80, 40)", owner.RCoin, owner.Diamond)
	}
	if owner.ReferralCount != 1 {
		t.Fatalf("owner referral count = %d, want 1", owner.ReferralCount)
	}

	if len(e.ledger.entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(e.ledger.entries))
	}
	for _, entry := range e.ledger.entries {
		if entry.Kind != domain.EntryReferralBonus || entry.Kind.Code() != 6 || !entry.IsIncome {
			t.Fatalf("unexpected entry %+v", entry)
		}
		if entry.OtherUserID == nil {
			t.Fatalf("entry %d has no counterparty", entry.ID)
		}
		switch entry.UserID {
		case 1:
			if *entry.OtherUserID != 2 || entry.Diamond != 50 || entry.RCoin != 0 {
				t.Fatalf("claimant entry wrong: %+v", entry)
			}
		case 2:
			if *entry.OtherUserID != 1 || entry.RCoin != 50 || entry.Diamond != 0 {
				t.Fatalf("owner entry wrong: %+v", entry)
			}
		default:
			t.Fatalf("entry for unexpected user %d", entry.UserID)
		}
	}
}

func TestRedeem_ReplayIsRejectedWithoutSideEffects(t *testing.T) {
	e := referralFixture()
	ctx := context.Background()
	svc := e.referral()

	if _, err := svc.Redeem(ctx, 1, "BBBB2222"); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	before1, _ := e.users.GetByID(ctx, 1)
	before2, _ := e.users.GetByID(ctx, 2)

	_, err := svc.Redeem(ctx, 1, "BBBB2222")
	if !errors.Is(err, ErrReferralUsed) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrReferralUsed, got %v", err)
	}

	after1, _ := e.users.GetByID(ctx, 1)
	after2, _ := e.users.GetByID(ctx, 2)
	if after1.Diamond != before1.Diamond || after2.RCoin != before2.RCoin || after2.ReferralCount != before2.ReferralCount {
		t.Fatalf("replay changed balances")
	}
	if len(e.ledger.entries) != 2 {
		t.Fatalf("replay wrote ledger entries: %d", len(e.ledger.entries))
	}
}

func TestRedeem_SelfReferralRejectedBeforeMutation(t *testing.T) {
	e := referralFixture()

	_, err := e.referral().Redeem(context.Background(), 1, "AAAA1111")
	if !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("expected ErrSelfReferral, got %v", err)
	}
	u, _ := e.users.GetByID(context.Background(), 1)
	if u.IsReferral || u.Diamond != 20 {
		t.Fatalf("self referral mutated user: %+v", u)
	}
	if len(e.ledger.entries) != 0 || e.tx.calls != 0 {
		t.Fatalf("self referral reached storage")
	}
}

func TestRedeem_InputErrors(t *testing.T) {
	e := referralFixture()
	ctx := context.Background()
	svc := e.referral()

	tests := []struct {
		name   string
		userID int64
		code   string
		want   error
		class  error
	}{
		{"missing code", 1, "  ", ErrInvalidDetails, ErrInvalidInput},
		{"missing user id", 0, "BBBB2222", ErrInvalidDetails, ErrInvalidInput},
		{"unknown claimant", 99, "BBBB2222", ErrUserNotFound, ErrNotFound},
		{"unknown code", 1, "ZZZZ9999", ErrReferralCodeNotFound, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Redeem(ctx, tt.userID, tt.code)
			if !errors.Is(err, tt.want) || !errors.Is(err, tt.class) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
	if len(e.ledger.entries) != 0 {
		t.Fatalf("rejected redeems wrote ledger entries")
	}
}

func TestRedeem_LocksUsersInIDOrder(t *testing.T) {
	e := referralFixture()
	ctx := context.Background()

	// claimant 2 redeems the code of owner 1
	if _, err := e.referral().Redeem(ctx, 2, "AAAA1111"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if len(e.users.locks) != 2 || e.users.locks[0] != 1 || e.users.locks[1] != 2 {
		t.Fatalf("lock order = %v, want [1 2]", e.users.locks)
	}
}
