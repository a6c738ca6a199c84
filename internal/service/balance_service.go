package service

import (
	"context"
	"errors"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/repository"
)

// BalanceService is the only writer of user balances. Every change is applied as a
// signed delta in the database together with its ledger entry.
type BalanceService struct {
	tx     TxRunner
	users  UserStore
	ledger LedgerStore
}

// NewBalanceService creates a new balance service
func NewBalanceService(tx TxRunner, users UserStore, ledger LedgerStore) *BalanceService {
	return &BalanceService{tx: tx, users: users, ledger: ledger}
}

// Balances is a user's pair of balances after a change.
type Balances struct {
	RCoin   int64 `json:"r_coin"`
	Diamond int64 `json:"diamond"`
}

// Apply applies the entry's delta to its owner and appends the entry, atomically.
// Called inside an outer WithinTx it joins that transaction.
func (s *BalanceService) Apply(ctx context.Context, e *domain.WalletEntry) (*Balances, error) {
	if !e.Kind.Valid() {
		return nil, invalidInput("unknown ledger entry kind %q", e.Kind)
	}

	var b Balances
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rCoin, diamond := e.Delta()
		var err error
		b.RCoin, b.Diamond, err = s.users.AddBalances(ctx, e.UserID, rCoin, diamond)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return s.ledger.Append(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	LedgerEntries.WithLabelValues(string(e.Kind)).Inc()
	return &b, nil
}

// GetBalance reads the user's current balances.
func (s *BalanceService) GetBalance(ctx context.Context, userID int64) (*Balances, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &Balances{RCoin: u.RCoin, Diamond: u.Diamond}, nil
}

// LedgerCheck compares stored balances with the sum of the user's ledger.
type LedgerCheck struct {
	UserID        int64 `json:"user_id"`
	RCoin         int64 `json:"r_coin"`
	Diamond       int64 `json:"diamond"`
	LedgerRCoin   int64 `json:"ledger_r_coin"`
	LedgerDiamond int64 `json:"ledger_diamond"`
	Consistent    bool  `json:"consistent"`
}

// CheckLedger reads the balances and the ledger totals in one transaction.
func (s *BalanceService) CheckLedger(ctx context.Context, userID int64) (*LedgerCheck, error) {
	res := &LedgerCheck{UserID: userID}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		res.RCoin, res.Diamond = u.RCoin, u.Diamond
		res.LedgerRCoin, res.LedgerDiamond, err = s.ledger.SumByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Consistent = res.RCoin == res.LedgerRCoin && res.Diamond == res.LedgerDiamond
	if !res.Consistent {
		logger.Warn("ledger mismatch", "user_id", userID,
			"r_coin", res.RCoin, "ledger_r_coin", res.LedgerRCoin,
			"diamond", res.Diamond, "ledger_diamond", res.LedgerDiamond)
	}
	return res, nil
}
