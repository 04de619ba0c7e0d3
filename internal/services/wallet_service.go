package services

import (
	"context"
	"database/sql"
	"errors"

	"barbershop/internal/db"
	"barbershop/internal/logger"
	"barbershop/internal/models"
	"barbershop/internal/money"
	"barbershop/internal/store"
	"barbershop/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrTopUpBelowMinimum = errors.New("top-up below minimum")

// WalletService covers the pre-funding surface: the payment gateway is opaque,
// a top-up simply credits the wallet and appends a ledger entry.
type WalletService struct {
	txRunner      db.TxRunner
	wallets       WalletStore
	ledger        LedgerStore
	hub           BalanceHub
	minTopUpMinor int64
}

func NewWalletService(txRunner db.TxRunner, wallets WalletStore, ledger LedgerStore, hub BalanceHub, minTopUpMinor int64) *WalletService {
	return &WalletService{
		txRunner:      txRunner,
		wallets:       wallets,
		ledger:        ledger,
		hub:           hub,
		minTopUpMinor: minTopUpMinor,
	}
}

func (s *WalletService) TopUp(ctx context.Context, userID string, amountMinor int64) (int64, error) {
	if amountMinor <= 0 {
		return 0, ErrInvalidAmount
	}
	if amountMinor < s.minTopUpMinor {
		return 0, ErrTopUpBelowMinimum
	}
	var walletID string
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		wallet, err := lockOrCreateWallet(ctx, tx, s.wallets, userID)
		if err != nil {
			return err
		}
		entry, err := s.ledger.Append(ctx, tx, store.AppendInput{
			ID:          uuid.NewString(),
			WalletID:    wallet.ID,
			Kind:        store.KindTopUp,
			Amount:      amountMinor,
			Description: "Wallet top-up",
		})
		if err != nil {
			return err
		}
		walletID = wallet.ID
		balanceAfter = entry.BalanceAfter
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		WalletID: walletID,
		Balance:  money.FormatMinor(balanceAfter),
	})
	logger.Log.Infow("wallet topped up", "user_id", userID, "amount", amountMinor)
	return balanceAfter, nil
}

func (s *WalletService) Balance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrWalletNotFound
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *WalletService) Entries(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.ListByWallet(ctx, wallet.ID, limit, offset)
}
