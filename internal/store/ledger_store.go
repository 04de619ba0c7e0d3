package store

import (
	"context"
	"fmt"

	"barbershop/internal/models"
)

// Ledger entry kinds. Amounts are stored positive; the kind decides the sign
// of the balance delta. Commission and late-fee entries document amounts
// retained by the platform and never move the wallet balance.
const (
	KindTopUp      = "top-up"
	KindPayment    = "payment"
	KindRefund     = "refund"
	KindLateFee    = "late-fee"
	KindPayout     = "payout"
	KindCommission = "commission"
)

// SignedDelta maps (kind, amount) to the balance change it causes.
func SignedDelta(kind string, amount int64) (int64, error) {
	switch kind {
	case KindPayment:
		return -amount, nil
	case KindTopUp, KindRefund, KindPayout:
		return amount, nil
	case KindCommission, KindLateFee:
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown ledger kind %q", kind)
	}
}

type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type AppendInput struct {
	ID          string
	WalletID    string
	Kind        string
	Amount      int64
	Description string
}

type walletBalanceRow struct {
	ID      string `db:"id"`
	Balance int64  `db:"balance"`
}

// Append re-reads the wallet balance under lock, derives balance_after from
// the entry kind, updates the wallet and inserts the immutable entry. All of
// it happens on the caller's transaction, so a later failure unwinds the
// balance change together with the entry.
func (s *LedgerStore) Append(ctx context.Context, tx Tx, input AppendInput) (models.LedgerEntry, error) {
	if input.Amount < 0 {
		return models.LedgerEntry{}, fmt.Errorf("ledger amount must not be negative: %d", input.Amount)
	}
	delta, err := SignedDelta(input.Kind, input.Amount)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	var wallet walletBalanceRow
	if err := tx.GetContext(ctx, &wallet, `
		SELECT id, balance
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`, input.WalletID); err != nil {
		return models.LedgerEntry{}, err
	}
	balanceAfter := wallet.Balance + delta
	if balanceAfter < 0 {
		return models.LedgerEntry{}, ErrInsufficientFunds
	}
	if delta != 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets
			SET balance = $1, updated_at = NOW()
			WHERE id = $2
		`, balanceAfter, input.WalletID); err != nil {
			return models.LedgerEntry{}, err
		}
	}
	entry := models.LedgerEntry{
		ID:            input.ID,
		WalletID:      input.WalletID,
		Kind:          input.Kind,
		Amount:        input.Amount,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  balanceAfter,
		Description:   input.Description,
	}
	if err := tx.GetContext(ctx, &entry.CreatedAt, `
		INSERT INTO ledger_entries (id, wallet_id, kind, amount, balance_before, balance_after, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, entry.ID, entry.WalletID, entry.Kind, entry.Amount, entry.BalanceBefore, entry.BalanceAfter, entry.Description); err != nil {
		return models.LedgerEntry{}, err
	}
	return entry, nil
}

func (s *LedgerStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]models.LedgerEntry, error) {
	var rows []models.LedgerEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, wallet_id, kind, amount, balance_before, balance_after, description, created_at
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumSignedByWallet reconciles a wallet: the signed sum of all entries must
// equal the stored balance.
func (s *LedgerStore) SumSignedByWallet(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(balance_after - balance_before), 0)
		FROM ledger_entries
		WHERE wallet_id = $1
	`, walletID)
	return sum, err
}
