package services

import (
	"context"
	"database/sql"
	"time"

	"barbershop/internal/models"
	"barbershop/internal/store"
	"barbershop/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	return fn(nil)
}

type stubWallets struct {
	wallets map[string]*models.Wallet // keyed by user ID
	created []string
}

func newStubWallets() *stubWallets {
	return &stubWallets{wallets: map[string]*models.Wallet{}}
}

func (s *stubWallets) add(userID, walletID string, balance int64) {
	s.wallets[userID] = &models.Wallet{ID: walletID, UserID: userID, Balance: balance}
}

func (s *stubWallets) Create(_ context.Context, _ store.Execer, id, userID string) error {
	s.created = append(s.created, userID)
	s.wallets[userID] = &models.Wallet{ID: id, UserID: userID}
	return nil
}

func (s *stubWallets) GetByUser(_ context.Context, userID string) (models.Wallet, error) {
	w, ok := s.wallets[userID]
	if !ok {
		return models.Wallet{}, sql.ErrNoRows
	}
	return *w, nil
}

func (s *stubWallets) GetForUpdateByUser(_ context.Context, _ store.Getter, userID string) (models.Wallet, error) {
	return s.GetByUser(context.Background(), userID)
}

func (s *stubWallets) byID(walletID string) *models.Wallet {
	for _, w := range s.wallets {
		if w.ID == walletID {
			return w
		}
	}
	return nil
}

// stubLedger mirrors the real append semantics against the in-memory wallets:
// it applies the kind-implied delta and rejects overdrafts.
type stubLedger struct {
	wallets *stubWallets
	appends []store.AppendInput
	entries []models.LedgerEntry
	listed  []models.LedgerEntry
	failOn  string // kind that should error
	err     error
}

func (s *stubLedger) Append(_ context.Context, _ store.Tx, input store.AppendInput) (models.LedgerEntry, error) {
	if s.failOn != "" && input.Kind == s.failOn {
		return models.LedgerEntry{}, s.err
	}
	delta, err := store.SignedDelta(input.Kind, input.Amount)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	w := s.wallets.byID(input.WalletID)
	before := w.Balance
	after := before + delta
	if after < 0 {
		return models.LedgerEntry{}, store.ErrInsufficientFunds
	}
	w.Balance = after
	entry := models.LedgerEntry{
		ID:            input.ID,
		WalletID:      input.WalletID,
		Kind:          input.Kind,
		Amount:        input.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   input.Description,
	}
	s.appends = append(s.appends, input)
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *stubLedger) ListByWallet(_ context.Context, _ string, _, _ int) ([]models.LedgerEntry, error) {
	return s.listed, nil
}

type stubBookings struct {
	booking      models.Booking
	bookingErr   error
	reservedHits int
	created      []store.BookingInput
	completed    []string
	cancelled    []string
	cancelReason string
}

func (s *stubBookings) Create(_ context.Context, _ store.Execer, input store.BookingInput) error {
	s.created = append(s.created, input)
	return nil
}

func (s *stubBookings) GetForUpdate(_ context.Context, _ store.Getter, bookingID string) (models.Booking, error) {
	if s.bookingErr != nil {
		return models.Booking{}, s.bookingErr
	}
	return s.booking, nil
}

func (s *stubBookings) MarkCompleted(_ context.Context, _ store.Execer, bookingID string, _ time.Time) error {
	s.completed = append(s.completed, bookingID)
	return nil
}

func (s *stubBookings) MarkCancelled(_ context.Context, _ store.Execer, bookingID, reason string, _ time.Time) error {
	s.cancelled = append(s.cancelled, bookingID)
	s.cancelReason = reason
	return nil
}

func (s *stubBookings) CountReserved(_ context.Context, _ store.Getter, _, _, _ string) (int, error) {
	return s.reservedHits, nil
}

type stubCatalog struct {
	services map[string]models.Service
}

func (s *stubCatalog) GetActive(_ context.Context, serviceID string) (models.Service, error) {
	svc, ok := s.services[serviceID]
	if !ok {
		return models.Service{}, sql.ErrNoRows
	}
	return svc, nil
}

type stubHub struct {
	updates map[string]websocket.BalanceUpdate
}

func newStubHub() *stubHub {
	return &stubHub{updates: map[string]websocket.BalanceUpdate{}}
}

func (s *stubHub) BroadcastBalance(userID string, update websocket.BalanceUpdate) {
	s.updates[userID] = update
}

func percent(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func testPolicy() Policy {
	return Policy{
		CommissionRate:      percent(5),
		LateFeeRate:         percent(10),
		LateCancelThreshold: 2 * time.Hour,
		MinLeadTime:         30 * time.Minute,
	}
}
