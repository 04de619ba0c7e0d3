package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"barbershop/internal/booking"
	"barbershop/internal/db"
	"barbershop/internal/logger"
	"barbershop/internal/models"
	"barbershop/internal/money"
	"barbershop/internal/schedule"
	"barbershop/internal/store"
	"barbershop/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrSelfBooking       = errors.New("cannot book a service with yourself")
	ErrPastSlot          = errors.New("slot is in the past")
	ErrServiceNotFound   = errors.New("service not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSlotTaken         = errors.New("slot already taken")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrForbidden         = errors.New("forbidden")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// Policy carries the booking business rules. Rates are percentages.
type Policy struct {
	CommissionRate      decimal.Decimal
	LateFeeRate         decimal.Decimal
	LateCancelThreshold time.Duration
	MinLeadTime         time.Duration
}

type BookingStore interface {
	Create(ctx context.Context, tx store.Execer, input store.BookingInput) error
	GetForUpdate(ctx context.Context, tx store.Getter, bookingID string) (models.Booking, error)
	MarkCompleted(ctx context.Context, tx store.Execer, bookingID string, at time.Time) error
	MarkCancelled(ctx context.Context, tx store.Execer, bookingID, reason string, at time.Time) error
	CountReserved(ctx context.Context, tx store.Getter, staffID, date, slotTime string) (int, error)
}

type WalletStore interface {
	Create(ctx context.Context, tx store.Execer, id, userID string) error
	GetByUser(ctx context.Context, userID string) (models.Wallet, error)
	GetForUpdateByUser(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
}

type LedgerStore interface {
	Append(ctx context.Context, tx store.Tx, input store.AppendInput) (models.LedgerEntry, error)
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]models.LedgerEntry, error)
}

type CatalogStore interface {
	GetActive(ctx context.Context, serviceID string) (models.Service, error)
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// BookingService is the transaction orchestrator: every compound operation
// runs inside one serializable unit of work, and wallet balances are only
// touched through the ledger store while the wallet row is locked.
type BookingService struct {
	txRunner db.TxRunner
	bookings BookingStore
	wallets  WalletStore
	ledger   LedgerStore
	catalog  CatalogStore
	hub      BalanceHub
	policy   Policy
	now      func() time.Time
}

func NewBookingService(txRunner db.TxRunner, bookings BookingStore, wallets WalletStore, ledger LedgerStore, catalog CatalogStore, hub BalanceHub, policy Policy) *BookingService {
	return &BookingService{
		txRunner: txRunner,
		bookings: bookings,
		wallets:  wallets,
		ledger:   ledger,
		catalog:  catalog,
		hub:      hub,
		policy:   policy,
		now:      time.Now,
	}
}

type ReserveRequest struct {
	ClientID  string
	StaffID   string
	ServiceID string
	Date      string
	SlotTime  string
}

func (s *BookingService) Reserve(ctx context.Context, req ReserveRequest) (models.Booking, error) {
	if req.ClientID == req.StaffID {
		return models.Booking{}, ErrSelfBooking
	}
	now := s.now()
	start, err := schedule.SlotStart(req.Date, req.SlotTime, now.Location())
	if err != nil {
		return models.Booking{}, err
	}
	if !start.After(now.Add(s.policy.MinLeadTime)) {
		return models.Booking{}, ErrPastSlot
	}

	var created models.Booking
	var walletID string
	var balanceAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		svc, err := s.catalog.GetActive(ctx, req.ServiceID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrServiceNotFound
		}
		if err != nil {
			return err
		}
		price := svc.PriceMinor
		commission := rateShare(price, s.policy.CommissionRate)
		staffNet := price - commission

		wallet, err := lockOrCreateWallet(ctx, tx, s.wallets, req.ClientID)
		if err != nil {
			return err
		}
		if wallet.Balance < price {
			return ErrInsufficientFunds
		}

		// Re-check occupancy under the same transaction that inserts the
		// booking; the partial unique index covers the remaining race.
		occupied, err := s.bookings.CountReserved(ctx, tx, req.StaffID, req.Date, req.SlotTime)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return ErrSlotTaken
		}

		bookingID := uuid.NewString()
		if err := s.bookings.Create(ctx, tx, store.BookingInput{
			ID:         bookingID,
			ClientID:   req.ClientID,
			StaffID:    req.StaffID,
			ServiceID:  req.ServiceID,
			Date:       req.Date,
			SlotTime:   req.SlotTime,
			PriceMinor: price,
			Commission: commission,
			StaffNet:   staffNet,
			Status:     string(booking.StatusReserved),
		}); err != nil {
			return err
		}
		entry, err := s.ledger.Append(ctx, tx, store.AppendInput{
			ID:          uuid.NewString(),
			WalletID:    wallet.ID,
			Kind:        store.KindPayment,
			Amount:      price,
			Description: "Booking " + bookingID,
		})
		if errors.Is(err, store.ErrInsufficientFunds) {
			return ErrInsufficientFunds
		}
		if err != nil {
			return err
		}
		walletID = wallet.ID
		balanceAfter = entry.BalanceAfter
		created = models.Booking{
			ID:         bookingID,
			ClientID:   req.ClientID,
			StaffID:    req.StaffID,
			ServiceID:  req.ServiceID,
			Date:       req.Date,
			SlotTime:   req.SlotTime,
			PriceMinor: price,
			Commission: commission,
			StaffNet:   staffNet,
			Status:     string(booking.StatusReserved),
			CreatedAt:  now,
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.Booking{}, ErrSlotTaken
		}
		return models.Booking{}, err
	}
	s.hub.BroadcastBalance(req.ClientID, websocket.BalanceUpdate{
		WalletID: walletID,
		Balance:  money.FormatMinor(balanceAfter),
	})
	logger.Log.Infow("booking reserved",
		"booking_id", created.ID, "staff_id", req.StaffID, "date", req.Date, "time", req.SlotTime)
	return created, nil
}

type CompleteRequest struct {
	BookingID string
	ActorID   string
	ActorRole string
}

type PayoutSummary struct {
	StaffNet   int64
	Commission int64
}

func (s *BookingService) Complete(ctx context.Context, req CompleteRequest) (PayoutSummary, error) {
	var summary PayoutSummary
	var staffID, walletID string
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		b, err := s.bookings.GetForUpdate(ctx, tx, req.BookingID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if req.ActorID != b.StaffID && req.ActorRole != models.RoleAdmin {
			return ErrForbidden
		}
		if _, err := booking.Complete(booking.Status(b.Status)); err != nil {
			return err
		}
		if err := s.bookings.MarkCompleted(ctx, tx, b.ID, s.now()); err != nil {
			return err
		}
		wallet, err := lockOrCreateWallet(ctx, tx, s.wallets, b.StaffID)
		if err != nil {
			return err
		}
		payout, err := s.ledger.Append(ctx, tx, store.AppendInput{
			ID:          uuid.NewString(),
			WalletID:    wallet.ID,
			Kind:        store.KindPayout,
			Amount:      b.StaffNet,
			Description: "Booking " + b.ID + " payout",
		})
		if err != nil {
			return err
		}
		// Commission stays with the platform; the entry only documents it.
		if _, err := s.ledger.Append(ctx, tx, store.AppendInput{
			ID:          uuid.NewString(),
			WalletID:    wallet.ID,
			Kind:        store.KindCommission,
			Amount:      b.Commission,
			Description: "Booking " + b.ID + " commission",
		}); err != nil {
			return err
		}
		staffID = b.StaffID
		walletID = wallet.ID
		balanceAfter = payout.BalanceAfter
		summary = PayoutSummary{StaffNet: b.StaffNet, Commission: b.Commission}
		return nil
	})
	if err != nil {
		return PayoutSummary{}, err
	}
	s.hub.BroadcastBalance(staffID, websocket.BalanceUpdate{
		WalletID: walletID,
		Balance:  money.FormatMinor(balanceAfter),
	})
	logger.Log.Infow("booking completed",
		"booking_id", req.BookingID, "staff_net", summary.StaffNet, "commission", summary.Commission)
	return summary, nil
}

type CancelRequest struct {
	BookingID string
	ActorID   string
	ActorRole string
	Reason    string
}

type RefundSummary struct {
	Refund     int64
	Fee        int64
	FeeApplied bool
}

func (s *BookingService) Cancel(ctx context.Context, req CancelRequest) (RefundSummary, error) {
	var summary RefundSummary
	var clientID, walletID string
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		b, err := s.bookings.GetForUpdate(ctx, tx, req.BookingID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if req.ActorID != b.ClientID && req.ActorRole != models.RoleStaff && req.ActorRole != models.RoleAdmin {
			return ErrForbidden
		}
		if _, err := booking.Cancel(booking.Status(b.Status)); err != nil {
			return err
		}
		now := s.now()
		start, err := schedule.SlotStart(b.Date, b.SlotTime, now.Location())
		if err != nil {
			return err
		}
		refund := b.PriceMinor
		fee := int64(0)
		feeApplied := false
		if start.Sub(now) < s.policy.LateCancelThreshold {
			feeApplied = true
			fee = rateShare(b.PriceMinor, s.policy.LateFeeRate)
			refund = b.PriceMinor - fee
		}
		reason := req.Reason
		if reason == "" {
			reason = "Cancelled by user"
		}
		if err := s.bookings.MarkCancelled(ctx, tx, b.ID, reason, now); err != nil {
			return err
		}
		wallet, err := lockOrCreateWallet(ctx, tx, s.wallets, b.ClientID)
		if err != nil {
			return err
		}
		entry, err := s.ledger.Append(ctx, tx, store.AppendInput{
			ID:          uuid.NewString(),
			WalletID:    wallet.ID,
			Kind:        store.KindRefund,
			Amount:      refund,
			Description: "Booking " + b.ID + " refund",
		})
		if err != nil {
			return err
		}
		if feeApplied {
			if _, err := s.ledger.Append(ctx, tx, store.AppendInput{
				ID:          uuid.NewString(),
				WalletID:    wallet.ID,
				Kind:        store.KindLateFee,
				Amount:      fee,
				Description: "Booking " + b.ID + " late cancellation fee",
			}); err != nil {
				return err
			}
		}
		clientID = b.ClientID
		walletID = wallet.ID
		balanceAfter = entry.BalanceAfter
		summary = RefundSummary{Refund: refund, Fee: fee, FeeApplied: feeApplied}
		return nil
	})
	if err != nil {
		return RefundSummary{}, err
	}
	s.hub.BroadcastBalance(clientID, websocket.BalanceUpdate{
		WalletID: walletID,
		Balance:  money.FormatMinor(balanceAfter),
	})
	logger.Log.Infow("booking cancelled",
		"booking_id", req.BookingID, "refund", summary.Refund, "fee_applied", summary.FeeApplied)
	return summary, nil
}

// rateShare computes amount × rate% in minor units with bank rounding.
func rateShare(amountMinor int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amountMinor).Mul(rate).Div(decimal.NewFromInt(100)).RoundBank(0).IntPart()
}

func lockOrCreateWallet(ctx context.Context, tx *sqlx.Tx, wallets WalletStore, userID string) (models.Wallet, error) {
	wallet, err := wallets.GetForUpdateByUser(ctx, tx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, err
	}
	if err := wallets.Create(ctx, tx, uuid.NewString(), userID); err != nil {
		return models.Wallet{}, err
	}
	return wallets.GetForUpdateByUser(ctx, tx, userID)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
