package handlers

import (
	"context"

	"barbershop/internal/models"
	"barbershop/internal/schedule"
	"barbershop/internal/services"
	"barbershop/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, email, passwordHash, role string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type WalletStore interface {
	Create(ctx context.Context, tx store.Execer, id, userID string) error
}

type CatalogStore interface {
	ListActive(ctx context.Context) ([]models.Service, error)
}

type BookingReader interface {
	ListActiveByClient(ctx context.Context, clientID string) ([]models.Booking, error)
	ListHistoryByClient(ctx context.Context, clientID string, limit, offset int) ([]models.Booking, error)
	ListByStaffDate(ctx context.Context, staffID, date string) ([]models.Booking, error)
}

type AvailabilityResolver interface {
	AvailableSlots(ctx context.Context, staffID, date string) ([]string, error)
	AvailableDates(ctx context.Context, staffID string) ([]schedule.DayAvailability, error)
}

type BookingService interface {
	Reserve(ctx context.Context, req services.ReserveRequest) (models.Booking, error)
	Complete(ctx context.Context, req services.CompleteRequest) (services.PayoutSummary, error)
	Cancel(ctx context.Context, req services.CancelRequest) (services.RefundSummary, error)
}

type WalletService interface {
	TopUp(ctx context.Context, userID string, amountMinor int64) (int64, error)
	Balance(ctx context.Context, userID string) (int64, error)
	Entries(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error)
}
