package store

import (
	"context"
	"time"

	"barbershop/internal/models"
)

type BookingStore struct {
	db DB
}

func NewBookingStore(db DB) *BookingStore {
	return &BookingStore{db: db}
}

type BookingInput struct {
	ID         string
	ClientID   string
	StaffID    string
	ServiceID  string
	Date       string
	SlotTime   string
	PriceMinor int64
	Commission int64
	StaffNet   int64
	Status     string
}

func (s *BookingStore) Create(ctx context.Context, tx Execer, input BookingInput) error {
	query := `
		INSERT INTO bookings (id, client_id, staff_id, service_id, booking_date, slot_time, price, commission, staff_net, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.ClientID, input.StaffID, input.ServiceID, input.Date, input.SlotTime,
		input.PriceMinor, input.Commission, input.StaffNet, input.Status,
	)
	return err
}

func (s *BookingStore) GetForUpdate(ctx context.Context, tx Getter, bookingID string) (models.Booking, error) {
	var row models.Booking
	err := tx.GetContext(ctx, &row, `
		SELECT id, client_id, staff_id, service_id, to_char(booking_date, 'YYYY-MM-DD') AS booking_date,
		       slot_time, price, commission, staff_net, status, cancel_reason, created_at, completed_at, cancelled_at
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	return row, nil
}

func (s *BookingStore) MarkCompleted(ctx context.Context, tx Execer, bookingID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'completed', completed_at = $1
		WHERE id = $2
	`, at, bookingID)
	return err
}

func (s *BookingStore) MarkCancelled(ctx context.Context, tx Execer, bookingID, reason string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $1, cancel_reason = $2
		WHERE id = $3
	`, at, reason, bookingID)
	return err
}

// CountReserved is the in-transaction occupancy re-check for a slot. The
// partial unique index on (staff_id, booking_date, slot_time) for reserved
// rows backs it up under concurrent inserts.
func (s *BookingStore) CountReserved(ctx context.Context, tx Getter, staffID, date, slotTime string) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM bookings
		WHERE staff_id = $1 AND booking_date = $2 AND slot_time = $3 AND status = 'reserved'
	`, staffID, date, slotTime)
	return count, err
}

// ListOccupiedTimes returns the slot times of all non-cancelled bookings for
// a staff member on a date.
func (s *BookingStore) ListOccupiedTimes(ctx context.Context, staffID, date string) ([]string, error) {
	var times []string
	err := s.db.SelectContext(ctx, &times, `
		SELECT slot_time
		FROM bookings
		WHERE staff_id = $1 AND booking_date = $2 AND status <> 'cancelled'
		ORDER BY slot_time
	`, staffID, date)
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (s *BookingStore) ListActiveByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	var rows []models.Booking
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, client_id, staff_id, service_id, to_char(booking_date, 'YYYY-MM-DD') AS booking_date,
		       slot_time, price, commission, staff_net, status, cancel_reason, created_at, completed_at, cancelled_at
		FROM bookings
		WHERE client_id = $1 AND status = 'reserved'
		ORDER BY booking_date, slot_time
	`, clientID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BookingStore) ListHistoryByClient(ctx context.Context, clientID string, limit, offset int) ([]models.Booking, error) {
	var rows []models.Booking
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, client_id, staff_id, service_id, to_char(booking_date, 'YYYY-MM-DD') AS booking_date,
		       slot_time, price, commission, staff_net, status, cancel_reason, created_at, completed_at, cancelled_at
		FROM bookings
		WHERE client_id = $1
		ORDER BY booking_date DESC, slot_time DESC
		LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BookingStore) ListByStaffDate(ctx context.Context, staffID, date string) ([]models.Booking, error) {
	var rows []models.Booking
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, client_id, staff_id, service_id, to_char(booking_date, 'YYYY-MM-DD') AS booking_date,
		       slot_time, price, commission, staff_net, status, cancel_reason, created_at, completed_at, cancelled_at
		FROM bookings
		WHERE staff_id = $1 AND booking_date = $2
		ORDER BY slot_time
	`, staffID, date)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
