package models

import "time"

const (
	RoleClient = "client"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Wallet holds a user's stored-value balance in minor units.
// Balance is mutated only through the ledger store inside a unit of work.
type Wallet struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LedgerEntry records one balance-affecting event. Entries are immutable and
// form an append-only sequence per wallet. Amount is always positive; the kind
// decides whether it debits, credits, or only documents (commission, late-fee).
type LedgerEntry struct {
	ID            string    `db:"id" json:"id"`
	WalletID      string    `db:"wallet_id" json:"wallet_id"`
	Kind          string    `db:"kind" json:"kind"`
	Amount        int64     `db:"amount" json:"amount"`
	BalanceBefore int64     `db:"balance_before" json:"balance_before"`
	BalanceAfter  int64     `db:"balance_after" json:"balance_after"`
	Description   string    `db:"description" json:"description"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Service struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	PriceMinor      int64     `db:"price" json:"price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// AvailabilityRule is one recurring weekly slot offered by a staff member.
// Weekday follows time.Weekday numbering: 0=Sunday .. 6=Saturday.
type AvailabilityRule struct {
	ID       string `db:"id" json:"id"`
	StaffID  string `db:"staff_id" json:"staff_id"`
	Weekday  int    `db:"weekday" json:"weekday"`
	SlotTime string `db:"slot_time" json:"slot_time"`
	Active   bool   `db:"active" json:"active"`
}

// Booking snapshots price, commission and staff net at reservation time so
// later catalog changes never affect existing bookings.
type Booking struct {
	ID           string     `db:"id" json:"id"`
	ClientID     string     `db:"client_id" json:"client_id"`
	StaffID      string     `db:"staff_id" json:"staff_id"`
	ServiceID    string     `db:"service_id" json:"service_id"`
	Date         string     `db:"booking_date" json:"date"`
	SlotTime     string     `db:"slot_time" json:"time"`
	PriceMinor   int64      `db:"price" json:"price"`
	Commission   int64      `db:"commission" json:"commission"`
	StaffNet     int64      `db:"staff_net" json:"staff_net"`
	Status       string     `db:"status" json:"status"`
	CancelReason *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}
