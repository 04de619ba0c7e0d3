package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrInsufficientFunds is returned by the ledger store when an append would
// drive a wallet balance below zero. It is the last line of defense; callers
// are expected to pre-check intent before appending.
var ErrInsufficientFunds = errors.New("insufficient funds")

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is the subset of a transaction the stores need for locked reads and writes.
type Tx interface {
	Execer
	Getter
}
