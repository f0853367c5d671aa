// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"fxjournal/internal/models"
	"fxjournal/internal/normalize"
)

// Scope identifies the (user, account) slice of the journal every trade
// query is restricted to.
type Scope struct {
	UserID    string
	AccountID string
}

// Journal holds the two trade lists of one account scope.
type Journal struct {
	Open    []models.Trade
	History []models.Trade
}

// DataStore defines the interface for journal persistence.
//
// All trade writes are idempotent by id; conflict resolution is
// last-writer-wins on updated_at. Writers stamp updated_at before calling.
type DataStore interface {
	// Accounts
	CreateAccount(ctx context.Context, acct *models.Account) error
	GetAccount(ctx context.Context, id, userID string) (*models.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]models.Account, error)
	UpdateAccount(ctx context.Context, id, userID string, patch models.AccountPatch) error

	// Journal
	LoadJournal(ctx context.Context, scope Scope) (*Journal, error)
	UpsertTrades(ctx context.Context, rows []normalize.Row) error
	UpdateTrade(ctx context.Context, row normalize.Row) error
	DeleteTrade(ctx context.Context, id, userID string) error
	ResetJournal(ctx context.Context, scope Scope) error

	// Transactions (stored deposits/withdrawals)
	AddTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, scope Scope) ([]models.Transaction, error)

	// Lifecycle
	Close() error
}
