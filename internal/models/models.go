// Package models provides domain models for the trading journal.
package models

import "time"

// Direction represents the side of a trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	StatusOpen      TradeStatus = "open"
	StatusActive    TradeStatus = "Active"
	StatusCancelled TradeStatus = "Cancelled"
)

// IsClosed reports whether the status is a terminal one.
func (s TradeStatus) IsClosed() bool {
	return s == StatusActive || s == StatusCancelled
}

// CloseReason represents why a trade was closed.
type CloseReason string

const (
	CloseCompleted CloseReason = "Completed"
	CloseCancelled CloseReason = "Cancelled"
)

// AccountPlan represents the account's trading plan.
type AccountPlan string

const (
	PlanNormal AccountPlan = "Normal"
	PlanTarget AccountPlan = "Target"
)

// AccountTier represents the lot-size tier of an account.
type AccountTier string

const (
	TierStandard AccountTier = "Standard"
	TierMini     AccountTier = "Mini"
	TierMicro    AccountTier = "Micro"
)

// TransactionType represents an entry in the account's money timeline.
type TransactionType string

const (
	TxStartingCapital TransactionType = "StartingCapital"
	TxDeposit         TransactionType = "Deposit"
	TxWithdrawal      TransactionType = "Withdrawal"
	TxDailyProfit     TransactionType = "DailyProfit"
	TxDailyLoss       TransactionType = "DailyLoss"
)

// Account represents a trading account owned by a user.
type Account struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Name            string      `json:"name"`
	Plan            AccountPlan `json:"plan"`
	Tier            AccountTier `json:"tier"`
	Capital         float64     `json:"capital"`
	Drawdown        float64     `json:"drawdown,omitempty"`
	DepositEnabled  bool        `json:"depositEnabled"`
	WithdrawEnabled bool        `json:"withdrawEnabled"`

	// Target-plan fields; meaningful only when Plan == PlanTarget.
	TargetEquity        float64 `json:"targetEquity,omitempty"`
	DurationWeeks       int     `json:"durationWeeks,omitempty"`
	WeeklyTargetEnabled bool    `json:"weeklyTargetEnabled,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AccountPatch carries a partial update of account metadata.
// Nil fields are left untouched.
type AccountPatch struct {
	Name                *string
	Capital             *float64
	Drawdown            *float64
	DepositEnabled      *bool
	WithdrawEnabled     *bool
	TargetEquity        *float64
	DurationWeeks       *int
	WeeklyTargetEnabled *bool
}

// Transaction is one entry of the account money timeline. Deposit and
// Withdrawal entries are stored; StartingCapital and Daily* entries are
// synthesized by the analytics engine.
type Transaction struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	AccountID string          `json:"accountId,omitempty"`
	Date      time.Time       `json:"date"`
	Type      TransactionType `json:"type"`
	Amount    float64         `json:"amount"`
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	UserID          string  `json:"userId"`
	ActiveAccountID string  `json:"activeAccountId"`
	DefaultRisk     float64 `json:"defaultRisk"`
	DefaultStrategy string  `json:"defaultStrategy"`
}
