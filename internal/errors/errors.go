// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTradeNotFound    = errors.New("trade not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrTradeNotOpen     = errors.New("trade is not open")
	ErrDepositDisabled  = errors.New("deposits are disabled for this account")
	ErrWithdrawDisabled = errors.New("withdrawals are disabled for this account")
	ErrNoActiveAccount  = errors.New("no active account selected")
	ErrStaleLoad        = errors.New("load superseded by account switch")
)

// ValidationError reports a draft or patch field that failed validation
// before any state change.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewMissingFieldError reports a required field that was not supplied.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "required field is missing"}
}

// NewInvalidURLError reports an image URL that is not absolute http(s).
func NewInvalidURLError(field, value string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: "must be an absolute http or https URL"}
}

// PolicyError reports a risk-cap violation that blocked admission.
type PolicyError struct {
	Rule    string
	Current float64
	Limit   float64
	Message string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy violation [%s]: %s (current: %.2f, limit: %.2f)", e.Rule, e.Message, e.Current, e.Limit)
}

// NewPolicyError creates a new PolicyError.
func NewPolicyError(rule string, current, limit float64, message string) *PolicyError {
	return &PolicyError{
		Rule:    rule,
		Current: current,
		Limit:   limit,
		Message: message,
	}
}

// Policy rule identifiers carried by PolicyError.
const (
	RulePerTradeRisk = "PER_TRADE_RISK"
	RuleDailyRisk    = "DAILY_RISK"
	RuleTradeCount   = "TRADE_COUNT"
	RuleActiveCount  = "ACTIVE_COUNT"
	RuleCancelCount  = "CANCEL_COUNT"
)

// StateError reports an operation attempted against a trade in the wrong
// lifecycle state.
type StateError struct {
	TradeID string
	Status  string
	Action  string
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error [%s] cannot %s trade in status %q: %v", e.TradeID, e.Action, e.Status, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// NewStateError creates a new StateError.
func NewStateError(tradeID, status, action string, err error) *StateError {
	return &StateError{
		TradeID: tradeID,
		Status:  status,
		Action:  action,
		Err:     err,
	}
}

// StoreKind classifies store failures by how the caller should react.
type StoreKind string

const (
	StoreTransient StoreKind = "TRANSIENT" // retry the write
	StoreConflict  StoreKind = "CONFLICT"  // reload then retry
	StoreFatal     StoreKind = "FATAL"
)

// StoreError reports a persistence failure. By the time it surfaces the
// in-memory state has already been updated optimistically; the operation is
// locally complete but not durable.
type StoreError struct {
	Kind StoreKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(kind StoreKind, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// Retryable reports whether retrying the same write may succeed.
func (e *StoreError) Retryable() bool {
	return e.Kind == StoreTransient || e.Kind == StoreConflict
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
