package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no per-call context.
var (
	ErrDuplicateReward      = errors.New("reward already recorded for this account and date")
	ErrConcurrencyConflict  = errors.New("account is busy, concurrent mutation in progress")
	ErrConfigurationMissing = errors.New("no exchange configuration resolvable for tier")
)

// ValidationError reports a malformed request before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientBalanceError is returned when a debit or lock exceeds the
// available balance. Carries the values needed for direct display.
type InsufficientBalanceError struct {
	Requested int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %d, available %d", e.Requested, e.Available)
}

// BelowMinimumError rejects an exchange under the tier's minimum amount.
type BelowMinimumError struct {
	Requested int64
	Minimum   int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("amount %d below minimum exchange of %d", e.Requested, e.Minimum)
}

// DailyLimitError rejects an exchange that would push the day's total
// over the tier's cap.
type DailyLimitError struct {
	Requested   int64
	AlreadyUsed int64
	Limit       int64
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily limit exceeded: %d already exchanged, %d requested, limit %d",
		e.AlreadyUsed, e.Requested, e.Limit)
}

// PersistenceError wraps a storage failure; retried internally before it
// is surfaced generically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsBusinessError reports whether err is a user-facing rule rejection
// that must never be retried.
func IsBusinessError(err error) bool {
	var (
		vErr *ValidationError
		iErr *InsufficientBalanceError
		bErr *BelowMinimumError
		dErr *DailyLimitError
	)
	return errors.As(err, &vErr) || errors.As(err, &iErr) ||
		errors.As(err, &bErr) || errors.As(err, &dErr)
}
