package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/settlewise/internal/calculator"
)

var (
	// ErrNetworkNotFound is returned when the requested network does not exist.
	ErrNetworkNotFound = errors.New("network not found")

	// ErrCommitFailed is matched by every *CommitError. It is the only
	// engine error that is safe to retry unchanged.
	ErrCommitFailed = errors.New("settlement commit failed")

	// ErrStalePlan is returned when the submitted plan no longer matches the
	// network's balances, usually because another commit got there first.
	ErrStalePlan = errors.New("settlement plan is out of date")
)

// CommitError reports a commit that could not be persisted. Nothing was
// written; Plan is the draft exactly as submitted so it can be retried.
type CommitError struct {
	NetworkID string
	Plan      calculator.Plan
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: network %s: %v", ErrCommitFailed, e.NetworkID, e.Err)
}

// Unwrap lets errors.Is match both ErrCommitFailed and the underlying cause.
func (e *CommitError) Unwrap() []error {
	return []error{ErrCommitFailed, e.Err}
}

// isDataError reports errors caused by the network's data rather than by
// persistence. Retrying them without changing the data gives the same result.
func isDataError(err error) bool {
	for _, target := range []error{
		calculator.ErrSplitMismatch,
		calculator.ErrUnknownMember,
		calculator.ErrCurrencyConflict,
		calculator.ErrUnbalancedLedger,
		ErrNetworkNotFound,
		ErrStalePlan,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
