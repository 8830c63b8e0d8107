package calculator

import "errors"

// Errors returned by ComputeBalances and PlanSettlements. They describe
// problems in the bill data, so retrying with the same input reproduces them.
var (
	ErrSplitMismatch    = errors.New("bill splits don't add up to the bill total")
	ErrUnknownMember    = errors.New("bill references a member outside the network")
	ErrCurrencyConflict = errors.New("bills in one settlement use more than one currency")
	ErrUnbalancedLedger = errors.New("total credits and debits don't balance")
)
