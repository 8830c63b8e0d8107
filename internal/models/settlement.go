package models

import "github.com/shopspring/decimal"

// SettlementStatus is the state of a recorded settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
)

// Settlement represents a payment between network members to clear debts.
// Settlements are immutable once created, apart from moving from pending to
// completed when the money has actually changed hands.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// NetworkID is the network this settlement belongs to.
	NetworkID string

	// FromMemberID is the debtor who pays.
	FromMemberID string

	// ToMemberID is the creditor who receives the payment.
	ToMemberID string

	// Amount is the positive payment amount, rounded to 2 decimal places.
	Amount decimal.Decimal

	// Currency is the currency code of Amount.
	Currency string

	// Status is pending on creation.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
