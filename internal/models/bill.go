package models

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	BillOpen    BillStatus = "open"
	BillSettled BillStatus = "settled"
)

// SplitStatus is the payment state of a bill split.
type SplitStatus string

const (
	SplitUnpaid SplitStatus = "unpaid"
	SplitPaid   SplitStatus = "paid"
)

// Bill represents an expense paid up front by one member of a network.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// NetworkID is the network this bill belongs to.
	NetworkID string

	// Title is a human-readable description of the bill.
	Title string

	// Total is the full amount advanced by the creator. Fixed at creation.
	Total float64

	// Currency is the currency code of Total and all split amounts.
	Currency string

	// CreatorID is the member who paid the bill.
	CreatorID string

	// Status is open until the host application marks the bill settled.
	// Only open bills contribute to balances.
	Status BillStatus

	// Splits are the per-member shares. Their amounts must add up to Total.
	Splits []BillSplit

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// BillSplit represents what one member owes for a bill.
type BillSplit struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// BillID is the bill this split belongs to.
	BillID string

	// MemberID is the member who owes Amount.
	MemberID string

	// Amount is the non-negative share owed by MemberID.
	Amount float64

	// Status flips to paid when a settlement plan covering it is committed.
	Status SplitStatus
}
