package models

// Network represents a group of members that share bills.
type Network struct {
	// ID is the unique identifier for the network (UUID format).
	ID string

	// Name is the display name of the network (e.g., "Roommates", "Ski Trip").
	Name string

	// Currency is the ISO-like currency code bills in this network default to.
	// It is compared for equality only, never converted.
	Currency string

	// CreatedAt is the Unix timestamp when the network was created.
	CreatedAt int64
}

// Member represents a participant of a network.
// Identity is immutable once created.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// NetworkID is the network that owns this member.
	NetworkID string

	// Name is the display name of the member.
	Name string

	// Contact is an optional contact handle (email, phone, chat handle).
	Contact string
}
