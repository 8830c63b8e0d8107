// Package models defines the core domain models for Settlewise.
//
// # Models
//
//   - Network: a named group of members sharing bills
//   - Member: a participant in a network
//   - Bill: an expense advanced by one member, divided into splits
//   - BillSplit: the share of a bill owed by one member
//   - Settlement: a recorded transfer from a debtor to a creditor
//
// Bill and split amounts are float64 as stored by the host application.
// Settlement amounts are fixed-point decimals because they are produced by
// the settlement planner and must round-trip exactly.
//
// # Design Principles
//
// 1. **Read-only snapshots**: balances and plans are derived from bills and
// splits on every request, never cached on these models.
// 2. **Immutable history**: a Settlement is never edited or deleted. A wrong
// settlement is corrected by recording an offsetting one.
// 3. **Avoid circular references**: use ID strings instead of pointers for
// relationships.
package models
