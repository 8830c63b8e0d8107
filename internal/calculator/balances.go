package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// MemberRef is one entry of a network's membership snapshot.
type MemberRef struct {
	ID   string
	Name string
}

// SplitForBalance represents a bill split with the minimal information needed
// for balance calculations.
type SplitForBalance struct {
	ID       string
	MemberID string
	Amount   float64
	Paid     bool // Already covered by a committed settlement
}

// BillForBalance represents a bill with the minimal information needed for
// balance calculations.
type BillForBalance struct {
	ID        string
	Total     float64
	Currency  string
	CreatorID string
	Settled   bool
	Splits    []SplitForBalance
}

// Balances is the net position of every member with a non-zero balance.
type Balances struct {
	// Currency shared by every bill that contributed. Empty when no open
	// bill contributed.
	Currency string

	// Net maps member ID to signed balance. Positive = owed money,
	// negative = owes money. Members at zero are omitted.
	Net map[string]decimal.Decimal
}

// MemberIDs returns the members with a non-zero balance in ascending order.
func (b Balances) MemberIDs() []string {
	ids := make([]string, 0, len(b.Net))
	for id := range b.Net {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sum returns the sum of all net balances. It is zero for any valid input.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b.Net {
		sum = sum.Add(v)
	}
	return sum
}

// ComputeBalances folds the open bills of a network into one net balance per
// member.
//
// Algorithm:
//   - Settled bills are skipped
//   - Every split of an open bill (paid or not) must add up to the bill total
//   - For each unpaid split of a non-creator: the creator is credited and the
//     split member is debited by the split amount
//   - The creator's own split is their fair share and never moves a balance
//
// With no paid splits this is the same as crediting the creator with
// total - own share. Splits marked paid by a committed settlement plan have
// already been settled and no longer contribute.
func ComputeBalances(members []MemberRef, bills []BillForBalance) (Balances, error) {
	known := make(map[string]bool, len(members))
	net := make(map[string]decimal.Decimal, len(members))
	for _, m := range members {
		known[m.ID] = true
		net[m.ID] = decimal.Zero
	}

	currency := ""
	for _, bill := range bills {
		if bill.Settled {
			continue
		}

		if currency == "" {
			currency = bill.Currency
		} else if bill.Currency != currency {
			return Balances{}, fmt.Errorf("%w: bill %s is in %q, expected %q",
				ErrCurrencyConflict, bill.ID, bill.Currency, currency)
		}

		if !known[bill.CreatorID] {
			return Balances{}, fmt.Errorf("%w: bill %s creator %s", ErrUnknownMember, bill.ID, bill.CreatorID)
		}

		total := FromFloat(bill.Total)
		if !total.IsPositive() {
			return Balances{}, fmt.Errorf("%w: bill %s has non-positive total %s", ErrSplitMismatch, bill.ID, total)
		}

		splitSum := decimal.Zero
		for _, split := range bill.Splits {
			if !known[split.MemberID] {
				return Balances{}, fmt.Errorf("%w: bill %s split member %s", ErrUnknownMember, bill.ID, split.MemberID)
			}
			amount := FromFloat(split.Amount)
			if amount.IsNegative() {
				return Balances{}, fmt.Errorf("%w: bill %s has negative split %s for member %s",
					ErrSplitMismatch, bill.ID, amount, split.MemberID)
			}
			splitSum = splitSum.Add(amount)

			// The creator is credited the sum of the others' unpaid shares.
			// Within the 0.01 mismatch tolerance this can differ from
			// total minus own share; crediting shares keeps the sum at zero.
			if split.Paid || split.MemberID == bill.CreatorID {
				continue
			}
			net[bill.CreatorID] = net[bill.CreatorID].Add(amount)
			net[split.MemberID] = net[split.MemberID].Sub(amount)
		}

		if splitSum.Sub(total).Abs().GreaterThan(Epsilon) {
			return Balances{}, fmt.Errorf("%w: bill %s splits sum to %s, total is %s",
				ErrSplitMismatch, bill.ID, splitSum.StringFixed(Places), total.StringFixed(Places))
		}
	}

	// Drop members who neither pay nor receive
	for id, v := range net {
		if isZero(v) {
			delete(net, id)
		}
	}

	return Balances{Currency: currency, Net: net}, nil
}
