package calculator

import (
	"container/heap"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transfer is a draft settlement: From pays To the given Amount.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Plan is the ordered list of transfers that zeroes every balance.
type Plan struct {
	Currency  string     `json:"currency"`
	Transfers []Transfer `json:"transfers"`
}

// AlreadySettled reports whether there is nothing left to pay.
func (p Plan) AlreadySettled() bool {
	return len(p.Transfers) == 0
}

// Equal reports whether two plans contain the same transfers in the same order.
func (p Plan) Equal(other Plan) bool {
	if p.Currency != other.Currency || len(p.Transfers) != len(other.Transfers) {
		return false
	}
	for i, t := range p.Transfers {
		o := other.Transfers[i]
		if t.From != o.From || t.To != o.To || !t.Amount.Equal(o.Amount) {
			return false
		}
	}
	return true
}

// party is one creditor or debtor; amount is always positive.
type party struct {
	id     string
	amount decimal.Decimal
}

// partyQueue is a max-heap on amount, ties broken by id ascending.
type partyQueue []*party

func (q partyQueue) Len() int { return len(q) }

func (q partyQueue) Less(i, j int) bool {
	if c := q[i].amount.Cmp(q[j].amount); c != 0 {
		return c > 0
	}
	return q[i].id < q[j].id
}

func (q partyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *partyQueue) Push(x any) { *q = append(*q, x.(*party)) }

func (q *partyQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return p
}

// settle removes the head of q once its remaining amount is below Epsilon,
// otherwise restores heap order after the head shrank.
func (q *partyQueue) settle() {
	if isZero((*q)[0].amount) {
		heap.Pop(q)
		return
	}
	heap.Fix(q, 0)
}

// PlanSettlements turns net balances into an ordered list of transfers using
// greedy largest-pair matching.
//
// Algorithm:
//   - Balances below Epsilon in magnitude are ignored
//   - Creditors have positive balances, debtors negative (taken as absolute)
//   - Both are ordered by amount descending, then member ID ascending
//   - Repeatedly the largest debtor pays the largest creditor
//     min(debt, credit); a party is dropped once its remainder falls below
//     Epsilon, the debtor before the creditor
//
// The plan has at most (non-zero balances - 1) transfers. Greedy matching is
// not guaranteed to be the global minimum for more than four parties.
// Balances whose credits and debits differ return ErrUnbalancedLedger.
func PlanSettlements(balances Balances) (Plan, error) {
	creditors := &partyQueue{}
	debtors := &partyQueue{}
	for _, id := range balances.MemberIDs() {
		amount := balances.Net[id].Round(Places)
		switch {
		case isZero(amount):
		case amount.IsPositive():
			*creditors = append(*creditors, &party{id: id, amount: amount})
		default:
			*debtors = append(*debtors, &party{id: id, amount: amount.Neg()})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	plan := Plan{Currency: balances.Currency, Transfers: []Transfer{}}
	for creditors.Len() > 0 && debtors.Len() > 0 {
		creditor := (*creditors)[0]
		debtor := (*debtors)[0]

		amount := decimal.Min(creditor.amount, debtor.amount).Round(Places)
		plan.Transfers = append(plan.Transfers, Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		creditor.amount = creditor.amount.Sub(amount)
		debtor.amount = debtor.amount.Sub(amount)

		debtors.settle()
		creditors.settle()
	}

	if creditors.Len() > 0 || debtors.Len() > 0 {
		return Plan{}, fmt.Errorf("%w: %s left to receive, %s left to pay",
			ErrUnbalancedLedger, remaining(*creditors), remaining(*debtors))
	}

	return plan, nil
}

func remaining(q partyQueue) string {
	sum := decimal.Zero
	for _, p := range q {
		sum = sum.Add(p.amount)
	}
	return sum.StringFixed(Places)
}

// ApplyPlan returns the balances a plan settles: +amount for each receiver
// and -amount for each payer. For a plan produced by PlanSettlements this
// reproduces the input balances.
func ApplyPlan(plan Plan) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, t := range plan.Transfers {
		net[t.To] = net[t.To].Add(t.Amount)
		net[t.From] = net[t.From].Sub(t.Amount)
	}
	return net
}
