package calculator

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func balancesOf(pairs map[string]string) Balances {
	net := make(map[string]decimal.Decimal, len(pairs))
	for id, v := range pairs {
		net[id] = dec(v)
	}
	return Balances{Currency: "USD", Net: net}
}

func TestPlanSettlements(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]string
		want     []string
		wantErr  error
	}{
		{
			// Equal debtors go in id order, so B pays before C.
			name:     "one creditor two equal debtors, ties by id",
			balances: map[string]string{"A": "80", "B": "-40", "C": "-40"},
			want:     []string{"B->A 40.00", "C->A 40.00"},
		},
		{
			name:     "largest creditor served first",
			balances: map[string]string{"A": "30", "B": "20", "C": "-50"},
			want:     []string{"C->A 30.00", "C->B 20.00"},
		},
		{
			name:     "single matching pair",
			balances: map[string]string{"A": "12.34", "B": "-12.34"},
			want:     []string{"B->A 12.34"},
		},
		{
			name:     "all zero is already settled",
			balances: map[string]string{},
			want:     []string{},
		},
		{
			name:     "largest debtor pays largest creditor",
			balances: map[string]string{"A": "50", "B": "30", "C": "-60", "D": "-20"},
			want:     []string{"C->A 50.00", "D->B 20.00", "C->B 10.00"},
		},
		{
			name:     "equal creditors ordered by id",
			balances: map[string]string{"Z": "10", "Y": "10", "X": "-20"},
			want:     []string{"X->Y 10.00", "X->Z 10.00"},
		},
		{
			name:     "sub-epsilon amounts are excluded",
			balances: map[string]string{"A": "25", "B": "-25", "C": "0.001"},
			want:     []string{"B->A 25.00"},
		},
		{
			name:     "bill split in thirds",
			balances: map[string]string{"A": "66.66", "B": "-33.33", "C": "-33.33"},
			want:     []string{"B->A 33.33", "C->A 33.33"},
		},
		{
			name:     "one-cent remainder is still paid",
			balances: map[string]string{"A": "10.01", "X": "-10", "Y": "-0.01"},
			want:     []string{"X->A 10.00", "Y->A 0.01"},
		},
		{
			name:     "credits exceed debits",
			balances: map[string]string{"A": "100", "B": "-50"},
			wantErr:  ErrUnbalancedLedger,
		},
		{
			name:     "debits exceed credits",
			balances: map[string]string{"A": "10", "B": "-50"},
			wantErr:  ErrUnbalancedLedger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanSettlements(balancesOf(tt.balances))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("PlanSettlements() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanSettlements() unexpected error: %v", err)
			}

			got := make([]string, len(plan.Transfers))
			for i, tr := range plan.Transfers {
				got[i] = fmt.Sprintf("%s->%s %s", tr.From, tr.To, tr.Amount.StringFixed(Places))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("PlanSettlements() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("transfer %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
			if plan.AlreadySettled() != (len(tt.want) == 0) {
				t.Errorf("AlreadySettled() = %v", plan.AlreadySettled())
			}
			if plan.Currency != "USD" {
				t.Errorf("Currency = %q, want USD", plan.Currency)
			}
		})
	}
}

func TestPlanSettlements_FromBills(t *testing.T) {
	balances, err := ComputeBalances(abc, []BillForBalance{equalSplits("b1", "A", 120, "A", "B", "C")})
	if err != nil {
		t.Fatalf("ComputeBalances() unexpected error: %v", err)
	}

	plan, err := PlanSettlements(balances)
	if err != nil {
		t.Fatalf("PlanSettlements() unexpected error: %v", err)
	}
	if len(plan.Transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(plan.Transfers))
	}
	for _, tr := range plan.Transfers {
		if tr.To != "A" || !tr.Amount.Equal(dec("40")) {
			t.Errorf("unexpected transfer %+v", tr)
		}
	}
}

func TestPlanSettlements_SplitWithinEpsilon(t *testing.T) {
	bill := BillForBalance{
		ID: "b1", Total: 100, Currency: "USD", CreatorID: "A",
		Splits: []SplitForBalance{
			{ID: "s1", MemberID: "A", Amount: 33.33},
			{ID: "s2", MemberID: "B", Amount: 33.33},
			{ID: "s3", MemberID: "C", Amount: 33.33},
		},
	}

	balances, err := ComputeBalances(abc, []BillForBalance{bill})
	if err != nil {
		t.Fatalf("ComputeBalances() unexpected error: %v", err)
	}
	// The creator is credited what the others owe, not total minus own share
	if !balances.Net["A"].Equal(dec("66.66")) {
		t.Errorf("balance of A = %s, want 66.66", balances.Net["A"])
	}
	if !balances.Sum().IsZero() {
		t.Errorf("balances sum to %s, want 0", balances.Sum())
	}

	plan, err := PlanSettlements(balances)
	if err != nil {
		t.Fatalf("PlanSettlements() unexpected error: %v", err)
	}
	want := []Transfer{
		{From: "B", To: "A", Amount: dec("33.33")},
		{From: "C", To: "A", Amount: dec("33.33")},
	}
	if !plan.Equal(Plan{Currency: "USD", Transfers: want}) {
		t.Errorf("PlanSettlements() = %+v, want %+v", plan.Transfers, want)
	}
}

// randomBills builds a network of n members with random open bills whose
// splits always add up to the total.
func randomBills(r *rand.Rand, n, bills int) ([]MemberRef, []BillForBalance) {
	members := make([]MemberRef, n)
	for i := range members {
		members[i] = MemberRef{ID: fmt.Sprintf("m%02d", i)}
	}

	out := make([]BillForBalance, bills)
	for b := range out {
		cents := int64(r.Intn(50000) + 100)
		creator := members[r.Intn(n)].ID

		k := r.Intn(n) + 1
		perm := r.Perm(n)[:k]
		splits := make([]SplitForBalance, k)
		left := cents
		for i, idx := range perm {
			share := cents / int64(k)
			if i == k-1 {
				share = left
			}
			left -= share
			splits[i] = SplitForBalance{
				ID:       fmt.Sprintf("b%d-s%d", b, i),
				MemberID: members[idx].ID,
				Amount:   float64(share) / 100,
			}
		}
		out[b] = BillForBalance{
			ID:        fmt.Sprintf("b%d", b),
			Total:     float64(cents) / 100,
			Currency:  "USD",
			CreatorID: creator,
			Splits:    splits,
		}
	}
	return members, out
}

func TestPlanSettlements_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		members, bills := randomBills(r, r.Intn(8)+2, r.Intn(12)+1)

		balances, err := ComputeBalances(members, bills)
		if err != nil {
			t.Fatalf("iteration %d: ComputeBalances() unexpected error: %v", i, err)
		}

		// Conservation
		if !balances.Sum().IsZero() {
			t.Fatalf("iteration %d: balances sum to %s", i, balances.Sum())
		}

		plan, err := PlanSettlements(balances)
		if err != nil {
			t.Fatalf("iteration %d: PlanSettlements() unexpected error: %v", i, err)
		}

		// Upper bound
		if n := len(balances.Net); n > 0 && len(plan.Transfers) > n-1 {
			t.Errorf("iteration %d: %d transfers for %d balances", i, len(plan.Transfers), n)
		}

		// Zero-sum plan
		applied := ApplyPlan(plan)
		if len(applied) != len(balances.Net) {
			t.Errorf("iteration %d: plan touches %d members, balances have %d", i, len(applied), len(balances.Net))
		}
		for id, want := range balances.Net {
			if !applied[id].Equal(want) {
				t.Errorf("iteration %d: plan gives %s to %s, balance is %s", i, applied[id], id, want)
			}
		}

		for _, tr := range plan.Transfers {
			if !tr.Amount.IsPositive() {
				t.Errorf("iteration %d: non-positive transfer %+v", i, tr)
			}
			if tr.From == tr.To {
				t.Errorf("iteration %d: self transfer %+v", i, tr)
			}
		}

		// Idempotent planning
		again, err := PlanSettlements(balances)
		if err != nil {
			t.Fatalf("iteration %d: second PlanSettlements() unexpected error: %v", i, err)
		}
		if !plan.Equal(again) {
			t.Errorf("iteration %d: planning twice gave different plans", i)
		}
	}
}

func TestPlanEqual(t *testing.T) {
	a := Plan{Currency: "USD", Transfers: []Transfer{{From: "B", To: "A", Amount: dec("10")}}}
	b := Plan{Currency: "USD", Transfers: []Transfer{{From: "B", To: "A", Amount: dec("10.00")}}}
	c := Plan{Currency: "USD", Transfers: []Transfer{{From: "C", To: "A", Amount: dec("10")}}}

	if !a.Equal(b) {
		t.Error("plans with equal amounts at different scale should be equal")
	}
	if a.Equal(c) {
		t.Error("plans with different payers should differ")
	}
	if a.Equal(Plan{Currency: "EUR", Transfers: a.Transfers}) {
		t.Error("plans in different currencies should differ")
	}
}
