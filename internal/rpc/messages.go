package rpc

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settlewise/internal/calculator"
	"github.com/mmynk/settlewise/internal/models"
)

// ComputeBalancesRequest asks for the net balances of one network.
type ComputeBalancesRequest struct {
	NetworkID string `json:"network_id"`
}

// MemberBalance is positive when the member is owed money.
type MemberBalance struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// ComputeBalancesResponse lists non-zero balances ordered by member ID.
type ComputeBalancesResponse struct {
	Currency string          `json:"currency"`
	Balances []MemberBalance `json:"balances"`
}

// PlanSettlementsRequest asks for the settlement plan of one network.
type PlanSettlementsRequest struct {
	NetworkID string `json:"network_id"`
}

// PlanSettlementsResponse carries the draft plan. AlreadySettled is set when
// the plan has no transfers.
type PlanSettlementsResponse struct {
	Plan           calculator.Plan `json:"plan"`
	AlreadySettled bool            `json:"already_settled"`
}

// CommitPlanRequest carries the plan exactly as returned by PlanSettlements.
type CommitPlanRequest struct {
	NetworkID string          `json:"network_id"`
	Plan      calculator.Plan `json:"plan"`
}

// CommitPlanResponse lists the pending settlements that were recorded.
type CommitPlanResponse struct {
	Settlements []Settlement `json:"settlements"`
}

// ListSettlementsRequest asks for a network's settlement history.
type ListSettlementsRequest struct {
	NetworkID string `json:"network_id"`
}

// ListSettlementsResponse lists settlements newest first.
type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

// CompleteSettlementRequest marks one pending settlement as paid out.
type CompleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

// CompleteSettlementResponse is empty.
type CompleteSettlementResponse struct{}

// Settlement is the wire form of a recorded settlement.
type Settlement struct {
	ID           string          `json:"id"`
	NetworkID    string          `json:"network_id"`
	FromMemberID string          `json:"from_member_id"`
	ToMemberID   string          `json:"to_member_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	CreatedAt    int64           `json:"created_at"`
}

// balancesToMessage orders balances by member ID.
func balancesToMessage(b calculator.Balances) *ComputeBalancesResponse {
	resp := &ComputeBalancesResponse{
		Currency: b.Currency,
		Balances: make([]MemberBalance, 0, len(b.Net)),
	}
	for _, id := range b.MemberIDs() {
		resp.Balances = append(resp.Balances, MemberBalance{MemberID: id, Amount: b.Net[id]})
	}
	return resp
}

func settlementsToMessage(settlements []*models.Settlement) []Settlement {
	out := make([]Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = Settlement{
			ID:           s.ID,
			NetworkID:    s.NetworkID,
			FromMemberID: s.FromMemberID,
			ToMemberID:   s.ToMemberID,
			Amount:       s.Amount,
			Currency:     s.Currency,
			Status:       string(s.Status),
			CreatedAt:    s.CreatedAt,
		}
	}
	return out
}
