package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// Client calls a remote SettlementService.
type Client struct {
	computeBalances    *connect.Client[ComputeBalancesRequest, ComputeBalancesResponse]
	planSettlements    *connect.Client[PlanSettlementsRequest, PlanSettlementsResponse]
	commitPlan         *connect.Client[CommitPlanRequest, CommitPlanResponse]
	listSettlements    *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	completeSettlement *connect.Client[CompleteSettlementRequest, CompleteSettlementResponse]
}

// NewClient creates a client for the server at baseURL, e.g.
// http://localhost:8080.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &Client{
		computeBalances: connect.NewClient[ComputeBalancesRequest, ComputeBalancesResponse](
			httpClient, baseURL+ComputeBalancesProcedure, opts...),
		planSettlements: connect.NewClient[PlanSettlementsRequest, PlanSettlementsResponse](
			httpClient, baseURL+PlanSettlementsProcedure, opts...),
		commitPlan: connect.NewClient[CommitPlanRequest, CommitPlanResponse](
			httpClient, baseURL+CommitPlanProcedure, opts...),
		listSettlements: connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](
			httpClient, baseURL+ListSettlementsProcedure, opts...),
		completeSettlement: connect.NewClient[CompleteSettlementRequest, CompleteSettlementResponse](
			httpClient, baseURL+CompleteSettlementProcedure, opts...),
	}
}

// ComputeBalances calls the ComputeBalances procedure.
func (c *Client) ComputeBalances(ctx context.Context, req *ComputeBalancesRequest) (*ComputeBalancesResponse, error) {
	resp, err := c.computeBalances.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// PlanSettlements calls the PlanSettlements procedure.
func (c *Client) PlanSettlements(ctx context.Context, req *PlanSettlementsRequest) (*PlanSettlementsResponse, error) {
	resp, err := c.planSettlements.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// CommitPlan calls the CommitPlan procedure. A stale plan fails with CodeAborted.
func (c *Client) CommitPlan(ctx context.Context, req *CommitPlanRequest) (*CommitPlanResponse, error) {
	resp, err := c.commitPlan.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// ListSettlements calls the ListSettlements procedure.
func (c *Client) ListSettlements(ctx context.Context, req *ListSettlementsRequest) (*ListSettlementsResponse, error) {
	resp, err := c.listSettlements.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// CompleteSettlement calls the CompleteSettlement procedure.
func (c *Client) CompleteSettlement(ctx context.Context, req *CompleteSettlementRequest) error {
	_, err := c.completeSettlement.CallUnary(ctx, connect.NewRequest(req))
	return err
}
