// Package rpc exposes the settlement engine over Connect.
package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settlewise/internal/calculator"
	"github.com/mmynk/settlewise/internal/models"
)

// SettlementServiceName is the fully-qualified name of the service.
const SettlementServiceName = "settlewise.v1.SettlementService"

const (
	ComputeBalancesProcedure    = "/" + SettlementServiceName + "/ComputeBalances"
	PlanSettlementsProcedure    = "/" + SettlementServiceName + "/PlanSettlements"
	CommitPlanProcedure         = "/" + SettlementServiceName + "/CommitPlan"
	ListSettlementsProcedure    = "/" + SettlementServiceName + "/ListSettlements"
	CompleteSettlementProcedure = "/" + SettlementServiceName + "/CompleteSettlement"
)

// Engine is the part of service.Engine served over RPC.
type Engine interface {
	ComputeBalances(ctx context.Context, networkID string) (calculator.Balances, error)
	PlanSettlements(ctx context.Context, networkID string) (calculator.Plan, error)
	CommitPlan(ctx context.Context, networkID string, plan calculator.Plan) ([]*models.Settlement, error)
	ListSettlements(ctx context.Context, networkID string) ([]*models.Settlement, error)
	CompleteSettlement(ctx context.Context, settlementID string) error
}

// SettlementServer implements the SettlementService procedures.
type SettlementServer struct {
	engine Engine
}

// NewSettlementServer creates a server backed by engine.
func NewSettlementServer(engine Engine) *SettlementServer {
	return &SettlementServer{engine: engine}
}

// NewSettlementServiceHandler builds an HTTP handler serving every procedure
// of the service. It returns the path to mount the handler on.
func NewSettlementServiceHandler(svc *SettlementServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	computeBalances := connect.NewUnaryHandler(ComputeBalancesProcedure, svc.ComputeBalances, opts...)
	planSettlements := connect.NewUnaryHandler(PlanSettlementsProcedure, svc.PlanSettlements, opts...)
	commitPlan := connect.NewUnaryHandler(CommitPlanProcedure, svc.CommitPlan, opts...)
	listSettlements := connect.NewUnaryHandler(ListSettlementsProcedure, svc.ListSettlements, opts...)
	completeSettlement := connect.NewUnaryHandler(CompleteSettlementProcedure, svc.CompleteSettlement, opts...)

	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ComputeBalancesProcedure:
			computeBalances.ServeHTTP(w, r)
		case PlanSettlementsProcedure:
			planSettlements.ServeHTTP(w, r)
		case CommitPlanProcedure:
			commitPlan.ServeHTTP(w, r)
		case ListSettlementsProcedure:
			listSettlements.ServeHTTP(w, r)
		case CompleteSettlementProcedure:
			completeSettlement.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ComputeBalances returns every non-zero member balance, ordered by member ID.
func (s *SettlementServer) ComputeBalances(ctx context.Context, req *connect.Request[ComputeBalancesRequest]) (*connect.Response[ComputeBalancesResponse], error) {
	if req.Msg.NetworkID == "" {
		return nil, errMissing("network_id")
	}

	balances, err := s.engine.ComputeBalances(ctx, req.Msg.NetworkID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(balancesToMessage(balances)), nil
}

// PlanSettlements returns the draft transfers that would settle the network.
func (s *SettlementServer) PlanSettlements(ctx context.Context, req *connect.Request[PlanSettlementsRequest]) (*connect.Response[PlanSettlementsResponse], error) {
	if req.Msg.NetworkID == "" {
		return nil, errMissing("network_id")
	}

	plan, err := s.engine.PlanSettlements(ctx, req.Msg.NetworkID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PlanSettlementsResponse{
		Plan:           plan,
		AlreadySettled: plan.AlreadySettled(),
	}), nil
}

// CommitPlan persists an accepted plan.
func (s *SettlementServer) CommitPlan(ctx context.Context, req *connect.Request[CommitPlanRequest]) (*connect.Response[CommitPlanResponse], error) {
	if req.Msg.NetworkID == "" {
		return nil, errMissing("network_id")
	}
	for _, t := range req.Msg.Plan.Transfers {
		if t.From == "" || t.To == "" || !t.Amount.IsPositive() {
			return nil, connect.NewError(connect.CodeInvalidArgument, errInvalidTransfer)
		}
	}

	settlements, err := s.engine.CommitPlan(ctx, req.Msg.NetworkID, req.Msg.Plan)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CommitPlanResponse{
		Settlements: settlementsToMessage(settlements),
	}), nil
}

// ListSettlements returns the network's settlement history, newest first.
func (s *SettlementServer) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	if req.Msg.NetworkID == "" {
		return nil, errMissing("network_id")
	}

	settlements, err := s.engine.ListSettlements(ctx, req.Msg.NetworkID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListSettlementsResponse{
		Settlements: settlementsToMessage(settlements),
	}), nil
}

// CompleteSettlement marks a pending settlement as paid out.
func (s *SettlementServer) CompleteSettlement(ctx context.Context, req *connect.Request[CompleteSettlementRequest]) (*connect.Response[CompleteSettlementResponse], error) {
	if req.Msg.SettlementID == "" {
		return nil, errMissing("settlement_id")
	}

	if err := s.engine.CompleteSettlement(ctx, req.Msg.SettlementID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CompleteSettlementResponse{}), nil
}
