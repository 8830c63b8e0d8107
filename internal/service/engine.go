// Package service implements the settlement engine: balance computation,
// settlement planning and atomic plan commits on top of storage.Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/settlewise/internal/calculator"
	"github.com/mmynk/settlewise/internal/lock"
	"github.com/mmynk/settlewise/internal/metrics"
	"github.com/mmynk/settlewise/internal/models"
	"github.com/mmynk/settlewise/internal/storage"
)

// DefaultCommitTimeout bounds lock wait plus commit transaction.
const DefaultCommitTimeout = 5 * time.Second

// Engine computes balances and settlement plans for networks and commits
// accepted plans. It keeps no state between calls; every call reads a fresh
// snapshot from the store.
type Engine struct {
	store         storage.Store
	locker        lock.Locker
	metrics       *metrics.Metrics
	commitTimeout time.Duration
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records planning and commit metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithCommitTimeout overrides DefaultCommitTimeout.
func WithCommitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.commitTimeout = d }
}

// NewEngine creates an Engine with the given storage backend and commit lock.
func NewEngine(store storage.Store, locker lock.Locker, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		locker:        locker,
		commitTimeout: DefaultCommitTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// snapshot is a read-only view of one network's membership and open bills.
type snapshot struct {
	network *models.Network
	members []calculator.MemberRef
	bills   []*models.Bill
}

func (e *Engine) snapshot(ctx context.Context, networkID string) (*snapshot, error) {
	network, err := e.getNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}

	members, err := e.store.ListMembers(ctx, networkID)
	if err != nil {
		return nil, err
	}
	bills, err := e.store.ListOpenBills(ctx, networkID)
	if err != nil {
		return nil, err
	}

	refs := make([]calculator.MemberRef, len(members))
	for i, m := range members {
		refs[i] = calculator.MemberRef{ID: m.ID, Name: m.Name}
	}

	return &snapshot{network: network, members: refs, bills: bills}, nil
}

// balances runs the aggregator over the snapshot.
func (s *snapshot) balances() (calculator.Balances, error) {
	bills := make([]calculator.BillForBalance, len(s.bills))
	for i, bill := range s.bills {
		splits := make([]calculator.SplitForBalance, len(bill.Splits))
		for j, split := range bill.Splits {
			splits[j] = calculator.SplitForBalance{
				ID:       split.ID,
				MemberID: split.MemberID,
				Amount:   split.Amount,
				Paid:     split.Status == models.SplitPaid,
			}
		}
		bills[i] = calculator.BillForBalance{
			ID:        bill.ID,
			Total:     bill.Total,
			Currency:  bill.Currency,
			CreatorID: bill.CreatorID,
			Settled:   bill.Status == models.BillSettled,
			Splits:    splits,
		}
	}

	balances, err := calculator.ComputeBalances(s.members, bills)
	if err != nil {
		return calculator.Balances{}, err
	}
	if balances.Currency == "" {
		balances.Currency = s.network.Currency
	}
	return balances, nil
}

// unpaidSplitIDs returns every unpaid split of the snapshot's open bills.
func (s *snapshot) unpaidSplitIDs() []string {
	var ids []string
	for _, bill := range s.bills {
		for _, split := range bill.Splits {
			if split.Status != models.SplitPaid {
				ids = append(ids, split.ID)
			}
		}
	}
	return ids
}

// ComputeBalances returns the net balance of every member of the network
// with a non-zero position.
func (e *Engine) ComputeBalances(ctx context.Context, networkID string) (calculator.Balances, error) {
	snap, err := e.snapshot(ctx, networkID)
	if err != nil {
		slog.Error("ComputeBalances failed - could not load network", "network_id", networkID, "error", err)
		return calculator.Balances{}, err
	}

	balances, err := snap.balances()
	if err != nil {
		slog.Warn("ComputeBalances failed - invalid bill data", "network_id", networkID, "error", err)
		return calculator.Balances{}, err
	}

	slog.Info("ComputeBalances successful",
		"network_id", networkID,
		"bills_count", len(snap.bills),
		"balances_count", len(balances.Net),
	)
	return balances, nil
}

// PlanSettlements computes the transfers that would settle the network.
// Calling it again on unchanged data returns an identical plan.
func (e *Engine) PlanSettlements(ctx context.Context, networkID string) (calculator.Plan, error) {
	snap, err := e.snapshot(ctx, networkID)
	if err != nil {
		slog.Error("PlanSettlements failed - could not load network", "network_id", networkID, "error", err)
		return calculator.Plan{}, err
	}

	plan, err := planFor(snap)
	e.metrics.ObservePlan(len(plan.Transfers), err)
	if err != nil {
		slog.Warn("PlanSettlements failed", "network_id", networkID, "error", err)
		return calculator.Plan{}, err
	}

	if plan.AlreadySettled() {
		slog.Info("PlanSettlements: already settled", "network_id", networkID)
	} else {
		slog.Info("PlanSettlements successful",
			"network_id", networkID,
			"transfers_count", len(plan.Transfers),
			"currency", plan.Currency,
		)
	}
	return plan, nil
}

func planFor(snap *snapshot) (calculator.Plan, error) {
	balances, err := snap.balances()
	if err != nil {
		return calculator.Plan{}, err
	}
	return calculator.PlanSettlements(balances)
}

// ListSettlements returns the settlement history of a network, newest first.
func (e *Engine) ListSettlements(ctx context.Context, networkID string) ([]*models.Settlement, error) {
	if _, err := e.getNetwork(ctx, networkID); err != nil {
		return nil, err
	}
	return e.store.ListSettlements(ctx, networkID)
}

// CompleteSettlement records that the money of a pending settlement has
// changed hands. It is the only change a settlement ever receives.
func (e *Engine) CompleteSettlement(ctx context.Context, settlementID string) error {
	if err := e.store.CompleteSettlement(ctx, settlementID); err != nil {
		slog.Error("CompleteSettlement failed", "settlement_id", settlementID, "error", err)
		return err
	}
	slog.Info("Settlement completed", "settlement_id", settlementID)
	return nil
}

func (e *Engine) getNetwork(ctx context.Context, networkID string) (*models.Network, error) {
	network, err := e.store.GetNetwork(ctx, networkID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, networkID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get network: %w", err)
	}
	return network, nil
}
