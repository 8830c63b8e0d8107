package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/settlewise/internal/calculator"
	"github.com/mmynk/settlewise/internal/lock"
	"github.com/mmynk/settlewise/internal/metrics"
	"github.com/mmynk/settlewise/internal/models"
)

// CommitPlan persists an accepted plan as pending settlements and marks every
// unpaid split of the network's open bills paid, all in one transaction.
//
// Commits for the same network are serialized by the engine's lock. Under the
// lock the plan is recomputed; if it no longer matches the submitted one the
// commit is rejected with ErrStalePlan, so a plan can be applied only once.
// Lock or persistence failures return a *CommitError carrying the unchanged
// plan, and nothing is written.
func (e *Engine) CommitPlan(ctx context.Context, networkID string, plan calculator.Plan) ([]*models.Settlement, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.commitTimeout)
	defer cancel()

	var committed []*models.Settlement
	err := e.locker.WithLock(ctx, lock.NetworkKey(networkID), func(ctx context.Context) error {
		snap, err := e.snapshot(ctx, networkID)
		if err != nil {
			return err
		}

		current, err := planFor(snap)
		if err != nil {
			return err
		}
		if !current.Equal(plan) {
			return ErrStalePlan
		}
		if current.AlreadySettled() {
			committed = []*models.Settlement{}
			return nil
		}

		createdAt := e.now().UTC().Unix()
		settlements := make([]*models.Settlement, len(current.Transfers))
		for i, t := range current.Transfers {
			settlements[i] = &models.Settlement{
				NetworkID:    networkID,
				FromMemberID: t.From,
				ToMemberID:   t.To,
				Amount:       t.Amount,
				Currency:     current.Currency,
				Status:       models.SettlementPending,
				CreatedAt:    createdAt,
			}
		}

		if err := e.store.CommitSettlements(ctx, settlements, snap.unpaidSplitIDs()); err != nil {
			return err
		}
		committed = settlements
		return nil
	})

	took := time.Since(start)
	if err != nil {
		if errors.Is(err, ErrStalePlan) {
			e.metrics.ObserveCommit(metrics.CommitStale, took)
			slog.Warn("CommitPlan rejected - plan is stale", "network_id", networkID)
			return nil, err
		}
		if isDataError(err) {
			e.metrics.ObserveCommit(metrics.CommitFailed, took)
			slog.Warn("CommitPlan rejected - invalid bill data", "network_id", networkID, "error", err)
			return nil, err
		}

		e.metrics.ObserveCommit(metrics.CommitFailed, took)
		slog.Error("CommitPlan failed",
			"network_id", networkID,
			"transfers_count", len(plan.Transfers),
			"duration_ms", took.Milliseconds(),
			"error", err,
		)
		return nil, &CommitError{NetworkID: networkID, Plan: plan, Err: err}
	}

	if len(committed) == 0 {
		e.metrics.ObserveCommit(metrics.CommitEmpty, took)
		slog.Info("CommitPlan: already settled, nothing to commit", "network_id", networkID)
		return committed, nil
	}

	e.metrics.ObserveCommit(metrics.CommitOK, took)
	slog.Info("CommitPlan successful",
		"network_id", networkID,
		"settlements_count", len(committed),
		"duration_ms", took.Milliseconds(),
	)
	return committed, nil
}
