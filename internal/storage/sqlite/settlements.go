package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settlewise/internal/models"
	"github.com/mmynk/settlewise/internal/storage"
)

// CommitSettlements inserts settlements and marks splits paid atomically.
// A split that is not currently unpaid aborts the whole commit with
// storage.ErrSplitAlreadyPaid.
func (s *SQLiteStore) CommitSettlements(ctx context.Context, settlements []*models.Settlement, splitIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, settlement := range settlements {
		// Generate ID if not set
		if settlement.ID == "" {
			settlement.ID = uuid.New().String()
		}
		if settlement.CreatedAt == 0 {
			settlement.CreatedAt = now
		}
		if settlement.Status == "" {
			settlement.Status = models.SettlementPending
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, network_id, from_member_id, to_member_id, amount, currency, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.NetworkID, settlement.FromMemberID, settlement.ToMemberID,
			settlement.Amount.StringFixed(2), settlement.Currency, settlement.Status, settlement.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	for _, splitID := range splitIDs {
		result, err := tx.ExecContext(ctx,
			"UPDATE bill_splits SET status = ? WHERE id = ? AND status = ?",
			models.SplitPaid, splitID, models.SplitUnpaid,
		)
		if err != nil {
			return fmt.Errorf("failed to mark split paid: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to mark split paid: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("split %s: %w", splitID, storage.ErrSplitAlreadyPaid)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const settlementColumns = `id, network_id, from_member_id, to_member_id, amount, currency, status, created_at`

func scanSettlement(row interface{ Scan(...any) error }) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	err := row.Scan(&settlement.ID, &settlement.NetworkID, &settlement.FromMemberID, &settlement.ToMemberID,
		&settlement.Amount, &settlement.Currency, &settlement.Status, &settlement.CreatedAt)
	return settlement, err
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// ListSettlements retrieves all settlements for a network.
func (s *SQLiteStore) ListSettlements(ctx context.Context, networkID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE network_id = ? ORDER BY created_at DESC, rowid DESC",
		networkID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// CompleteSettlement marks a pending settlement completed.
// Completed settlements are never changed again.
func (s *SQLiteStore) CompleteSettlement(ctx context.Context, settlementID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET status = ? WHERE id = ? AND status = ?",
		models.SettlementCompleted, settlementID, models.SettlementPending,
	)
	if err != nil {
		return fmt.Errorf("failed to complete settlement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete settlement: %w", err)
	}
	if n == 0 {
		// Distinguish a missing settlement from one already completed
		if _, err := s.GetSettlement(ctx, settlementID); err != nil {
			return err
		}
	}

	return nil
}
