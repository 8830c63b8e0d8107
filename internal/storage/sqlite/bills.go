package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settlewise/internal/models"
	"github.com/mmynk/settlewise/internal/storage"
)

// CreateBill persists a new bill and its splits in one transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	// Generate IDs if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Status == "" {
		bill.Status = models.BillOpen
	}
	if bill.Title == "" {
		bill.Title = generateTitle(len(bill.Splits))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, network_id, title, total, currency, creator_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.NetworkID, bill.Title, bill.Total, bill.Currency, bill.CreatorID, bill.Status, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.Splits {
		split := &bill.Splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		if split.Status == "" {
			split.Status = models.SplitUnpaid
		}
		split.BillID = bill.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_splits (id, bill_id, member_id, amount, status) VALUES (?, ?, ?, ?, ?)",
			split.ID, split.BillID, split.MemberID, split.Amount, split.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including all splits.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, network_id, title, total, currency, creator_id, status, created_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.NetworkID, &bill.Title, &bill.Total, &bill.Currency,
		&bill.CreatorID, &bill.Status, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	splits, err := s.listSplits(ctx, []string{bill.ID})
	if err != nil {
		return nil, err
	}
	bill.Splits = splits[bill.ID]

	return bill, nil
}

// SetBillStatus updates the lifecycle status of a bill.
func (s *SQLiteStore) SetBillStatus(ctx context.Context, billID string, status models.BillStatus) error {
	result, err := s.db.ExecContext(ctx, "UPDATE bills SET status = ? WHERE id = ?", status, billID)
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// ListOpenBills retrieves all open bills of a network with their splits.
func (s *SQLiteStore) ListOpenBills(ctx context.Context, networkID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, network_id, title, total, currency, creator_id, status, created_at
		 FROM bills WHERE network_id = ? AND status = ? ORDER BY created_at, id`,
		networkID, models.BillOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	var ids []string
	for rows.Next() {
		bill := &models.Bill{}
		if err := rows.Scan(&bill.ID, &bill.NetworkID, &bill.Title, &bill.Total, &bill.Currency,
			&bill.CreatorID, &bill.Status, &bill.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
		ids = append(ids, bill.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	splits, err := s.listSplits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, bill := range bills {
		bill.Splits = splits[bill.ID]
	}

	return bills, nil
}

// listSplits returns the splits of the given bills keyed by bill ID.
func (s *SQLiteStore) listSplits(ctx context.Context, billIDs []string) (map[string][]models.BillSplit, error) {
	out := make(map[string][]models.BillSplit, len(billIDs))
	if len(billIDs) == 0 {
		return out, nil
	}

	query := `SELECT id, bill_id, member_id, amount, status FROM bill_splits
		WHERE bill_id IN (?` + repeatPlaceholder(len(billIDs)-1) + `) ORDER BY bill_id, member_id`

	args := make([]interface{}, len(billIDs))
	for i, id := range billIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.BillSplit
		if err := rows.Scan(&split.ID, &split.BillID, &split.MemberID, &split.Amount, &split.Status); err != nil {
			return nil, fmt.Errorf("failed to scan bill split: %w", err)
		}
		out[split.BillID] = append(out[split.BillID], split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill splits: %w", err)
	}

	return out, nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(", ?", n)
}

// generateTitle creates an auto-generated bill title.
func generateTitle(splits int) string {
	date := time.Now().Format("Jan 2, 2006")
	if splits <= 1 {
		return fmt.Sprintf("Bill - %s", date)
	}
	return fmt.Sprintf("Bill split %d ways - %s", splits, date)
}
