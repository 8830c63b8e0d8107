// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settlewise/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrSplitAlreadyPaid is returned by CommitSettlements when a split it was
// asked to resolve is no longer unpaid.
var ErrSplitAlreadyPaid = errors.New("bill split already paid")

// Store defines the interface for network, bill and settlement storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateNetwork persists a new network. ID and CreatedAt are populated
	// by the store when empty.
	CreateNetwork(ctx context.Context, network *models.Network) error

	// GetNetwork retrieves a network by its ID.
	// Returns ErrNotFound if the network does not exist.
	GetNetwork(ctx context.Context, networkID string) (*models.Network, error)

	// AddMember adds a member to an existing network.
	AddMember(ctx context.Context, member *models.Member) error

	// ListMembers returns the membership snapshot of a network, ordered by ID.
	ListMembers(ctx context.Context, networkID string) ([]*models.Member, error)

	// CreateBill persists a bill and its splits.
	// The bill and split ID fields will be populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with its splits.
	// Returns ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// SetBillStatus moves a bill between open and settled.
	SetBillStatus(ctx context.Context, billID string, status models.BillStatus) error

	// ListOpenBills returns every open bill of a network with its splits,
	// ordered by creation time.
	ListOpenBills(ctx context.Context, networkID string) ([]*models.Bill, error)

	// CommitSettlements inserts the settlements and marks the given splits
	// paid in one transaction. Either everything is written or nothing is.
	CommitSettlements(ctx context.Context, settlements []*models.Settlement, splitIDs []string) error

	// GetSettlement retrieves a settlement by its ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlements returns the settlements of a network, newest first.
	ListSettlements(ctx context.Context, networkID string) ([]*models.Settlement, error)

	// CompleteSettlement marks a pending settlement completed.
	CompleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
