// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/settlewise/internal/models"
	"github.com/mmynk/settlewise/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	// Write transactions take the lock up front to avoid upgrade deadlocks.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateNetwork persists a new network.
func (s *SQLiteStore) CreateNetwork(ctx context.Context, network *models.Network) error {
	if network.ID == "" {
		network.ID = uuid.New().String()
	}
	if network.CreatedAt == 0 {
		network.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO networks (id, name, currency, created_at) VALUES (?, ?, ?, ?)",
		network.ID, network.Name, network.Currency, network.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert network: %w", err)
	}

	return nil
}

// GetNetwork retrieves a network by ID.
func (s *SQLiteStore) GetNetwork(ctx context.Context, networkID string) (*models.Network, error) {
	network := &models.Network{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, currency, created_at FROM networks WHERE id = ?",
		networkID,
	).Scan(&network.ID, &network.Name, &network.Currency, &network.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("network %s: %w", networkID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	return network, nil
}

// AddMember adds a member to a network.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}

	var contact interface{} = nil
	if member.Contact != "" {
		contact = member.Contact
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members (id, network_id, name, contact) VALUES (?, ?, ?, ?)",
		member.ID, member.NetworkID, member.Name, contact,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return nil
}

// ListMembers retrieves the members of a network.
func (s *SQLiteStore) ListMembers(ctx context.Context, networkID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, network_id, name, contact FROM members WHERE network_id = ? ORDER BY id",
		networkID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var contact sql.NullString
		if err := rows.Scan(&member.ID, &member.NetworkID, &member.Name, &contact); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if contact.Valid {
			member.Contact = contact.String
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
