package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore persists generated messages in SQLite, for local and
// development deployments that have no PostgreSQL available.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an open SQLite handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the messages table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		tx_hash TEXT NOT NULL,
		message_type TEXT NOT NULL,
		canonical BLOB NOT NULL,
		xml TEXT NOT NULL,
		is_valid INTEGER NOT NULL,
		errors TEXT NOT NULL,
		warnings TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_tx_hash ON messages(tx_hash, message_type);
	CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SaveMessage inserts a message row, assigning an ID and timestamp when the
// caller left them empty.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	errsJSON, warnsJSON, err := encodeLists(msg)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, tx_hash, message_type, canonical, xml, is_valid, errors, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.TxHash, msg.MessageType, msg.Canonical, msg.XML, msg.IsValid, errsJSON, warnsJSON, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// GetMessage fetches one message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tx_hash, message_type, canonical, xml, is_valid, errors, warnings, created_at
		FROM messages WHERE id = ?
	`, id)

	msg, err := scanMessage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// ListMessages returns messages ordered newest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, limit, offset int) ([]*Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tx_hash, message_type, canonical, xml, is_valid, errors, warnings, created_at
		FROM messages ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// HasTransaction reports whether a message of the given type already exists
// for a transaction hash.
func (s *SQLiteStore) HasTransaction(ctx context.Context, txHash, messageType string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM messages WHERE tx_hash = ? AND message_type = ?`,
		txHash, messageType).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}
	return count > 0, nil
}

var (
	_ MessageStore = (*SQLiteStore)(nil)
	_ MessageStore = (*PostgresStore)(nil)
)
