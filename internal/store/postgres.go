package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists generated messages in PostgreSQL.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// SaveMessage inserts a message row, assigning an ID and timestamp when the
// caller left them empty.
func (s *PostgresStore) SaveMessage(ctx context.Context, msg *Message) error {
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

	_, err = s.Pool.Exec(ctx, `
		INSERT INTO messages (id, tx_hash, message_type, canonical, xml, is_valid, errors, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, msg.ID, msg.TxHash, msg.MessageType, msg.Canonical, msg.XML, msg.IsValid, errsJSON, warnsJSON, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// GetMessage fetches one message by ID.
func (s *PostgresStore) GetMessage(ctx context.Context, id string) (*Message, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, tx_hash, message_type, canonical, xml, is_valid, errors, warnings, created_at
		FROM messages WHERE id = $1
	`, id)

	msg, err := scanMessage(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// ListMessages returns messages ordered newest first.
func (s *PostgresStore) ListMessages(ctx context.Context, limit, offset int) ([]*Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, tx_hash, message_type, canonical, xml, is_valid, errors, warnings, created_at
		FROM messages ORDER BY created_at DESC LIMIT $1 OFFSET $2
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
func (s *PostgresStore) HasTransaction(ctx context.Context, txHash, messageType string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE tx_hash = $1 AND message_type = $2)`,
		txHash, messageType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}
	return exists, nil
}

func encodeLists(msg *Message) (string, string, error) {
	errsJSON, err := json.Marshal(msg.Errors)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode errors: %w", err)
	}
	warnsJSON, err := json.Marshal(msg.Warnings)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode warnings: %w", err)
	}
	return string(errsJSON), string(warnsJSON), nil
}

func scanMessage(scan func(dest ...any) error) (*Message, error) {
	var msg Message
	var errsJSON, warnsJSON string
	if err := scan(&msg.ID, &msg.TxHash, &msg.MessageType, &msg.Canonical, &msg.XML,
		&msg.IsValid, &errsJSON, &warnsJSON, &msg.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(errsJSON), &msg.Errors); err != nil {
		return nil, fmt.Errorf("failed to decode errors: %w", err)
	}
	if err := json.Unmarshal([]byte(warnsJSON), &msg.Warnings); err != nil {
		return nil, fmt.Errorf("failed to decode warnings: %w", err)
	}
	return &msg, nil
}
