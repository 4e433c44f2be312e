package store

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned when no stored message matches the lookup.
var ErrMessageNotFound = errors.New("message not found")

// Message is one generated ISO 20022 message row: the source transaction
// hash, the canonical record as JSON, the rendered XML, and the validation
// outcome.
type Message struct {
	ID          string    `json:"id"`
	TxHash      string    `json:"tx_hash"`
	MessageType string    `json:"message_type"`
	Canonical   []byte    `json:"canonical"`
	XML         string    `json:"xml"`
	IsValid     bool      `json:"is_valid"`
	Errors      []string  `json:"errors"`
	Warnings    []string  `json:"warnings"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageStore persists generated messages. Implementations are safe for
// concurrent use.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	ListMessages(ctx context.Context, limit, offset int) ([]*Message, error)
	HasTransaction(ctx context.Context, txHash string, messageType string) (bool, error)
}
