package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewSQLiteStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return s
}

func sampleMessage(hash string) *Message {
	return &Message{
		TxHash:      hash,
		MessageType: "pacs.008",
		Canonical:   []byte(`{"message_id":"MSG001"}`),
		XML:         "<Document/>",
		IsValid:     true,
		Errors:      []string{},
		Warnings:    []string{"external validator unavailable"},
	}
}

func TestSQLiteSaveAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	msg := sampleMessage("HASH1")
	if err := s.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if msg.ID == "" {
		t.Error("expected generated ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected generated timestamp")
	}

	got, err := s.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if got.TxHash != "HASH1" || got.MessageType != "pacs.008" {
		t.Errorf("unexpected row: %+v", got)
	}
	if !got.IsValid {
		t.Error("expected is_valid to round-trip")
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != "external validator unavailable" {
		t.Errorf("warnings did not round-trip: %v", got.Warnings)
	}
	if string(got.Canonical) != `{"message_id":"MSG001"}` {
		t.Errorf("canonical did not round-trip: %s", got.Canonical)
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetMessage(context.Background(), "nope")
	if !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestSQLiteListNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	older := sampleMessage("OLD")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleMessage("NEW")

	if err := s.SaveMessage(ctx, older); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if err := s.SaveMessage(ctx, newer); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	msgs, err := s.ListMessages(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].TxHash != "NEW" || msgs[1].TxHash != "OLD" {
		t.Errorf("unexpected order: %s, %s", msgs[0].TxHash, msgs[1].TxHash)
	}
}

func TestSQLiteHasTransaction(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveMessage(ctx, sampleMessage("HASH1")); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	seen, err := s.HasTransaction(ctx, "HASH1", "pacs.008")
	if err != nil {
		t.Fatalf("HasTransaction failed: %v", err)
	}
	if !seen {
		t.Error("expected HASH1/pacs.008 to be seen")
	}

	seen, err = s.HasTransaction(ctx, "HASH1", "pain.001")
	if err != nil {
		t.Fatalf("HasTransaction failed: %v", err)
	}
	if seen {
		t.Error("did not expect HASH1/pain.001 to be seen")
	}
}
