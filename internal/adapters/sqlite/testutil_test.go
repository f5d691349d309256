// Package sqlite_test contains integration tests for the SQLite store.
//
// All test setup goes through db.GetSchemaSQL() so tests run against
// the authoritative schema; a repository referencing a column that does
// not exist fails here with "no such column" instead of drifting.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/courier/internal/adapters/sqlite"
	"github.com/example/courier/internal/db"
	"github.com/example/courier/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection: every sqlite ":memory:"
// connection is its own database, and a single connection also forces
// concurrent test callers through the same serialization the file-backed
// store provides.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedMessage inserts a message through the repository and returns its record.
func seedMessage(t *testing.T, store *sqlite.Store, id, sender, recipient, content string, createdAt time.Time) *secondary.MessageRecord {
	t.Helper()

	record := &secondary.MessageRecord{
		ID:          id,
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   createdAt,
	}
	if err := store.Messages().Create(context.Background(), record); err != nil {
		t.Fatalf("failed to seed message %s: %v", id, err)
	}
	return record
}

// seedConversation upserts a conversation and returns the surviving row id.
func seedConversation(t *testing.T, store *sqlite.Store, id, low, high string, lastMessageAt time.Time) string {
	t.Helper()

	gotID, err := store.Conversations().Upsert(context.Background(), &secondary.ConversationRecord{
		ID:            id,
		UserLow:       low,
		UserHigh:      high,
		LastMessageAt: lastMessageAt,
		CreatedAt:     lastMessageAt,
	})
	if err != nil {
		t.Fatalf("failed to seed conversation %s: %v", id, err)
	}
	return gotID
}

// countConversations counts rows for a pair directly.
func countConversations(t *testing.T, testDB *sql.DB, low, high string) int {
	t.Helper()

	var count int
	err := testDB.QueryRow(
		"SELECT COUNT(*) FROM conversations WHERE user_low = ? AND user_high = ?",
		low, high,
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count conversations: %v", err)
	}
	return count
}
