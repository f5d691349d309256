// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// Store bundles the repositories over one durable database and provides
// the transaction scope Send needs. Implementations must be safe for
// concurrent use by many operations in parallel.
type Store interface {
	Messages() MessageRepository
	Conversations() ConversationRepository

	// WithinTx runs fn against a store whose repositories share one
	// transaction; fn returning an error rolls everything back. No lock
	// outlives the transaction.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// MessageRepository defines the secondary port for message persistence.
type MessageRepository interface {
	// Create persists a new message.
	Create(ctx context.Context, message *MessageRecord) error

	// GetByID retrieves a message by its ID. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*MessageRecord, error)

	// ListBetween retrieves one page of messages exchanged between two
	// users in either direction, newest first.
	ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]*MessageRecord, error)

	// MarkThreadRead flips every unread message sent by sender to
	// recipient to read, returning how many rows changed.
	MarkThreadRead(ctx context.Context, recipientID, senderID string) (int64, error)

	// LatestBetween retrieves the most recent message exchanged between
	// two users in either direction, or nil when none exists.
	LatestBetween(ctx context.Context, userA, userB string) (*MessageRecord, error)

	// CountUnread counts unread messages sent by sender to recipient.
	CountUnread(ctx context.Context, recipientID, senderID string) (int, error)

	// Delete hard-deletes a message. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// ConversationRepository defines the secondary port for conversation persistence.
type ConversationRepository interface {
	// Upsert atomically creates the conversation for candidate's
	// (user_low, user_high) pair or, on a uniqueness conflict, bumps the
	// existing row's last_message_at. Returns the surviving row's id in
	// both cases. Racing callers must both succeed.
	Upsert(ctx context.Context, candidate *ConversationRecord) (string, error)

	// GetByPair retrieves the conversation for a canonical pair.
	// Returns ErrNotFound when absent.
	GetByPair(ctx context.Context, userLow, userHigh string) (*ConversationRecord, error)

	// ListForUser retrieves one page of conversations the user
	// participates in, ordered by last_message_at descending.
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*ConversationRecord, error)
}

// MessageRecord represents a message as stored in persistence.
type MessageRecord struct {
	ID          string
	SenderID    string
	RecipientID string
	Content     string
	Read        bool
	CreatedAt   time.Time
}

// ConversationRecord represents a conversation as stored in persistence.
type ConversationRecord struct {
	ID            string
	UserLow       string
	UserHigh      string
	LastMessageAt time.Time
	CreatedAt     time.Time
}
