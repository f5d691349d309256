// Package primary defines the primary ports (driving adapters) for the
// application. The HTTP adapter drives the service through these
// interfaces.
package primary

import (
	"context"
	"time"
)

// Pagination limits
const (
	MaxPageLimit       = 100
	DefaultThreadLimit = 50
	DefaultInboxLimit  = 20
)

// MessagingService defines the primary port for direct messaging.
type MessagingService interface {
	// Send creates a message and bumps the pair's conversation as one
	// atomic unit.
	Send(ctx context.Context, req SendRequest) (*Message, error)

	// Thread returns one page of the two-party history, oldest first
	// within the page, and flips unread counterpart->viewer messages
	// to read.
	Thread(ctx context.Context, req ThreadRequest) ([]*Message, error)

	// Inbox lists the viewer's conversations, most recent activity first.
	Inbox(ctx context.Context, req InboxRequest) ([]*InboxEntry, error)

	// Delete hard-deletes a message; only its sender may do so.
	Delete(ctx context.Context, req DeleteRequest) error
}

// Page holds normalized pagination parameters.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to the given default and the global maximum.
func (p Page) Normalize(defaultLimit int) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SendRequest contains parameters for sending a message.
type SendRequest struct {
	SenderID    string
	RecipientID string
	Content     string
}

// ThreadRequest contains parameters for reading a two-party thread.
type ThreadRequest struct {
	ViewerID      string
	CounterpartID string
	Page          Page
}

// InboxRequest contains parameters for listing the viewer's inbox.
type InboxRequest struct {
	ViewerID string
	Page     Page
}

// DeleteRequest contains parameters for deleting a message.
type DeleteRequest struct {
	RequesterID string
	MessageID   string
}

// Message represents a message entity at the port boundary.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Content     string
	Read        bool
	CreatedAt   time.Time
}

// InboxEntry is one conversation in the viewer's inbox listing.
type InboxEntry struct {
	CounterpartID string
	LastMessage   string
	UnreadCount   int
	LastMessageAt time.Time
	CreatedAt     time.Time
}
