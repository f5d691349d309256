// Package app implements the primary ports over the secondary ports.
// Services hold no state beyond the injected store handle; every read
// re-queries durable storage so concurrently running instances stay
// consistent with each other.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/courier/internal/apperr"
	"github.com/example/courier/internal/core/content"
	"github.com/example/courier/internal/core/pairkey"
	"github.com/example/courier/internal/ports/primary"
	"github.com/example/courier/internal/ports/secondary"
)

// MessagingServiceImpl implements the MessagingService interface.
type MessagingServiceImpl struct {
	store secondary.Store
	now   func() time.Time
}

// NewMessagingService creates a MessagingService with injected dependencies.
func NewMessagingService(store secondary.Store) *MessagingServiceImpl {
	return &MessagingServiceImpl{
		store: store,
		now:   time.Now,
	}
}

// Send validates the request, then commits the message insert and the
// conversation upsert as one transaction. Either both effects become
// visible or neither does.
func (s *MessagingServiceImpl) Send(ctx context.Context, req primary.SendRequest) (*primary.Message, error) {
	if req.SenderID == "" {
		return nil, apperr.AuthMissing()
	}
	if req.RecipientID == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "recipient_id", Message: "Invalid recipient ID"})
	}
	if req.SenderID == req.RecipientID {
		return nil, apperr.SelfMessage()
	}

	check := content.Check(req.Content)
	if !check.Allowed {
		return nil, apperr.Validation(apperr.FieldError{Field: "content", Message: check.Reason})
	}

	now := s.now().UTC()
	record := &secondary.MessageRecord{
		ID:          uuid.NewString(),
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Content:     check.Trimmed,
		Read:        false,
		CreatedAt:   now,
	}

	low, high := pairkey.Canonical(req.SenderID, req.RecipientID)
	candidate := &secondary.ConversationRecord{
		ID:            uuid.NewString(),
		UserLow:       low,
		UserHigh:      high,
		LastMessageAt: now,
		CreatedAt:     now,
	}

	err := s.store.WithinTx(ctx, func(tx secondary.Store) error {
		if err := tx.Messages().Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if _, err := tx.Conversations().Upsert(ctx, candidate); err != nil {
			return fmt.Errorf("failed to resolve conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err)
	}

	return recordToMessage(record), nil
}

// Thread returns one page of the two-party history, oldest first within
// the page. After the page is computed, every unread message flowing
// counterpart -> viewer is flipped to read in one bulk update; messages
// the viewer sent are never touched. A message arriving between the
// fetch and the flip can be marked read before the viewer sees it; that
// window is accepted, not remediated.
func (s *MessagingServiceImpl) Thread(ctx context.Context, req primary.ThreadRequest) ([]*primary.Message, error) {
	if req.ViewerID == "" {
		return nil, apperr.AuthMissing()
	}
	if req.CounterpartID == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "counterpart_id", Message: "Invalid user ID"})
	}

	page := req.Page.Normalize(primary.DefaultThreadLimit)

	records, err := s.store.Messages().ListBetween(ctx, req.ViewerID, req.CounterpartID, page.Limit, page.Offset)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to read thread: %w", err))
	}

	if _, err := s.store.Messages().MarkThreadRead(ctx, req.ViewerID, req.CounterpartID); err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to mark thread read: %w", err))
	}

	// Stored newest-first for pagination; callers read oldest-to-newest.
	messages := make([]*primary.Message, len(records))
	for i, r := range records {
		messages[len(records)-1-i] = recordToMessage(r)
	}
	return messages, nil
}

// Inbox lists the viewer's conversations by recency. Each entry's
// snippet and unread count are fetched independently per conversation;
// nothing is shared or cached across entries.
func (s *MessagingServiceImpl) Inbox(ctx context.Context, req primary.InboxRequest) ([]*primary.InboxEntry, error) {
	if req.ViewerID == "" {
		return nil, apperr.AuthMissing()
	}

	page := req.Page.Normalize(primary.DefaultInboxLimit)

	conversations, err := s.store.Conversations().ListForUser(ctx, req.ViewerID, page.Limit, page.Offset)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to list conversations: %w", err))
	}

	entries := make([]*primary.InboxEntry, 0, len(conversations))
	for _, conv := range conversations {
		counterpart := conv.UserHigh
		if counterpart == req.ViewerID {
			counterpart = conv.UserLow
		}

		entry := &primary.InboxEntry{
			CounterpartID: counterpart,
			LastMessageAt: conv.LastMessageAt,
			CreatedAt:     conv.CreatedAt,
		}

		latest, err := s.store.Messages().LatestBetween(ctx, req.ViewerID, counterpart)
		if err != nil {
			return nil, apperr.Storage(fmt.Errorf("failed to fetch last message: %w", err))
		}
		if latest != nil {
			entry.LastMessage = latest.Content
		}

		unread, err := s.store.Messages().CountUnread(ctx, req.ViewerID, counterpart)
		if err != nil {
			return nil, apperr.Storage(fmt.Errorf("failed to count unread: %w", err))
		}
		entry.UnreadCount = unread

		entries = append(entries, entry)
	}

	return entries, nil
}

// Delete hard-deletes a message after checking the requester sent it.
// The owning conversation's last_message_at is deliberately left alone,
// even when it now points at the deleted message's timestamp.
func (s *MessagingServiceImpl) Delete(ctx context.Context, req primary.DeleteRequest) error {
	if req.RequesterID == "" {
		return apperr.AuthMissing()
	}

	record, err := s.store.Messages().GetByID(ctx, req.MessageID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return apperr.NotFound("Message not found")
		}
		return apperr.Storage(fmt.Errorf("failed to load message: %w", err))
	}

	if record.SenderID != req.RequesterID {
		return apperr.Forbidden("You can only delete your own messages")
	}

	if err := s.store.Messages().Delete(ctx, req.MessageID); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return apperr.NotFound("Message not found")
		}
		return apperr.Storage(fmt.Errorf("failed to delete message: %w", err))
	}

	return nil
}

func recordToMessage(r *secondary.MessageRecord) *primary.Message {
	return &primary.Message{
		ID:          r.ID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Content:     r.Content,
		Read:        r.Read,
		CreatedAt:   r.CreatedAt,
	}
}

// Ensure MessagingServiceImpl implements the interface.
var _ primary.MessagingService = (*MessagingServiceImpl)(nil)
