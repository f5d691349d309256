package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/courier/internal/ports/secondary"
)

// MessageRepository implements secondary.MessageRepository with PostgreSQL.
type MessageRepository struct {
	q querier
}

// Create persists a new message.
func (r *MessageRepository) Create(ctx context.Context, message *secondary.MessageRecord) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO messages (id, sender_id, recipient_id, content, read_status, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		message.ID, message.SenderID, message.RecipientID, message.Content, message.Read, message.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by its ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*secondary.MessageRecord, error) {
	record := &secondary.MessageRecord{}
	err := r.q.QueryRowContext(ctx,
		"SELECT id, sender_id, recipient_id, content, read_status, created_at FROM messages WHERE id = $1",
		id,
	).Scan(&record.ID, &record.SenderID, &record.RecipientID, &record.Content, &record.Read, &record.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

// ListBetween retrieves one page of messages between two users, newest first.
func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]*secondary.MessageRecord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, content, read_status, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, userA, userB, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MarkThreadRead flips unread sender->recipient messages to read.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		"UPDATE messages SET read_status = TRUE WHERE recipient_id = $1 AND sender_id = $2 AND read_status = FALSE",
		recipientID, senderID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark thread read: %w", err)
	}

	changed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count marked messages: %w", err)
	}
	return changed, nil
}

// LatestBetween retrieves the most recent message between two users, or nil.
func (r *MessageRepository) LatestBetween(ctx context.Context, userA, userB string) (*secondary.MessageRecord, error) {
	record := &secondary.MessageRecord{}
	err := r.q.QueryRowContext(ctx, `
		SELECT id, sender_id, recipient_id, content, read_status, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userA, userB).Scan(
		&record.ID, &record.SenderID, &record.RecipientID, &record.Content, &record.Read, &record.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest message: %w", err)
	}

	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

// CountUnread counts unread sender->recipient messages.
func (r *MessageRepository) CountUnread(ctx context.Context, recipientID, senderID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND sender_id = $2 AND read_status = FALSE",
		recipientID, senderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	return count, nil
}

// Delete hard-deletes a message.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return secondary.ErrNotFound
	}

	return nil
}

func scanMessages(rows *sql.Rows) ([]*secondary.MessageRecord, error) {
	var messages []*secondary.MessageRecord
	for rows.Next() {
		record := &secondary.MessageRecord{}
		err := rows.Scan(&record.ID, &record.SenderID, &record.RecipientID, &record.Content, &record.Read, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		record.CreatedAt = record.CreatedAt.UTC()
		messages = append(messages, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return messages, nil
}

// Ensure MessageRepository implements the interface.
var _ secondary.MessageRepository = (*MessageRepository)(nil)
