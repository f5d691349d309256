package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/courier/internal/ports/secondary"
)

// ConversationRepository implements secondary.ConversationRepository with SQLite.
type ConversationRepository struct {
	q querier
}

// Upsert inserts the candidate conversation or, when the pair already
// exists, bumps its last_message_at instead. One statement, so two
// racing first-sends cannot both insert: the loser's INSERT turns into
// the UPDATE branch inside the store. The surviving row id comes back
// either way; a losing candidate id is simply discarded.
func (r *ConversationRepository) Upsert(ctx context.Context, candidate *secondary.ConversationRecord) (string, error) {
	var id string
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO conversations (id, user_low, user_high, last_message_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_low, user_high)
		DO UPDATE SET last_message_at = excluded.last_message_at
		RETURNING id
	`,
		candidate.ID, candidate.UserLow, candidate.UserHigh,
		candidate.LastMessageAt.UTC(), candidate.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert conversation: %w", err)
	}

	return id, nil
}

// GetByPair retrieves the conversation for a canonical pair.
func (r *ConversationRepository) GetByPair(ctx context.Context, userLow, userHigh string) (*secondary.ConversationRecord, error) {
	record := &secondary.ConversationRecord{}
	var lastMessageAt, createdAt time.Time

	err := r.q.QueryRowContext(ctx,
		"SELECT id, user_low, user_high, last_message_at, created_at FROM conversations WHERE user_low = ? AND user_high = ?",
		userLow, userHigh,
	).Scan(&record.ID, &record.UserLow, &record.UserHigh, &lastMessageAt, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	record.LastMessageAt = lastMessageAt.UTC()
	record.CreatedAt = createdAt.UTC()

	return record, nil
}

// ListForUser retrieves one page of the user's conversations, most
// recent activity first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*secondary.ConversationRecord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_low, user_high, last_message_at, created_at
		FROM conversations
		WHERE user_low = ? OR user_high = ?
		ORDER BY last_message_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*secondary.ConversationRecord
	for rows.Next() {
		record := &secondary.ConversationRecord{}
		var lastMessageAt, createdAt time.Time

		err := rows.Scan(&record.ID, &record.UserLow, &record.UserHigh, &lastMessageAt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}

		record.LastMessageAt = lastMessageAt.UTC()
		record.CreatedAt = createdAt.UTC()

		conversations = append(conversations, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}

	return conversations, nil
}

// Ensure ConversationRepository implements the interface.
var _ secondary.ConversationRepository = (*ConversationRepository)(nil)
