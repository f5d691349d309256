package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/courier/internal/ports/secondary"
)

// ConversationRepository implements secondary.ConversationRepository with PostgreSQL.
type ConversationRepository struct {
	q querier
}

// Upsert inserts the candidate conversation or, on the pair uniqueness
// conflict, bumps the existing row's last_message_at. Single statement,
// so concurrent first-sends both succeed and exactly one row survives.
func (r *ConversationRepository) Upsert(ctx context.Context, candidate *secondary.ConversationRecord) (string, error) {
	var id string
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO conversations (id, user_low, user_high, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_low, user_high)
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
	err := r.q.QueryRowContext(ctx,
		"SELECT id, user_low, user_high, last_message_at, created_at FROM conversations WHERE user_low = $1 AND user_high = $2",
		userLow, userHigh,
	).Scan(&record.ID, &record.UserLow, &record.UserHigh, &record.LastMessageAt, &record.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	record.LastMessageAt = record.LastMessageAt.UTC()
	record.CreatedAt = record.CreatedAt.UTC()

	return record, nil
}

// ListForUser retrieves one page of the user's conversations, most
// recent activity first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*secondary.ConversationRecord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_low, user_high, last_message_at, created_at
		FROM conversations
		WHERE user_low = $1 OR user_high = $1
		ORDER BY last_message_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*secondary.ConversationRecord
	for rows.Next() {
		record := &secondary.ConversationRecord{}
		err := rows.Scan(&record.ID, &record.UserLow, &record.UserHigh, &record.LastMessageAt, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}

		record.LastMessageAt = record.LastMessageAt.UTC()
		record.CreatedAt = record.CreatedAt.UTC()

		conversations = append(conversations, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}

	return conversations, nil
}

// Ensure ConversationRepository implements the interface.
var _ secondary.ConversationRepository = (*ConversationRepository)(nil)
