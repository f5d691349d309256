// Package sqlite contains the SQLite implementation of the store and
// repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/courier/internal/ports/secondary"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting the repositories run unchanged inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements secondary.Store over an injected SQLite handle.
type Store struct {
	db *sql.DB
	tx *sql.Tx
}

// NewStore creates a Store over the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Messages returns the message repository bound to the current scope.
func (s *Store) Messages() secondary.MessageRepository {
	return &MessageRepository{q: s.q()}
}

// Conversations returns the conversation repository bound to the current scope.
func (s *Store) Conversations() secondary.ConversationRepository {
	return &ConversationRepository{q: s.q()}
}

// WithinTx runs fn inside a single transaction. Calls from within a
// transaction reuse it rather than nesting.
func (s *Store) WithinTx(ctx context.Context, fn func(secondary.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	scoped := &Store{db: s.db, tx: tx}
	if err := fn(scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ensure Store implements the interface.
var _ secondary.Store = (*Store)(nil)
