package db

// SchemaSQL is the complete SQLite schema for the messaging store.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All
// repository tests build their in-memory database from GetSchemaSQL(),
// so a repository referencing a column that does not exist here fails
// immediately with "no such column" instead of drifting silently.
//
// The UNIQUE(user_low, user_high) constraint is what enforces the
// one-conversation-per-pair invariant under concurrent sends; the
// conversation upsert relies on the store raising that conflict.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	sender_id TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	content TEXT NOT NULL,
	read_status INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	user_low TEXT NOT NULL,
	user_high TEXT NOT NULL,
	last_message_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(user_low, user_high)
);

CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id);
CREATE INDEX IF NOT EXISTS idx_messages_recipient_id ON messages(recipient_id);
CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at ON conversations(last_message_at);
`

// PostgresSchemaSQL is the equivalent schema for the postgres backend.
const PostgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	sender_id TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	content TEXT NOT NULL,
	read_status BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	user_low TEXT NOT NULL,
	user_high TEXT NOT NULL,
	last_message_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE(user_low, user_high)
);

CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id);
CREATE INDEX IF NOT EXISTS idx_messages_recipient_id ON messages(recipient_id);
CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at ON conversations(last_message_at);
`

// GetSchemaSQL returns the authoritative SQLite schema. Tests use this
// instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
