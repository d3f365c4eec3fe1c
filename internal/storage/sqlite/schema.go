package sqlite

// Schema is the SQLite schema for the memview store. Records are keyed by
// (user_id, id); tags and related_to are stored as JSON arrays; timestamps
// are stored as ISO-8601 text so they round-trip through normalization
// unchanged.
const Schema = `
CREATE TABLE IF NOT EXISTS memories (
	user_id    TEXT NOT NULL,
	id         TEXT NOT NULL,
	fact       TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	pinned     INTEGER NOT NULL DEFAULT 0,
	related_to TEXT NOT NULL DEFAULT '[]',
	expires_at TEXT,
	created_at TEXT,
	updated_at TEXT,
	PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_memories_user_created
	ON memories(user_id, created_at DESC);
`
