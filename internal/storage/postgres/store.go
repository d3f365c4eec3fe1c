// Package postgres implements storage.MemoryStore on PostgreSQL.
//
// Unlike the SQLite backend, timestamps are stored as timestamptz and come
// back as native time values; the normalizer converts them to ISO-8601
// strings on the way into the collection.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/scrypster/memview/internal/storage"
	"github.com/scrypster/memview/pkg/types"
)

// Schema is the PostgreSQL schema for the memview store.
const Schema = `
CREATE TABLE IF NOT EXISTS memories (
	user_id    TEXT NOT NULL,
	id         TEXT NOT NULL,
	fact       TEXT NOT NULL DEFAULT '',
	tags       TEXT[] NOT NULL DEFAULT '{}',
	pinned     BOOLEAN NOT NULL DEFAULT FALSE,
	related_to TEXT[] NOT NULL DEFAULT '{}',
	expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ,
	PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_memories_user_created
	ON memories(user_id, created_at DESC);
`

// Store implements storage.MemoryStore using PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore connects to PostgreSQL using the given DSN and creates the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to connect: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// List retrieves every record for the user, newest first. Timestamp fields
// are delivered as native time values.
func (s *Store) List(ctx context.Context, userID string) ([]types.RawDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fact, tags, pinned, related_to, expires_at, created_at, updated_at
		FROM memories
		WHERE user_id = $1
		ORDER BY created_at DESC NULLS LAST
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list memories: %w", err)
	}
	defer rows.Close()

	docs := []types.RawDocument{}
	for rows.Next() {
		var (
			id, fact                        string
			tags, related                   pq.StringArray
			pinned                          bool
			expiresAt, createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(&id, &fact, &tags, &pinned, &related, &expiresAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan memory row: %w", err)
		}

		fields := map[string]interface{}{
			"fact":      fact,
			"tags":      []string(tags),
			"pinned":    pinned,
			"relatedTo": []string(related),
		}
		if expiresAt.Valid {
			fields["expiresAt"] = expiresAt.Time
		}
		if createdAt.Valid {
			fields["createdAt"] = createdAt.Time
		}
		if updatedAt.Valid {
			fields["updatedAt"] = updatedAt.Time
		}

		docs = append(docs, types.RawDocument{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: row iteration failed: %w", err)
	}

	return docs, nil
}

// Put creates or replaces a record (upsert semantics).
func (s *Store) Put(ctx context.Context, userID string, m types.Memory) error {
	if userID == "" {
		return storage.ErrNotAuthenticated
	}
	if m.ID == "" {
		return fmt.Errorf("%w: memory ID is required", storage.ErrInvalidInput)
	}

	createdAt, err := parseTimestamp(m.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: invalid createdAt: %w", err)
	}
	if createdAt == nil {
		now := time.Now().UTC()
		createdAt = &now
	}
	updatedAt, err := parseTimestamp(m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: invalid updatedAt: %w", err)
	}
	expiresAt, err := parseTimestamp(m.ExpiresAt)
	if err != nil {
		return fmt.Errorf("postgres: invalid expiresAt: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (user_id, id, fact, tags, pinned, related_to, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, id) DO UPDATE SET
			fact = EXCLUDED.fact,
			tags = EXCLUDED.tags,
			pinned = EXCLUDED.pinned,
			related_to = EXCLUDED.related_to,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`, userID, m.ID, m.Fact, pq.Array(emptyIfNil(m.Tags)), m.Pinned,
		pq.Array(emptyIfNil(m.RelatedTo)), nullTime(expiresAt), nullTime(createdAt), nullTime(updatedAt))
	if err != nil {
		return fmt.Errorf("postgres: failed to store memory %s: %w", m.ID, err)
	}

	return nil
}

// Delete removes a record by ID.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return storage.ErrNotAuthenticated
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM memories WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete memory %s: %w", id, err)
	}

	return checkAffected(result, id)
}

// SetPinned sets the pin flag on a record.
func (s *Store) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	if userID == "" {
		return storage.ErrNotAuthenticated
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE memories SET pinned = $1 WHERE user_id = $2 AND id = $3`,
		pinned, userID, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to update pin for %s: %w", id, err)
	}

	return checkAffected(result, id)
}

// UpdateFields applies a partial update and stamps a fresh updatedAt.
func (s *Store) UpdateFields(ctx context.Context, userID, id string, update storage.FieldUpdate) error {
	if userID == "" {
		return storage.ErrNotAuthenticated
	}

	query := `UPDATE memories SET updated_at = $1`
	args := []interface{}{time.Now().UTC()}
	next := 2

	if update.Fact != nil {
		query += fmt.Sprintf(`, fact = $%d`, next)
		args = append(args, *update.Fact)
		next++
	}
	if update.Tags != nil {
		query += fmt.Sprintf(`, tags = $%d`, next)
		args = append(args, pq.Array(emptyIfNil(*update.Tags)))
		next++
	}

	query += fmt.Sprintf(` WHERE user_id = $%d AND id = $%d`, next, next+1)
	args = append(args, userID, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("postgres: failed to update memory %s: %w", id, err)
	}

	return checkAffected(result, id)
}

func checkAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func parseTimestamp(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
