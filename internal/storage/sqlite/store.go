// Package sqlite implements storage.MemoryStore on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/memview/internal/storage"
	"github.com/scrypster/memview/pkg/types"
)

// Store implements storage.MemoryStore using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at the given DSN, configures WAL mode,
// and creates the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetDB exposes the underlying database connection for tests and tooling.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// List retrieves every record for the user, ordered by creation time
// descending. NULL timestamps sort last.
func (s *Store) List(ctx context.Context, userID string) ([]types.RawDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fact, tags, pinned, related_to, expires_at, created_at, updated_at
		FROM memories
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list memories: %w", err)
	}
	defer rows.Close()

	docs := []types.RawDocument{}
	for rows.Next() {
		var (
			id, fact, tagsJSON, relatedJSON string
			pinned                          bool
			expiresAt, createdAt, updatedAt sql.NullString
		)
		if err := rows.Scan(&id, &fact, &tagsJSON, &pinned, &relatedJSON, &expiresAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan memory row: %w", err)
		}

		fields := map[string]interface{}{
			"fact":      fact,
			"tags":      decodeStringList(tagsJSON),
			"pinned":    pinned,
			"relatedTo": decodeStringList(relatedJSON),
		}
		if expiresAt.Valid {
			fields["expiresAt"] = expiresAt.String
		}
		if createdAt.Valid {
			fields["createdAt"] = createdAt.String
		}
		if updatedAt.Valid {
			fields["updatedAt"] = updatedAt.String
		}

		docs = append(docs, types.RawDocument{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: row iteration failed: %w", err)
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

	createdAt := m.CreatedAt
	if createdAt == nil {
		now := time.Now().UTC().Format(time.RFC3339)
		createdAt = &now
	}

	tagsJSON, err := encodeStringList(m.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode tags: %w", err)
	}
	relatedJSON, err := encodeStringList(m.RelatedTo)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode relatedTo: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (user_id, id, fact, tags, pinned, related_to, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			fact = excluded.fact,
			tags = excluded.tags,
			pinned = excluded.pinned,
			related_to = excluded.related_to,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, userID, m.ID, m.Fact, tagsJSON, m.Pinned, relatedJSON,
		nullable(m.ExpiresAt), nullable(createdAt), nullable(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: failed to store memory %s: %w", m.ID, err)
	}

	return nil
}

// Delete removes a record by ID.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return storage.ErrNotAuthenticated
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM memories WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete memory %s: %w", id, err)
	}

	return checkAffected(result, id)
}

// SetPinned sets the pin flag on a record.
func (s *Store) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	if userID == "" {
		return storage.ErrNotAuthenticated
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE memories SET pinned = ? WHERE user_id = ? AND id = ?`,
		pinned, userID, id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to update pin for %s: %w", id, err)
	}

	return checkAffected(result, id)
}

// UpdateFields applies a partial update and stamps a fresh updatedAt.
func (s *Store) UpdateFields(ctx context.Context, userID, id string, update storage.FieldUpdate) error {
	if userID == "" {
		return storage.ErrNotAuthenticated
	}

	query := `UPDATE memories SET updated_at = ?`
	args := []interface{}{time.Now().UTC().Format(time.RFC3339)}

	if update.Fact != nil {
		query += `, fact = ?`
		args = append(args, *update.Fact)
	}
	if update.Tags != nil {
		tagsJSON, err := encodeStringList(*update.Tags)
		if err != nil {
			return fmt.Errorf("sqlite: failed to encode tags: %w", err)
		}
		query += `, tags = ?`
		args = append(args, tagsJSON)
	}

	query += ` WHERE user_id = ? AND id = ?`
	args = append(args, userID, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: failed to update memory %s: %w", id, err)
	}

	return checkAffected(result, id)
}

func checkAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func encodeStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeStringList tolerates malformed stored JSON by degrading to an
// empty list; the normalizer treats that the same as an absent field.
func decodeStringList(data string) []string {
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
