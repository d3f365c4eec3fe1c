// Package export implements the on-disk interchange format: a versioned,
// self-describing JSON document carrying the full record set, and the
// merge/replace import paths that round-trip against it.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/memview/internal/storage"
	"github.com/scrypster/memview/pkg/types"
)

// FormatVersion tags every export document. Kept in lockstep with the
// other tooling that produces and consumes these files.
const FormatVersion = "2.3.0"

// Mode selects how Import treats records that already exist.
type Mode string

const (
	// ModeMerge keeps existing records and skips imported ones whose ID
	// is already present.
	ModeMerge Mode = "merge"

	// ModeReplace deletes the user's current record set before importing.
	ModeReplace Mode = "replace"
)

// Export builds the interchange document for a record set at the given
// export instant.
func Export(records []types.Memory, now time.Time) types.ExportDocument {
	memories := make([]types.Memory, len(records))
	copy(memories, records)
	return types.ExportDocument{
		Version:    FormatVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(memories),
		Memories:   memories,
	}
}

// Marshal renders the document as indented JSON, the way the files are
// shipped around.
func Marshal(doc types.ExportDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: failed to marshal document: %w", err)
	}
	return data, nil
}

// Parse reads an interchange document. Records inside are re-normalized on
// import, so partial documents parse fine; only malformed JSON or a
// missing memories list fail.
func Parse(data []byte) (types.ExportDocument, error) {
	var doc types.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.ExportDocument{}, fmt.Errorf("export: failed to parse document: %w", err)
	}
	if doc.Memories == nil {
		return types.ExportDocument{}, fmt.Errorf("%w: document has no memories list", storage.ErrInvalidInput)
	}
	return doc, nil
}

// Import writes the document's records into the store for one user.
// Records without an ID get a generated one. Returns the number of records
// written.
func Import(ctx context.Context, store storage.MemoryStore, userID string, doc types.ExportDocument, mode Mode) (int, error) {
	if userID == "" {
		return 0, storage.ErrNotAuthenticated
	}

	existing := map[string]bool{}
	docs, err := store.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("export: failed to list existing records: %w", err)
	}
	for _, d := range docs {
		existing[d.ID] = true
	}

	if mode == ModeReplace {
		for id := range existing {
			if err := store.Delete(ctx, userID, id); err != nil {
				return 0, fmt.Errorf("export: failed to clear record %s: %w", id, err)
			}
		}
		existing = map[string]bool{}
	}

	imported := 0
	for _, m := range doc.Memories {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if mode == ModeMerge && existing[m.ID] {
			continue
		}
		if err := store.Put(ctx, userID, m); err != nil {
			return imported, fmt.Errorf("export: failed to import record %s: %w", m.ID, err)
		}
		imported++
	}

	return imported, nil
}
