// Package types defines the core data structures for the memview system:
// memory records, the raw document shape delivered by storage backends,
// and the derived view types (graph, stats, export document).
package types

// Memory is a single memory record as seen by every derived view.
// Records are immutable values: an update replaces the whole record,
// nothing mutates one in place.
type Memory struct {
	// ID is the opaque unique identifier assigned by the backing store.
	ID string `json:"id"`

	// Fact is the free-text content of the memory.
	Fact string `json:"fact"`

	// Tags are user-assigned labels. Order is preserved for display but
	// carries no meaning for matching.
	Tags []string `json:"tags"`

	// Pinned marks records that sort ahead of everything else.
	Pinned bool `json:"pinned"`

	// RelatedTo lists the IDs of related records. Entries may reference
	// records that are not present in the current collection.
	RelatedTo []string `json:"relatedTo"`

	// ExpiresAt, CreatedAt and UpdatedAt are nullable ISO-8601 timestamps.
	// They stay in string form after normalization so that values written
	// by other tooling round-trip byte-for-byte.
	ExpiresAt *string `json:"expiresAt"`
	CreatedAt *string `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt"`
}

// RawDocument is one document as delivered by a storage backend, before
// normalization. Fields carries whatever shape the backend produced;
// Normalize is total over it.
type RawDocument struct {
	// ID is the document identifier assigned by the store.
	ID string

	// Fields holds the raw field values keyed by field name.
	Fields map[string]interface{}
}

// Stats is the aggregate snapshot computed over the current collection.
type Stats struct {
	Total        int            `json:"total"`
	Pinned       int            `json:"pinned"`
	ExpiringSoon int            `json:"expiringSoon"`
	Tags         map[string]int `json:"tags"`

	// NewestTimestamp and OldestTimestamp are the max/min non-null
	// createdAt values, or null when no record carries a timestamp.
	NewestTimestamp *string `json:"newestTimestamp"`
	OldestTimestamp *string `json:"oldestTimestamp"`
}

// GraphNode is one node of the relationship graph.
type GraphNode struct {
	ID string `json:"id"`

	// Label is the fact truncated for display (first 60 characters,
	// with a continuation marker when truncated).
	Label string `json:"label"`

	Pinned bool     `json:"pinned"`
	Tags   []string `json:"tags"`

	// LinkCount is the length of the record's relatedTo list, including
	// references to records not present in the collection.
	LinkCount int `json:"linkCount"`
}

// GraphEdge is one undirected relation between two records. Source and
// Target preserve the first-seen direction, but the relation is symmetric.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the derived relationship graph: one node per record, at most
// one edge per unordered record pair.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// ExportDocument is the self-describing on-disk interchange format.
// External tooling round-trips against it, so the field set and the
// version tag are part of the contract.
type ExportDocument struct {
	Version    string   `json:"version"`
	ExportedAt string   `json:"exportedAt"`
	Count      int      `json:"count"`
	Memories   []Memory `json:"memories"`
}
