package types

import (
	"testing"
	"time"
)

// TestNormalize_EmptyDocument verifies normalization is total: a document
// with no fields yields a record with all required defaults present.
func TestNormalize_EmptyDocument(t *testing.T) {
	m := Normalize(RawDocument{ID: "mem-1", Fields: map[string]interface{}{}})

	if m.ID != "mem-1" {
		t.Errorf("ID: expected mem-1, got %q", m.ID)
	}
	if m.Fact != "" {
		t.Errorf("Fact: expected empty string, got %q", m.Fact)
	}
	if m.Tags == nil || len(m.Tags) != 0 {
		t.Errorf("Tags: expected empty non-nil slice, got %#v", m.Tags)
	}
	if m.RelatedTo == nil || len(m.RelatedTo) != 0 {
		t.Errorf("RelatedTo: expected empty non-nil slice, got %#v", m.RelatedTo)
	}
	if m.Pinned {
		t.Error("Pinned: expected false")
	}
	if m.CreatedAt != nil || m.UpdatedAt != nil || m.ExpiresAt != nil {
		t.Errorf("timestamps: expected all nil, got %v %v %v", m.CreatedAt, m.UpdatedAt, m.ExpiresAt)
	}
}

// TestNormalize_NilFields verifies a nil field map behaves like an empty one.
func TestNormalize_NilFields(t *testing.T) {
	m := Normalize(RawDocument{ID: "mem-2"})
	if m.Fact != "" || m.Pinned || len(m.Tags) != 0 || len(m.RelatedTo) != 0 {
		t.Errorf("expected full defaults, got %+v", m)
	}
}

// TestNormalize_NativeTimestamp verifies backend-native time values are
// converted to ISO-8601 strings.
func TestNormalize_NativeTimestamp(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	m := Normalize(RawDocument{
		ID: "mem-3",
		Fields: map[string]interface{}{
			"createdAt": created,
		},
	})

	if m.CreatedAt == nil {
		t.Fatal("CreatedAt: expected non-nil")
	}
	if *m.CreatedAt != "2024-03-01T12:30:00Z" {
		t.Errorf("CreatedAt: expected 2024-03-01T12:30:00Z, got %q", *m.CreatedAt)
	}
}

// TestNormalize_StringTimestampPassthrough verifies already-plain timestamp
// strings pass through unchanged, byte for byte.
func TestNormalize_StringTimestampPassthrough(t *testing.T) {
	raw := "2023-12-25T08:00:00.123Z"
	m := Normalize(RawDocument{
		ID: "mem-4",
		Fields: map[string]interface{}{
			"expiresAt": raw,
		},
	})

	if m.ExpiresAt == nil || *m.ExpiresAt != raw {
		t.Errorf("ExpiresAt: expected passthrough %q, got %v", raw, m.ExpiresAt)
	}
}

// TestNormalize_MalformedFields verifies wrongly-typed fields degrade to
// defaults instead of failing.
func TestNormalize_MalformedFields(t *testing.T) {
	m := Normalize(RawDocument{
		ID: "mem-5",
		Fields: map[string]interface{}{
			"fact":      42,
			"tags":      "not-a-list",
			"pinned":    "yes",
			"relatedTo": 3.14,
			"createdAt": 1700000000,
		},
	})

	if m.Fact != "" {
		t.Errorf("Fact: expected default, got %q", m.Fact)
	}
	if len(m.Tags) != 0 || len(m.RelatedTo) != 0 {
		t.Errorf("lists: expected defaults, got tags=%v relatedTo=%v", m.Tags, m.RelatedTo)
	}
	if m.Pinned {
		t.Error("Pinned: expected default false")
	}
	if m.CreatedAt != nil {
		t.Errorf("CreatedAt: expected nil for numeric value, got %q", *m.CreatedAt)
	}
}

// TestNormalize_FullDocument verifies all fields survive normalization.
func TestNormalize_FullDocument(t *testing.T) {
	m := Normalize(RawDocument{
		ID: "mem-6",
		Fields: map[string]interface{}{
			"fact":      "user prefers dark theme",
			"tags":      []interface{}{"ui", "preferences"},
			"pinned":    true,
			"relatedTo": []string{"mem-7", "mem-8"},
			"createdAt": "2024-01-15T10:00:00Z",
		},
	})

	if m.Fact != "user prefers dark theme" {
		t.Errorf("Fact: got %q", m.Fact)
	}
	if len(m.Tags) != 2 || m.Tags[0] != "ui" || m.Tags[1] != "preferences" {
		t.Errorf("Tags: got %v", m.Tags)
	}
	if !m.Pinned {
		t.Error("Pinned: expected true")
	}
	if len(m.RelatedTo) != 2 || m.RelatedTo[0] != "mem-7" {
		t.Errorf("RelatedTo: got %v", m.RelatedTo)
	}
	if m.CreatedAt == nil || *m.CreatedAt != "2024-01-15T10:00:00Z" {
		t.Errorf("CreatedAt: got %v", m.CreatedAt)
	}
}
