package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scrypster/memview/pkg/types"
)

func TestParseMarkdown_FullFrontmatter(t *testing.T) {
	content := []byte(`---
id: note-1
tags:
  - work
  - planning
pinned: true
related:
  - note-2
date: "2024-03-01T10:00:00Z"
expires: "2024-12-31T00:00:00Z"
---
# Heading is skipped

The quarterly planning doc moved to the shared drive.

Second paragraph is ignored.
`)

	doc, err := ParseMarkdown(content)
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}

	if doc.ID != "note-1" {
		t.Errorf("id: expected note-1, got %q", doc.ID)
	}

	m := types.Normalize(doc)
	if m.Fact != "The quarterly planning doc moved to the shared drive." {
		t.Errorf("fact: got %q", m.Fact)
	}
	if len(m.Tags) != 2 || m.Tags[0] != "work" {
		t.Errorf("tags: got %v", m.Tags)
	}
	if !m.Pinned {
		t.Error("expected pinned")
	}
	if len(m.RelatedTo) != 1 || m.RelatedTo[0] != "note-2" {
		t.Errorf("relatedTo: got %v", m.RelatedTo)
	}
	if m.CreatedAt == nil || *m.CreatedAt != "2024-03-01T10:00:00Z" {
		t.Errorf("createdAt: got %v", m.CreatedAt)
	}
	if m.ExpiresAt == nil || *m.ExpiresAt != "2024-12-31T00:00:00Z" {
		t.Errorf("expiresAt: got %v", m.ExpiresAt)
	}
}

func TestParseMarkdown_NoFrontmatter(t *testing.T) {
	doc, err := ParseMarkdown([]byte("Just a plain note body.\n"))
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}

	m := types.Normalize(doc)
	if m.Fact != "Just a plain note body." {
		t.Errorf("fact: got %q", m.Fact)
	}
	if m.Pinned || len(m.Tags) != 0 {
		t.Errorf("expected defaults, got %+v", m)
	}
}

func TestParseMarkdown_ScalarTag(t *testing.T) {
	content := []byte("---\ntags: solo\n---\nBody text.\n")

	doc, err := ParseMarkdown(content)
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}

	m := types.Normalize(doc)
	if len(m.Tags) != 1 || m.Tags[0] != "solo" {
		t.Errorf("expected scalar tag coerced to list, got %v", m.Tags)
	}
}

func TestParseMarkdown_UnterminatedFrontmatter(t *testing.T) {
	if _, err := ParseMarkdown([]byte("---\ntags: [a\nno close")); err == nil {
		t.Error("expected error for unterminated frontmatter")
	}
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	writeFile("one.md", "First note.\n")
	writeFile("two.md", "---\npinned: true\n---\nSecond note.\n")
	writeFile("skipped.txt", "not markdown")

	docs, err := ParseDir(dir)
	if err != nil {
		t.Fatalf("ParseDir failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
}
