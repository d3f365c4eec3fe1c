// Package importer converts Markdown notes with YAML frontmatter into raw
// memory documents, feeding the normal import path. The first paragraph of
// the body becomes the fact; tags, pin state, relations and timestamps
// come from the frontmatter.
package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/memview/pkg/types"
)

const frontmatterDelimiter = "---"

// ParseMarkdown parses a single Markdown note into a raw document.
// Frontmatter keys: id, tags, pinned, related, expires, date.
func ParseMarkdown(content []byte) (types.RawDocument, error) {
	fm, body, err := splitFrontmatter(string(content))
	if err != nil {
		return types.RawDocument{}, err
	}

	fields := map[string]interface{}{
		"fact":      firstParagraph(body),
		"tags":      stringList(fm["tags"]),
		"pinned":    fm["pinned"] == true,
		"relatedTo": stringList(fm["related"]),
	}
	if ts := timestampValue(fm["date"]); ts != nil {
		fields["createdAt"] = ts
	}
	if ts := timestampValue(fm["expires"]); ts != nil {
		fields["expiresAt"] = ts
	}

	id, _ := fm["id"].(string)
	return types.RawDocument{ID: id, Fields: fields}, nil
}

// ParseDir walks a directory tree and parses every .md file.
func ParseDir(root string) ([]types.RawDocument, error) {
	docs := []types.RawDocument{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("importer: failed to read %s: %w", path, err)
		}
		doc, err := ParseMarkdown(content)
		if err != nil {
			return fmt.Errorf("importer: %s: %w", path, err)
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// splitFrontmatter separates the YAML frontmatter block from the body.
// Files without frontmatter yield an empty map and the full body.
func splitFrontmatter(text string) (map[string]interface{}, string, error) {
	trimmed := strings.TrimPrefix(text, "\ufeff")
	if !strings.HasPrefix(trimmed, frontmatterDelimiter+"\n") && trimmed != frontmatterDelimiter {
		return map[string]interface{}{}, trimmed, nil
	}

	rest := strings.TrimPrefix(trimmed, frontmatterDelimiter+"\n")
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx < 0 {
		return nil, "", fmt.Errorf("importer: unterminated frontmatter block")
	}

	block := rest[:idx]
	body := rest[idx+len("\n"+frontmatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")

	fm := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, "", fmt.Errorf("importer: frontmatter parse error: %w", err)
	}
	return fm, body, nil
}

// firstParagraph returns the first non-heading paragraph of the body.
func firstParagraph(body string) string {
	for _, block := range strings.Split(body, "\n\n") {
		lines := []string{}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			return strings.Join(lines, " ")
		}
	}
	return ""
}

// stringList coerces a frontmatter value into a string slice. Scalars
// become single-element lists; anything else degrades to empty.
func stringList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, elem := range val {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return []string{}
		}
		return []string{val}
	default:
		return []string{}
	}
}

// timestampValue coerces a frontmatter date into an ISO-8601 string. YAML
// parses bare dates into time.Time; strings are passed along for the
// normalizer to keep as-is.
func timestampValue(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case string:
		if val == "" {
			return nil
		}
		return val
	default:
		return nil
	}
}
