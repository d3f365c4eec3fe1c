package types

import "time"

// Normalize converts one raw document into a canonical Memory. It is total
// over any input shape: absent or malformed fields degrade to defaults
// rather than failing. Timestamps arriving as backend-native time values
// are converted to ISO-8601 strings; plain string values pass through
// unchanged; absent values stay nil.
func Normalize(doc RawDocument) Memory {
	return Memory{
		ID:        doc.ID,
		Fact:      stringField(doc.Fields, "fact"),
		Tags:      stringListField(doc.Fields, "tags"),
		Pinned:    boolField(doc.Fields, "pinned"),
		RelatedTo: stringListField(doc.Fields, "relatedTo"),
		ExpiresAt: timestampField(doc.Fields, "expiresAt"),
		CreatedAt: timestampField(doc.Fields, "createdAt"),
		UpdatedAt: timestampField(doc.Fields, "updatedAt"),
	}
}

func stringField(fields map[string]interface{}, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

func boolField(fields map[string]interface{}, key string) bool {
	if b, ok := fields[key].(bool); ok {
		return b
	}
	return false
}

// stringListField accepts []string directly or []interface{} with string
// elements (the shape encoding/json produces). Non-string elements are
// skipped. The result is never nil.
func stringListField(fields map[string]interface{}, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// timestampField normalizes one timestamp field. time.Time values (the
// backend-native form) become RFC 3339 strings in UTC; strings pass
// through unchanged; anything else degrades to nil.
func timestampField(fields map[string]interface{}, key string) *string {
	switch v := fields[key].(type) {
	case time.Time:
		s := v.UTC().Format(time.RFC3339Nano)
		return &s
	case *time.Time:
		if v == nil {
			return nil
		}
		s := v.UTC().Format(time.RFC3339Nano)
		return &s
	case string:
		s := v
		return &s
	case *string:
		if v == nil {
			return nil
		}
		s := *v
		return &s
	default:
		return nil
	}
}
