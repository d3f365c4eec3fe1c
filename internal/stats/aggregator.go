// Package stats computes aggregate statistics over the current record set.
// All functions here are pure and total: absent or unparseable timestamps
// are excluded from the computations they feed, never reported as errors.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/scrypster/memview/pkg/types"
)

// expiringWindow is the horizon for the expiringSoon counter.
const expiringWindow = 24 * time.Hour

// Compute derives the aggregate snapshot for a record set at the given
// reference instant.
//
// expiringSoon counts records whose expiresAt is strictly after now and
// strictly before now+24h; an expiry exactly at either bound is excluded.
// Tag counts do not dedupe repeated tags within a single record. Newest
// and oldest are the max/min non-null createdAt values, nil when no record
// carries a parseable timestamp.
func Compute(records []types.Memory, now time.Time) types.Stats {
	s := types.Stats{
		Total: len(records),
		Tags:  map[string]int{},
	}

	deadline := now.Add(expiringWindow)
	var newest, oldest time.Time
	var newestStr, oldestStr *string

	for _, m := range records {
		if m.Pinned {
			s.Pinned++
		}

		if exp, ok := parseTimestamp(m.ExpiresAt); ok {
			if exp.After(now) && exp.Before(deadline) {
				s.ExpiringSoon++
			}
		}

		for _, tag := range m.Tags {
			s.Tags[tag]++
		}

		if created, ok := parseTimestamp(m.CreatedAt); ok {
			if newestStr == nil || created.After(newest) {
				newest = created
				newestStr = m.CreatedAt
			}
			if oldestStr == nil || created.Before(oldest) {
				oldest = created
				oldestStr = m.CreatedAt
			}
		}
	}

	s.NewestTimestamp = newestStr
	s.OldestTimestamp = oldestStr
	return s
}

// Bucket is one day of the creation timeline.
type Bucket struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Timeline groups records by creation day (the date part of the ISO
// timestamp) and returns the most recent `days` buckets in ascending day
// order. Records without a createdAt are skipped. Days with no records
// produce no bucket.
func Timeline(records []types.Memory, days int) []Bucket {
	groups := map[string]int{}
	for _, m := range records {
		if m.CreatedAt == nil {
			continue
		}
		// A bare date (no "T") counts as its own day prefix.
		day, _, _ := strings.Cut(*m.CreatedAt, "T")
		if day == "" {
			continue
		}
		groups[day]++
	}

	keys := make([]string, 0, len(groups))
	for day := range groups {
		keys = append(keys, day)
	}
	sort.Strings(keys)

	if len(keys) > days {
		keys = keys[len(keys)-days:]
	}

	buckets := make([]Bucket, 0, len(keys))
	for _, day := range keys {
		buckets = append(buckets, Bucket{Day: day, Count: groups[day]})
	}
	return buckets
}

func parseTimestamp(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
